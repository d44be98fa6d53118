package registry

import (
	"fmt"
	"strings"
)

// Validate checks that names and codes are unique, codes are positive and
// every family has a sampler.
func (f *Families) Validate() error {
	var errs []string

	if len(f.byName) != len(f.byCode) {
		errs = append(errs, "family names and codes are not one-to-one")
	}
	for name, fam := range f.byName {
		if name == "" {
			errs = append(errs, "family with empty name")
		}
		if fam.Code < 1 {
			errs = append(errs, fmt.Sprintf("family '%s': code %d must be positive", name, fam.Code))
		}
		if fam.Sample == nil {
			errs = append(errs, fmt.Sprintf("family '%s': missing sampler", name))
		}
		if other, ok := f.byCode[fam.Code]; ok && other.Name != name {
			errs = append(errs, fmt.Sprintf("family '%s': code %d already used by '%s'", name, fam.Code, other.Name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("family table validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
