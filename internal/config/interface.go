package config

import "context"

// Loader is the interface for a format-specific run file loader.
type Loader interface {
	// Load reads a run file from path and translates it into the
	// format-agnostic model.
	Load(ctx context.Context, path string) (*Run, error)
}

// FamilyIndex maps distribution family names to their integer codes.
type FamilyIndex interface {
	Code(name string) (int, bool)
	Names() []string
}
