// Package templates ships the program templates expanded for each model
// construct, and the functions block shared by every generated program.
package templates

import (
	"embed"
	"fmt"
	"sync"

	"github.com/specialistvlad/stapes/internal/stem"
)

//go:embed stems/*.stem stems/functions.stan
var files embed.FS

const (
	Preamble   = "preamble"
	Offset     = "offset"
	Index      = "index"
	Value      = "value"
	Scalar     = "scalar"
	Vector     = "vector"
	Factor     = "factor"
	Likelihood = "likelihood"
)

var (
	mu     sync.Mutex
	parsed = map[string]*stem.Template{}
)

// Get returns the parsed template with the given name.
func Get(name string) (*stem.Template, error) {
	mu.Lock()
	defer mu.Unlock()

	if t, ok := parsed[name]; ok {
		return t, nil
	}
	src, err := files.ReadFile("stems/" + name + ".stem")
	if err != nil {
		return nil, fmt.Errorf("template %q not found: %w", name, err)
	}
	t, err := stem.Parse(name, string(src))
	if err != nil {
		return nil, err
	}
	parsed[name] = t
	return t, nil
}

// Expand expands the named template.
func Expand(name, namespace string, env stem.Env) (*stem.Result, error) {
	t, err := Get(name)
	if err != nil {
		return nil, err
	}
	return t.Expand(namespace, env)
}

// Functions returns the functions block.
func Functions() string {
	src, err := files.ReadFile("stems/functions.stan")
	if err != nil {
		panic(err)
	}
	return string(src)
}
