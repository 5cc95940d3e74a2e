package catalog

import (
	_ "embed"
	"fmt"
	"sync"
)

//go:embed patterns.cue
var builtinSource string

var (
	builtinOnce sync.Once
	builtin     *Catalog
	builtinErr  error
)

// LoadBuiltin compiles the embedded pattern catalog. Compiled once per
// process; the result is shared and immutable.
func LoadBuiltin() (*Catalog, error) {
	builtinOnce.Do(func() {
		builtin, builtinErr = LoadSource(builtinSource)
		if builtinErr != nil {
			builtinErr = fmt.Errorf("builtin catalog: %w", builtinErr)
		}
	})
	return builtin, builtinErr
}

// MustBuiltin is LoadBuiltin for initialization paths where a broken
// embedded catalog is unrecoverable.
func MustBuiltin() *Catalog {
	c, err := LoadBuiltin()
	if err != nil {
		panic(err)
	}
	return c
}
