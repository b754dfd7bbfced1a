//go:build darwin || freebsd || linux

package torch

import (
	"fmt"

	"github.com/benedoc-inc/torchbridge/torch/internal/api"
	"github.com/benedoc-inc/torchbridge/torch/internal/api/cpython"
	"github.com/ebitengine/purego"
)

// loadFuncs opens the Python shared library and resolves the C API.
// Symbols are exported globally so that torch's extension modules can link
// against the interpreter.
func loadFuncs(path string) (api.APIFuncs, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("failed to load library %s: %w", path, err)
	}

	funcs, err := cpython.InitializeFuncs(handle)
	if err != nil {
		purego.Dlclose(handle)
		return nil, fmt.Errorf("failed to initialize API functions: %w", err)
	}
	return funcs, nil
}
