package torch

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// LibraryPathEnv names the environment variable consulted for the Python
// shared library when RuntimeOptions.LibraryPath is empty.
const LibraryPathEnv = "TORCHBRIDGE_PYTHON_LIB"

// RuntimeOptions configures a Runtime.
type RuntimeOptions struct {
	// LibraryPath is the path of the Python shared library, e.g.
	// "/usr/lib/x86_64-linux-gnu/libpython3.12.so.1.0".
	LibraryPath string `yaml:"library_path"`

	// Module is the Python module providing the tensor API. Defaults to "torch".
	Module string `yaml:"module"`

	// Hooks are called around every method invocation on a foreign object.
	Hooks []Hook `yaml:"-"`
}

// LoadRuntimeOptions reads RuntimeOptions from a YAML file.
//
//	library_path: /opt/python/lib/libpython3.12.so
//	module: torch
func LoadRuntimeOptions(path string) (*RuntimeOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read options %s: %w", path, err)
	}

	var opts RuntimeOptions
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("failed to parse options %s: %w", path, err)
	}
	return &opts, nil
}

// resolvedLibraryPath returns the library path to load: the explicit option,
// then the environment, then the platform default.
func (o *RuntimeOptions) resolvedLibraryPath() string {
	if o != nil && o.LibraryPath != "" {
		return o.LibraryPath
	}
	if path := os.Getenv(LibraryPathEnv); path != "" {
		return path
	}
	return defaultLibraryPath()
}

func (o *RuntimeOptions) moduleName() string {
	if o == nil || o.Module == "" {
		return DefaultModule
	}
	return o.Module
}

func (o *RuntimeOptions) hooks() []Hook {
	if o == nil {
		return nil
	}
	return o.Hooks
}

func defaultLibraryPath() string {
	switch runtime.GOOS {
	case "darwin":
		return "libpython3.dylib"
	case "windows":
		return "python3.dll"
	default:
		return "libpython3.so"
	}
}
