package torch

import "errors"

var (
	// ErrRuntimeClosed is returned when an operation is attempted on a closed runtime.
	ErrRuntimeClosed = errors.New("runtime is closed")

	// ErrInvalidHandle is returned when a foreign tensor or storage handle
	// is stale or null.
	ErrInvalidHandle = errors.New("invalid foreign handle")

	// ErrUnsupportedElementType is matched by errors.Is for every
	// *UnsupportedElementTypeError.
	ErrUnsupportedElementType = errors.New("unsupported element type")

	// ErrNotHostMemory is returned when tensor storage lives in device memory
	// and cannot be read from the host.
	ErrNotHostMemory = errors.New("tensor storage is not in host memory")
)

// DefaultModule is the Python module imported by NewRuntime when
// RuntimeOptions.Module is empty.
const DefaultModule = "torch"

// gilInitSignals is passed to Py_InitializeEx. Signal handlers stay with the
// Go runtime.
const gilInitSignals int32 = 0
