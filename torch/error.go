package torch

import (
	"fmt"
)

// PythonError represents an exception raised inside the Python interpreter.
type PythonError struct {
	Type    string
	Message string
}

func (e *PythonError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("python error (%s)", e.Type)
	}
	return fmt.Sprintf("python error (%s): %s", e.Type, e.Message)
}

// UnsupportedElementTypeError is returned when storage is requested as an
// element type outside the materializable set.
type UnsupportedElementTypeError struct {
	Type string
}

func (e *UnsupportedElementTypeError) Error() string {
	return fmt.Sprintf("unsupported element type %s", e.Type)
}

// Is reports whether target is ErrUnsupportedElementType.
func (e *UnsupportedElementTypeError) Is(target error) bool {
	return target == ErrUnsupportedElementType
}
