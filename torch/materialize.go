package torch

import (
	"fmt"
	"unsafe"
)

// Element is a type constraint for the element types that foreign storage
// can be materialized into.
type Element interface {
	uint8 | int16 | int32 | int64 | float32 | float64
}

// Buffer is the contiguous storage backing a foreign tensor.
//
// The address returned by Addr is only valid while the owning tensor is
// alive and must not be retained past the call that obtained it.
type Buffer interface {
	// Len returns the number of elements in the storage.
	Len() (int, error)
	// Addr returns the address of the first element.
	Addr() (uintptr, error)
}

// BufferSource resolves the storage of a foreign tensor.
type BufferSource interface {
	Buffer() (Buffer, error)
}

// GetData copies the storage of src into a newly allocated slice.
//
// The element type T is trusted to match the layout of the foreign storage;
// no width or type verification is performed. Empty storage yields an empty
// slice without reading the storage address.
func GetData[T Element](src BufferSource) ([]T, error) {
	if src == nil {
		return nil, ErrInvalidHandle
	}
	buf, err := src.Buffer()
	if err != nil {
		return nil, fmt.Errorf("failed to get storage: %w", err)
	}
	defer closeBuffer(buf)
	return copyBuffer[T](buf)
}

// CopyBuffer copies the storage of src into a newly allocated slice whose
// element type is selected by dt. The result is one of []uint8, []int16,
// []int32, []int64, []float32 or []float64.
//
// An *UnsupportedElementTypeError is returned when dt is not materializable.
func CopyBuffer(src BufferSource, dt DType) (any, error) {
	if !dt.Materializable() {
		return nil, &UnsupportedElementTypeError{Type: dt.String()}
	}
	if src == nil {
		return nil, ErrInvalidHandle
	}

	buf, err := src.Buffer()
	if err != nil {
		return nil, fmt.Errorf("failed to get storage: %w", err)
	}
	defer closeBuffer(buf)

	switch dt {
	case Uint8:
		return copyAs[uint8](buf)
	case Int16:
		return copyAs[int16](buf)
	case Int32:
		return copyAs[int32](buf)
	case Int64:
		return copyAs[int64](buf)
	case Float32:
		return copyAs[float32](buf)
	case Float64:
		return copyAs[float64](buf)
	default:
		return nil, &UnsupportedElementTypeError{Type: dt.String()}
	}
}

// closeBuffer releases storage handles that hold a foreign reference.
func closeBuffer(buf Buffer) {
	if c, ok := buf.(interface{ Close() }); ok {
		c.Close()
	}
}

func copyAs[T Element](buf Buffer) (any, error) {
	data, err := copyBuffer[T](buf)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func copyBuffer[T Element](buf Buffer) ([]T, error) {
	n, err := buf.Len()
	if err != nil {
		return nil, fmt.Errorf("failed to get element count: %w", err)
	}
	if n < 0 {
		return nil, fmt.Errorf("invalid element count %d", n)
	}
	if n == 0 {
		// The address of an empty storage may be null.
		return []T{}, nil
	}

	addr, err := buf.Addr()
	if err != nil {
		return nil, fmt.Errorf("failed to get data pointer: %w", err)
	}
	if addr == 0 {
		return nil, fmt.Errorf("null data pointer for %d elements: %w", n, ErrInvalidHandle)
	}

	result := make([]T, n)
	copy(result, unsafe.Slice((*T)(unsafe.Pointer(addr)), n))
	return result, nil
}
