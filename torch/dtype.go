package torch

import (
	"fmt"
	"strings"
)

// DType identifies the element type of a foreign tensor.
type DType uint8

const (
	// Bool represents torch.bool.
	Bool DType = iota
	// Uint8 represents torch.uint8.
	Uint8
	// Int8 represents torch.int8.
	Int8
	// Int16 represents torch.int16.
	Int16
	// Int32 represents torch.int32.
	Int32
	// Int64 represents torch.int64.
	Int64
	// Float16 represents torch.float16.
	Float16
	// BFloat16 represents torch.bfloat16.
	BFloat16
	// Float32 represents torch.float32.
	Float32
	// Float64 represents torch.float64.
	Float64
	// Complex64 represents torch.complex64.
	Complex64
	// Complex128 represents torch.complex128.
	Complex128
)

var (
	dTypeToSize = [...]int{
		Bool:       1,
		Uint8:      1,
		Int8:       1,
		Int16:      2,
		Int32:      4,
		Int64:      8,
		Float16:    2,
		BFloat16:   2,
		Float32:    4,
		Float64:    8,
		Complex64:  8,
		Complex128: 16,
	}
	dTypeToString = [...]string{
		Bool:       "torch.bool",
		Uint8:      "torch.uint8",
		Int8:       "torch.int8",
		Int16:      "torch.int16",
		Int32:      "torch.int32",
		Int64:      "torch.int64",
		Float16:    "torch.float16",
		BFloat16:   "torch.bfloat16",
		Float32:    "torch.float32",
		Float64:    "torch.float64",
		Complex64:  "torch.complex64",
		Complex128: "torch.complex128",
	}
	stringToDType = map[string]DType{
		"torch.bool":       Bool,
		"torch.uint8":      Uint8,
		"torch.int8":       Int8,
		"torch.int16":      Int16,
		"torch.short":      Int16,
		"torch.int32":      Int32,
		"torch.int":        Int32,
		"torch.int64":      Int64,
		"torch.long":       Int64,
		"torch.float16":    Float16,
		"torch.half":       Float16,
		"torch.bfloat16":   BFloat16,
		"torch.float32":    Float32,
		"torch.float":      Float32,
		"torch.float64":    Float64,
		"torch.double":     Float64,
		"torch.complex64":  Complex64,
		"torch.cfloat":     Complex64,
		"torch.complex128": Complex128,
		"torch.cdouble":    Complex128,
	}
)

// Size returns the size in bytes of one element of this data type,
// or 0 if the DType value is invalid.
func (dt DType) Size() int {
	if !dt.valid() {
		return 0
	}
	return dTypeToSize[dt]
}

// String returns the torch name of the data type, e.g. "torch.float32".
func (dt DType) String() string {
	if !dt.valid() {
		return fmt.Sprintf("DType(%d)", dt)
	}
	return dTypeToString[dt]
}

// Materializable reports whether storage of this type can be copied with
// [GetData] or [CopyBuffer].
func (dt DType) Materializable() bool {
	switch dt {
	case Uint8, Int16, Int32, Int64, Float32, Float64:
		return true
	default:
		return false
	}
}

func (dt DType) valid() bool {
	return int(dt) < len(dTypeToSize)
}

// ParseDType parses a torch dtype name. The "torch." prefix is optional and
// aliases such as "torch.long" and "torch.double" are accepted.
func ParseDType(name string) (DType, error) {
	key := strings.TrimSpace(name)
	if !strings.HasPrefix(key, "torch.") {
		key = "torch." + key
	}
	dt, ok := stringToDType[key]
	if !ok {
		return 0, fmt.Errorf("unknown dtype %q", name)
	}
	return dt, nil
}

// DTypeOf returns the DType corresponding to the element type T.
func DTypeOf[T Element]() DType {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return Uint8
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	case float32:
		return Float32
	default:
		return Float64
	}
}
