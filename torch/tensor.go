package torch

import (
	"fmt"
	"slices"
	"strings"
)

// Tensor is a handle to a torch.Tensor living in the Python interpreter.
// Methods forward to the tensor object; the numerical work is done by torch.
//
// A Tensor is NOT safe for concurrent use. Do not share across goroutines.
type Tensor struct {
	*Object
}

// AsTensor wraps an object known to be a torch.Tensor. Ownership of the
// reference moves to the returned Tensor.
func AsTensor(o *Object) *Tensor {
	return &Tensor{Object: o}
}

// NewTensor creates a tensor from a slice of data with torch.tensor and
// reshapes it to shape. An empty shape keeps the one-dimensional layout.
// One dimension may be -1, in which case torch infers it.
func NewTensor[T Element](r *Runtime, data []T, shape []int64) (*Tensor, error) {
	if len(shape) > 0 && !slices.Contains(shape, -1) {
		count := int64(1)
		for _, dim := range shape {
			count *= dim
		}
		if count != int64(len(data)) {
			return nil, fmt.Errorf("shape %v does not match %d elements", shape, len(data))
		}
	}

	dtype, err := r.dtypeObject(DTypeOf[T]())
	if err != nil {
		return nil, err
	}
	defer dtype.Close()

	obj, err := r.Invoke("tensor", []any{data}, Kwargs{"dtype": dtype})
	if err != nil {
		return nil, fmt.Errorf("failed to create tensor: %w", err)
	}
	if len(shape) == 0 {
		return AsTensor(obj), nil
	}
	defer obj.Close()

	dims := make(Tuple, len(shape))
	for i, dim := range shape {
		dims[i] = dim
	}
	reshaped, err := obj.Invoke("reshape", []any{dims}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to reshape tensor: %w", err)
	}
	return AsTensor(reshaped), nil
}

// dtypeObject returns the torch dtype object for dt, e.g. torch.int32.
func (r *Runtime) dtypeObject(dt DType) (*Object, error) {
	return r.module.GetAttr(strings.TrimPrefix(dt.String(), "torch."))
}

// Buffer returns the storage backing the tensor. It implements BufferSource,
// so a Tensor can be passed to GetData and CopyBuffer.
//
// Storage on any device other than the CPU yields ErrNotHostMemory.
func (t *Tensor) Buffer() (Buffer, error) {
	if t == nil {
		return nil, ErrInvalidHandle
	}
	if _, err := t.handle(); err != nil {
		return nil, err
	}
	cpu, err := t.IsCPU()
	if err != nil {
		return nil, err
	}
	if !cpu {
		return nil, ErrNotHostMemory
	}
	storage, err := t.Invoke("storage", nil, nil)
	if err != nil {
		return nil, err
	}
	return &Storage{Object: storage}, nil
}

// Data returns a copy of the tensor data as a slice of the tensor's own
// element type. See CopyBuffer for the possible slice types.
func (t *Tensor) Data() (any, error) {
	if t == nil {
		return nil, ErrInvalidHandle
	}
	dt, err := t.DType()
	if err != nil {
		return nil, err
	}
	return CopyBuffer(t, dt)
}

// DType returns the element type of the tensor.
func (t *Tensor) DType() (DType, error) {
	attr, err := t.GetAttr("dtype")
	if err != nil {
		return 0, err
	}
	defer attr.Close()

	name, err := attr.Str()
	if err != nil {
		return 0, err
	}
	return ParseDType(name)
}

// Close releases the tensor. It is safe to call on a nil Tensor.
func (t *Tensor) Close() {
	if t != nil {
		t.Object.Close()
	}
}

// RequiresGrad reports whether gradients need to be computed for this tensor.
func (t *Tensor) RequiresGrad() (bool, error) {
	return t.boolAttr("requires_grad")
}

// SetRequiresGrad sets the requires_grad flag of the tensor.
func (t *Tensor) SetRequiresGrad(requiresGrad bool) error {
	return t.SetAttr("requires_grad", requiresGrad)
}

// IsCPU reports whether the tensor is stored in host memory.
func (t *Tensor) IsCPU() (bool, error) {
	return t.boolAttr("is_cpu")
}

// IsCUDA reports whether the tensor is stored on a CUDA device.
func (t *Tensor) IsCUDA() (bool, error) {
	return t.boolAttr("is_cuda")
}

func (t *Tensor) boolAttr(name string) (bool, error) {
	attr, err := t.GetAttr(name)
	if err != nil {
		return false, err
	}
	defer attr.Close()
	return attr.Bool()
}

// Grad returns the accumulated gradient of the tensor, or nil if backward
// has not populated it yet.
func (t *Tensor) Grad() (*Tensor, error) {
	attr, err := t.GetAttr("grad")
	if err != nil {
		return nil, err
	}
	isNone, err := attr.IsNone()
	if err != nil || isNone {
		attr.Close()
		return nil, err
	}
	return AsTensor(attr), nil
}

// Device returns the device the tensor is stored on.
func (t *Tensor) Device() (*Device, error) {
	attr, err := t.GetAttr("device")
	if err != nil {
		return nil, err
	}
	return &Device{Object: attr}, nil
}

// Shape returns the dimensions of the tensor. For example, a 2x3 matrix
// returns [2, 3].
func (t *Tensor) Shape() ([]int64, error) {
	size, err := t.Invoke("size", nil, nil)
	if err != nil {
		return nil, err
	}
	defer size.Close()

	rankObj, err := size.Invoke("__len__", nil, nil)
	if err != nil {
		return nil, err
	}
	rank, err := rankObj.Int()
	rankObj.Close()
	if err != nil {
		return nil, err
	}

	shape := make([]int64, rank)
	for i := range shape {
		dim, err := size.GetItem(i)
		if err != nil {
			return nil, err
		}
		shape[i], err = dim.Int()
		dim.Close()
		if err != nil {
			return nil, err
		}
	}
	return shape, nil
}

// Item returns the value of a one-element tensor as a Python number.
// This operation is not differentiable.
func (t *Tensor) Item() (*Object, error) {
	return t.Invoke("item", nil, nil)
}

// ItemAs returns the value of a one-element tensor converted to T.
func ItemAs[T Element](t *Tensor) (T, error) {
	item, err := t.Item()
	if err != nil {
		return 0, err
	}
	defer item.Close()

	switch DTypeOf[T]() {
	case Float32, Float64:
		v, err := item.Float()
		return T(v), err
	default:
		v, err := item.Int()
		return T(v), err
	}
}

// Index returns self[index...]. The result is a view sharing the storage
// of t, so GetData on it copies the whole storage.
func (t *Tensor) Index(index ...int) (*Tensor, error) {
	item, err := t.GetItem(indexTuple(index))
	if err != nil {
		return nil, err
	}
	return AsTensor(item), nil
}

// SetIndex performs self[index...] = value. value may be a *Tensor or a scalar.
func (t *Tensor) SetIndex(value any, index ...int) error {
	return t.SetItem(indexTuple(index), value)
}

// Select returns self[selection], where selection is an index or mask tensor.
func (t *Tensor) Select(selection *Tensor) (*Tensor, error) {
	item, err := t.GetItem(selection)
	if err != nil {
		return nil, err
	}
	return AsTensor(item), nil
}

// SetSelect performs self[selection] = value.
func (t *Tensor) SetSelect(selection *Tensor, value any) error {
	return t.SetItem(selection, value)
}

func indexTuple(index []int) Tuple {
	tuple := make(Tuple, len(index))
	for i, idx := range index {
		tuple[i] = idx
	}
	return tuple
}

// T returns the transpose of a tensor of at most two dimensions. The result
// is a view: its storage keeps the element order of t.
func (t *Tensor) T() (*Tensor, error) {
	obj, err := t.Invoke("t", nil, nil)
	if err != nil {
		return nil, err
	}
	return AsTensor(obj), nil
}

// ClampOptions configures Clamp. Nil fields are omitted from the call.
type ClampOptions struct {
	// Min is the lower bound of the range.
	Min *float64
	// Max is the upper bound of the range.
	Max *float64
	// Out is the output tensor.
	Out *Tensor
}

// Clamp clamps all elements into the range [Min, Max] and returns the
// resulting tensor.
func (t *Tensor) Clamp(opts ClampOptions) (*Tensor, error) {
	kwargs := Kwargs{}
	if opts.Min != nil {
		kwargs["min"] = *opts.Min
	}
	if opts.Max != nil {
		kwargs["max"] = *opts.Max
	}
	if opts.Out != nil {
		kwargs["out"] = opts.Out
	}
	obj, err := t.Invoke("clamp", nil, kwargs)
	if err != nil {
		return nil, err
	}
	return AsTensor(obj), nil
}
