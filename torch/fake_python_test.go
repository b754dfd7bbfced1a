package torch

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"unsafe"

	"github.com/benedoc-inc/torchbridge/torch/internal/api"
)

// fakePython is an in-memory stand-in for the CPython C API with just
// enough of torch's tensor surface to exercise the bridge.
type fakePython struct {
	mu       sync.Mutex
	objects  map[api.PyObject]*fakeObject
	next     api.PyObject
	none     api.PyObject
	module   api.PyObject
	pending  *PythonError
	gil      atomic.Int32
	unlocked int
	badRefs  int

	// surrogates makes every UnicodeAsUTF8 call fail as it does for
	// strings holding lone surrogates.
	surrogates bool

	initialized bool
	savedThread bool
	calls       []string
	lastKwargs  map[string]api.PyObject
}

type fakeKind int

const (
	fakeNone fakeKind = iota
	fakeBool
	fakeInt
	fakeFloat
	fakeStr
	fakeTuple
	fakeList
	fakeDict
	fakeModule
	fakeTensor
	fakeStorage
	fakeMethod
	fakeDType
	fakeDevice
	fakeExcType
)

type fakeObject struct {
	kind  fakeKind
	refs  int
	i     int64
	f     float64
	s     string
	cstr  []byte
	items []api.PyObject
	dict  map[string]api.PyObject

	// self is the receiver of a method or the tensor owning a storage.
	self   api.PyObject
	name   string
	dtype  DType
	tensor *fakeTensorData
}

// fakeTensorData is a tensor or a view of one. Views share data with their
// base tensor; data is always the whole storage.
type fakeTensorData struct {
	dtype        DType
	data         []byte
	offset       int
	n            int
	shape        []int64
	requiresGrad bool
	device       string // empty means cpu
	grad         api.PyObject
}

func newFakePython() *fakePython {
	f := &fakePython{
		objects: make(map[api.PyObject]*fakeObject),
		next:    0x1000,
	}
	f.none = f.alloc(&fakeObject{kind: fakeNone})
	return f
}

// newFakeRuntime returns a Runtime wired to a fresh fakePython.
func newFakeRuntime(t *testing.T, hooks ...Hook) (*Runtime, *fakePython) {
	t.Helper()
	fake := newFakePython()
	rt, err := newRuntime(fake, &RuntimeOptions{Hooks: hooks})
	if err != nil {
		t.Fatalf("Failed to create runtime: %v", err)
	}
	t.Cleanup(rt.Close)
	return rt, fake
}

// newTensor creates a tensor object owned by the caller.
func (f *fakePython) newTensor(dtype DType, shape []int64, values ...float64) api.PyObject {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.allocTensor(dtype, shape, values)
}

// tensorData returns the backing data of a tensor object.
func (f *fakePython) tensorData(ptr api.PyObject) *fakeTensorData {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.objects[ptr].tensor
}

// live returns the number of live objects other than None.
func (f *fakePython) live() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects) - 1
}

func (f *fakePython) refs(ptr api.PyObject) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.objects[ptr]; ok {
		return o.refs
	}
	return 0
}

func (f *fakePython) errPending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending != nil
}

func (f *fakePython) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakePython) alloc(o *fakeObject) api.PyObject {
	o.refs = 1
	ptr := f.next
	f.next += 16
	f.objects[ptr] = o
	return ptr
}

func (f *fakePython) allocTensor(dtype DType, shape []int64, values []float64) api.PyObject {
	td := &fakeTensorData{
		dtype: dtype,
		data:  make([]byte, len(values)*dtype.Size()),
		n:     len(values),
		shape: append([]int64(nil), shape...),
	}
	for i, v := range values {
		td.set(i, v)
	}
	return f.alloc(&fakeObject{kind: fakeTensor, tensor: td})
}

// allocView creates a tensor sharing the storage of td.
func (f *fakePython) allocView(td *fakeTensorData, shape []int64, offset, n int) api.PyObject {
	view := &fakeTensorData{
		dtype:  td.dtype,
		data:   td.data,
		offset: offset,
		n:      n,
		shape:  shape,
	}
	return f.alloc(&fakeObject{kind: fakeTensor, tensor: view})
}

func (f *fakePython) incref(ptr api.PyObject) {
	if o, ok := f.objects[ptr]; ok {
		o.refs++
	} else {
		f.badRefs++
	}
}

func (f *fakePython) decref(ptr api.PyObject) {
	o, ok := f.objects[ptr]
	if !ok {
		f.badRefs++
		return
	}
	o.refs--
	if o.refs > 0 {
		return
	}
	delete(f.objects, ptr)
	for _, item := range o.items {
		if item != 0 {
			f.decref(item)
		}
	}
	for _, v := range o.dict {
		f.decref(v)
	}
	if o.self != 0 {
		f.decref(o.self)
	}
	if o.kind == fakeTensor && o.tensor.grad != 0 {
		f.decref(o.tensor.grad)
	}
}

func (f *fakePython) raise(typ, format string, args ...any) api.PyObject {
	f.pending = &PythonError{Type: typ, Message: fmt.Sprintf(format, args...)}
	return 0
}

func (f *fakePython) checkGIL() {
	if f.gil.Load() <= 0 {
		f.unlocked++
	}
}

func (f *fakePython) newInt(v int64) api.PyObject {
	return f.alloc(&fakeObject{kind: fakeInt, i: v})
}

func (f *fakePython) newStr(s string) api.PyObject {
	return f.alloc(&fakeObject{kind: fakeStr, s: s})
}

func (f *fakePython) newMethod(self api.PyObject, name string) api.PyObject {
	f.incref(self)
	return f.alloc(&fakeObject{kind: fakeMethod, self: self, name: name})
}

func (f *fakePython) retNone() api.PyObject {
	f.incref(f.none)
	return f.none
}

// Interpreter lifecycle

func (f *fakePython) InitializeEx(int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initialized = true
}

func (f *fakePython) IsInitialized() int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.initialized {
		return 1
	}
	return 0
}

func (f *fakePython) EvalSaveThread() api.PyThreadState {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.savedThread = true
	return 1
}

func (f *fakePython) EvalRestoreThread(api.PyThreadState) {}

// GIL

func (f *fakePython) GILStateEnsure() api.PyGILState {
	f.gil.Add(1)
	return 0
}

func (f *fakePython) GILStateRelease(api.PyGILState) {
	f.gil.Add(-1)
}

// Reference counting

func (f *fakePython) IncRef(ptr api.PyObject) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkGIL()
	f.incref(ptr)
}

func (f *fakePython) DecRef(ptr api.PyObject) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkGIL()
	f.decref(ptr)
}

func (f *fakePython) None() api.PyObject {
	return f.none
}

// Modules

func (f *fakePython) ImportModule(name *byte) api.PyObject {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkGIL()
	if n := cStringToString(name); n != "torch" {
		return f.raise("ModuleNotFoundError", "No module named '%s'", n)
	}
	if f.module == 0 {
		f.module = f.alloc(&fakeObject{kind: fakeModule, name: "torch"})
		return f.module
	}
	f.incref(f.module)
	return f.module
}

// Object protocol

func (f *fakePython) GetAttrString(ptr api.PyObject, name *byte) api.PyObject {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkGIL()

	attr := cStringToString(name)
	o, ok := f.objects[ptr]
	if !ok {
		f.badRefs++
		return f.raise("SystemError", "bad object")
	}

	switch o.kind {
	case fakeExcType:
		if attr == "__name__" {
			return f.newStr(o.s)
		}
	case fakeModule:
		if dt, ok := stringToDType["torch."+attr]; ok {
			return f.alloc(&fakeObject{kind: fakeDType, dtype: dt})
		}
		switch attr {
		case "tensor", "zeros":
			return f.newMethod(ptr, attr)
		}
	case fakeTensor:
		td := o.tensor
		switch attr {
		case "dtype":
			return f.alloc(&fakeObject{kind: fakeDType, dtype: td.dtype})
		case "requires_grad":
			return f.alloc(&fakeObject{kind: fakeBool, i: boolInt(td.requiresGrad)})
		case "is_cpu":
			return f.alloc(&fakeObject{kind: fakeBool, i: boolInt(td.device == "")})
		case "is_cuda":
			return f.alloc(&fakeObject{kind: fakeBool, i: boolInt(td.device == "cuda")})
		case "grad":
			if td.grad == 0 {
				return f.retNone()
			}
			f.incref(td.grad)
			return td.grad
		case "device":
			return f.alloc(&fakeObject{kind: fakeDevice, s: td.device})
		case "storage", "size", "item", "t", "clamp", "reshape":
			return f.newMethod(ptr, attr)
		}
	case fakeStorage:
		switch attr {
		case "size", "data_ptr":
			return f.newMethod(ptr, attr)
		}
	case fakeTuple:
		if attr == "__len__" {
			return f.newMethod(ptr, attr)
		}
	case fakeDevice:
		switch attr {
		case "type":
			if o.s != "" {
				return f.newStr(o.s)
			}
			return f.newStr("cpu")
		case "index":
			if o.s != "" {
				return f.newInt(0)
			}
			return f.retNone()
		}
	}
	return f.raise("AttributeError", "object has no attribute '%s'", attr)
}

func (f *fakePython) SetAttrString(ptr api.PyObject, name *byte, value api.PyObject) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkGIL()

	o := f.objects[ptr]
	if o.kind == fakeTensor && cStringToString(name) == "requires_grad" {
		o.tensor.requiresGrad = f.truth(value)
		return 0
	}
	f.raise("AttributeError", "cannot set attribute '%s'", cStringToString(name))
	return -1
}

func (f *fakePython) GetItem(ptr, key api.PyObject) api.PyObject {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkGIL()

	o, k := f.objects[ptr], f.objects[key]
	switch o.kind {
	case fakeTuple, fakeList:
		if k.kind != fakeInt || k.i < 0 || int(k.i) >= len(o.items) {
			return f.raise("IndexError", "index out of range")
		}
		item := o.items[k.i]
		f.incref(item)
		return item
	case fakeTensor:
		td := o.tensor
		if k.kind == fakeTensor {
			var values []float64
			for _, i := range f.maskIndices(td, k.tensor) {
				values = append(values, td.get(i))
			}
			return f.allocTensor(td.dtype, []int64{int64(len(values))}, values)
		}
		start, count, shape, ok := f.block(td, k)
		if !ok {
			return f.raise("IndexError", "index out of range")
		}
		return f.allocView(td, shape, td.offset+start, count)
	}
	return f.raise("TypeError", "object is not subscriptable")
}

func (f *fakePython) SetItem(ptr, key, value api.PyObject) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkGIL()

	o, k, v := f.objects[ptr], f.objects[key], f.objects[value]
	if o.kind != fakeTensor {
		f.raise("TypeError", "object does not support item assignment")
		return -1
	}
	td := o.tensor

	var indices []int
	if k.kind == fakeTensor {
		indices = f.maskIndices(td, k.tensor)
	} else {
		start, count, _, ok := f.block(td, k)
		if !ok {
			f.raise("IndexError", "index out of range")
			return -1
		}
		for i := 0; i < count; i++ {
			indices = append(indices, start+i)
		}
	}

	for n, i := range indices {
		switch v.kind {
		case fakeInt, fakeBool:
			td.set(i, float64(v.i))
		case fakeFloat:
			td.set(i, v.f)
		case fakeTensor:
			if v.tensor.count() == 1 {
				td.set(i, v.tensor.get(0))
			} else {
				td.set(i, v.tensor.get(n))
			}
		default:
			f.raise("TypeError", "unsupported value")
			return -1
		}
	}
	return 0
}

// block resolves an index tuple to a contiguous element range.
func (f *fakePython) block(td *fakeTensorData, key *fakeObject) (start, count int, shape []int64, ok bool) {
	if key.kind != fakeTuple || len(key.items) > len(td.shape) {
		return 0, 0, nil, false
	}
	shape = td.shape[len(key.items):]
	count = 1
	for _, dim := range shape {
		count *= int(dim)
	}
	stride := count
	for axis := len(key.items) - 1; axis >= 0; axis-- {
		idx := f.objects[key.items[axis]]
		if idx.kind != fakeInt || idx.i < 0 || idx.i >= td.shape[axis] {
			return 0, 0, nil, false
		}
		start += int(idx.i) * stride
		stride *= int(td.shape[axis])
	}
	return start, count, append([]int64(nil), shape...), true
}

func (f *fakePython) maskIndices(td, mask *fakeTensorData) []int {
	var indices []int
	if mask.dtype == Bool {
		for i := 0; i < mask.count() && i < td.count(); i++ {
			if mask.get(i) != 0 {
				indices = append(indices, i)
			}
		}
		return indices
	}
	for i := 0; i < mask.count(); i++ {
		indices = append(indices, int(mask.get(i)))
	}
	return indices
}

func (f *fakePython) Call(callable, args, kwargs api.PyObject) api.PyObject {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkGIL()

	m := f.objects[callable]
	if m == nil || m.kind != fakeMethod {
		return f.raise("TypeError", "object is not callable")
	}
	a := f.objects[args]
	if a == nil || a.kind != fakeTuple {
		return f.raise("SystemError", "argument list must be a tuple")
	}
	kw := map[string]api.PyObject{}
	if kwargs != 0 {
		kw = f.objects[kwargs].dict
	}
	f.calls = append(f.calls, m.name)
	f.lastKwargs = kw

	self := f.objects[m.self]
	switch self.kind {
	case fakeModule:
		return f.callModule(m.name, a.items, kw)
	case fakeTensor:
		return f.callTensor(m.self, self.tensor, m.name, a.items, kw)
	case fakeStorage:
		td := f.objects[self.self].tensor
		switch m.name {
		case "size":
			return f.newInt(int64(len(td.data) / td.dtype.Size()))
		case "data_ptr":
			if len(td.data) == 0 {
				return f.newInt(0)
			}
			return f.newInt(int64(uintptr(unsafe.Pointer(&td.data[0]))))
		}
	case fakeTuple:
		return f.newInt(int64(len(self.items)))
	}
	return f.raise("AttributeError", "unknown method %s", m.name)
}

func (f *fakePython) callModule(name string, args []api.PyObject, kw map[string]api.PyObject) api.PyObject {
	switch name {
	case "tensor":
		if len(args) != 1 || f.objects[args[0]].kind != fakeList {
			return f.raise("TypeError", "tensor() expects a list")
		}
		dtype := Float32
		if dt, ok := kw["dtype"]; ok {
			dtype = f.objects[dt].dtype
		}
		var values []float64
		for _, item := range f.objects[args[0]].items {
			v, ok := f.number(item)
			if !ok {
				return f.raise("TypeError", "tensor() expects numbers")
			}
			values = append(values, v)
		}
		return f.allocTensor(dtype, []int64{int64(len(values))}, values)
	case "zeros":
		shape := make([]int64, len(args))
		count := 1
		for i, arg := range args {
			shape[i] = f.objects[arg].i
			count *= int(shape[i])
		}
		return f.allocTensor(Float32, shape, make([]float64, count))
	}
	return f.raise("AttributeError", "module 'torch' has no attribute '%s'", name)
}

func (f *fakePython) callTensor(ptr api.PyObject, td *fakeTensorData, name string, args []api.PyObject, kw map[string]api.PyObject) api.PyObject {
	switch name {
	case "storage":
		if td.device != "" {
			return f.raise("RuntimeError", "storage is on device %s", td.device)
		}
		f.incref(ptr)
		return f.alloc(&fakeObject{kind: fakeStorage, self: ptr})
	case "size":
		items := make([]api.PyObject, len(td.shape))
		for i, dim := range td.shape {
			items[i] = f.newInt(dim)
		}
		return f.alloc(&fakeObject{kind: fakeTuple, items: items})
	case "item":
		if td.count() != 1 {
			return f.raise("RuntimeError", "a Tensor with %d elements cannot be converted to Scalar", td.count())
		}
		if td.dtype == Float32 || td.dtype == Float64 {
			return f.alloc(&fakeObject{kind: fakeFloat, f: td.get(0)})
		}
		return f.newInt(int64(td.get(0)))
	case "t":
		if len(td.shape) > 2 {
			return f.raise("RuntimeError", "t() expects a tensor with <= 2 dimensions")
		}
		shape := slices.Clone(td.shape)
		slices.Reverse(shape)
		// Element access on the view stays in storage order.
		return f.allocView(td, shape, td.offset, td.n)
	case "reshape":
		if len(args) != 1 || f.objects[args[0]].kind != fakeTuple {
			return f.raise("TypeError", "reshape() expects a tuple")
		}
		var shape []int64
		count, inferred := 1, -1
		for i, item := range f.objects[args[0]].items {
			dim := f.objects[item].i
			shape = append(shape, dim)
			if dim == -1 && inferred < 0 {
				inferred = i
				continue
			}
			count *= int(dim)
		}
		if inferred >= 0 && count > 0 && td.count()%count == 0 {
			shape[inferred] = int64(td.count() / count)
			count = td.count()
		}
		if count != td.count() {
			return f.raise("RuntimeError", "shape is invalid for input of size %d", td.count())
		}
		return f.allocTensor(td.dtype, shape, td.values())
	case "clamp":
		values := td.values()
		for i, v := range values {
			if lo, ok := kw["min"]; ok {
				if bound, _ := f.number(lo); v < bound {
					v = bound
				}
			}
			if hi, ok := kw["max"]; ok {
				if bound, _ := f.number(hi); v > bound {
					v = bound
				}
			}
			values[i] = v
		}
		if out, ok := kw["out"]; ok {
			outData := f.objects[out].tensor
			for i, v := range values {
				outData.set(i, v)
			}
			f.incref(out)
			return out
		}
		return f.allocTensor(td.dtype, td.shape, values)
	}
	return f.raise("AttributeError", "'Tensor' object has no attribute '%s'", name)
}

func (f *fakePython) number(ptr api.PyObject) (float64, bool) {
	o := f.objects[ptr]
	switch o.kind {
	case fakeInt, fakeBool:
		return float64(o.i), true
	case fakeFloat:
		return o.f, true
	}
	return 0, false
}

func (f *fakePython) truth(ptr api.PyObject) bool {
	o := f.objects[ptr]
	switch o.kind {
	case fakeNone:
		return false
	case fakeInt, fakeBool:
		return o.i != 0
	case fakeFloat:
		return o.f != 0
	case fakeStr:
		return o.s != ""
	}
	return true
}

func (f *fakePython) Str(ptr api.PyObject) api.PyObject {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkGIL()

	o := f.objects[ptr]
	switch o.kind {
	case fakeNone:
		return f.newStr("None")
	case fakeBool:
		if o.i != 0 {
			return f.newStr("True")
		}
		return f.newStr("False")
	case fakeInt:
		return f.newStr(fmt.Sprint(o.i))
	case fakeFloat:
		return f.newStr(fmt.Sprint(o.f))
	case fakeStr, fakeExcType:
		return f.newStr(o.s)
	case fakeDType:
		return f.newStr(o.dtype.String())
	case fakeDevice:
		if o.s != "" {
			return f.newStr(o.s + ":0")
		}
		return f.newStr("cpu")
	case fakeTensor:
		parts := make([]string, 0, o.tensor.count())
		for _, v := range o.tensor.values() {
			parts = append(parts, fmt.Sprint(v))
		}
		return f.newStr("tensor([" + strings.Join(parts, ", ") + "])")
	}
	return f.newStr(fmt.Sprintf("<object %d>", o.kind))
}

func (f *fakePython) IsTrue(ptr api.PyObject) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkGIL()
	return int32(boolInt(f.truth(ptr)))
}

// Containers

func (f *fakePython) TupleNew(size int) api.PyObject {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkGIL()
	return f.alloc(&fakeObject{kind: fakeTuple, items: make([]api.PyObject, size)})
}

func (f *fakePython) TupleSetItem(tuple api.PyObject, pos int, item api.PyObject) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkGIL()
	f.objects[tuple].items[pos] = item
	return 0
}

func (f *fakePython) ListNew(size int) api.PyObject {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkGIL()
	return f.alloc(&fakeObject{kind: fakeList, items: make([]api.PyObject, size)})
}

func (f *fakePython) ListSetItem(list api.PyObject, pos int, item api.PyObject) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkGIL()
	f.objects[list].items[pos] = item
	return 0
}

func (f *fakePython) DictNew() api.PyObject {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkGIL()
	return f.alloc(&fakeObject{kind: fakeDict, dict: make(map[string]api.PyObject)})
}

func (f *fakePython) DictSetItemString(dict api.PyObject, key *byte, value api.PyObject) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkGIL()
	d := f.objects[dict].dict
	k := cStringToString(key)
	f.incref(value)
	if old, ok := d[k]; ok {
		f.decref(old)
	}
	d[k] = value
	return 0
}

// Scalars

func (f *fakePython) LongFromLongLong(v int64) api.PyObject {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkGIL()
	return f.newInt(v)
}

func (f *fakePython) LongAsLongLong(ptr api.PyObject) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkGIL()
	o := f.objects[ptr]
	if o.kind != fakeInt && o.kind != fakeBool {
		f.raise("TypeError", "an integer is required")
		return -1
	}
	return o.i
}

func (f *fakePython) FloatFromDouble(v float64) api.PyObject {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkGIL()
	return f.alloc(&fakeObject{kind: fakeFloat, f: v})
}

func (f *fakePython) FloatAsDouble(ptr api.PyObject) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkGIL()
	v, ok := f.number(ptr)
	if !ok {
		f.raise("TypeError", "must be real number")
		return -1
	}
	return v
}

func (f *fakePython) BoolFromLong(v int64) api.PyObject {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkGIL()
	return f.alloc(&fakeObject{kind: fakeBool, i: boolInt(v != 0)})
}

func (f *fakePython) UnicodeFromString(s *byte) api.PyObject {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkGIL()
	return f.newStr(cStringToString(s))
}

func (f *fakePython) UnicodeAsUTF8(ptr api.PyObject) *byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkGIL()
	if f.surrogates {
		f.raise("UnicodeEncodeError", "surrogates not allowed")
		return nil
	}
	o := f.objects[ptr]
	o.cstr = append([]byte(o.s), 0)
	return &o.cstr[0]
}

// Exceptions

func (f *fakePython) ErrOccurred() api.PyObject {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkGIL()
	if f.pending == nil {
		return 0
	}
	return 1
}

func (f *fakePython) ErrFetch(ptype, pvalue, ptraceback *api.PyObject) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkGIL()
	if f.pending == nil {
		return
	}
	*ptype = f.alloc(&fakeObject{kind: fakeExcType, s: f.pending.Type})
	*pvalue = f.newStr(f.pending.Message)
	*ptraceback = 0
	f.pending = nil
}

func (f *fakePython) ErrNormalizeException(ptype, pvalue, ptraceback *api.PyObject) {}

func (f *fakePython) ErrClear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = nil
}

// Tensor element access

func (td *fakeTensorData) count() int {
	return td.n
}

func (td *fakeTensorData) values() []float64 {
	values := make([]float64, td.count())
	for i := range values {
		values[i] = td.get(i)
	}
	return values
}

func (td *fakeTensorData) get(i int) float64 {
	p := unsafe.Pointer(&td.data[(td.offset+i)*td.dtype.Size()])
	switch td.dtype {
	case Bool, Uint8:
		return float64(*(*uint8)(p))
	case Int8:
		return float64(*(*int8)(p))
	case Int16:
		return float64(*(*int16)(p))
	case Int32:
		return float64(*(*int32)(p))
	case Int64:
		return float64(*(*int64)(p))
	case Float32:
		return float64(*(*float32)(p))
	case Float64:
		return *(*float64)(p)
	}
	panic(fmt.Sprintf("fake tensor does not support %s", td.dtype))
}

func (td *fakeTensorData) set(i int, v float64) {
	p := unsafe.Pointer(&td.data[(td.offset+i)*td.dtype.Size()])
	switch td.dtype {
	case Bool:
		*(*uint8)(p) = uint8(boolInt(v != 0))
	case Uint8:
		*(*uint8)(p) = uint8(v)
	case Int8:
		*(*int8)(p) = int8(v)
	case Int16:
		*(*int16)(p) = int16(v)
	case Int32:
		*(*int32)(p) = int32(v)
	case Int64:
		*(*int64)(p) = int64(v)
	case Float32:
		*(*float32)(p) = float32(v)
	case Float64:
		*(*float64)(p) = v
	default:
		panic(fmt.Sprintf("fake tensor does not support %s", td.dtype))
	}
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
