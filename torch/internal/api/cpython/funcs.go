package cpython

import (
	"fmt"

	"github.com/benedoc-inc/torchbridge/torch/internal/api"
	"github.com/ebitengine/purego"
)

// Funcs contains cached function pointers to CPython C API functions.
type Funcs struct {
	// Interpreter lifecycle
	initializeEx      func(int32)
	isInitialized     func() int32
	evalSaveThread    func() api.PyThreadState
	evalRestoreThread func(api.PyThreadState)

	// GIL
	gilStateEnsure  func() api.PyGILState
	gilStateRelease func(api.PyGILState)

	// Reference counting
	incRef func(api.PyObject)
	decRef func(api.PyObject)
	none   api.PyObject

	// Modules
	importModule func(*byte) api.PyObject

	// Object protocol
	getAttrString func(api.PyObject, *byte) api.PyObject
	setAttrString func(api.PyObject, *byte, api.PyObject) int32
	getItem       func(api.PyObject, api.PyObject) api.PyObject
	setItem       func(api.PyObject, api.PyObject, api.PyObject) int32
	call          func(api.PyObject, api.PyObject, api.PyObject) api.PyObject
	str           func(api.PyObject) api.PyObject
	isTrue        func(api.PyObject) int32

	// Containers
	tupleNew          func(int) api.PyObject
	tupleSetItem      func(api.PyObject, int, api.PyObject) int32
	listNew           func(int) api.PyObject
	listSetItem       func(api.PyObject, int, api.PyObject) int32
	dictNew           func() api.PyObject
	dictSetItemString func(api.PyObject, *byte, api.PyObject) int32

	// Scalars
	longFromLongLong  func(int64) api.PyObject
	longAsLongLong    func(api.PyObject) int64
	floatFromDouble   func(float64) api.PyObject
	floatAsDouble     func(api.PyObject) float64
	boolFromLong      func(int64) api.PyObject
	unicodeFromString func(*byte) api.PyObject
	unicodeAsUTF8     func(api.PyObject) *byte

	// Exceptions
	errOccurred           func() api.PyObject
	errFetch              func(*api.PyObject, *api.PyObject, *api.PyObject)
	errNormalizeException func(*api.PyObject, *api.PyObject, *api.PyObject)
	errClear              func()
}

// InitializeFuncs resolves the CPython API symbols from the library handle.
// This is called once during initialization to avoid repeated RegisterLibFunc calls.
func InitializeFuncs(libraryHandle uintptr) (*Funcs, error) {
	noneAddr, err := purego.Dlsym(libraryHandle, "_Py_NoneStruct")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve _Py_NoneStruct: %w", err)
	}

	funcs := &Funcs{none: api.PyObject(noneAddr)}

	purego.RegisterLibFunc(&funcs.initializeEx, libraryHandle, "Py_InitializeEx")
	purego.RegisterLibFunc(&funcs.isInitialized, libraryHandle, "Py_IsInitialized")
	purego.RegisterLibFunc(&funcs.evalSaveThread, libraryHandle, "PyEval_SaveThread")
	purego.RegisterLibFunc(&funcs.evalRestoreThread, libraryHandle, "PyEval_RestoreThread")

	purego.RegisterLibFunc(&funcs.gilStateEnsure, libraryHandle, "PyGILState_Ensure")
	purego.RegisterLibFunc(&funcs.gilStateRelease, libraryHandle, "PyGILState_Release")

	purego.RegisterLibFunc(&funcs.incRef, libraryHandle, "Py_IncRef")
	purego.RegisterLibFunc(&funcs.decRef, libraryHandle, "Py_DecRef")

	purego.RegisterLibFunc(&funcs.importModule, libraryHandle, "PyImport_ImportModule")

	purego.RegisterLibFunc(&funcs.getAttrString, libraryHandle, "PyObject_GetAttrString")
	purego.RegisterLibFunc(&funcs.setAttrString, libraryHandle, "PyObject_SetAttrString")
	purego.RegisterLibFunc(&funcs.getItem, libraryHandle, "PyObject_GetItem")
	purego.RegisterLibFunc(&funcs.setItem, libraryHandle, "PyObject_SetItem")
	purego.RegisterLibFunc(&funcs.call, libraryHandle, "PyObject_Call")
	purego.RegisterLibFunc(&funcs.str, libraryHandle, "PyObject_Str")
	purego.RegisterLibFunc(&funcs.isTrue, libraryHandle, "PyObject_IsTrue")

	purego.RegisterLibFunc(&funcs.tupleNew, libraryHandle, "PyTuple_New")
	purego.RegisterLibFunc(&funcs.tupleSetItem, libraryHandle, "PyTuple_SetItem")
	purego.RegisterLibFunc(&funcs.listNew, libraryHandle, "PyList_New")
	purego.RegisterLibFunc(&funcs.listSetItem, libraryHandle, "PyList_SetItem")
	purego.RegisterLibFunc(&funcs.dictNew, libraryHandle, "PyDict_New")
	purego.RegisterLibFunc(&funcs.dictSetItemString, libraryHandle, "PyDict_SetItemString")

	purego.RegisterLibFunc(&funcs.longFromLongLong, libraryHandle, "PyLong_FromLongLong")
	purego.RegisterLibFunc(&funcs.longAsLongLong, libraryHandle, "PyLong_AsLongLong")
	purego.RegisterLibFunc(&funcs.floatFromDouble, libraryHandle, "PyFloat_FromDouble")
	purego.RegisterLibFunc(&funcs.floatAsDouble, libraryHandle, "PyFloat_AsDouble")
	purego.RegisterLibFunc(&funcs.boolFromLong, libraryHandle, "PyBool_FromLong")
	purego.RegisterLibFunc(&funcs.unicodeFromString, libraryHandle, "PyUnicode_FromString")
	purego.RegisterLibFunc(&funcs.unicodeAsUTF8, libraryHandle, "PyUnicode_AsUTF8")

	purego.RegisterLibFunc(&funcs.errOccurred, libraryHandle, "PyErr_Occurred")
	purego.RegisterLibFunc(&funcs.errFetch, libraryHandle, "PyErr_Fetch")
	purego.RegisterLibFunc(&funcs.errNormalizeException, libraryHandle, "PyErr_NormalizeException")
	purego.RegisterLibFunc(&funcs.errClear, libraryHandle, "PyErr_Clear")

	return funcs, nil
}

// Interpreter lifecycle methods

func (f *Funcs) InitializeEx(initSigs int32) {
	f.initializeEx(initSigs)
}

func (f *Funcs) IsInitialized() int32 {
	return f.isInitialized()
}

func (f *Funcs) EvalSaveThread() api.PyThreadState {
	return f.evalSaveThread()
}

func (f *Funcs) EvalRestoreThread(state api.PyThreadState) {
	f.evalRestoreThread(state)
}

// GIL methods

func (f *Funcs) GILStateEnsure() api.PyGILState {
	return f.gilStateEnsure()
}

func (f *Funcs) GILStateRelease(state api.PyGILState) {
	f.gilStateRelease(state)
}

// Reference counting methods

func (f *Funcs) IncRef(obj api.PyObject) {
	f.incRef(obj)
}

func (f *Funcs) DecRef(obj api.PyObject) {
	f.decRef(obj)
}

// None returns the address of the None singleton. The reference is borrowed.
func (f *Funcs) None() api.PyObject {
	return f.none
}

// Module methods

func (f *Funcs) ImportModule(name *byte) api.PyObject {
	return f.importModule(name)
}

// Object protocol methods

func (f *Funcs) GetAttrString(obj api.PyObject, name *byte) api.PyObject {
	return f.getAttrString(obj, name)
}

func (f *Funcs) SetAttrString(obj api.PyObject, name *byte, value api.PyObject) int32 {
	return f.setAttrString(obj, name, value)
}

func (f *Funcs) GetItem(obj, key api.PyObject) api.PyObject {
	return f.getItem(obj, key)
}

func (f *Funcs) SetItem(obj, key, value api.PyObject) int32 {
	return f.setItem(obj, key, value)
}

func (f *Funcs) Call(callable, args, kwargs api.PyObject) api.PyObject {
	return f.call(callable, args, kwargs)
}

func (f *Funcs) Str(obj api.PyObject) api.PyObject {
	return f.str(obj)
}

func (f *Funcs) IsTrue(obj api.PyObject) int32 {
	return f.isTrue(obj)
}

// Container methods

func (f *Funcs) TupleNew(size int) api.PyObject {
	return f.tupleNew(size)
}

func (f *Funcs) TupleSetItem(tuple api.PyObject, pos int, item api.PyObject) int32 {
	return f.tupleSetItem(tuple, pos, item)
}

func (f *Funcs) ListNew(size int) api.PyObject {
	return f.listNew(size)
}

func (f *Funcs) ListSetItem(list api.PyObject, pos int, item api.PyObject) int32 {
	return f.listSetItem(list, pos, item)
}

func (f *Funcs) DictNew() api.PyObject {
	return f.dictNew()
}

func (f *Funcs) DictSetItemString(dict api.PyObject, key *byte, value api.PyObject) int32 {
	return f.dictSetItemString(dict, key, value)
}

// Scalar methods

func (f *Funcs) LongFromLongLong(v int64) api.PyObject {
	return f.longFromLongLong(v)
}

func (f *Funcs) LongAsLongLong(obj api.PyObject) int64 {
	return f.longAsLongLong(obj)
}

func (f *Funcs) FloatFromDouble(v float64) api.PyObject {
	return f.floatFromDouble(v)
}

func (f *Funcs) FloatAsDouble(obj api.PyObject) float64 {
	return f.floatAsDouble(obj)
}

func (f *Funcs) BoolFromLong(v int64) api.PyObject {
	return f.boolFromLong(v)
}

func (f *Funcs) UnicodeFromString(s *byte) api.PyObject {
	return f.unicodeFromString(s)
}

func (f *Funcs) UnicodeAsUTF8(obj api.PyObject) *byte {
	return f.unicodeAsUTF8(obj)
}

// Exception methods

func (f *Funcs) ErrOccurred() api.PyObject {
	return f.errOccurred()
}

func (f *Funcs) ErrFetch(ptype, pvalue, ptraceback *api.PyObject) {
	f.errFetch(ptype, pvalue, ptraceback)
}

func (f *Funcs) ErrNormalizeException(ptype, pvalue, ptraceback *api.PyObject) {
	f.errNormalizeException(ptype, pvalue, ptraceback)
}

func (f *Funcs) ErrClear() {
	f.errClear()
}
