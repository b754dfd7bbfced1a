package api

// PyObject is an opaque pointer to a CPython object.
type PyObject uintptr

// PyGILState is the token returned by PyGILState_Ensure.
type PyGILState int32

// PyThreadState is an opaque pointer to a CPython thread state.
type PyThreadState uintptr

// APIFuncs is an interface for the CPython C API functions used by the bridge.
type APIFuncs interface {
	// Interpreter lifecycle
	InitializeEx(initSigs int32)
	IsInitialized() int32
	EvalSaveThread() PyThreadState
	EvalRestoreThread(PyThreadState)

	// GIL
	GILStateEnsure() PyGILState
	GILStateRelease(PyGILState)

	// Reference counting
	IncRef(PyObject)
	DecRef(PyObject)
	None() PyObject

	// Modules
	ImportModule(*byte) PyObject

	// Object protocol
	GetAttrString(PyObject, *byte) PyObject
	SetAttrString(PyObject, *byte, PyObject) int32
	GetItem(PyObject, PyObject) PyObject
	SetItem(PyObject, PyObject, PyObject) int32
	Call(callable, args, kwargs PyObject) PyObject
	Str(PyObject) PyObject
	IsTrue(PyObject) int32

	// Containers
	TupleNew(int) PyObject
	TupleSetItem(PyObject, int, PyObject) int32
	ListNew(int) PyObject
	ListSetItem(PyObject, int, PyObject) int32
	DictNew() PyObject
	DictSetItemString(PyObject, *byte, PyObject) int32

	// Scalars
	LongFromLongLong(int64) PyObject
	LongAsLongLong(PyObject) int64
	FloatFromDouble(float64) PyObject
	FloatAsDouble(PyObject) float64
	BoolFromLong(int64) PyObject
	UnicodeFromString(*byte) PyObject
	UnicodeAsUTF8(PyObject) *byte

	// Exceptions
	ErrOccurred() PyObject
	ErrFetch(ptype, pvalue, ptraceback *PyObject)
	ErrNormalizeException(ptype, pvalue, ptraceback *PyObject)
	ErrClear()
}
