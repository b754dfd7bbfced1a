package torch

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/benedoc-inc/torchbridge/torch/internal/api"
	"github.com/google/uuid"
)

// Runtime owns an embedded Python interpreter and the imported tensor module.
//
// A Runtime is safe for concurrent use: every call into the interpreter
// holds the GIL on a locked OS thread. Objects created from it are not.
type Runtime struct {
	apiFuncs api.APIFuncs
	module   *Object
	hooks    []Hook
	closed   atomic.Bool
}

// NewRuntime loads the Python shared library, initializes the interpreter
// if needed and imports the tensor module. A nil opts uses the defaults.
func NewRuntime(opts *RuntimeOptions) (*Runtime, error) {
	funcs, err := loadFuncs(opts.resolvedLibraryPath())
	if err != nil {
		return nil, err
	}
	return newRuntime(funcs, opts)
}

func newRuntime(funcs api.APIFuncs, opts *RuntimeOptions) (*Runtime, error) {
	r := &Runtime{
		apiFuncs: funcs,
		hooks:    opts.hooks(),
	}

	r.initInterpreter()

	module, err := r.Import(opts.moduleName())
	if err != nil {
		return nil, err
	}
	r.module = module
	return r, nil
}

// initInterpreter starts the interpreter when the host process has not done
// so already, then releases the GIL so that any thread can acquire it.
func (r *Runtime) initInterpreter() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if r.apiFuncs.IsInitialized() != 0 {
		return
	}
	r.apiFuncs.InitializeEx(gilInitSignals)
	r.apiFuncs.EvalSaveThread()
}

// Close releases the tensor module. It is safe to call Close multiple times.
//
// The interpreter itself is not finalized: CPython extension modules such as
// torch do not support re-initialization within one process.
func (r *Runtime) Close() {
	if r.closed.Swap(true) {
		return
	}
	if r.module != nil {
		r.module.Close()
	}
}

// Module returns the imported tensor module. It is owned by the Runtime and
// must not be closed by the caller.
func (r *Runtime) Module() *Object {
	return r.module
}

// Import imports a Python module by name.
func (r *Runtime) Import(name string) (*Object, error) {
	var obj *Object
	err := r.withGIL(func() error {
		ptr, err := r.checkObject(r.apiFuncs.ImportModule(cString(name)))
		if err != nil {
			return err
		}
		obj = r.newObject(ptr)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", name, err)
	}
	return obj, nil
}

// Invoke calls a function of the tensor module, e.g. Invoke("zeros", Tuple{2, 3}, nil).
func (r *Runtime) Invoke(function string, args []any, kwargs Kwargs) (*Object, error) {
	if r.closed.Load() {
		return nil, ErrRuntimeClosed
	}
	return r.module.Invoke(function, args, kwargs)
}

// withGIL runs fn holding the GIL on a locked OS thread.
func (r *Runtime) withGIL(fn func() error) error {
	if r.closed.Load() {
		return ErrRuntimeClosed
	}
	release := r.acquireGIL()
	defer release()
	return fn()
}

// acquireGIL locks the current goroutine to its OS thread and takes the GIL.
// GIL state is per thread, so the returned release func must run on the
// same goroutine.
func (r *Runtime) acquireGIL() func() {
	runtime.LockOSThread()
	state := r.apiFuncs.GILStateEnsure()
	return func() {
		r.apiFuncs.GILStateRelease(state)
		runtime.UnlockOSThread()
	}
}

// checkObject converts a null result into the pending Python exception.
// Must be called with the GIL held.
func (r *Runtime) checkObject(ptr api.PyObject) (api.PyObject, error) {
	if ptr != 0 {
		return ptr, nil
	}
	if err := r.fetchError(); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("bridge returned null object: %w", ErrInvalidHandle)
}

// checkStatus converts a negative status into the pending Python exception.
// Must be called with the GIL held.
func (r *Runtime) checkStatus(status int32) error {
	if status >= 0 {
		return nil
	}
	if err := r.fetchError(); err != nil {
		return err
	}
	return fmt.Errorf("bridge returned status %d", status)
}

// fetchError takes the pending Python exception, if any, and clears it.
// Must be called with the GIL held.
func (r *Runtime) fetchError() error {
	f := r.apiFuncs
	if f.ErrOccurred() == 0 {
		return nil
	}

	var ptype, pvalue, ptraceback api.PyObject
	f.ErrFetch(&ptype, &pvalue, &ptraceback)
	f.ErrNormalizeException(&ptype, &pvalue, &ptraceback)
	defer func() {
		for _, obj := range []api.PyObject{ptype, pvalue, ptraceback} {
			if obj != 0 {
				f.DecRef(obj)
			}
		}
	}()

	pyErr := &PythonError{Type: "Exception"}
	if ptype != 0 {
		if name := f.GetAttrString(ptype, cString("__name__")); name != 0 {
			if typ := r.str(name); typ != "" {
				pyErr.Type = typ
			}
			f.DecRef(name)
		} else {
			f.ErrClear()
		}
	}
	if pvalue != 0 {
		pyErr.Message = r.str(pvalue)
	}
	return pyErr
}

// str returns str(obj). Must be called with the GIL held.
func (r *Runtime) str(obj api.PyObject) string {
	s := r.apiFuncs.Str(obj)
	if s == 0 {
		r.apiFuncs.ErrClear()
		return ""
	}
	defer r.apiFuncs.DecRef(s)
	utf8 := r.apiFuncs.UnicodeAsUTF8(s)
	if utf8 == nil {
		r.apiFuncs.ErrClear()
		return ""
	}
	return cStringToString(utf8)
}

func (r *Runtime) beforeInvoke(method string) *InvokeInfo {
	info := &InvokeInfo{ID: uuid.New(), Method: method}
	for _, h := range r.hooks {
		h.BeforeInvoke(info)
	}
	return info
}

func (r *Runtime) afterInvoke(info *InvokeInfo, start time.Time, err error) {
	info.Duration = time.Since(start)
	info.Error = err
	for _, h := range r.hooks {
		h.AfterInvoke(info)
	}
}
