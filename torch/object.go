package torch

import (
	"fmt"
	"runtime"
	"time"

	"github.com/benedoc-inc/torchbridge/torch/internal/api"
)

// Object is an owned reference to an object living in the Python interpreter.
//
// An Object is NOT safe for concurrent use. Do not share across goroutines
// without external synchronization.
//
// While a cleanup is registered as a safety net, you should always call Close
// explicitly (typically via defer) to release the reference promptly.
type Object struct {
	ref     *objectRef
	runtime *Runtime
}

// objectRef is kept separate from Object so the cleanup does not keep the
// Object reachable.
type objectRef struct {
	ptr api.PyObject
}

// newObject wraps a new (owned) reference.
func (r *Runtime) newObject(ptr api.PyObject) *Object {
	o := &Object{
		ref:     &objectRef{ptr: ptr},
		runtime: r,
	}
	runtime.AddCleanup(o, r.release, o.ref)
	return o
}

// borrowObject wraps a borrowed reference, taking ownership of a new one.
// Must be called with the GIL held.
func (r *Runtime) borrowObject(ptr api.PyObject) *Object {
	r.apiFuncs.IncRef(ptr)
	return r.newObject(ptr)
}

func (r *Runtime) release(ref *objectRef) {
	if ref.ptr == 0 || r.apiFuncs == nil {
		return
	}
	release := r.acquireGIL()
	defer release()
	r.apiFuncs.DecRef(ref.ptr)
	ref.ptr = 0
}

// handle returns the underlying pointer, or ErrInvalidHandle if the object
// has been closed.
func (o *Object) handle() (api.PyObject, error) {
	if o == nil || o.ref == nil || o.ref.ptr == 0 {
		return 0, ErrInvalidHandle
	}
	return o.ref.ptr, nil
}

// Close releases the reference. It is safe to call Close multiple times.
func (o *Object) Close() {
	if o == nil || o.ref == nil {
		return
	}
	o.runtime.release(o.ref)
}

// withGIL runs fn with the object's pointer while holding the GIL.
func (o *Object) withGIL(fn func(self api.PyObject) error) error {
	if o == nil || o.runtime == nil {
		return ErrInvalidHandle
	}
	return o.runtime.withGIL(func() error {
		self, err := o.handle()
		if err != nil {
			return err
		}
		return fn(self)
	})
}

// GetAttr returns the attribute name of the object.
func (o *Object) GetAttr(name string) (*Object, error) {
	var attr *Object
	err := o.withGIL(func(self api.PyObject) error {
		ptr, err := o.runtime.checkObject(o.runtime.apiFuncs.GetAttrString(self, cString(name)))
		if err != nil {
			return err
		}
		attr = o.runtime.newObject(ptr)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get attribute %s: %w", name, err)
	}
	return attr, nil
}

// SetAttr sets the attribute name of the object to value.
// See Invoke for the accepted value types.
func (o *Object) SetAttr(name string, value any) error {
	err := o.withGIL(func(self api.PyObject) error {
		v, err := o.runtime.toPython(value)
		if err != nil {
			return err
		}
		defer o.runtime.apiFuncs.DecRef(v)
		return o.runtime.checkStatus(o.runtime.apiFuncs.SetAttrString(self, cString(name), v))
	})
	if err != nil {
		return fmt.Errorf("failed to set attribute %s: %w", name, err)
	}
	return nil
}

// GetItem returns self[key].
func (o *Object) GetItem(key any) (*Object, error) {
	var item *Object
	err := o.withGIL(func(self api.PyObject) error {
		k, err := o.runtime.toPython(key)
		if err != nil {
			return err
		}
		defer o.runtime.apiFuncs.DecRef(k)
		ptr, err := o.runtime.checkObject(o.runtime.apiFuncs.GetItem(self, k))
		if err != nil {
			return err
		}
		item = o.runtime.newObject(ptr)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// SetItem performs self[key] = value.
func (o *Object) SetItem(key, value any) error {
	err := o.withGIL(func(self api.PyObject) error {
		k, err := o.runtime.toPython(key)
		if err != nil {
			return err
		}
		defer o.runtime.apiFuncs.DecRef(k)
		v, err := o.runtime.toPython(value)
		if err != nil {
			return err
		}
		defer o.runtime.apiFuncs.DecRef(v)
		return o.runtime.checkStatus(o.runtime.apiFuncs.SetItem(self, k, v))
	})
	if err != nil {
		return fmt.Errorf("failed to set item: %w", err)
	}
	return nil
}

// Invoke calls the method of the object with positional args and keyword
// arguments. kwargs may be nil.
//
// Arguments are converted to Python values: nil becomes None; bools,
// integers, floats and strings become the matching scalars; *Object and
// *Tensor pass their reference; Tuple becomes a tuple, Kwargs a dict, and
// []any or []T for T in Element a list.
func (o *Object) Invoke(method string, args []any, kwargs Kwargs) (*Object, error) {
	if o == nil || o.runtime == nil {
		return nil, fmt.Errorf("failed to invoke %s: %w", method, ErrInvalidHandle)
	}
	r := o.runtime
	info := r.beforeInvoke(method)
	start := time.Now()

	var result *Object
	err := o.withGIL(func(self api.PyObject) error {
		fn, err := r.checkObject(r.apiFuncs.GetAttrString(self, cString(method)))
		if err != nil {
			return err
		}
		defer r.apiFuncs.DecRef(fn)

		ptr, err := r.call(fn, args, kwargs)
		if err != nil {
			return err
		}
		result = r.newObject(ptr)
		return nil
	})

	r.afterInvoke(info, start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %w", method, err)
	}
	return result, nil
}

// call performs fn(*args, **kwargs). Must be called with the GIL held.
func (r *Runtime) call(fn api.PyObject, args []any, kwargs Kwargs) (api.PyObject, error) {
	argTuple, err := r.newTuple(args)
	if err != nil {
		return 0, err
	}
	defer r.apiFuncs.DecRef(argTuple)

	var kw api.PyObject
	if len(kwargs) > 0 {
		kw, err = r.newDict(kwargs)
		if err != nil {
			return 0, err
		}
		defer r.apiFuncs.DecRef(kw)
	}

	return r.checkObject(r.apiFuncs.Call(fn, argTuple, kw))
}

// IsNone reports whether the object is Python's None.
func (o *Object) IsNone() (bool, error) {
	var isNone bool
	err := o.withGIL(func(self api.PyObject) error {
		isNone = self == o.runtime.apiFuncs.None()
		return nil
	})
	return isNone, err
}

// Int returns the object converted to a Python int.
func (o *Object) Int() (int64, error) {
	var v int64
	err := o.withGIL(func(self api.PyObject) error {
		v = o.runtime.apiFuncs.LongAsLongLong(self)
		if v == -1 {
			return o.runtime.fetchError()
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to convert to int: %w", err)
	}
	return v, nil
}

// Float returns the object converted to a Python float.
func (o *Object) Float() (float64, error) {
	var v float64
	err := o.withGIL(func(self api.PyObject) error {
		v = o.runtime.apiFuncs.FloatAsDouble(self)
		if v == -1 {
			return o.runtime.fetchError()
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to convert to float: %w", err)
	}
	return v, nil
}

// Bool returns the truth value of the object.
func (o *Object) Bool() (bool, error) {
	var v bool
	err := o.withGIL(func(self api.PyObject) error {
		status := o.runtime.apiFuncs.IsTrue(self)
		if err := o.runtime.checkStatus(status); err != nil {
			return err
		}
		v = status == 1
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to convert to bool: %w", err)
	}
	return v, nil
}

// Str returns str(self).
func (o *Object) Str() (string, error) {
	var s string
	err := o.withGIL(func(self api.PyObject) error {
		ptr, err := o.runtime.checkObject(o.runtime.apiFuncs.Str(self))
		if err != nil {
			return err
		}
		defer o.runtime.apiFuncs.DecRef(ptr)
		utf8 := o.runtime.apiFuncs.UnicodeAsUTF8(ptr)
		if utf8 == nil {
			if err := o.runtime.fetchError(); err != nil {
				return err
			}
			return fmt.Errorf("string is not valid UTF-8")
		}
		s = cStringToString(utf8)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to convert to string: %w", err)
	}
	return s, nil
}

// String implements fmt.Stringer.
func (o *Object) String() string {
	s, err := o.Str()
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return s
}
