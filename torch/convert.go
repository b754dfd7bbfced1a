package torch

import (
	"fmt"
	"math"

	"github.com/benedoc-inc/torchbridge/torch/internal/api"
)

// Tuple is converted to a Python tuple.
type Tuple []any

// Kwargs holds keyword arguments, converted to a Python dict.
type Kwargs map[string]any

// toPython converts a Go value to a new Python reference.
// Must be called with the GIL held.
func (r *Runtime) toPython(v any) (api.PyObject, error) {
	f := r.apiFuncs
	switch v := v.(type) {
	case nil:
		none := f.None()
		f.IncRef(none)
		return none, nil
	case *Object:
		if v == nil {
			return r.toPython(nil)
		}
		ptr, err := v.handle()
		if err != nil {
			return 0, err
		}
		f.IncRef(ptr)
		return ptr, nil
	case *Tensor:
		if v == nil {
			return r.toPython(nil)
		}
		return r.toPython(v.Object)
	case bool:
		var b int64
		if v {
			b = 1
		}
		return r.checkObject(f.BoolFromLong(b))
	case int:
		return r.checkObject(f.LongFromLongLong(int64(v)))
	case int8:
		return r.checkObject(f.LongFromLongLong(int64(v)))
	case int16:
		return r.checkObject(f.LongFromLongLong(int64(v)))
	case int32:
		return r.checkObject(f.LongFromLongLong(int64(v)))
	case int64:
		return r.checkObject(f.LongFromLongLong(v))
	case uint8:
		return r.checkObject(f.LongFromLongLong(int64(v)))
	case uint16:
		return r.checkObject(f.LongFromLongLong(int64(v)))
	case uint32:
		return r.checkObject(f.LongFromLongLong(int64(v)))
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, fmt.Errorf("integer %d overflows int64", v)
		}
		return r.checkObject(f.LongFromLongLong(int64(v)))
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("integer %d overflows int64", v)
		}
		return r.checkObject(f.LongFromLongLong(int64(v)))
	case float32:
		return r.checkObject(f.FloatFromDouble(float64(v)))
	case float64:
		return r.checkObject(f.FloatFromDouble(v))
	case string:
		return r.checkObject(f.UnicodeFromString(cString(v)))
	case Tuple:
		return r.newTuple(v)
	case Kwargs:
		return r.newDict(v)
	case []any:
		return r.newList(v)
	case []uint8:
		return newListOf(r, v)
	case []int16:
		return newListOf(r, v)
	case []int32:
		return newListOf(r, v)
	case []int64:
		return newListOf(r, v)
	case []float32:
		return newListOf(r, v)
	case []float64:
		return newListOf(r, v)
	default:
		return 0, fmt.Errorf("unsupported argument type %T", v)
	}
}

// newTuple builds a tuple from items. Must be called with the GIL held.
func (r *Runtime) newTuple(items []any) (api.PyObject, error) {
	tuple, err := r.checkObject(r.apiFuncs.TupleNew(len(items)))
	if err != nil {
		return 0, err
	}
	for i, item := range items {
		v, err := r.toPython(item)
		if err != nil {
			r.apiFuncs.DecRef(tuple)
			return 0, fmt.Errorf("tuple item %d: %w", i, err)
		}
		// PyTuple_SetItem steals the reference to v.
		if err := r.checkStatus(r.apiFuncs.TupleSetItem(tuple, i, v)); err != nil {
			r.apiFuncs.DecRef(tuple)
			return 0, err
		}
	}
	return tuple, nil
}

// newList builds a list from items. Must be called with the GIL held.
func (r *Runtime) newList(items []any) (api.PyObject, error) {
	list, err := r.checkObject(r.apiFuncs.ListNew(len(items)))
	if err != nil {
		return 0, err
	}
	for i, item := range items {
		v, err := r.toPython(item)
		if err != nil {
			r.apiFuncs.DecRef(list)
			return 0, fmt.Errorf("list item %d: %w", i, err)
		}
		// PyList_SetItem steals the reference to v.
		if err := r.checkStatus(r.apiFuncs.ListSetItem(list, i, v)); err != nil {
			r.apiFuncs.DecRef(list)
			return 0, err
		}
	}
	return list, nil
}

func newListOf[T Element](r *Runtime, items []T) (api.PyObject, error) {
	boxed := make([]any, len(items))
	for i, item := range items {
		boxed[i] = item
	}
	return r.newList(boxed)
}

// newDict builds a dict with string keys. Must be called with the GIL held.
func (r *Runtime) newDict(items Kwargs) (api.PyObject, error) {
	dict, err := r.checkObject(r.apiFuncs.DictNew())
	if err != nil {
		return 0, err
	}
	for key, item := range items {
		v, err := r.toPython(item)
		if err != nil {
			r.apiFuncs.DecRef(dict)
			return 0, fmt.Errorf("keyword %s: %w", key, err)
		}
		status := r.apiFuncs.DictSetItemString(dict, cString(key), v)
		r.apiFuncs.DecRef(v)
		if err := r.checkStatus(status); err != nil {
			r.apiFuncs.DecRef(dict)
			return 0, err
		}
	}
	return dict, nil
}
