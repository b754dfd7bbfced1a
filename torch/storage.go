package torch

import "fmt"

// Storage is the contiguous buffer backing a tensor's elements, as returned
// by Tensor.storage(). It implements Buffer.
type Storage struct {
	*Object
}

// Len returns the number of elements in the storage.
func (s *Storage) Len() (int, error) {
	n, err := s.intMethod("size")
	return int(n), err
}

// Addr returns the address of the first element. The address is only valid
// while the owning tensor is alive.
func (s *Storage) Addr() (uintptr, error) {
	ptr, err := s.intMethod("data_ptr")
	if err != nil {
		return 0, err
	}
	return uintptr(ptr), nil
}

func (s *Storage) intMethod(method string) (int64, error) {
	obj, err := s.Invoke(method, nil, nil)
	if err != nil {
		return 0, err
	}
	defer obj.Close()

	v, err := obj.Int()
	if err != nil {
		return 0, fmt.Errorf("failed to read storage %s: %w", method, err)
	}
	return v, nil
}
