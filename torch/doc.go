// Package torch provides Go bindings for the PyTorch tensor API using purego.
//
// PyTorch runs inside an embedded CPython interpreter that is loaded at
// runtime from the shared libpython library, without requiring cgo. Tensor
// methods are forwarded to the interpreter as attribute accesses and method
// calls, and tensor storage can be copied into native Go slices with
// [GetData].
package torch
