package bitio

import "golang.org/x/exp/constraints"

// Ptr is a helper function to create a pointer to a value, making test
// setup and Option-typed struct literals cleaner.
func Ptr[T any](v T) *T { return &v }

// Roundup rounds n up to the nearest multiple of align.
func Roundup[T constraints.Integer](n, align T) T { return (n + (align - 1)) &^ (align - 1) }
