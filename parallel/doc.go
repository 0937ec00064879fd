// Package parallel applies a pure function to every element of a slice,
// splitting the range into contiguous disjoint chunks that run on separate
// goroutines and joining them before returning.
//
// Options:
//
//   - WithWorkers(n): number of chunks (default runtime.NumCPU()).
//   - WithMinChunk(n): smallest chunk worth a goroutine (default 4096).
//
// Errors:
//
//   - ErrLengthMismatch: the output is shorter than the input.
//
// fn must not touch shared mutable state; each index of out is written by
// exactly one goroutine.
package parallel
