package parallel

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// ErrLengthMismatch is returned when out cannot hold every result.
var ErrLengthMismatch = errors.New("parallel: output shorter than input")

// Option configures Transform.
type Option func(*Options)

// Options holds Transform parameters.
type Options struct {
	Workers  int
	MinChunk int
}

// DefaultOptions uses one worker per CPU.
func DefaultOptions() Options {
	return Options{Workers: runtime.NumCPU(), MinChunk: 4096}
}

// WithWorkers sets the worker count; values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.Workers = n
		}
	}
}

// WithMinChunk sets the smallest chunk handed to a goroutine.
func WithMinChunk(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MinChunk = n
		}
	}
}

// Transform sets out[i] = fn(in[i]) for every i.
func Transform[In, Out any](in []In, out []Out, fn func(In) Out, opts ...Option) error {
	if len(out) < len(in) {
		return fmt.Errorf("%w: %d < %d", ErrLengthMismatch, len(out), len(in))
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	n := len(in)
	workers := min(o.Workers, (n+o.MinChunk-1)/o.MinChunk)
	if workers <= 1 {
		apply(in, out, fn)
		return nil
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		wg.Add(1)
		go func() {
			defer wg.Done()
			apply(in[lo:hi], out[lo:hi], fn)
		}()
	}
	wg.Wait()

	return nil
}

func apply[In, Out any](in []In, out []Out, fn func(In) Out) {
	for i, v := range in {
		out[i] = fn(v)
	}
}
