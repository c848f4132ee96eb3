// Package texture acquires the images materials sample: pluggable loaders, a
// future that tracks the load, and a CPU sampler over the decoded pixels.
package texture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
)

// ErrNotSettled is returned by Result while the future is pending.
var ErrNotSettled = errors.New("texture load has not settled")

// State is the lifecycle of a texture load.
type State int

const (
	Pending State = iota
	Resolved
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Future is the result of an asynchronous image load. It moves from Pending
// to exactly one of Resolved or Failed, once.
type Future struct {
	mu    sync.Mutex
	state State
	img   *image.RGBA
	err   error
	done  chan struct{}
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Load starts loader on its own goroutine and returns its future. The load
// stops early only if ctx is cancelled and the loader honours it.
func Load(ctx context.Context, loader Loader) *Future {
	f := newFuture()
	go func() {
		img, err := loader.Load(ctx)
		if err != nil {
			f.fail(err)
			return
		}
		f.resolve(img)
	}()
	return f
}

// ResolvedFuture returns a future already holding img.
func ResolvedFuture(img image.Image) *Future {
	f := newFuture()
	f.resolve(img)
	return f
}

// FailedFuture returns a future already holding err.
func FailedFuture(err error) *Future {
	f := newFuture()
	f.fail(err)
	return f
}

func (f *Future) resolve(img image.Image) {
	if img == nil {
		f.fail(errors.New("loader returned no image"))
		return
	}
	f.settle(Resolved, ToRGBA(img), nil)
}

func (f *Future) fail(err error) {
	f.settle(Failed, nil, err)
}

func (f *Future) settle(state State, img *image.RGBA, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != Pending {
		return
	}
	f.state, f.img, f.err = state, img, err
	close(f.done)
}

// State reports the current state without blocking.
func (f *Future) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Result returns the image or the load error. It returns ErrNotSettled while
// pending.
func (f *Future) Result() (*image.RGBA, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.state {
	case Resolved:
		return f.img, nil
	case Failed:
		return nil, f.err
	default:
		return nil, ErrNotSettled
	}
}

// Done is closed when the future settles.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future settles or ctx is done.
func (f *Future) Wait(ctx context.Context) (*image.RGBA, error) {
	select {
	case <-f.done:
		return f.Result()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
