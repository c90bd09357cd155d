// Package observable provides a small reactive cell: a value container that
// notifies registered observers synchronously on every change. It performs no
// I/O; persistence and networking live in the packages that use it.
package observable

import "sync"

// Observable is the read side of a value container.
type Observable[T any] interface {
	// Get returns the current value.
	Get() T
	// Observe registers cb and synchronously replays the current value to it
	// before returning. The returned func cancels the registration.
	Observe(cb func(T)) (cancel func())
}

// Value is a mutable observable cell.
//
// Delivery contract: observers are invoked in registration order for every
// change. A Set or Update issued from inside an observer callback is queued
// and delivered after the in-flight notification round completes, so rounds
// never interleave and no observer sees values out of order.
type Value[T any] struct {
	mu        sync.Mutex
	value     T
	observers []*registration[T]
	nextID    uint64

	pending   []T
	notifying bool
}

type registration[T any] struct {
	id uint64
	cb func(T)
}

// New returns a Value holding initial.
func New[T any](initial T) *Value[T] {
	return &Value[T]{value: initial}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value
}

// Set replaces the value and notifies all observers in registration order.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	v.value = val
	v.pending = append(v.pending, val)
	v.drainLocked()
}

// Update applies f to the current value and stores the result. The
// read-modify-write is atomic with respect to other callers.
func (v *Value[T]) Update(f func(T) T) {
	v.mu.Lock()
	v.value = f(v.value)
	v.pending = append(v.pending, v.value)
	v.drainLocked()
}

// drainLocked delivers pending notifications. Called with v.mu held; returns
// with it released. If another goroutine (or an observer) is already
// draining, the value stays queued for that drainer.
func (v *Value[T]) drainLocked() {
	if v.notifying {
		v.mu.Unlock()
		return
	}
	v.notifying = true
	for len(v.pending) > 0 {
		val := v.pending[0]
		v.pending = v.pending[1:]
		obs := make([]*registration[T], len(v.observers))
		copy(obs, v.observers)
		v.mu.Unlock()
		for _, r := range obs {
			r.cb(val)
		}
		v.mu.Lock()
	}
	v.notifying = false
	v.mu.Unlock()
}

// Observe registers cb, replays the current value to it synchronously, and
// returns a cancel func. Replay happens even while a notification round for
// an earlier change is still running.
func (v *Value[T]) Observe(cb func(T)) (cancel func()) {
	v.mu.Lock()
	v.nextID++
	reg := &registration[T]{id: v.nextID, cb: cb}
	v.observers = append(v.observers, reg)
	current := v.value
	v.mu.Unlock()

	cb(current)

	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		for i, r := range v.observers {
			if r.id == reg.id {
				v.observers = append(v.observers[:i], v.observers[i+1:]...)
				return
			}
		}
	}
}

// Peek is an alias for Get, named for call sites that want to document a
// one-shot read where a subscription would otherwise be expected.
func (v *Value[T]) Peek() T { return v.Get() }

// derived is a read-only projection of a base observable.
type derived[T, U any] struct {
	inner *Value[U]
}

func (d *derived[T, U]) Get() U                             { return d.inner.Get() }
func (d *derived[T, U]) Observe(cb func(U)) (cancel func()) { return d.inner.Observe(cb) }

// Derive returns a read-only observable computing f over base. It re-notifies
// its own observers whenever base notifies. The projection exposes no Set.
func Derive[T, U any](base Observable[T], f func(T) U) Observable[U] {
	d := &derived[T, U]{}
	var seeded bool
	base.Observe(func(v T) {
		if !seeded {
			// First call is the synchronous replay during registration.
			seeded = true
			d.inner = New(f(v))
			return
		}
		d.inner.Set(f(v))
	})
	return d
}
