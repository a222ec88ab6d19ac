// Package reactive provides the signal/effect primitives the renderer uses
// to react to scene and configuration changes, adapted from the teacher's
// generic signals package, plus the live/dirty ref-counting the render
// loop uses to decide whether a tick needs to paint at all.
package reactive

import (
	"reflect"
	"sync"
)

// Getter is a type-erased interface for Signals and Computeds.
type Getter interface {
	GetValue() interface{}
}

type dependency interface {
	subscribe(s subscriber)
	unsubscribe(s subscriber)
}

type subscriber interface {
	onDependencyUpdated()
	addDependency(d dependency)
}

var (
	activeSubscriber subscriber
	activeMu         sync.Mutex

	batchDepth int
	batchQueue map[subscriber]struct{}
	batchMu    sync.Mutex
)

// Batch runs fn with update notifications deferred until the outermost
// Batch call returns, coalescing cascades of Signal.Set calls into a
// single notification pass.
func Batch(fn func()) {
	batchMu.Lock()
	batchDepth++
	batchMu.Unlock()

	defer func() {
		batchMu.Lock()
		batchDepth--
		if batchDepth == 0 && len(batchQueue) > 0 {
			queue := batchQueue
			batchQueue = nil
			batchMu.Unlock()
			for sub := range queue {
				sub.onDependencyUpdated()
			}
		} else {
			batchMu.Unlock()
		}
	}()

	fn()
}

// Signal is a reactive value: reading it inside an Effect or Computed
// records a dependency; Set notifies every dependent.
type Signal[T any] struct {
	value       T
	subscribers map[subscriber]struct{}
	mu          sync.RWMutex
}

// NewSignal creates a signal holding val.
func NewSignal[T any](val T) *Signal[T] {
	return &Signal[T]{value: val, subscribers: make(map[subscriber]struct{})}
}

func (s *Signal[T]) subscribe(sub subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers[sub] = struct{}{}
}

func (s *Signal[T]) unsubscribe(sub subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscribers, sub)
}

func (s *Signal[T]) GetValue() interface{} { return s.Get() }

// Get reads the value, recording a dependency if called inside a tracking
// context (an Effect body or a Computed's fn).
func (s *Signal[T]) Get() T {
	activeMu.Lock()
	current := activeSubscriber
	activeMu.Unlock()

	if current != nil {
		current.addDependency(s)
		s.subscribe(current)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Peek reads the value without recording a dependency.
func (s *Signal[T]) Peek() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set updates the value and notifies dependents, unless val deep-equals
// the current value.
func (s *Signal[T]) Set(val T) {
	s.mu.Lock()
	if reflect.DeepEqual(s.value, val) {
		s.mu.Unlock()
		return
	}
	s.value = val

	subs := make([]subscriber, 0, len(s.subscribers))
	for sub := range s.subscribers {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub.onDependencyUpdated()
	}
}

// Computed is a derived, memoized value recomputed on first read after any
// dependency changes.
type Computed[T any] struct {
	fn           func() T
	value        T
	dirty        bool
	dependencies map[dependency]struct{}
	subscribers  map[subscriber]struct{}
	mu           sync.Mutex
}

// NewComputed creates a computed value derived by fn.
func NewComputed[T any](fn func() T) *Computed[T] {
	return &Computed[T]{
		fn:           fn,
		dirty:        true,
		dependencies: make(map[dependency]struct{}),
		subscribers:  make(map[subscriber]struct{}),
	}
}

func (c *Computed[T]) subscribe(sub subscriber) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers[sub] = struct{}{}
}

func (c *Computed[T]) unsubscribe(sub subscriber) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subscribers, sub)
}

func (c *Computed[T]) addDependency(d dependency) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dependencies[d] = struct{}{}
}

func (c *Computed[T]) onDependencyUpdated() {
	c.mu.Lock()
	if c.dirty {
		c.mu.Unlock()
		return
	}
	c.dirty = true
	subs := make([]subscriber, 0, len(c.subscribers))
	for sub := range c.subscribers {
		subs = append(subs, sub)
	}
	c.mu.Unlock()

	for _, sub := range subs {
		sub.onDependencyUpdated()
	}
}

func (c *Computed[T]) GetValue() interface{} { return c.Get() }

// Get returns the memoized value, recomputing it first if any dependency
// has changed since the last read.
func (c *Computed[T]) Get() T {
	activeMu.Lock()
	current := activeSubscriber
	activeMu.Unlock()
	if current != nil {
		current.addDependency(c)
		c.subscribe(current)
	}

	c.mu.Lock()
	if c.dirty {
		for dep := range c.dependencies {
			dep.unsubscribe(c)
		}
		c.dependencies = make(map[dependency]struct{})

		activeMu.Lock()
		prev := activeSubscriber
		activeSubscriber = c
		activeMu.Unlock()

		c.mu.Unlock()
		val := c.fn()
		c.mu.Lock()

		c.value = val
		c.dirty = false

		activeMu.Lock()
		activeSubscriber = prev
		activeMu.Unlock()
	}
	defer c.mu.Unlock()
	return c.value
}

// Effect runs fn immediately and re-runs it whenever a Signal or Computed
// it read changes.
type Effect struct {
	fn           func()
	dependencies map[dependency]struct{}
	mu           sync.Mutex
	disposed     bool
}

// CreateEffect runs fn once, tracking its dependencies, and returns a
// handle that keeps re-running it until Dispose.
func CreateEffect(fn func()) *Effect {
	e := &Effect{fn: fn, dependencies: make(map[dependency]struct{})}
	e.Run()
	return e
}

func (e *Effect) addDependency(d dependency) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dependencies[d] = struct{}{}
}

func (e *Effect) onDependencyUpdated() {
	batchMu.Lock()
	if batchDepth > 0 {
		if batchQueue == nil {
			batchQueue = make(map[subscriber]struct{})
		}
		batchQueue[e] = struct{}{}
		batchMu.Unlock()
		return
	}
	batchMu.Unlock()
	e.Run()
}

// Run re-executes fn, replacing its tracked dependency set.
func (e *Effect) Run() {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	oldDeps := e.dependencies
	e.dependencies = make(map[dependency]struct{})
	e.mu.Unlock()

	for dep := range oldDeps {
		dep.unsubscribe(e)
	}

	activeMu.Lock()
	prev := activeSubscriber
	activeSubscriber = e
	activeMu.Unlock()

	e.fn()

	activeMu.Lock()
	activeSubscriber = prev
	activeMu.Unlock()
}

// Dispose stops fn from re-running and unsubscribes from every dependency.
func (e *Effect) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return
	}
	e.disposed = true
	for dep := range e.dependencies {
		dep.unsubscribe(e)
	}
	e.dependencies = nil
}
