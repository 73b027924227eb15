// Package resource provides the keyed resource cache shared by meshes, materials,
// textures and shaders. A key maps to exactly one resource instance. CPU-side
// construction happens on insert; GPU-side initialization is deferred until the
// resource is first requested through Resource or ResourceByKey, and then happens
// at most once.
package resource

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-gl/engine/gfx"
	"go.uber.org/zap"
)

// ErrInvalidKey is returned when a resource is inserted under an empty key.
var ErrInvalidKey = errors.New("resource: invalid key")

// ID identifies a resource within its cache. IDs are handed out from a monotonic
// counter starting at 1 and are never reused.
type ID uint64

// State is the lifecycle state of a cached resource.
type State int32

const (
	// StateRegistered means the CPU-side value exists but no GPU objects were created.
	StateRegistered State = iota
	// StateInitializing is held while Initialize runs.
	StateInitializing
	// StateInitialized means GPU objects exist and the resource can be bound.
	StateInitialized
	// StateFailed means Initialize returned an error. The resource is never retried.
	StateFailed
)

// String returns the state name used in log fields.
func (s State) String() string {
	switch s {
	case StateRegistered:
		return "registered"
	case StateInitializing:
		return "initializing"
	case StateInitialized:
		return "initialized"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Resource is a value with a lazily created GPU side.
type Resource interface {
	// Initialize creates the GPU objects for the resource. Called at most once,
	// from the thread that owns the graphics context.
	//
	// Parameters:
	//   - dev: the graphics device
	//
	// Returns:
	//   - error: an error if GPU creation failed
	Initialize(dev gfx.Device) error

	// Release deletes the GPU objects created by Initialize.
	//
	// Parameters:
	//   - dev: the graphics device
	Release(dev gfx.Device)
}

type entry[T Resource] struct {
	id    ID
	key   string
	value T
	state atomic.Int32
}

// Handle is a shared reference to a cached resource. The zero Handle is empty.
type Handle[T Resource] struct {
	e *entry[T]
}

// Valid reports whether the handle refers to a resource.
func (h Handle[T]) Valid() bool {
	return h.e != nil
}

// ID returns the resource id, or 0 for an empty handle.
func (h Handle[T]) ID() ID {
	if h.e == nil {
		return 0
	}
	return h.e.id
}

// Key returns the cache key, or "" for an empty handle.
func (h Handle[T]) Key() string {
	if h.e == nil {
		return ""
	}
	return h.e.key
}

// Get returns the resource value, or the zero T for an empty handle.
func (h Handle[T]) Get() T {
	if h.e == nil {
		var zero T
		return zero
	}
	return h.e.value
}

// State returns the lifecycle state. Empty handles report StateFailed.
func (h Handle[T]) State() State {
	if h.e == nil {
		return StateFailed
	}
	return State(h.e.state.Load())
}

// cache is the implementation of the Cache interface.
type cache[T Resource] struct {
	mu     sync.RWMutex
	device gfx.Device
	logger *zap.Logger
	name   string

	nextID ID
	byKey  map[string]*entry[T]
	byID   map[ID]*entry[T]
	order  []*entry[T]
}

// Cache deduplicates resources of one kind by key and initializes them lazily.
//
// Insertion is serialized by a mutex, so loaders may run on several goroutines.
// Resource and ResourceByKey run Initialize on the caller's goroutine and must only
// be called from the thread that owns the graphics context.
type Cache[T Resource] interface {
	// Load returns the resource stored under key, constructing and inserting it if absent.
	// construct runs at most once per key and only when the key is absent. GPU
	// initialization is deferred.
	//
	// Parameters:
	//   - key: the name or content key
	//   - construct: builds the CPU-side value
	//
	// Returns:
	//   - Handle[T]: the shared handle
	//   - error: ErrInvalidKey for an empty key, or the construct error (nothing is inserted)
	Load(key string, construct func() (T, error)) (Handle[T], error)

	// Insert stores an already constructed value under key. If key is present the
	// existing handle is returned and value is discarded.
	//
	// Parameters:
	//   - key: the name or content key
	//   - value: the CPU-side value
	//
	// Returns:
	//   - Handle[T]: the shared handle
	//   - bool: true if value was inserted, false if key already existed
	//   - error: ErrInvalidKey for an empty key
	Insert(key string, value T) (Handle[T], bool, error)

	// Lookup returns the handle stored under key without initializing it.
	//
	// Parameters:
	//   - key: the key to look up
	//
	// Returns:
	//   - Handle[T]: the handle, or an empty handle if absent
	Lookup(key string) Handle[T]

	// Resource returns the resource with the given id, initializing it on first use.
	// A miss logs a warning and returns an empty handle without touching the device.
	// A resource whose initialization failed also yields an empty handle.
	//
	// Parameters:
	//   - id: the resource id
	//
	// Returns:
	//   - Handle[T]: the initialized resource, or an empty handle
	Resource(id ID) Handle[T]

	// ResourceByKey is Resource addressed by key.
	//
	// Parameters:
	//   - key: the resource key
	//
	// Returns:
	//   - Handle[T]: the initialized resource, or an empty handle
	ResourceByKey(key string) Handle[T]

	// Len returns the number of cached resources.
	//
	// Returns:
	//   - int: the resource count
	Len() int

	// Release releases the GPU side of every initialized resource and empties the cache.
	Release()
}

var _ Cache[Resource] = &cache[Resource]{}

// NewCache creates an empty Cache bound to a device.
//
// Parameters:
//   - device: the graphics device passed to Initialize and Release
//   - options: functional options to configure the cache
//
// Returns:
//   - Cache[T]: the new cache
func NewCache[T Resource](device gfx.Device, options ...CacheBuilderOption) Cache[T] {
	cfg := cacheConfig{logger: zap.NewNop(), name: "resource"}
	for _, opt := range options {
		opt(&cfg)
	}
	return &cache[T]{
		device: device,
		logger: cfg.logger,
		name:   cfg.name,
		byKey:  make(map[string]*entry[T]),
		byID:   make(map[ID]*entry[T]),
	}
}

func (c *cache[T]) Load(key string, construct func() (T, error)) (Handle[T], error) {
	if key == "" {
		return Handle[T]{}, ErrInvalidKey
	}

	c.mu.RLock()
	e, ok := c.byKey[key]
	c.mu.RUnlock()
	if ok {
		return Handle[T]{e: e}, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// re-check: another loader may have inserted between the locks
	if e, ok := c.byKey[key]; ok {
		return Handle[T]{e: e}, nil
	}
	value, err := construct()
	if err != nil {
		return Handle[T]{}, fmt.Errorf("%s %q: %w", c.name, key, err)
	}
	return Handle[T]{e: c.insertLocked(key, value)}, nil
}

func (c *cache[T]) Insert(key string, value T) (Handle[T], bool, error) {
	if key == "" {
		return Handle[T]{}, false, ErrInvalidKey
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.byKey[key]; ok {
		return Handle[T]{e: e}, false, nil
	}
	return Handle[T]{e: c.insertLocked(key, value)}, true, nil
}

func (c *cache[T]) insertLocked(key string, value T) *entry[T] {
	c.nextID++
	e := &entry[T]{id: c.nextID, key: key, value: value}
	c.byKey[key] = e
	c.byID[e.id] = e
	c.order = append(c.order, e)
	return e
}

func (c *cache[T]) Lookup(key string) Handle[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Handle[T]{e: c.byKey[key]}
}

func (c *cache[T]) Resource(id ID) Handle[T] {
	c.mu.RLock()
	e, ok := c.byID[id]
	c.mu.RUnlock()
	if !ok {
		c.logger.Warn("resource not found", zap.String("cache", c.name), zap.Uint64("id", uint64(id)))
		return Handle[T]{}
	}
	return c.initialize(e)
}

func (c *cache[T]) ResourceByKey(key string) Handle[T] {
	c.mu.RLock()
	e, ok := c.byKey[key]
	c.mu.RUnlock()
	if !ok {
		c.logger.Warn("resource not found", zap.String("cache", c.name), zap.String("key", key))
		return Handle[T]{}
	}
	return c.initialize(e)
}

// initialize runs the Registered -> Initializing -> Initialized|Failed transition
// exactly once. Callers that lose the race, or arrive while Initialize is still
// running, get the entry's current outcome.
func (c *cache[T]) initialize(e *entry[T]) Handle[T] {
	if e.state.CompareAndSwap(int32(StateRegistered), int32(StateInitializing)) {
		if err := e.value.Initialize(c.device); err != nil {
			e.state.Store(int32(StateFailed))
			c.logger.Error("resource initialization failed",
				zap.String("cache", c.name),
				zap.String("key", e.key),
				zap.Uint64("id", uint64(e.id)),
				zap.Error(err),
			)
			return Handle[T]{}
		}
		e.state.Store(int32(StateInitialized))
		return Handle[T]{e: e}
	}

	switch State(e.state.Load()) {
	case StateInitialized:
		return Handle[T]{e: e}
	case StateInitializing:
		c.logger.Warn("resource requested during its own initialization",
			zap.String("cache", c.name), zap.String("key", e.key))
	}
	return Handle[T]{}
}

func (c *cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

func (c *cache[T]) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.order {
		if e.state.CompareAndSwap(int32(StateInitialized), int32(StateRegistered)) {
			e.value.Release(c.device)
		}
	}
	c.byKey = make(map[string]*entry[T])
	c.byID = make(map[ID]*entry[T])
	c.order = nil
}
