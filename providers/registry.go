package providers

import (
	"errors"
	"sort"
	"sync"
)

var (
	// ErrDuplicateProvider is returned when a factory is registered twice for
	// the same key. Registration is fail-fast to catch misconfiguration early.
	ErrDuplicateProvider = errors.New("provider already registered")
)

// Factory constructs an adapter instance. Factories run lazily, on the first
// Resolve of their key, so a caller that never addresses a provider never
// pays its construction cost and never needs its credentials configured.
type Factory func() (Adapter, error)

// Registry maps provider keys to lazily-constructed adapter instances.
//
// Each key is constructed at most once: concurrent first resolves of the same
// key observe a single construction (and its single outcome), while resolves
// of different keys never block each other. A construction failure is cached
// and reported on every subsequent Resolve until an explicit Reset.
type Registry struct {
	mu        sync.Mutex
	factories map[string]Factory
	entries   map[string]*registryEntry
}

type registryEntry struct {
	once    sync.Once
	factory Factory
	adapter Adapter
	err     error
}

// NewRegistry creates an empty registry. Registries are explicitly owned:
// callers that want isolation construct separate registries.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		entries:   make(map[string]*registryEntry),
	}
}

// Register associates a provider key with an adapter factory. It fails with
// ErrDuplicateProvider if the key is already registered.
func (r *Registry) Register(providerKey string, factory Factory) error {
	if providerKey == "" {
		return errors.New("provider key cannot be empty")
	}
	if factory == nil {
		return errors.New("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[providerKey]; exists {
		return ErrDuplicateProvider
	}
	r.factories[providerKey] = factory
	return nil
}

// Resolve returns the cached adapter instance for the key, constructing it
// via the registered factory on first call. It fails with an
// ErrorKindUnknownProvider error when no factory is registered, and with an
// ErrorKindAdapterInit error (wrapping the cause) when construction fails.
// Construction failure is not retried on later calls; the key stays failed
// until Reset.
func (r *Registry) Resolve(providerKey string) (Adapter, error) {
	r.mu.Lock()
	e, ok := r.entries[providerKey]
	if !ok {
		factory, registered := r.factories[providerKey]
		if !registered {
			r.mu.Unlock()
			return nil, NewUnknownProviderError(providerKey)
		}
		e = &registryEntry{factory: factory}
		r.entries[providerKey] = e
	}
	r.mu.Unlock()

	// Construction runs outside the registry lock so resolving one key never
	// blocks resolves of other keys; the per-entry once serializes concurrent
	// first resolves of this key.
	e.once.Do(func() {
		adapter, err := e.factory()
		if err != nil {
			e.err = NewAdapterInitError(providerKey, err)
			return
		}
		e.adapter = adapter
	})

	if e.err != nil {
		return nil, e.err
	}
	return e.adapter, nil
}

// Reset evicts the cached instance (or cached construction failure) for the
// key, forcing reconstruction on the next Resolve. Used for credential
// rotation. Resetting a key with no cached instance is a no-op.
func (r *Registry) Reset(providerKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, providerKey)
}

// Registered reports whether a factory exists for the key
func (r *Registry) Registered(providerKey string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.factories[providerKey]
	return ok
}

// Keys returns the registered provider keys in sorted order
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]string, 0, len(r.factories))
	for key := range r.factories {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
