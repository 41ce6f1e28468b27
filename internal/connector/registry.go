package connector

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps DSN schemes (postgres://, mysql://, redis://, ...) to
// connector prototypes. Lookups never hand out the prototype itself: every
// hit returns prototype.Clone(), so two sources sharing a scheme can never
// share driver state. The registry is built once at startup via
// RegisterDriver and is safe for concurrent lookup thereafter; the mutex
// guards only the registration phase and defensive copies, not a hot path.
type Registry struct {
	mu   sync.RWMutex
	byID map[string]Connector
}

// NewRegistry returns an empty Registry. Callers register one prototype per
// supported scheme before any source is connected.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]Connector)}
}

// RegisterDriver associates a scheme prefix (e.g. "postgres", "mysql",
// "redis") with an unconnected prototype connector. The same prototype may
// back several scheme aliases; lookups clone it per source either way.
func (r *Registry) RegisterDriver(scheme string, prototype Connector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[scheme] = prototype
}

// LookupByDSN clones the connector prototype registered for the DSN's
// scheme prefix, e.g. "postgres://..." or "rediss://...".
func (r *Registry) LookupByDSN(rawDSN string) (Connector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := strings.Index(rawDSN, "://")
	if idx < 0 {
		// Redact cannot locate a password without a scheme separator, so
		// the input is not echoed at all.
		return nil, fmt.Errorf("connector registry: malformed DSN (no scheme)")
	}
	scheme := rawDSN[:idx]

	if proto, ok := r.byID[scheme]; ok {
		return proto.Clone(), nil
	}
	return nil, fmt.Errorf("connector registry: unknown scheme %q; available: %v", scheme, r.availableSchemesLocked())
}

// LookupByType clones the connector prototype registered for a driver
// identifier (e.g. "postgres", "mariadb").
func (r *Registry) LookupByType(driverType string) (Connector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if proto, ok := r.byID[driverType]; ok {
		return proto.Clone(), nil
	}
	return nil, fmt.Errorf("connector registry: unknown driver type %q; available: %v", driverType, r.availableSchemesLocked())
}

func (r *Registry) availableSchemesLocked() []string {
	names := make([]string, 0, len(r.byID))
	for name := range r.byID {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
