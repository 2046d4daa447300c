package oui

import (
	"context"
	"log"
	"sync"

	"switchscope/internal/domain"
)

// VendorSource answers prefix → manufacturer queries. *Store implements it.
type VendorSource interface {
	Vendor(ctx context.Context, prefix string) (string, error)
}

// Resolver memoizes manufacturer lookups behind a size-bounded cache so the
// detected-device map builder does not hit the store once per device per
// cycle. Writes are idempotent (a prefix always maps to the same vendor), so
// concurrent lookups only need the map guarded, never coordinated.
type Resolver struct {
	source     VendorSource
	maxEntries int

	mu    sync.Mutex
	cache map[string]string
}

// NewResolver creates a memoizing resolver over source. maxEntries <= 0
// selects the default bound of 1000.
func NewResolver(source VendorSource, maxEntries int) *Resolver {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &Resolver{
		source:     source,
		maxEntries: maxEntries,
		cache:      make(map[string]string),
	}
}

// Lookup resolves the manufacturer for a MAC address. Unknown prefixes and
// store failures both come back as "": classification treats an absent vendor
// as a weaker signal, never as an error.
func (r *Resolver) Lookup(ctx context.Context, mac string) string {
	prefix := domain.OUIPrefix(domain.NormalizeMAC(mac))
	if prefix == "" {
		return ""
	}

	r.mu.Lock()
	vendor, ok := r.cache[prefix]
	r.mu.Unlock()
	if ok {
		return vendor
	}

	vendor, err := r.source.Vendor(ctx, prefix)
	if err != nil {
		log.Printf("OUI lookup failed for %s: %v", prefix, err)
		return ""
	}

	r.mu.Lock()
	// A prefix always maps to the same vendor, so dropping the whole cache at
	// the bound is safe and keeps the memory ceiling simple.
	if len(r.cache) >= r.maxEntries {
		r.cache = make(map[string]string)
	}
	r.cache[prefix] = vendor
	r.mu.Unlock()

	return vendor
}

// CacheSize reports the number of memoized prefixes.
func (r *Resolver) CacheSize() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache)
}
