package pipeline

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/couchcryptid/osm-map-etl/internal/domain"
	"github.com/couchcryptid/osm-map-etl/internal/observability"
)

// Cleaning rule names used as metric labels.
const (
	ruleStreet   = "street"
	rulePostcode = "postcode"
	ruleAmenity  = "amenity"
	ruleLandUse  = "landuse"
)

type cleaned struct {
	value string
	ok    bool
}

// CachedCleaner memoises a Cleaner with one bounded LRU per rule.
type CachedCleaner struct {
	inner   domain.Cleaner
	metrics *observability.Metrics

	street   *lru.Cache[string, string]
	postcode *lru.Cache[string, cleaned]
	amenity  *lru.Cache[string, string]
	landUse  *lru.Cache[string, cleaned]
}

// NewCachedCleaner wraps inner with per-rule caches of size entries each.
func NewCachedCleaner(inner domain.Cleaner, size int, metrics *observability.Metrics) (*CachedCleaner, error) {
	c := &CachedCleaner{inner: inner, metrics: metrics}
	var err error
	if c.street, err = lru.New[string, string](size); err != nil {
		return nil, fmt.Errorf("street cache: %w", err)
	}
	if c.postcode, err = lru.New[string, cleaned](size); err != nil {
		return nil, fmt.Errorf("postcode cache: %w", err)
	}
	if c.amenity, err = lru.New[string, string](size); err != nil {
		return nil, fmt.Errorf("amenity cache: %w", err)
	}
	if c.landUse, err = lru.New[string, cleaned](size); err != nil {
		return nil, fmt.Errorf("landuse cache: %w", err)
	}
	return c, nil
}

func (c *CachedCleaner) Street(v string) string {
	return lookup(c, c.street, ruleStreet, v, c.inner.Street)
}

func (c *CachedCleaner) Postcode(v string) (string, bool) {
	r := lookup(c, c.postcode, rulePostcode, v, func(v string) cleaned {
		out, ok := c.inner.Postcode(v)
		return cleaned{out, ok}
	})
	return r.value, r.ok
}

func (c *CachedCleaner) Amenity(v string) string {
	return lookup(c, c.amenity, ruleAmenity, v, c.inner.Amenity)
}

func (c *CachedCleaner) LandUse(v string) (string, bool) {
	r := lookup(c, c.landUse, ruleLandUse, v, func(v string) cleaned {
		out, ok := c.inner.LandUse(v)
		return cleaned{out, ok}
	})
	return r.value, r.ok
}

func lookup[V any](c *CachedCleaner, cache *lru.Cache[string, V], rule, key string, compute func(string) V) V {
	if v, ok := cache.Get(key); ok {
		c.metrics.CleanCache.WithLabelValues(rule, "hit").Inc()
		return v
	}
	c.metrics.CleanCache.WithLabelValues(rule, "miss").Inc()
	v := compute(key)
	cache.Add(key, v)
	return v
}
