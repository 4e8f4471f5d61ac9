package metrics

import (
	"io"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
)

// FontCache remembers which families the backend knows and which ones failed
// to instantiate. The known set is filled once, on first use, and never
// refreshed; the unknown set only grows.
type FontCache struct {
	enum   Enumerator
	logger *log.Logger

	once  sync.Once
	mu    sync.RWMutex
	known map[string]struct{}
	// unknown 中的名字在缓存生命周期内不会再交给后端。
	unknown map[string]struct{}
}

// CacheOption configures a FontCache.
type CacheOption func(*FontCache)

// WithCacheLogger sets the logger used for enumeration diagnostics.
func WithCacheLogger(l *log.Logger) CacheOption {
	return func(c *FontCache) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewFontCache creates an empty cache backed by enum.
func NewFontCache(enum Enumerator, opts ...CacheOption) *FontCache {
	c := &FontCache{
		enum:    enum,
		logger:  log.New(io.Discard),
		unknown: map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *FontCache) load() {
	c.once.Do(func() {
		known := map[string]struct{}{}
		if c.enum != nil {
			names, err := c.enum.Families()
			if err != nil {
				c.logger.Warn("font enumeration failed", "err", err)
			}
			for _, name := range names {
				known[name] = struct{}{}
			}
		}
		c.logger.Debug("font families enumerated", "count", len(known))
		c.mu.Lock()
		c.known = known
		c.mu.Unlock()
	})
}

// IsKnown reports whether the backend listed name. Matching is case-sensitive.
func (c *FontCache) IsKnown(name string) bool {
	c.load()
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.known[name]
	return ok
}

// IsUnknown reports whether name was marked unmeasurable.
func (c *FontCache) IsUnknown(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.unknown[name]
	return ok
}

// MarkUnknown records name as unmeasurable. Repeated calls are no-ops.
func (c *FontCache) MarkUnknown(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.unknown[name]; ok {
		return
	}
	c.unknown[name] = struct{}{}
	c.logger.Debug("font marked unknown", "family", name)
}

// Families returns the known family names, sorted.
func (c *FontCache) Families() []string {
	c.load()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedKeys(c.known)
}

// Unknown returns the names marked unmeasurable so far, sorted.
func (c *FontCache) Unknown() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedKeys(c.unknown)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
