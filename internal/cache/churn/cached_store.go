package churn

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"sdkchurn/internal/gateway/entity"
	churnrepo "sdkchurn/internal/gateway/repository/churn"
)

type Store = churnrepo.Store

var cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "sdkchurn_cache_lookups_total",
	Help: "Churn store cache lookups by cache and result",
}, []string{"cache", "result"})

const sdkListKey = "sdks"

type CacheConfig struct {
	TTL        time.Duration
	MaxEntries int
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:        1 * time.Minute,
		MaxEntries: 256,
	}
}

type MetricsSnapshot struct {
	SDKHits     uint64
	SDKMisses   uint64
	ChurnHits   uint64
	ChurnMisses uint64
	AppsHits    uint64
	AppsMisses  uint64
	OriginReads uint64
	OriginErr   uint64
}

type Metrics struct {
	sdkHits     atomic.Uint64
	sdkMisses   atomic.Uint64
	churnHits   atomic.Uint64
	churnMisses atomic.Uint64
	appsHits    atomic.Uint64
	appsMisses  atomic.Uint64
	originReads atomic.Uint64
	originErr   atomic.Uint64
}

func (m *Metrics) snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		SDKHits:     m.sdkHits.Load(),
		SDKMisses:   m.sdkMisses.Load(),
		ChurnHits:   m.churnHits.Load(),
		ChurnMisses: m.churnMisses.Load(),
		AppsHits:    m.appsHits.Load(),
		AppsMisses:  m.appsMisses.Load(),
		OriginReads: m.originReads.Load(),
		OriginErr:   m.originErr.Load(),
	}
}

// CachedStore is a read-through cache over a churn Store. The dataset is
// read-only, so entries only leave by TTL or LRU eviction. Errors are never
// cached.
type CachedStore struct {
	origin Store

	sdkCache   *expirable.LRU[string, []entity.Sdk]
	churnCache *expirable.LRU[string, []entity.ChurnEdge]
	appsCache  *expirable.LRU[entity.Pair, []entity.App]
	metrics    Metrics
}

var _ Store = (*CachedStore)(nil)

func NewCachedStore(origin Store, cfg CacheConfig) *CachedStore {
	def := DefaultCacheConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = def.MaxEntries
	}
	return &CachedStore{
		origin:     origin,
		sdkCache:   expirable.NewLRU[string, []entity.Sdk](1, nil, cfg.TTL),
		churnCache: expirable.NewLRU[string, []entity.ChurnEdge](cfg.MaxEntries, nil, cfg.TTL),
		appsCache:  expirable.NewLRU[entity.Pair, []entity.App](cfg.MaxEntries, nil, cfg.TTL),
	}
}

func (s *CachedStore) ListSDKs(ctx context.Context) ([]entity.Sdk, error) {
	if cached, ok := s.sdkCache.Get(sdkListKey); ok {
		s.hit("sdks", &s.metrics.sdkHits)
		return slices.Clone(cached), nil
	}
	s.miss("sdks", &s.metrics.sdkMisses)

	s.metrics.originReads.Add(1)
	sdks, err := s.origin.ListSDKs(ctx)
	if err != nil {
		s.metrics.originErr.Add(1)
		return nil, err
	}
	s.sdkCache.Add(sdkListKey, slices.Clone(sdks))
	return sdks, nil
}

func (s *CachedStore) Aggregate(ctx context.Context, ids []entity.SdkID) ([]entity.ChurnEdge, error) {
	if len(ids) == 0 {
		return nil, churnrepo.ErrNoSDKs
	}
	key := churnKey(ids)
	if cached, ok := s.churnCache.Get(key); ok {
		s.hit("churn", &s.metrics.churnHits)
		return slices.Clone(cached), nil
	}
	s.miss("churn", &s.metrics.churnMisses)

	s.metrics.originReads.Add(1)
	edges, err := s.origin.Aggregate(ctx, ids)
	if err != nil {
		s.metrics.originErr.Add(1)
		return nil, err
	}
	s.churnCache.Add(key, slices.Clone(edges))
	return edges, nil
}

func (s *CachedStore) Apps(ctx context.Context, p entity.Pair) ([]entity.App, error) {
	if cached, ok := s.appsCache.Get(p); ok {
		s.hit("apps", &s.metrics.appsHits)
		return slices.Clone(cached), nil
	}
	s.miss("apps", &s.metrics.appsMisses)

	s.metrics.originReads.Add(1)
	apps, err := s.origin.Apps(ctx, p)
	if err != nil {
		s.metrics.originErr.Add(1)
		return nil, err
	}
	s.appsCache.Add(p, slices.Clone(apps))
	return apps, nil
}

func (s *CachedStore) Metrics() MetricsSnapshot {
	return s.metrics.snapshot()
}

func (s *CachedStore) Purge() {
	s.sdkCache.Purge()
	s.churnCache.Purge()
	s.appsCache.Purge()
}

func (s *CachedStore) hit(cache string, c *atomic.Uint64) {
	c.Add(1)
	cacheLookups.WithLabelValues(cache, "hit").Inc()
}

func (s *CachedStore) miss(cache string, c *atomic.Uint64) {
	c.Add(1)
	cacheLookups.WithLabelValues(cache, "miss").Inc()
}

// churnKey ignores request order: the edge set does not depend on it.
func churnKey(ids []entity.SdkID) string {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.Itoa(int(id))
	}
	return strings.Join(parts, ",")
}
