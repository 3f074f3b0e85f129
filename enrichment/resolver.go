package enrichment

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/singleflight"

	"recordformatter/monitoring"
	"recordformatter/normalization"
)

// sourceCache и sourceUnresolved значения метки source для итогов разрешения
const (
	sourceCache      = "cache"
	sourceUnresolved = "unresolved"
)

// Resolver разрешает код коммуны, опрашивая уровни по приоритету до первого успеха
type Resolver struct {
	enrichers []Enricher
	cache     *ResolutionCache
	inflight  singleflight.Group
	logger    *slog.Logger
	metrics   *monitoring.Metrics
}

// NewResolver создает резолвер из готовых уровней. cache, logger и metrics могут быть nil.
func NewResolver(enrichers []Enricher, cache *ResolutionCache, logger *slog.Logger, metrics *monitoring.Metrics) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}

	r := &Resolver{
		enrichers: append([]Enricher(nil), enrichers...),
		cache:     cache,
		logger:    logger,
		metrics:   metrics,
	}
	r.sortByPriority()
	return r
}

// NewResolverFromConfigs создает уровни geocoder и commune по конфигурациям
func NewResolverFromConfigs(configs map[string]*EnricherConfig, cacheConfig *CacheConfig, logger *slog.Logger, metrics *monitoring.Metrics) *Resolver {
	var enrichers []Enricher

	if config, exists := configs[GeocoderName]; exists && config.Enabled {
		enrichers = append(enrichers, NewGeocoderEnricher(config))
	}

	if config, exists := configs[CommuneName]; exists && config.Enabled {
		enrichers = append(enrichers, NewCommuneEnricher(config))
	}

	var cache *ResolutionCache
	if cacheConfig != nil && cacheConfig.Enabled {
		cache = NewResolutionCache(cacheConfig)
	}

	return NewResolver(enrichers, cache, logger, metrics)
}

// Resolve возвращает код для адреса. nil-адрес дает Unresolved без сетевых запросов.
func (r *Resolver) Resolve(ctx context.Context, addr *normalization.FormattedAddress) ResolvedCode {
	if addr == nil {
		return Unresolved
	}
	return r.ResolveString(ctx, addr.String())
}

// ResolveString разрешает код по канонической строке адреса.
// Одинаковые адреса, запрошенные одновременно, разрешаются одним обращением к уровням.
func (r *Resolver) ResolveString(ctx context.Context, address string) ResolvedCode {
	if r.cache != nil {
		if code, found := r.cache.Get(address); found {
			r.metrics.ObserveResolution(sourceCache)
			return code
		}
	}

	value, _, _ := r.inflight.Do(address, func() (interface{}, error) {
		if r.cache != nil {
			if code, found := r.cache.peek(address); found {
				return code, nil
			}
		}
		code, cacheable := r.lookup(ctx, address)
		if r.cache != nil && cacheable {
			r.cache.Set(address, code)
		}
		return code, nil
	})

	code := value.(ResolvedCode)
	if code.IsResolved() {
		r.metrics.ObserveResolution(code.Source)
	} else {
		r.metrics.ObserveResolution(sourceUnresolved)
	}
	return code
}

// lookup опрашивает уровни по порядку. cacheable=false, если хотя бы один промах мог быть временным.
func (r *Resolver) lookup(ctx context.Context, address string) (ResolvedCode, bool) {
	cacheable := true

	for _, enricher := range r.enrichers {
		if !enricher.IsAvailable() {
			continue
		}
		if ctx.Err() != nil {
			return Unresolved, false
		}

		start := time.Now()
		result, err := enricher.Lookup(ctx, address)
		duration := time.Since(start)
		r.metrics.ObserveLookup(enricher.GetName(), duration)

		if err != nil || result == nil {
			if err == nil {
				err = errors.New("tier returned no result")
			}
			cacheable = false
			r.metrics.ObserveLookupFailure(enricher.GetName(), ReasonTransport)
			r.logger.Warn("Lookup tier returned error",
				"tier", enricher.GetName(),
				"address", address,
				"error", err)
			continue
		}

		if !result.Success {
			if result.Transient() {
				cacheable = false
				r.logger.Warn("Lookup tier failed",
					"tier", enricher.GetName(),
					"address", address,
					"reason", result.Reason,
					"error", result.Error,
					"duration_ms", duration.Milliseconds())
			} else {
				r.logger.Debug("Lookup tier miss",
					"tier", enricher.GetName(),
					"address", address,
					"reason", result.Reason)
			}
			r.metrics.ObserveLookupFailure(enricher.GetName(), result.Reason)
			continue
		}

		r.logger.Debug("Locality code resolved",
			"tier", enricher.GetName(),
			"address", address,
			"code", result.Code,
			"duration_ms", duration.Milliseconds())
		return ResolvedCode{Code: result.Code, Source: enricher.GetName()}, true
	}

	return Unresolved, cacheable
}

// GetAvailableServices возвращает названия включенных уровней по приоритету
func (r *Resolver) GetAvailableServices() []string {
	var services []string
	for _, enricher := range r.enrichers {
		if enricher.IsAvailable() {
			services = append(services, enricher.GetName())
		}
	}
	return services
}

// CacheStats возвращает статистику кэша; без кэша - нулевую
func (r *Resolver) CacheStats() CacheStats {
	if r.cache == nil {
		return CacheStats{}
	}
	return r.cache.GetStats()
}

// Close освобождает кэш
func (r *Resolver) Close() {
	if r.cache != nil {
		r.cache.Close()
	}
}

func (r *Resolver) sortByPriority() {
	sort.SliceStable(r.enrichers, func(i, j int) bool {
		return r.enrichers[i].GetPriority() < r.enrichers[j].GetPriority()
	})
}
