package container

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"recordformatter/enrichment"
	"recordformatter/internal/config"
	"recordformatter/monitoring"
	"recordformatter/pipeline"
)

// Container собирает зависимости приложения по конфигурации
type Container struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *monitoring.Metrics

	// Resolver и Enriched равны nil, если обогащение выключено
	Resolver   *enrichment.Resolver
	Dispatcher *enrichment.Dispatcher
	Enriched   *pipeline.Processor
	Plain      *pipeline.Processor
}

// New создает контейнер. logger может быть nil.
func New(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(registry)

	c := &Container{
		Config:   cfg,
		Logger:   logger,
		Registry: registry,
		Metrics:  metrics,
	}

	plain, err := pipeline.NewProcessor(&pipeline.Config{}, nil, logger, metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to create processor: %w", err)
	}
	c.Plain = plain

	if cfg.Enrichment != nil && cfg.Enrichment.Enabled {
		if err := c.initEnrichment(); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (c *Container) initEnrichment() error {
	ec := c.Config.Enrichment

	c.Resolver = enrichment.NewResolverFromConfigs(ec.Services, ec.Cache, c.Logger, c.Metrics)
	if len(c.Resolver.GetAvailableServices()) == 0 {
		c.Logger.Warn("Enrichment enabled without lookup tiers, every code will be unresolved")
	}
	c.Dispatcher = enrichment.NewDispatcher(c.Resolver, ec.Workers, c.Logger)

	enriched, err := pipeline.NewProcessor(&pipeline.Config{
		EnrichmentEnabled: true,
		UnresolvedMarker:  ec.UnresolvedMarker,
	}, c.Dispatcher, c.Logger, c.Metrics)
	if err != nil {
		c.Resolver.Close()
		return fmt.Errorf("failed to create enrichment processor: %w", err)
	}
	c.Enriched = enriched

	c.Logger.Info("Enrichment initialized",
		"tiers", c.Resolver.GetAvailableServices(),
		"workers", c.Dispatcher.Workers())
	return nil
}

// Processor возвращает обработчик пакета: с обогащением, если оно включено и запрошено
func (c *Container) Processor(enrich bool) (*pipeline.Processor, error) {
	if !enrich {
		return c.Plain, nil
	}
	if c.Enriched == nil {
		return nil, fmt.Errorf("enrichment is disabled in configuration")
	}
	return c.Enriched, nil
}

// Close освобождает ресурсы резолвера
func (c *Container) Close() {
	if c.Resolver != nil {
		c.Resolver.Close()
	}
}
