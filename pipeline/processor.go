package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"recordformatter/enrichment"
	"recordformatter/monitoring"
	"recordformatter/normalization"
	"recordformatter/records"
)

// DefaultUnresolvedMarker значение колонки кода, если код не найден
const DefaultUnresolvedMarker = "UNRESOLVED"

// BatchResolver разрешает коды для пакета адресов с сохранением порядка
type BatchResolver interface {
	ResolveAll(ctx context.Context, addrs []*normalization.FormattedAddress) []enrichment.ResolvedCode
}

// Config настройки обработки пакета
type Config struct {
	EnrichmentEnabled bool
	UnresolvedMarker  string
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	if c.EnrichmentEnabled && strings.TrimSpace(c.UnresolvedMarker) == "" {
		return fmt.Errorf("unresolved marker must not be empty when enrichment is enabled")
	}
	return nil
}

// Processor форматирует все записи, затем разрешает коды всех адресов и собирает строки по порядку
type Processor struct {
	config    *Config
	formatter *normalization.RowFormatter
	resolver  BatchResolver
	logger    *slog.Logger
	metrics   *monitoring.Metrics
}

// Result результат обработки пакета
type Result struct {
	RunID   string                 `json:"run_id"`
	Records []records.OutputRecord `json:"records"`
	Stats   Stats                  `json:"stats"`
}

// NewProcessor создает обработчик. resolver обязателен только при включенном обогащении.
func NewProcessor(config *Config, resolver BatchResolver, logger *slog.Logger, metrics *monitoring.Metrics) (*Processor, error) {
	if config == nil {
		config = &Config{}
	}
	if config.EnrichmentEnabled && config.UnresolvedMarker == "" {
		config.UnresolvedMarker = DefaultUnresolvedMarker
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if config.EnrichmentEnabled && resolver == nil {
		return nil, fmt.Errorf("enrichment is enabled but no resolver configured")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Processor{
		config:    config,
		formatter: normalization.NewRowFormatter(logger, metrics),
		resolver:  resolver,
		logger:    logger,
		metrics:   metrics,
	}, nil
}

// Process обрабатывает пакет. При отмене ctx возвращается собранный результат
// (неразрешенные строки помечены маркером) и ошибка контекста.
func (p *Processor) Process(ctx context.Context, recs []records.Record) (*Result, error) {
	start := time.Now()
	runID := uuid.New().String()
	logger := p.logger.With("run_id", runID)

	logger.Info("Batch started",
		"rows", len(recs),
		"enrichment", p.config.EnrichmentEnabled)

	rows := p.formatter.FormatAll(recs)

	var codes []enrichment.ResolvedCode
	if p.config.EnrichmentEnabled {
		addrs := make([]*normalization.FormattedAddress, len(rows))
		for i := range rows {
			addrs[i] = rows[i].Address
		}
		codes = p.resolver.ResolveAll(ctx, addrs)
	}

	stats := newStats(runID)
	output := make([]records.OutputRecord, len(rows))
	for i, row := range rows {
		out := row.Output
		var code enrichment.ResolvedCode
		if codes != nil {
			code = codes[i]
			out.ResolvedCode = p.config.UnresolvedMarker
			if code.IsResolved() {
				out.ResolvedCode = code.Code
			}
		}
		output[i] = out
		stats.add(row, code, codes != nil)
	}
	stats.Duration = time.Since(start)

	p.metrics.ObserveBatch(len(recs), stats.Duration)
	logger.Info("Batch finished",
		"rows", stats.Rows,
		"addresses_formatted", stats.AddressesFormatted(),
		"address_mismatches", stats.AddressMismatches,
		"resolved", stats.ResolvedTotal(),
		"unresolved", stats.Unresolved,
		"duration_ms", stats.Duration.Milliseconds())

	result := &Result{RunID: runID, Records: output, Stats: stats}
	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("batch %s interrupted: %w", runID, err)
	}
	return result, nil
}

// FormatOnly форматирует записи без обращения к сервисам поиска
func (p *Processor) FormatOnly(recs []records.Record) []records.OutputRecord {
	rows := p.formatter.FormatAll(recs)
	output := make([]records.OutputRecord, len(rows))
	for i, row := range rows {
		output[i] = row.Output
	}
	return output
}
