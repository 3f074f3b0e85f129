package enrichment

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"recordformatter/normalization"
)

// CodeResolver разрешает код для одного адреса
type CodeResolver interface {
	Resolve(ctx context.Context, addr *normalization.FormattedAddress) ResolvedCode
}

// Dispatcher разрешает коды пакета адресов параллельно с ограничением числа горутин
type Dispatcher struct {
	resolver CodeResolver
	workers  int
	logger   *slog.Logger
}

// NewDispatcher создает диспетчер; workers <= 0 означает runtime.GOMAXPROCS(0)
func NewDispatcher(resolver CodeResolver, workers int, logger *slog.Logger) *Dispatcher {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{resolver: resolver, workers: workers, logger: logger}
}

// Workers возвращает предел параллельности
func (d *Dispatcher) Workers() int {
	return d.workers
}

// ResolveAll возвращает коды в порядке addrs. Каждая горутина пишет только в свой слот.
// nil-адреса и строки, не запущенные до отмены ctx, остаются Unresolved.
func (d *Dispatcher) ResolveAll(ctx context.Context, addrs []*normalization.FormattedAddress) []ResolvedCode {
	results := make([]ResolvedCode, len(addrs))

	var g errgroup.Group
	g.SetLimit(d.workers)

	for i, addr := range addrs {
		if addr == nil {
			continue
		}
		if ctx.Err() != nil {
			d.logger.Warn("Resolution cancelled, remaining rows left unresolved",
				"scheduled", i,
				"total", len(addrs))
			break
		}

		g.Go(func() error {
			defer func() {
				if rec := recover(); rec != nil {
					results[i] = Unresolved
					d.logger.Error("Panic while resolving locality code",
						"index", i,
						"address", addr.String(),
						"panic", rec)
				}
			}()

			results[i] = d.resolver.Resolve(ctx, addr)
			return nil
		})
	}

	_ = g.Wait()
	return results
}
