package cache

import (
	"context"
	"log/slog"

	"slecriteria/pkg/platform/circuit"
)

type backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Failover fronts a shared cache with a process-local one. Writes go to both.
// Reads trust the primary until its breaker opens, then the local copy until
// the primary has recovered.
type Failover struct {
	primary backend
	local   backend
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewFailover(primary, local backend, breaker *circuit.Breaker, logger *slog.Logger) *Failover {
	if logger == nil {
		logger = slog.Default()
	}
	return &Failover{primary: primary, local: local, breaker: breaker, logger: logger}
}

func (f *Failover) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, ok, err := f.primary.Get(ctx, key)
	if err != nil {
		if f.recordFailure(ctx, err) {
			return f.local.Get(ctx, key)
		}
		return nil, false, err
	}
	if !f.recordSuccess(ctx) {
		return f.local.Get(ctx, key)
	}
	return value, ok, nil
}

func (f *Failover) Set(ctx context.Context, key string, value []byte) error {
	if err := f.local.Set(ctx, key, value); err != nil {
		return err
	}
	if err := f.primary.Set(ctx, key, value); err != nil {
		if f.recordFailure(ctx, err) {
			return nil
		}
		return err
	}
	f.recordSuccess(ctx)
	return nil
}

func (f *Failover) recordFailure(ctx context.Context, err error) (useLocal bool) {
	useLocal, change := f.breaker.RecordFailure()
	if change.Opened {
		f.logger.WarnContext(ctx, "cache circuit opened, serving process-local copies",
			"breaker", f.breaker.Name(),
			"error", err,
		)
	}
	return useLocal
}

func (f *Failover) recordSuccess(ctx context.Context) (usePrimary bool) {
	usePrimary, change := f.breaker.RecordSuccess()
	if change.Closed {
		f.logger.InfoContext(ctx, "cache circuit closed", "breaker", f.breaker.Name())
	}
	return usePrimary
}
