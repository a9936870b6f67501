package loader

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/honeybadger-loader/internal/config"
	"github.com/xkilldash9x/honeybadger-loader/internal/dto"
)

// BatchOptions bounds a FindAll run.
type BatchOptions struct {
	// Concurrency caps in-flight lookups. Values below 1 mean 1.
	Concurrency int
	// RateLimit is the number of lookups started per second. Zero disables pacing.
	RateLimit float64
	Burst     int
}

// BatchOptionsFromConfig reads the batch settings of the honeybadger section.
func BatchOptionsFromConfig(hb config.HoneybadgerConfig) BatchOptions {
	return BatchOptions{
		Concurrency: hb.Concurrency,
		RateLimit:   hb.RateLimit,
		Burst:       hb.Burst,
	}
}

func (o BatchOptions) limiter() *rate.Limiter {
	if o.RateLimit <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := o.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(o.RateLimit), burst)
}

// FindAll runs FindErrorDetails for every id. results[i] belongs to ids[i]
// and is nil when that fault was not found. The first failure cancels the
// remaining lookups and is returned.
func (l *Loader) FindAll(ctx context.Context, ids []uuid.UUID, opts BatchOptions) ([]*dto.ReportedError, error) {
	results := make([]*dto.ReportedError, len(ids))
	if len(ids) == 0 {
		return results, nil
	}

	limit := opts.Concurrency
	if limit < 1 {
		limit = 1
	}
	limiter := opts.limiter()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, id := range ids {
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return err
			}
			report, err := l.FindErrorDetails(gctx, id)
			if err != nil {
				return fmt.Errorf("fault %s: %w", id, err)
			}
			results[i] = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
