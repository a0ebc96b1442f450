package sweeper

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"golang.org/x/sync/errgroup"

	"bookings/metrics"
)

const (
	// gracePeriod is how long an unpaid booking intent may sit PENDING before
	// the sweeper removes it.
	gracePeriod = 20 * time.Minute

	reclaimInterval = time.Minute
	pruneInterval   = 24 * time.Hour
)

type IntentsRepository interface {
	DeleteAbandoned(ctx context.Context, cutoff time.Time) (int64, error)
}

type TicketsRepository interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// Sweeper runs the two background cleanups: reclaiming abandoned booking
// intents and pruning tickets for dates already in the past. Intents that are
// PROCESSING are never touched, an issuance in flight owns them.
type Sweeper struct {
	intents IntentsRepository
	tickets TicketsRepository
	now     func() time.Time
}

func New(intents IntentsRepository, tickets TicketsRepository) *Sweeper {
	if intents == nil {
		panic("missing intents repository")
	}
	if tickets == nil {
		panic("missing tickets repository")
	}

	return &Sweeper{
		intents: intents,
		tickets: tickets,
		now:     time.Now,
	}
}

// Run blocks until the context is cancelled. A failed sweep is logged and
// retried on the next tick, it never stops the loops.
func (s *Sweeper) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ticker := time.NewTicker(reclaimInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := s.ReclaimAbandoned(ctx); err != nil {
					log.FromContext(ctx).WithError(err).Error("Failed to reclaim abandoned intents")
				}
			}
		}
	})

	g.Go(func() error {
		ticker := time.NewTicker(pruneInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := s.PruneExpired(ctx); err != nil {
					log.FromContext(ctx).WithError(err).Error("Failed to prune expired tickets")
				}
			}
		}
	})

	return g.Wait()
}

func (s *Sweeper) ReclaimAbandoned(ctx context.Context) error {
	cutoff := s.now().UTC().Add(-gracePeriod)

	reclaimed, err := s.intents.DeleteAbandoned(ctx, cutoff)
	if err != nil {
		return err
	}

	if reclaimed > 0 {
		metrics.IntentsReclaimed.Add(float64(reclaimed))
		log.FromContext(ctx).WithField("count", reclaimed).Info("Reclaimed abandoned booking intents")
	}

	return nil
}

func (s *Sweeper) PruneExpired(ctx context.Context) error {
	pruned, err := s.tickets.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return err
	}

	if pruned > 0 {
		metrics.TicketsPruned.Add(float64(pruned))
		log.FromContext(ctx).WithField("count", pruned).Info("Pruned expired tickets")
	}

	return nil
}
