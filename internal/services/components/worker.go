package components

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Worker keeps the dashboard cache warm.
type Worker struct {
	svc       *Service
	pollEvery time.Duration
}

func NewWorker(svc *Service, every time.Duration) *Worker {
	return &Worker{svc: svc, pollEvery: every}
}

// Run refreshes once immediately and then on every tick until ctx is done.
func (w *Worker) Run(ctx context.Context) {
	if w.pollEvery <= 0 {
		return
	}
	log.Info().Dur("every", w.pollEvery).Msg("dashboard worker: started")
	t := time.NewTicker(w.pollEvery)
	defer t.Stop()

	w.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("dashboard worker: stopping")
			return
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *Worker) tick(ctx context.Context) {
	start := time.Now()
	if err := w.svc.Refresh(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Error().Err(err).Msg("dashboard worker: refresh failed")
		return
	}
	log.Debug().Dur("took", time.Since(start)).Msg("dashboard worker: refreshed")
}
