package workers

import (
	"context"
	"letter-lab/domain/event"
	"letter-lab/repositories"
	"log/slog"
)

// StatsRecorder persists usage events so HTTP handlers never wait on disk.
type StatsRecorder struct {
	log        *slog.Logger
	repository repositories.IStatsRepository
	events     <-chan event.Event
}

func NewStatsRecorder(log *slog.Logger, repository repositories.IStatsRepository, events <-chan event.Event) *StatsRecorder {
	return &StatsRecorder{log: log, repository: repository, events: events}
}

func (w *StatsRecorder) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			w.log.Debug("Stopping stats recorder")
			return ctx.Err()
		case e, ok := <-w.events:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}
			w.record(e)
		}
	}
}

// drain records what is already buffered, without waiting for more.
func (w *StatsRecorder) drain() {
	for {
		select {
		case e, ok := <-w.events:
			if !ok {
				return
			}
			w.record(e)
		default:
			return
		}
	}
}

func (w *StatsRecorder) record(e event.Event) {
	if err := w.repository.Increment(e.Kind, e.At); err != nil {
		w.log.Error("Failed to record stats", "kind", e.Kind, "id", e.ID, "error", err)
	}
}
