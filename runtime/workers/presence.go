package workers

import (
	"context"
	"log/slog"
	"time"
	"wisp/domain"
	"wisp/repositories"
)

const DefaultPresenceInterval = time.Minute

// PresenceWorker keeps the local participant's directory entry fresh.
type PresenceWorker struct {
	log      *slog.Logger
	users    repositories.IUserRepository
	local    domain.ParticipantID
	interval time.Duration
}

func NewPresenceWorker(
	log *slog.Logger,
	users repositories.IUserRepository,
	local domain.ParticipantID,
	interval time.Duration,
) *PresenceWorker {
	if interval <= 0 {
		interval = DefaultPresenceInterval
	}
	return &PresenceWorker{log: log, users: users, local: local, interval: interval}
}

// Run upserts presence at start, then on every tick. Failures are logged and retried on the next tick.
func (w *PresenceWorker) Run(ctx context.Context) error {
	w.log.Debug("Starting presence worker", "participant", w.local, "interval", w.interval)
	w.beat(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.beat(ctx)
		}
	}
}

func (w *PresenceWorker) beat(ctx context.Context) {
	if err := w.users.UpsertPresence(ctx, w.local); err != nil {
		w.log.Warn("Presence update failed", "participant", w.local, "error", err)
	}
}
