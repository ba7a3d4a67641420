package repositories

import (
	"context"
	"log/slog"
	"testing"
	"time"
	"wisp/domain"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func Test_UpsertPresence_Merges(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	repository := NewUserRepository(newStore(t), NewPaths("app"), log)

	firstSeen := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	repository.now = func() time.Time { return firstSeen }
	req.NoError(repository.UpsertPresence(ctx, "u1"))
	req.NoError(repository.UpsertPresence(ctx, "u2"))

	lastSeen := firstSeen.Add(time.Minute)
	repository.now = func() time.Time { return lastSeen }
	req.NoError(repository.UpsertPresence(ctx, "u1"))

	participants, err := repository.List(ctx)
	req.NoError(err)
	req.Len(participants, 2)
	req.Equal(domain.Participant{ID: "u1", LastSeen: lastSeen}, participants[0])
	req.Equal(domain.Participant{ID: "u2", LastSeen: firstSeen}, participants[1])
}

func Test_Watch_Users(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	repository := NewUserRepository(newStore(t), NewPaths("app"), log)

	feed, err := repository.Watch(ctx)
	req.NoError(err)
	defer feed.Close()

	update := <-feed.Updates()
	req.Empty(update.Items)

	req.NoError(repository.UpsertPresence(ctx, "u1"))
	select {
	case update = <-feed.Updates():
	case <-time.After(2 * time.Second):
		t.Fatal("no update")
	}
	req.Len(update.Items, 1)
	req.Equal(domain.ParticipantID("u1"), update.Items[0].ID)
}
