package repositories

import (
	"context"
	"log/slog"
	"testing"
	"time"
	"wisp/domain"
	"wisp/storage"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *storage.BadgerStore {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	store := storage.NewBadgerStore(db, logs.GetLoggerFromLevel(slog.LevelDebug))
	t.Cleanup(func() {
		store.Close()
		_ = db.Close()
	})
	return store
}

func TestPaths(t *testing.T) {
	req := require.New(t)
	paths := NewPaths("wisp-messenger-app-dev")
	req.Equal("artifacts/wisp-messenger-app-dev/public/data", paths.Namespace())
	req.Equal("artifacts/wisp-messenger-app-dev/public/data/users", paths.Users())
	req.Equal("artifacts/wisp-messenger-app-dev/public/data/chats/u1_u2/messages", paths.Messages("u1_u2"))
}

func Test_Append_Uses_Resolved_Channel(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	repository := NewMessageRepository(newStore(t), NewPaths("app"), log)

	// Given both participants write, each from their side
	first, err := repository.Append(ctx, domain.SendMessageCommand{SenderID: "u2", RecipientID: "u1", Text: "hello"})
	req.NoError(err)
	second, err := repository.Append(ctx, domain.SendMessageCommand{SenderID: "u1", RecipientID: "u2", Text: "hi back"})
	req.NoError(err)

	// Then both land in the same channel, in order
	messages, err := repository.List(ctx, domain.ResolveChannel("u1", "u2"))
	req.NoError(err)
	req.Len(messages, 2)
	req.Equal(first, messages[0])
	req.Equal(second, messages[1])
	req.Equal(domain.ParticipantID("u2"), messages[0].SenderID)
	req.Equal(domain.ParticipantID("u1"), messages[0].RecipientID)
	req.False(messages[0].CreatedAt.IsZero())
	req.NotEmpty(messages[0].ID)
}

func Test_Watch_Delivers_Replacing_Snapshots(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	repository := NewMessageRepository(newStore(t), NewPaths("app"), log)
	key := domain.ResolveChannel("u1", "u2")

	feed, err := repository.Watch(ctx, key)
	req.NoError(err)
	defer feed.Close()

	next := func() Update[domain.Message] {
		select {
		case u := <-feed.Updates():
			return u
		case <-time.After(2 * time.Second):
			t.Fatal("no update")
		}
		return Update[domain.Message]{}
	}

	req.Empty(next().Items)

	_, err = repository.Append(ctx, domain.SendMessageCommand{SenderID: "u1", RecipientID: "u2", Text: "one"})
	req.NoError(err)
	update := next()
	req.NoError(update.Err)
	req.Len(update.Items, 1)

	_, err = repository.Append(ctx, domain.SendMessageCommand{SenderID: "u2", RecipientID: "u1", Text: "two"})
	req.NoError(err)
	update = next()
	req.Len(update.Items, 2)
	req.Equal("one", update.Items[0].Text)
	req.Equal("two", update.Items[1].Text)
}

func Test_List_Skips_Undecodable_Documents(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	store := newStore(t)
	paths := NewPaths("app")
	repository := NewMessageRepository(store, paths, log)
	key := domain.ResolveChannel("u1", "u2")

	_, err := store.Append(ctx, paths.Messages(key), map[string]any{"senderId": "u1"})
	req.NoError(err)
	_, err = repository.Append(ctx, domain.SendMessageCommand{SenderID: "u1", RecipientID: "u2", Text: "valid"})
	req.NoError(err)

	messages, err := repository.List(ctx, key)
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal("valid", messages[0].Text)
}
