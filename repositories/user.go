//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"context"
	"log/slog"
	"time"
	"wisp/contract"
	"wisp/domain"
)

const (
	fieldID       = "id"
	fieldLastSeen = "lastSeen"
)

type IUserRepository interface {
	UpsertPresence(ctx context.Context, id domain.ParticipantID) error
	List(ctx context.Context) ([]domain.Participant, error)
	Watch(ctx context.Context) (*Feed[domain.Participant], error)
}

type UserRepository struct {
	store contract.DocumentStore
	paths Paths
	log   *slog.Logger
	now   func() time.Time
}

func NewUserRepository(store contract.DocumentStore, paths Paths, log *slog.Logger) UserRepository {
	return UserRepository{store: store, paths: paths, log: log, now: time.Now}
}

// UpsertPresence records that the participant is around, merging into any existing record.
func (u UserRepository) UpsertPresence(ctx context.Context, id domain.ParticipantID) error {
	return u.store.Upsert(ctx, u.paths.Users(), string(id), map[string]any{
		fieldID:       string(id),
		fieldLastSeen: u.now().UTC().Format(time.RFC3339Nano),
	})
}

func (u UserRepository) List(ctx context.Context) ([]domain.Participant, error) {
	docs, err := u.store.List(ctx, u.paths.Users())
	if err != nil {
		return nil, err
	}
	participants := make([]domain.Participant, 0, len(docs))
	for _, doc := range docs {
		participants = append(participants, toParticipant(doc))
	}
	return participants, nil
}

func (u UserRepository) Watch(ctx context.Context) (*Feed[domain.Participant], error) {
	sub, err := u.store.Subscribe(ctx, u.paths.Users())
	if err != nil {
		return nil, err
	}
	return NewFeed(ctx, u.log, sub, func(doc contract.Document) (domain.Participant, error) {
		return toParticipant(doc), nil
	}), nil
}

// toParticipant falls back to the document id and update time when fields are missing.
func toParticipant(doc contract.Document) domain.Participant {
	id, _ := doc.Fields[fieldID].(string)
	if id == "" {
		id = doc.ID
	}
	lastSeen := doc.UpdateTime
	if raw, ok := doc.Fields[fieldLastSeen].(string); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			lastSeen = parsed
		}
	}
	return domain.Participant{ID: domain.ParticipantID(id), LastSeen: lastSeen}
}
