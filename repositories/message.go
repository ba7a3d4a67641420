//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"wisp/contract"
	"wisp/domain"
)

const (
	fieldText        = "text"
	fieldSenderID    = "senderId"
	fieldRecipientID = "recipientId"
)

type IMessageRepository interface {
	Append(ctx context.Context, cmd domain.SendMessageCommand) (domain.Message, error)
	List(ctx context.Context, key domain.ChannelKey) ([]domain.Message, error)
	Watch(ctx context.Context, key domain.ChannelKey) (*Feed[domain.Message], error)
}

type MessageRepository struct {
	store contract.DocumentStore
	paths Paths
	log   *slog.Logger
}

func NewMessageRepository(store contract.DocumentStore, paths Paths, log *slog.Logger) MessageRepository {
	return MessageRepository{store: store, paths: paths, log: log}
}

// Append stores the message under the channel resolved from its sender and recipient.
// The store assigns the id and the creation timestamp.
func (m MessageRepository) Append(ctx context.Context, cmd domain.SendMessageCommand) (domain.Message, error) {
	doc, err := m.store.Append(ctx, m.paths.Messages(cmd.Channel()), map[string]any{
		fieldText:        cmd.Text,
		fieldSenderID:    string(cmd.SenderID),
		fieldRecipientID: string(cmd.RecipientID),
	})
	if err != nil {
		return domain.Message{}, err
	}
	return toMessage(doc)
}

// List is a one-shot read of the channel, ordered by creation time.
func (m MessageRepository) List(ctx context.Context, key domain.ChannelKey) ([]domain.Message, error) {
	docs, err := m.store.List(ctx, m.paths.Messages(key))
	if err != nil {
		return nil, err
	}
	messages := make([]domain.Message, 0, len(docs))
	for _, doc := range docs {
		msg, err := toMessage(doc)
		if err != nil {
			m.log.Warn("Skipping undecodable message", "channel", key, "id", doc.ID, "error", err)
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (m MessageRepository) Watch(ctx context.Context, key domain.ChannelKey) (*Feed[domain.Message], error) {
	sub, err := m.store.Subscribe(ctx, m.paths.Messages(key))
	if err != nil {
		return nil, err
	}
	return NewFeed(ctx, m.log, sub, toMessage), nil
}

func toMessage(doc contract.Document) (domain.Message, error) {
	text, ok := doc.Fields[fieldText].(string)
	if !ok {
		return domain.Message{}, fmt.Errorf("message %s has no text", doc.ID)
	}
	sender, ok := doc.Fields[fieldSenderID].(string)
	if !ok {
		return domain.Message{}, fmt.Errorf("message %s has no sender", doc.ID)
	}
	recipient, _ := doc.Fields[fieldRecipientID].(string)
	return domain.Message{
		ID:          doc.ID,
		Text:        text,
		SenderID:    domain.ParticipantID(sender),
		RecipientID: domain.ParticipantID(recipient),
		CreatedAt:   doc.CreateTime,
	}, nil
}
