package services

import (
	"context"
	"log/slog"
	"wisp/contract"
	"wisp/domain"
	"wisp/repositories"
)

type IChatService interface {
	Open(peer domain.ParticipantID) *Conversation
	History(ctx context.Context, peer domain.ParticipantID) ([]domain.Message, error)
}

// ChatService opens conversations between the local participant and its peers.
type ChatService struct {
	log       *slog.Logger
	messages  repositories.IMessageRepository
	assistant contract.Assistant
	local     domain.ParticipantID
}

func NewChatService(
	log *slog.Logger,
	messages repositories.IMessageRepository,
	assistant contract.Assistant,
	local domain.ParticipantID,
) *ChatService {
	return &ChatService{log: log, messages: messages, assistant: assistant, local: local}
}

func (s *ChatService) Local() domain.ParticipantID {
	return s.local
}

// Open returns a new conversation, its feed starts when Run is called.
func (s *ChatService) Open(peer domain.ParticipantID) *Conversation {
	return NewConversation(s.log, s.messages, s.assistant, s.local, peer)
}

// History is a one-shot read of the channel with peer.
func (s *ChatService) History(ctx context.Context, peer domain.ParticipantID) ([]domain.Message, error) {
	return s.messages.List(ctx, domain.ResolveChannel(s.local, peer))
}
