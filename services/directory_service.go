package services

import (
	"context"
	"log/slog"
	"wisp/domain"
	"wisp/repositories"

	"github.com/samber/lo"
)

type IDirectoryService interface {
	Contacts(ctx context.Context) ([]domain.Participant, error)
	Stats(ctx context.Context) (domain.DirectoryStats, error)
}

type DirectoryService struct {
	log      *slog.Logger
	users    repositories.IUserRepository
	messages repositories.IMessageRepository
	local    domain.ParticipantID
}

func NewDirectoryService(
	log *slog.Logger,
	users repositories.IUserRepository,
	messages repositories.IMessageRepository,
	local domain.ParticipantID,
) *DirectoryService {
	return &DirectoryService{log: log, users: users, messages: messages, local: local}
}

// Contacts lists every known participant except the local one.
func (s *DirectoryService) Contacts(ctx context.Context) ([]domain.Participant, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.withoutLocal(users), nil
}

// WatchContacts streams the contact list, each update replaces the previous one.
func (s *DirectoryService) WatchContacts(ctx context.Context) (<-chan []domain.Participant, func(), error) {
	feed, err := s.users.Watch(ctx)
	if err != nil {
		return nil, nil, err
	}
	out := make(chan []domain.Participant)
	go func() {
		defer close(out)
		for update := range feed.Updates() {
			if update.Err != nil {
				s.log.Error("Contact feed failed", "error", update.Err)
				return
			}
			select {
			case out <- s.withoutLocal(update.Items):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, feed.Close, nil
}

// Stats counts users and messages with one-shot reads of every pair's channel,
// self-chats included. Cost grows with the square of the user count.
func (s *DirectoryService) Stats(ctx context.Context) (domain.DirectoryStats, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return domain.DirectoryStats{}, err
	}
	stats := domain.DirectoryStats{TotalUsers: len(users)}

	for i := range users {
		for j := i; j < len(users); j++ {
			key := domain.ResolveChannel(users[i].ID, users[j].ID)
			messages, err := s.messages.List(ctx, key)
			if err != nil {
				return domain.DirectoryStats{}, err
			}
			if len(messages) > 0 {
				stats.Channels++
				stats.TotalMessages += len(messages)
			}
		}
	}
	s.log.Debug("Directory stats computed", "users", stats.TotalUsers, "messages", stats.TotalMessages)
	return stats, nil
}

func (s *DirectoryService) withoutLocal(users []domain.Participant) []domain.Participant {
	return lo.Filter(users, func(p domain.Participant, _ int) bool {
		return p.ID != s.local
	})
}
