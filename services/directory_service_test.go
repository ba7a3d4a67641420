package services

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"wisp/domain"
	"wisp/errors"
	"wisp/mocks"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestDirectoryService_Contacts_Excludes_Local(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRepository(ctrl)
	messages := mocks.NewMockIMessageRepository(ctrl)
	service := NewDirectoryService(logs.GetLoggerFromLevel(slog.LevelDebug), users, messages, "u2")

	users.EXPECT().List(gomock.Any()).Return([]domain.Participant{{ID: "u1"}, {ID: "u2"}, {ID: "u3"}}, nil)

	contacts, err := service.Contacts(context.Background())
	req.NoError(err)
	req.Equal([]domain.Participant{{ID: "u1"}, {ID: "u3"}}, contacts)
}

func TestDirectoryService_Stats(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRepository(ctrl)
	messages := mocks.NewMockIMessageRepository(ctrl)
	service := NewDirectoryService(logs.GetLoggerFromLevel(slog.LevelDebug), users, messages, "u1")

	users.EXPECT().List(gomock.Any()).Return([]domain.Participant{{ID: "u2"}, {ID: "u1"}}, nil)

	counts := map[domain.ChannelKey]int{"u1_u2": 3, "u1_u1": 1, "u2_u2": 0}
	messages.EXPECT().List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, key domain.ChannelKey) ([]domain.Message, error) {
			return make([]domain.Message, counts[key]), nil
		}).Times(3)

	stats, err := service.Stats(context.Background())
	req.NoError(err)
	req.Equal(domain.DirectoryStats{TotalUsers: 2, TotalMessages: 4, Channels: 2}, stats)
}

func TestDirectoryService_Stats_Store_Failure(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRepository(ctrl)
	messages := mocks.NewMockIMessageRepository(ctrl)
	service := NewDirectoryService(logs.GetLoggerFromLevel(slog.LevelDebug), users, messages, "u1")

	users.EXPECT().List(gomock.Any()).Return(nil, fmt.Errorf("%w: unavailable", errors.ErrStore))

	_, err := service.Stats(context.Background())
	req.ErrorIs(err, errors.ErrStore)
}

func TestChatService_History_Uses_Resolved_Channel(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	assistant := mocks.NewMockAssistant(ctrl)
	service := NewChatService(logs.GetLoggerFromLevel(slog.LevelDebug), messages, assistant, "u2")

	messages.EXPECT().List(gomock.Any(), domain.ChannelKey("u1_u2")).Return([]domain.Message{{ID: "m1"}}, nil)

	history, err := service.History(context.Background(), "u1")
	req.NoError(err)
	req.Len(history, 1)

	conversation := service.Open("u1")
	req.Equal(domain.ChannelKey("u1_u2"), conversation.Channel())
}
