package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
	"wisp/domain"
	"wisp/mocks"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestPresenceWorker_Beats_Until_Cancelled(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRepository(ctrl)

	var beats atomic.Int32
	users.EXPECT().UpsertPresence(gomock.Any(), domain.ParticipantID("u1")).
		DoAndReturn(func(context.Context, domain.ParticipantID) error {
			// A failing beat must not stop the worker
			if beats.Add(1) == 1 {
				return fmt.Errorf("store unavailable")
			}
			return nil
		}).MinTimes(3)

	worker := NewPresenceWorker(log, users, "u1", 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- worker.Run(ctx) }()

	req.Eventually(func() bool { return beats.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	req.ErrorIs(<-done, context.Canceled)
}
