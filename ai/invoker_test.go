package ai

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"
	"wisp/contract"
	"wisp/errors"
	"wisp/mocks"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type recordedSleep struct {
	delays []time.Duration
}

func (r *recordedSleep) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func newTestInvoker(t *testing.T, generator contract.Generator) (*Invoker, *recordedSleep) {
	t.Helper()
	invoker := NewInvoker(logs.GetLoggerFromLevel(slog.LevelDebug), generator, DefaultRetryPolicy())
	sleeper := &recordedSleep{}
	invoker.sleep = sleeper.sleep
	return invoker, sleeper
}

func TestRetryPolicy_Backoff(t *testing.T) {
	req := require.New(t)
	policy := DefaultRetryPolicy()
	req.Equal(time.Second, policy.Backoff(0))
	req.Equal(2*time.Second, policy.Backoff(1))
	req.Equal(4*time.Second, policy.Backoff(2))
}

func TestInvoker_Succeeds_After_Transient_Failures(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	generator := mocks.NewMockGenerator(ctrl)
	invoker, sleeper := newTestInvoker(t, generator)
	request := contract.GenerateRequest{Prompt: "p", Shape: contract.ShapeArray}

	// Given two server errors followed by a success
	gomock.InOrder(
		generator.EXPECT().Generate(gomock.Any(), request).Return("", &errors.TransportError{StatusCode: 503}),
		generator.EXPECT().Generate(gomock.Any(), request).Return("", &errors.TransportError{Cause: fmt.Errorf("connection reset")}),
		generator.EXPECT().Generate(gomock.Any(), request).Return(`["ok"]`, nil),
	)

	// When invoking
	text, err := invoker.Invoke(ctx, request)

	// Then the third attempt wins after waiting 1s then 2s
	req.NoError(err)
	req.Equal(`["ok"]`, text)
	req.Equal([]time.Duration{time.Second, 2 * time.Second}, sleeper.delays)
}

func TestInvoker_Exhausts_Budget(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	generator := mocks.NewMockGenerator(ctrl)
	invoker, sleeper := newTestInvoker(t, generator)

	generator.EXPECT().Generate(gomock.Any(), gomock.Any()).
		Return("", &errors.TransportError{StatusCode: 500, Body: "boom"}).Times(3)

	_, err := invoker.Invoke(ctx, contract.GenerateRequest{Prompt: "p"})

	req.Error(err)
	var exhausted *errors.ExhaustedError
	req.True(errors.As(err, &exhausted))
	req.Equal(3, exhausted.Attempts)
	req.ErrorIs(err, errors.ErrTransport)
	// No wait after the last attempt
	req.Equal([]time.Duration{time.Second, 2 * time.Second}, sleeper.delays)
}

func TestInvoker_Does_Not_Retry_Malformed_Response(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	generator := mocks.NewMockGenerator(ctrl)
	invoker, sleeper := newTestInvoker(t, generator)

	generator.EXPECT().Generate(gomock.Any(), gomock.Any()).
		Return("", fmt.Errorf("%w: truncated json", errors.ErrMalformedResponse)).Times(1)

	_, err := invoker.Invoke(ctx, contract.GenerateRequest{Prompt: "p"})

	req.ErrorIs(err, errors.ErrMalformedResponse)
	req.Empty(sleeper.delays)
}

func TestInvoker_Stops_When_Context_Is_Cancelled(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	ctrl := gomock.NewController(t)
	generator := mocks.NewMockGenerator(ctrl)
	invoker := NewInvoker(logs.GetLoggerFromLevel(slog.LevelDebug), generator, DefaultRetryPolicy())

	generator.EXPECT().Generate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, contract.GenerateRequest) (string, error) {
			cancel()
			return "", &errors.TransportError{StatusCode: 503}
		}).Times(1)

	_, err := invoker.Invoke(ctx, contract.GenerateRequest{Prompt: "p"})
	req.ErrorIs(err, context.Canceled)
}

func TestInvoker_Cancelled_During_Backoff(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	ctrl := gomock.NewController(t)
	generator := mocks.NewMockGenerator(ctrl)
	invoker := NewInvoker(logs.GetLoggerFromLevel(slog.LevelDebug), generator,
		RetryPolicy{MaxAttempts: 3, BaseDelay: time.Hour})

	generator.EXPECT().Generate(gomock.Any(), gomock.Any()).
		Return("", &errors.TransportError{StatusCode: 429}).Times(1)

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := invoker.Invoke(ctx, contract.GenerateRequest{Prompt: "p"})
	req.ErrorIs(err, context.Canceled)
}

func TestInvoker_Without_Generator(t *testing.T) {
	req := require.New(t)
	invoker := NewInvoker(logs.GetLoggerFromLevel(slog.LevelDebug), nil, DefaultRetryPolicy())
	_, err := invoker.Invoke(context.Background(), contract.GenerateRequest{Prompt: "p"})
	req.ErrorIs(err, errors.ErrNotConfigured)
}
