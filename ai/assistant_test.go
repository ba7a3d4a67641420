package ai

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"wisp/contract"
	"wisp/domain"
	"wisp/errors"
	"wisp/mocks"
	"wisp/moderation"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestAssistant(t *testing.T, generator contract.Generator) *Assistant {
	t.Helper()
	invoker, _ := newTestInvoker(t, generator)
	return NewAssistant(logs.GetLoggerFromLevel(slog.LevelDebug), invoker, nil)
}

func TestAssistant_SuggestReplies(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	generator := mocks.NewMockGenerator(ctrl)
	assistant := newTestAssistant(t, generator)

	generator.EXPECT().Generate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r contract.GenerateRequest) (string, error) {
			req.Equal(contract.ShapeArray, r.Shape)
			req.Contains(r.Prompt, "Are you free?")
			return `["Yes!","No, sorry","Maybe later","Ask me tomorrow"]`, nil
		})

	suggestions := assistant.SuggestReplies(ctx, "Are you free?")
	req.Equal(domain.SuggestionSet{"Yes!", "No, sorry", "Maybe later"}, suggestions)
}

func TestAssistant_SuggestReplies_Empty_Input_Makes_No_Call(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	generator := mocks.NewMockGenerator(ctrl)
	assistant := newTestAssistant(t, generator)

	generator.EXPECT().Generate(gomock.Any(), gomock.Any()).Times(0)

	req.Empty(assistant.SuggestReplies(context.Background(), ""))
	req.Empty(assistant.SuggestReplies(context.Background(), "   "))
}

func TestAssistant_SuggestReplies_Degrades(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		err   error
		times int
	}{
		{"Malformed json", `Sure: "yes"`, nil, 1},
		{"Malformed envelope is not retried", "", fmt.Errorf("%w: bad envelope", errors.ErrMalformedResponse), 1},
		{"Exhausted retries", "", &errors.TransportError{StatusCode: 500}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			ctrl := gomock.NewController(t)
			generator := mocks.NewMockGenerator(ctrl)
			assistant := newTestAssistant(t, generator)

			generator.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(tt.text, tt.err).Times(tt.times)

			suggestions := assistant.SuggestReplies(context.Background(), "hello")
			req.NotNil(suggestions)
			req.Empty(suggestions)
		})
	}
}

func TestAssistant_Disabled(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	assistant := NewAssistant(logs.GetLoggerFromLevel(slog.LevelDebug), nil, nil)

	req.False(assistant.Enabled())
	req.Empty(assistant.SuggestReplies(ctx, "hello"))
	req.Equal("draft", assistant.RewriteDraft(ctx, "draft", domain.ToneCasual))
	req.True(assistant.RewriteDraftMultiTone(ctx, "draft", domain.DefaultTones).Empty())
}

func TestAssistant_RewriteDraft(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	generator := mocks.NewMockGenerator(ctrl)
	assistant := newTestAssistant(t, generator)

	generator.EXPECT().Generate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r contract.GenerateRequest) (string, error) {
			req.Contains(r.Prompt, "sound more casual")
			req.Contains(r.Prompt, "I shall attend")
			return "  I'll be there!\n", nil
		})

	req.Equal("I'll be there!", assistant.RewriteDraft(ctx, "I shall attend", domain.ToneCasual))
}

func TestAssistant_RewriteDraft_Keeps_Draft(t *testing.T) {
	tests := []struct {
		name  string
		draft string
		text  string
		err   error
		times int
	}{
		{"Empty draft makes no call", "", "", nil, 0},
		{"Blank draft makes no call", "  ", "", nil, 0},
		{"Empty rewrite", "hello", "   ", nil, 1},
		{"Exhausted retries", "hello", "", &errors.TransportError{StatusCode: 502}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			ctrl := gomock.NewController(t)
			generator := mocks.NewMockGenerator(ctrl)
			assistant := newTestAssistant(t, generator)

			generator.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(tt.text, tt.err).Times(tt.times)

			req.Equal(tt.draft, assistant.RewriteDraft(context.Background(), tt.draft, domain.ToneFriendly))
		})
	}
}

func TestAssistant_RewriteDraftMultiTone(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	generator := mocks.NewMockGenerator(ctrl)
	assistant := newTestAssistant(t, generator)
	tones := []domain.Tone{domain.ToneFriendly, domain.ToneProfessional}

	generator.EXPECT().Generate(gomock.Any(), gomock.Any()).
		Return(`{"friendly":"Hey, running late!","professional":"I will be slightly delayed."}`, nil)

	rewrite := assistant.RewriteDraftMultiTone(ctx, "late", tones)
	req.Equal(map[domain.Tone]string{
		domain.ToneFriendly:     "Hey, running late!",
		domain.ToneProfessional: "I will be slightly delayed.",
	}, rewrite.Variants)
}

func TestAssistant_RewriteDraftMultiTone_Suppressed_On_Parse_Failure(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	generator := mocks.NewMockGenerator(ctrl)
	assistant := newTestAssistant(t, generator)

	generator.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(`not json`, nil)

	req.True(assistant.RewriteDraftMultiTone(context.Background(), "late", domain.DefaultTones).Empty())
}

func TestAssistant_Censors_Generated_Text(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	generator := mocks.NewMockGenerator(ctrl)
	invoker, _ := newTestInvoker(t, generator)
	moderator, err := moderation.NewModerator([]string{"badger"}, '*', log)
	req.NoError(err)
	assistant := NewAssistant(log, invoker, moderator)

	generator.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(`["Bring the badger","Fine"]`, nil)

	req.Equal(domain.SuggestionSet{"Bring the ******", "Fine"}, assistant.SuggestReplies(context.Background(), "What should I bring?"))
}
