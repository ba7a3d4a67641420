package main

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"
	"wisp/domain"
	"wisp/mocks"
	"wisp/services"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestSession(t *testing.T) (*chatSession, *mocks.MockIMessageRepository, *mocks.MockAssistant, *bytes.Buffer) {
	t.Helper()
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	assistant := mocks.NewMockAssistant(ctrl)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	var out bytes.Buffer
	conv := services.NewConversation(log, messages, assistant, "u1", "u2")
	return &chatSession{conv: conv, out: &out}, messages, assistant, &out
}

func TestChatSession_Plain_Line_Sends(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	session, messages, _, _ := newTestSession(t)

	messages.EXPECT().
		Append(gomock.Any(), domain.SendMessageCommand{SenderID: "u1", RecipientID: "u2", Text: "hello"}).
		Return(domain.Message{ID: "m1", Text: "hello", SenderID: "u1", RecipientID: "u2", CreatedAt: time.Now()}, nil)

	req.False(session.handle(ctx, "  hello  "))
	req.False(session.handle(ctx, ""))
}

func TestChatSession_Compose_Rewrites_Draft(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	session, _, assistant, out := newTestSession(t)

	assistant.EXPECT().RewriteDraft(gomock.Any(), "can u come", domain.ToneProfessional).Return("Could you come?")

	session.handle(ctx, "/draft can u come")
	session.handle(ctx, "/compose professional")

	req.Contains(out.String(), "draft: Could you come?")
	req.Equal("Could you come?", session.conv.View().Draft)
}

func TestChatSession_Tones_And_Choose(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	session, _, assistant, out := newTestSession(t)

	assistant.EXPECT().
		RewriteDraftMultiTone(gomock.Any(), "see you", domain.DefaultTones).
		Return(domain.ComposeRewrite{Text: "see you", Variants: map[domain.Tone]string{
			domain.ToneFriendly: "See you soon!",
			domain.ToneConcise:  "Later.",
		}})

	session.handle(ctx, "/draft see you")
	session.handle(ctx, "/tones")
	session.handle(ctx, "/choose concise")

	req.Contains(out.String(), "draft: Later.")
	req.Equal("Later.", session.conv.View().Draft)
	req.Empty(session.conv.View().Variants)
}

func TestChatSession_Unknown_And_Invalid(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	session, _, _, out := newTestSession(t)

	session.handle(ctx, "/pick two")
	session.handle(ctx, "/pick 1")
	session.handle(ctx, "/choose formal")
	session.handle(ctx, "/shout")

	printed := out.String()
	req.Contains(printed, "usage: /pick N")
	req.Contains(printed, "no suggestion 1")
	req.Contains(printed, `no variant "formal"`)
	req.Contains(printed, "unknown command /shout")
	req.True(session.handle(ctx, "/quit"))
}

func collectLines(t *testing.T, lines <-chan string) []string {
	t.Helper()
	var got []string
	timeout := time.After(2 * time.Second)
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return got
			}
			got = append(got, line)
		case <-timeout:
			t.Fatalf("input not drained, got %v", got)
			return got
		}
	}
}

func TestOpenLineSource_Reads_Lines(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Given piped input without a history file
	var out bytes.Buffer
	source := openLineSource(ctx, bytes.NewBufferString("hello\n/quit\n"), &out, "")
	defer source.close()

	// When the input is drained
	got := collectLines(t, source.lines)

	// Then every line reaches the session in order
	req.Equal([]string{"hello", "/quit"}, got)
	req.NotNil(source.out)
}

func TestScanLines_Stops_At_End_Of_Input(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := collectLines(t, scanLines(ctx, bytes.NewBufferString("one\ntwo")))

	req.Equal([]string{"one", "two"}, got)
}
