package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
	"wisp/ai"
	"wisp/domain"
	"wisp/moderation"
	"wisp/repositories"
	"wisp/runtime/workers"
	"wisp/services"
	"wisp/storage"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

// BaseSuite runs two participants on one shared store, with a fake generative endpoint.
type BaseSuite struct {
	suite.Suite
	Config Config

	log       *slog.Logger
	db        *badger.DB
	store     *storage.BadgerStore
	users     repositories.UserRepository
	messages  repositories.MessageRepository
	assistant *ai.Assistant
	gemini    *fakeGemini
	cancel    context.CancelFunc
	done      chan struct{}
	sup       *workers.Supervisor
}

func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
}

func (s *BaseSuite) SetupTest() {
	s.log = logs.GetLoggerFromLevel(slog.LevelDebug)

	db, err := badger.Open(badger.DefaultOptions(s.T().TempDir()).WithLoggingLevel(badger.ERROR))
	s.Require().NoError(err)
	s.db = db
	s.store = storage.NewBadgerStore(db, s.log)

	paths := repositories.NewPaths("wisp-e2e")
	s.users = repositories.NewUserRepository(s.store, paths, s.log)
	s.messages = repositories.NewMessageRepository(s.store, paths, s.log)

	s.gemini = newFakeGemini(s)
	generator, err := ai.NewGeminiGenerator(s.gemini.server.Client(), s.gemini.server.URL, "", "e2e-key")
	s.Require().NoError(err)
	invoker := ai.NewInvoker(s.log, generator, ai.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond})
	moderator, err := moderation.NewModerator([]string{"darn"}, '*', s.log)
	s.Require().NoError(err)
	s.assistant = ai.NewAssistant(s.log, invoker, moderator)

	s.sup = workers.NewSupervisor(s.log, 10*time.Millisecond)
}

func (s *BaseSuite) TearDownTest() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	s.store.Close()
	s.gemini.server.Close()
	_ = s.db.Close()
}

// Participant opens the chat service of id and keeps its presence fresh.
func (s *BaseSuite) Participant(id domain.ParticipantID) *services.ChatService {
	s.sup.Add(workers.NewPresenceWorker(s.log, s.users, id, 50*time.Millisecond))
	return services.NewChatService(s.log, s.messages, s.assistant, id)
}

// Start runs every added worker until the test ends.
func (s *BaseSuite) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		s.sup.Run(ctx)
	}()
}

// Step prints a header, then runs fn as a subtest.
func (s *BaseSuite) Step(name string, fn func()) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
	s.Run(name, fn)
}

// WaitView polls the conversation view until cond holds.
func (s *BaseSuite) WaitView(conv *services.Conversation, cond func(domain.ConversationView) bool, msg string) domain.ConversationView {
	var last domain.ConversationView
	s.Require().Eventually(func() bool {
		last = conv.View()
		return cond(last)
	}, s.Config.Wait, 5*time.Millisecond, msg)
	return last
}

// fakeGemini answers like generateContent, based on what the prompt asks for.
// The very first request fails with a 503 so the retry path is always exercised.
type fakeGemini struct {
	mu       sync.Mutex
	server   *httptest.Server
	requests int
	prompts  []string
}

func newFakeGemini(s *BaseSuite) *fakeGemini {
	f := &fakeGemini{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if s.Config.DebugJSON {
			s.T().Log("GEMINI REQUEST:\n" + string(raw))
		}
		var payload struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		_ = json.Unmarshal(raw, &payload)
		prompt := payload.Contents[0].Parts[0].Text

		f.mu.Lock()
		f.requests++
		first := f.requests == 1
		f.prompts = append(f.prompts, prompt)
		f.mu.Unlock()

		if first {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, candidate(answer(prompt)))
	}))
	return f
}

func (f *fakeGemini) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func answer(prompt string) string {
	switch {
	case strings.Contains(prompt, "JSON array"):
		return "```json\n[\"Sure, what time?\", \"Darn, I'm busy\", \"Let me check\"]\n```"
	case strings.Contains(prompt, "JSON object"):
		return `{"friendly": "Sounds great, see you at 8!", "professional": "Confirmed, I will see you at 8 pm.", "concise": "OK, 8."}`
	default:
		return "Okay, see you at 8."
	}
}

func candidate(text string) string {
	body, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": text}}}},
		},
	})
	return string(body)
}
