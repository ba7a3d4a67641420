package e2e

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"wisp/domain"
	"wisp/services"
	"wisp/support"

	"github.com/stretchr/testify/suite"
)

type testConversationSuite struct {
	BaseSuite
}

func TestConversationSuite(t *testing.T) {
	suite.Run(t, &testConversationSuite{})
}

func (s *testConversationSuite) TestFullConversationFlow() {
	ctx := context.Background()
	const alice, bob domain.ParticipantID = "u2", "u1"

	aliceChat := s.Participant(alice)
	bobChat := s.Participant(bob)
	aliceConv := aliceChat.Open(bob)
	bobConv := bobChat.Open(alice)
	s.Require().Equal(aliceConv.Channel(), bobConv.Channel())
	s.Require().Equal(domain.ChannelKey("u1_u2"), bobConv.Channel())

	s.sup.Add(aliceConv, bobConv)
	s.Start()
	directory := services.NewDirectoryService(s.log, s.users, s.messages, bob)

	s.Step("Step 1: Both participants show up in the directory", func() {
		s.Require().Eventually(func() bool {
			contacts, err := directory.Contacts(ctx)
			return err == nil && len(contacts) == 1 && contacts[0].ID == alice
		}, s.Config.Wait, 10*time.Millisecond)
		s.WaitView(bobConv, func(v domain.ConversationView) bool { return !v.Loading }, "bob never loaded the channel")
	})

	s.Step("Step 2: An incoming message brings moderated suggestions", func() {
		_, err := aliceConv.Send(ctx, "Hey Bob, are you free tonight for dinner?")
		s.Require().NoError(err)

		view := s.WaitView(bobConv, func(v domain.ConversationView) bool {
			return len(v.Messages) == 1 && len(v.Suggestions) == 3
		}, "bob never got suggestions")

		s.Require().Equal(alice, view.Messages[0].SenderID)
		s.Require().Equal("Sure, what time?", view.Suggestions[0])
		s.Require().NotContains(view.Suggestions[1], "Darn")
		s.Require().Contains(view.Suggestions[1], "****")
		s.Require().False(view.Generating)
		s.Require().GreaterOrEqual(s.gemini.Requests(), 2, "the first overloaded answer must be retried")
	})

	s.Step("Step 3: Picking a suggestion and sending it", func() {
		draft, ok := bobConv.UseSuggestion(0)
		s.Require().True(ok)
		_, err := bobConv.Send(ctx, draft)
		s.Require().NoError(err)

		aliceView := s.WaitView(aliceConv, func(v domain.ConversationView) bool {
			return len(v.Messages) == 2
		}, "alice never got the reply")
		s.Require().Equal("Hey Bob, are you free tonight for dinner?", aliceView.Messages[0].Text)
		s.Require().Equal("Sure, what time?", aliceView.Messages[1].Text)
		s.Require().True(aliceView.Messages[0].CreatedAt.Before(aliceView.Messages[1].CreatedAt))

		bobView := s.WaitView(bobConv, func(v domain.ConversationView) bool {
			return len(v.Messages) == 2
		}, "bob never saw his own reply")
		s.Require().Empty(bobView.Suggestions, "suggestions only follow incoming messages")
		s.Require().Empty(bobView.Draft)
	})

	s.Step("Step 4: Rewriting a draft in several tones", func() {
		bobConv.SetDraft("ok c u at 8")
		variants := bobConv.ComposeVariants(ctx, domain.DefaultTones)
		s.Require().Len(variants, 3)

		s.Require().True(bobConv.ChooseVariant(domain.ToneProfessional))
		s.Require().Equal("Confirmed, I will see you at 8 pm.", bobConv.View().Draft)

		s.Require().Equal("Okay, see you at 8.", bobConv.Compose(ctx, domain.ToneCasual))
	})

	s.Step("Step 5: Dashboard counts", func() {
		stats, err := directory.Stats(ctx)
		s.Require().NoError(err)
		s.Require().Equal(domain.DirectoryStats{TotalUsers: 2, TotalMessages: 2, Channels: 1}, stats)
	})
}

func (s *testConversationSuite) TestSupportTicket() {
	var payload struct {
		Embeds []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"embeds"`
	}
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &payload)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer webhook.Close()

	sender := support.NewDiscordSender(webhook.Client(), webhook.URL)
	service := services.NewSupportService(s.log, sender, "u1")

	s.Step("Ticket reaches the webhook", func() {
		notice := service.Submit(context.Background(), "  suggestions never show up  ")

		s.Require().Equal(domain.NoticeInfo, notice.Level)
		s.Require().Len(payload.Embeds, 1)
		s.Require().True(strings.HasPrefix(payload.Embeds[0].Title, "New Wisp Support Ticket"))
		s.Require().Equal("suggestions never show up", payload.Embeds[0].Description)
	})
}
