package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"wisp/contract"
	"wisp/domain"
	"wisp/errors"
	"wisp/projection"
	"wisp/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

const (
	noticeFeedUnavailable = "Messages are unavailable right now."
	noticeSendFailed      = "Your message could not be sent."
)

// Conversation is the working state of one channel between the local participant and a peer.
// Store snapshots replace the timeline, suggestions follow the newest incoming message
// and late suggestion results are dropped through a generation counter.
type Conversation struct {
	log       *slog.Logger
	messages  repositories.IMessageRepository
	assistant contract.Assistant
	validate  *validator.Validate

	local   domain.ParticipantID
	peer    domain.ParticipantID
	channel domain.ChannelKey

	mu          sync.Mutex
	timeline    *projection.Timeline
	suggestions domain.SuggestionSet
	draft       string
	variants    map[domain.Tone]string
	notice      domain.Notice
	generating  bool
	generation  uint64
	answeredID  string
	observers   []func(domain.ConversationView)

	composing atomic.Bool
	pending   sync.WaitGroup
}

func NewConversation(
	log *slog.Logger,
	messages repositories.IMessageRepository,
	assistant contract.Assistant,
	local, peer domain.ParticipantID,
) *Conversation {
	channel := domain.ResolveChannel(local, peer)
	return &Conversation{
		log:       log.With("channel", channel),
		messages:  messages,
		assistant: assistant,
		validate:  validator.New(),
		local:     local,
		peer:      peer,
		channel:   channel,
		timeline:  projection.NewTimeline(local),
	}
}

func (c *Conversation) Channel() domain.ChannelKey {
	return c.channel
}

// Observe registers a callback receiving the view after every change.
// Callbacks run with no lock held but may be called from several goroutines.
func (c *Conversation) Observe(fn func(domain.ConversationView)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// Run consumes the live message feed until the context ends.
// A feed failure is reported once through the view and is not retried,
// a feed that just stops returns ErrSubscriptionClosed.
func (c *Conversation) Run(ctx context.Context) error {
	defer c.pending.Wait()

	feed, err := c.messages.Watch(ctx, c.channel)
	if err != nil {
		c.HandleUpdate(ctx, repositories.Update[domain.Message]{Err: err})
		return nil
	}
	defer feed.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-feed.Updates():
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				// Store closed under us, show loading until the supervisor subscribes again
				c.mu.Lock()
				c.timeline.Reset()
				c.mu.Unlock()
				c.publish()
				return errors.ErrSubscriptionClosed
			}
			c.HandleUpdate(ctx, update)
			if update.Err != nil {
				return nil
			}
		}
	}
}

// HandleUpdate applies one snapshot of the channel.
func (c *Conversation) HandleUpdate(ctx context.Context, update repositories.Update[domain.Message]) {
	c.mu.Lock()
	if update.Err != nil {
		c.log.Error("Message feed failed", "error", update.Err)
		c.timeline.Replace(nil)
		c.clearSuggestionsLocked()
		c.answeredID = ""
		c.notice = domain.Notice{Level: domain.NoticeWarning, Text: noticeFeedUnavailable}
		c.mu.Unlock()
		c.publish()
		return
	}

	c.timeline.Replace(update.Items)
	c.log.Debug("Timeline replaced", "channel", c.channel, "messages", c.timeline.Len())
	last, incoming := c.timeline.LastIncoming()

	var request *domain.Message
	switch {
	case !incoming:
		c.clearSuggestionsLocked()
	case last.ID == c.answeredID:
		// Same newest message, the current request or result still applies
	default:
		c.generation++
		c.answeredID = last.ID
		c.suggestions = nil
		c.generating = c.assistant.Enabled()
		if c.generating {
			request = &last
		}
	}
	generation := c.generation
	c.mu.Unlock()

	if request != nil {
		c.pending.Add(1)
		go c.requestSuggestions(ctx, generation, *request)
	}
	c.publish()
}

func (c *Conversation) requestSuggestions(ctx context.Context, generation uint64, msg domain.Message) {
	defer c.pending.Done()
	suggestions := c.assistant.SuggestReplies(ctx, msg.Text)

	c.mu.Lock()
	if generation != c.generation {
		c.mu.Unlock()
		c.log.Debug("Dropping stale suggestions", "message", msg.ID, "generation", generation)
		return
	}
	c.suggestions = suggestions
	c.generating = false
	c.mu.Unlock()
	c.publish()
}

// clearSuggestionsLocked invalidates any in-flight request, mu must be held.
// The answered message is kept so a stale snapshot does not ask again.
func (c *Conversation) clearSuggestionsLocked() {
	c.generation++
	c.suggestions = nil
	c.generating = false
}

// Send appends the text to the channel and resets the draft and suggestions.
func (c *Conversation) Send(ctx context.Context, text string) (domain.Message, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Message{}, errors.ErrEmptyText
	}
	cmd := domain.SendMessageCommand{SenderID: c.local, RecipientID: c.peer, Text: text}
	if err := c.validate.Struct(cmd); err != nil {
		return domain.Message{}, err
	}

	msg, err := c.messages.Append(ctx, cmd)
	if err != nil {
		c.log.Error("Failed to send message", "error", err)
		c.mu.Lock()
		c.notice = domain.Notice{Level: domain.NoticeAlert, Text: noticeSendFailed}
		c.mu.Unlock()
		c.publish()
		return domain.Message{}, fmt.Errorf("sending message: %w", err)
	}

	c.mu.Lock()
	c.draft = ""
	c.variants = nil
	c.notice = domain.Notice{}
	c.clearSuggestionsLocked()
	c.mu.Unlock()
	c.publish()
	return msg, nil
}

func (c *Conversation) SetDraft(text string) {
	c.mu.Lock()
	c.draft = text
	c.mu.Unlock()
	c.publish()
}

// UseSuggestion copies the i-th suggestion into the draft without sending it.
func (c *Conversation) UseSuggestion(i int) (string, bool) {
	c.mu.Lock()
	if i < 0 || i >= len(c.suggestions) {
		c.mu.Unlock()
		return "", false
	}
	c.draft = c.suggestions[i]
	draft := c.draft
	c.mu.Unlock()
	c.publish()
	return draft, true
}

// Compose rewrites the draft in one tone. While another compose is running it does nothing.
func (c *Conversation) Compose(ctx context.Context, tone domain.Tone) string {
	c.mu.Lock()
	draft := c.draft
	c.mu.Unlock()

	if strings.TrimSpace(draft) == "" || !c.composing.CompareAndSwap(false, true) {
		return draft
	}
	c.publish()

	rewritten := c.assistant.RewriteDraft(ctx, draft, tone)

	c.mu.Lock()
	// Keep what the user typed in the meantime
	if c.draft == draft {
		c.draft = rewritten
	}
	result := c.draft
	c.mu.Unlock()
	c.composing.Store(false)
	c.publish()
	return result
}

// ComposeVariants asks for one rewrite per tone and keeps them for ChooseVariant.
// An empty result hides the panel.
func (c *Conversation) ComposeVariants(ctx context.Context, tones []domain.Tone) map[domain.Tone]string {
	c.mu.Lock()
	draft := c.draft
	c.mu.Unlock()

	if strings.TrimSpace(draft) == "" || !c.composing.CompareAndSwap(false, true) {
		return nil
	}
	c.publish()

	rewrite := c.assistant.RewriteDraftMultiTone(ctx, draft, tones)

	c.mu.Lock()
	c.variants = nil
	if !rewrite.Empty() {
		c.variants = rewrite.Variants
	}
	variants := lo.Assign(c.variants)
	c.mu.Unlock()
	c.composing.Store(false)
	c.publish()
	if len(variants) == 0 {
		return nil
	}
	return variants
}

// ChooseVariant moves the chosen tone variant into the draft and closes the panel.
func (c *Conversation) ChooseVariant(tone domain.Tone) bool {
	c.mu.Lock()
	text, ok := c.variants[tone]
	if ok {
		c.draft = text
		c.variants = nil
	}
	c.mu.Unlock()
	if ok {
		c.publish()
	}
	return ok
}

func (c *Conversation) DismissNotice() {
	c.mu.Lock()
	c.notice = domain.Notice{}
	c.mu.Unlock()
	c.publish()
}

func (c *Conversation) View() domain.ConversationView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Conversation) viewLocked() domain.ConversationView {
	return domain.ConversationView{
		Channel:     c.channel,
		Local:       c.local,
		Peer:        c.peer,
		Messages:    c.timeline.Messages(),
		Suggestions: append(domain.SuggestionSet(nil), c.suggestions...),
		Draft:       c.draft,
		Variants:    lo.Assign(c.variants),
		Loading:     !c.timeline.Loaded(),
		Generating:  c.generating,
		Composing:   c.composing.Load(),
		Notice:      c.notice,
	}
}

func (c *Conversation) publish() {
	c.mu.Lock()
	view := c.viewLocked()
	observers := slices.Clone(c.observers)
	c.mu.Unlock()

	for _, fn := range observers {
		fn(view)
	}
}
