package ai

import (
	"context"
	"log/slog"
	"strings"
	"wisp/contract"
	"wisp/domain"
	"wisp/moderation"

	"github.com/samber/lo"
)

// Assistant turns generative calls into reply suggestions and draft rewrites.
// Every failure degrades to an empty or unchanged result, nothing is returned as an error.
type Assistant struct {
	log       *slog.Logger
	invoker   *Invoker
	moderator *moderation.Moderator
}

// NewAssistant accepts a nil invoker, which disables every generative feature.
// The moderator is optional as well.
func NewAssistant(log *slog.Logger, invoker *Invoker, moderator *moderation.Moderator) *Assistant {
	return &Assistant{log: log, invoker: invoker, moderator: moderator}
}

func (a *Assistant) Enabled() bool {
	return a.invoker != nil && a.invoker.generator != nil
}

func (a *Assistant) SuggestReplies(ctx context.Context, incoming string) domain.SuggestionSet {
	incoming = strings.TrimSpace(incoming)
	if incoming == "" || !a.Enabled() {
		return domain.SuggestionSet{}
	}

	text, err := a.invoker.Invoke(ctx, contract.GenerateRequest{
		Prompt: suggestionPrompt(incoming),
		Shape:  contract.ShapeArray,
	})
	if err != nil {
		a.log.Warn("Suggestions unavailable", "error", err)
		return domain.SuggestionSet{}
	}
	suggestions, err := parseSuggestions(text)
	if err != nil {
		a.log.Warn("Suggestions unreadable", "error", err)
		return domain.SuggestionSet{}
	}
	return lo.Map(suggestions, func(s string, _ int) string { return a.censor(s) })
}

// RewriteDraft returns the draft rewritten in the given tone, or the draft itself on any failure.
func (a *Assistant) RewriteDraft(ctx context.Context, draft string, tone domain.Tone) string {
	if strings.TrimSpace(draft) == "" || !a.Enabled() {
		return draft
	}

	text, err := a.invoker.Invoke(ctx, contract.GenerateRequest{
		Prompt: rewritePrompt(draft, tone),
		Shape:  contract.ShapeText,
	})
	if err != nil {
		a.log.Warn("Rewrite unavailable", "tone", tone, "error", err)
		return draft
	}
	rewritten := strings.TrimSpace(text)
	if rewritten == "" {
		return draft
	}
	return a.censor(rewritten)
}

// RewriteDraftMultiTone asks for one version per tone.
// An empty result means there is nothing to offer and the panel should stay hidden.
func (a *Assistant) RewriteDraftMultiTone(ctx context.Context, draft string, tones []domain.Tone) domain.ComposeRewrite {
	if strings.TrimSpace(draft) == "" || len(tones) == 0 || !a.Enabled() {
		return domain.ComposeRewrite{}
	}

	text, err := a.invoker.Invoke(ctx, contract.GenerateRequest{
		Prompt: multiTonePrompt(draft, tones),
		Shape:  contract.ShapeObject,
	})
	if err != nil {
		a.log.Warn("Tone variants unavailable", "error", err)
		return domain.ComposeRewrite{}
	}
	variants, err := parseVariants(text, tones)
	if err != nil {
		a.log.Warn("Tone variants unreadable", "error", err)
		return domain.ComposeRewrite{}
	}
	for tone, v := range variants {
		variants[tone] = a.censor(v)
	}
	return domain.ComposeRewrite{Variants: variants}
}

func (a *Assistant) censor(text string) string {
	if a.moderator == nil {
		return text
	}
	censored, _ := a.moderator.Censor(text)
	return censored
}
