package main

import (
	"fmt"
	"io"
	"slices"
	"sort"
	"sync"
	"wisp/domain"

	"github.com/gookit/color"
)

var (
	styleLocal      = color.New(color.FgCyan, color.OpBold)
	stylePeer       = color.New(color.FgGreen, color.OpBold)
	styleMuted      = color.New(color.FgGray)
	styleSuggestion = color.New(color.FgMagenta)
	noticeStyles    = map[domain.NoticeLevel]color.Style{
		domain.NoticeInfo:    color.New(color.FgBlue),
		domain.NoticeWarning: color.New(color.FgYellow),
		domain.NoticeAlert:   color.New(color.FgWhite, color.BgRed),
	}
)

// renderer prints only what changed between two conversation views.
// Views replace each other, so messages are tracked by id rather than by position.
type renderer struct {
	mu          sync.Mutex
	out         io.Writer
	printed     map[string]struct{}
	loaded      bool
	generating  bool
	suggestions domain.SuggestionSet
	variants    map[domain.Tone]string
	notice      domain.Notice
}

func newRenderer(out io.Writer) *renderer {
	return &renderer{out: out, printed: make(map[string]struct{})}
}

func (r *renderer) Render(view domain.ConversationView) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if view.Loading {
		return
	}
	if !r.loaded {
		r.loaded = true
		if len(view.Messages) == 0 {
			fmt.Fprintln(r.out, styleMuted.Render("No messages yet. Say hello!"))
		}
	}

	for _, msg := range view.Messages {
		if _, ok := r.printed[msg.ID]; ok {
			continue
		}
		r.printed[msg.ID] = struct{}{}
		fmt.Fprintln(r.out, formatMessage(msg, view.Local))
	}

	if view.Generating && !r.generating {
		fmt.Fprintln(r.out, styleMuted.Render("  generating suggestions..."))
	}
	r.generating = view.Generating

	if !slices.Equal(view.Suggestions, r.suggestions) {
		r.suggestions = view.Suggestions
		for i, s := range view.Suggestions {
			fmt.Fprintln(r.out, styleSuggestion.Render(fmt.Sprintf("  /pick %d  %s", i+1, s)))
		}
	}

	if !sameVariants(view.Variants, r.variants) {
		r.variants = view.Variants
		for _, tone := range sortedTones(view.Variants) {
			fmt.Fprintln(r.out, styleSuggestion.Render(fmt.Sprintf("  /choose %s  %s", tone, view.Variants[tone])))
		}
	}

	if view.Notice != r.notice {
		r.notice = view.Notice
		if !view.Notice.IsZero() {
			fmt.Fprintln(r.out, formatNotice(view.Notice))
		}
	}
}

func formatMessage(msg domain.Message, local domain.ParticipantID) string {
	at := styleMuted.Render(msg.CreatedAt.Local().Format("15:04"))
	if msg.SenderID == local {
		return fmt.Sprintf("%s %s %s", at, styleLocal.Render("you:"), msg.Text)
	}
	return fmt.Sprintf("%s %s %s", at, stylePeer.Render(string(msg.SenderID)+":"), msg.Text)
}

func formatNotice(n domain.Notice) string {
	style, ok := noticeStyles[n.Level]
	if !ok {
		style = styleMuted
	}
	return style.Render(fmt.Sprintf("[%s] %s", n.Level, n.Text))
}

func sortedTones(variants map[domain.Tone]string) []domain.Tone {
	tones := make([]domain.Tone, 0, len(variants))
	for tone := range variants {
		tones = append(tones, tone)
	}
	sort.Slice(tones, func(i, j int) bool { return tones[i] < tones[j] })
	return tones
}

func sameVariants(a, b map[domain.Tone]string) bool {
	if len(a) != len(b) {
		return false
	}
	for tone, text := range a {
		if other, ok := b[tone]; !ok || other != text {
			return false
		}
	}
	return true
}
