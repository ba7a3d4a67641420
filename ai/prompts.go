package ai

import (
	"fmt"
	"strings"
	"wisp/domain"

	"github.com/abadojack/whatlanggo"
	"github.com/samber/lo"
)

func suggestionPrompt(incoming string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on the last message received (%q), generate three concise, one-tap replies. ", incoming)
	b.WriteString("The replies should be relevant and natural for a chat conversation. ")
	b.WriteString(`Return them as a JSON array of strings. For example: ["Sounds good!", "I'm not sure.", "Let me check."]`)
	if lang, ok := detectLanguage(incoming); ok {
		fmt.Fprintf(&b, " Write the replies in %s.", lang)
	}
	return b.String()
}

func rewritePrompt(draft string, tone domain.Tone) string {
	return fmt.Sprintf(
		"Rewrite the following message to sound more %s, while keeping the core meaning. Keep it concise. "+
			"Answer with the rewritten message only. Message: %q", tone, draft)
}

func multiTonePrompt(draft string, tones []domain.Tone) string {
	keys := lo.Map(tones, func(t domain.Tone, _ int) string { return fmt.Sprintf("%q", t) })
	return fmt.Sprintf(
		"Rewrite the following message once for each of these tones: %s. Keep the core meaning and keep each version concise. "+
			"Return a JSON object whose keys are exactly the tone names and whose values are the rewritten messages. Message: %q",
		strings.Join(keys, ", "), draft)
}

// detectLanguage only answers when whatlanggo is confident, short messages usually are not.
func detectLanguage(text string) (string, bool) {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return "", false
	}
	return info.Lang.String(), true
}
