package ai

import (
	"encoding/json"
	"fmt"
	"strings"
	"wisp/domain"
	"wisp/errors"

	"github.com/samber/lo"
)

// stripCodeFence removes a surrounding Markdown code fence such as ```json ... ```.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// parseSuggestions expects a JSON array of strings, keeps the non-blank ones and truncates.
func parseSuggestions(text string) (domain.SuggestionSet, error) {
	var raw []any
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedResponse, err)
	}
	suggestions := lo.FilterMap(raw, func(item any, _ int) (string, bool) {
		s, ok := item.(string)
		s = strings.TrimSpace(s)
		return s, ok && s != ""
	})
	if len(suggestions) > domain.MaxSuggestions {
		suggestions = suggestions[:domain.MaxSuggestions]
	}
	return suggestions, nil
}

// parseVariants expects a JSON object keyed by tone. Unrequested tones are ignored.
func parseVariants(text string, tones []domain.Tone) (map[domain.Tone]string, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedResponse, err)
	}
	variants := make(map[domain.Tone]string, len(tones))
	for _, tone := range tones {
		value, ok := raw[string(tone)].(string)
		if !ok {
			continue
		}
		if value = strings.TrimSpace(value); value != "" {
			variants[tone] = value
		}
	}
	if len(variants) == 0 {
		return nil, fmt.Errorf("%w: no usable tone in response", errors.ErrMalformedResponse)
	}
	return variants, nil
}
