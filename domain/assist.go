package domain

// MaxSuggestions is the upper bound of a SuggestionSet.
const MaxSuggestions = 3

// SuggestionSet holds short candidate replies to the latest incoming message.
type SuggestionSet []string

type Tone string

const (
	ToneCasual       Tone = "casual"
	ToneFriendly     Tone = "friendly"
	ToneProfessional Tone = "professional"
	ToneConcise      Tone = "concise"
	ToneEnthusiastic Tone = "enthusiastic"
)

// DefaultTone is used by the one-tap compose action.
const DefaultTone = ToneCasual

// DefaultTones are offered by the multi-tone compose panel.
var DefaultTones = []Tone{ToneFriendly, ToneProfessional, ToneConcise}

// ComposeRewrite is the output of a rewrite request.
// Single-tone requests fill Text, multi-tone requests fill Variants.
type ComposeRewrite struct {
	Text     string
	Variants map[Tone]string
}

// Empty reports whether the rewrite has nothing to offer.
func (c ComposeRewrite) Empty() bool {
	return c.Text == "" && len(c.Variants) == 0
}
