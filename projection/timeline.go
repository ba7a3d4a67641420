// Package projection builds the local view of a conversation from store snapshots.
// Every snapshot is authoritative and replaces the previous state.
// Does not talk to the store or the UI directly.
package projection

import (
	"slices"
	"sort"
	"wisp/domain"
)

// Timeline holds the ordered messages of one channel as seen by Owner.
type Timeline struct {
	Owner    domain.ParticipantID
	messages []domain.Message
	loaded   bool
}

func NewTimeline(owner domain.ParticipantID) *Timeline {
	return &Timeline{Owner: owner}
}

// Replace swaps the whole state for the snapshot, ordered by creation time.
func (t *Timeline) Replace(messages []domain.Message) {
	ordered := slices.Clone(messages)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})
	t.messages = ordered
	t.loaded = true
}

// Reset forgets everything, as when switching to another channel.
func (t *Timeline) Reset() {
	t.messages = nil
	t.loaded = false
}

func (t *Timeline) Loaded() bool {
	return t.loaded
}

func (t *Timeline) Messages() []domain.Message {
	return slices.Clone(t.messages)
}

func (t *Timeline) Len() int {
	return len(t.messages)
}

func (t *Timeline) Last() (domain.Message, bool) {
	if len(t.messages) == 0 {
		return domain.Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}

// LastIncoming returns the newest message only when the other participant sent it.
func (t *Timeline) LastIncoming() (domain.Message, bool) {
	last, ok := t.Last()
	if !ok || !last.IsIncomingFor(t.Owner) {
		return domain.Message{}, false
	}
	return last, true
}
