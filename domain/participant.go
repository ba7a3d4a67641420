// Package domain contains core concepts of the messenger.
// This file defines participants and the channel key derived from a pair of them.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"sort"
	"strings"
	"time"
)

const channelSeparator = "_"

// ParticipantID is an opaque identifier issued by the directory store.
type ParticipantID string

// ChannelKey identifies the conversation between two participants.
type ChannelKey string

// Participant is a presence record in the directory.
type Participant struct {
	ID       ParticipantID
	LastSeen time.Time
}

// ResolveChannel returns the canonical key of the conversation between a and b.
// Both ids are sorted ascending and joined, so ResolveChannel(a, b) == ResolveChannel(b, a).
// A participant talking to itself gets "a_a".
func ResolveChannel(a, b ParticipantID) ChannelKey {
	ids := []string{string(a), string(b)}
	sort.Strings(ids)
	return ChannelKey(strings.Join(ids, channelSeparator))
}

func (k ChannelKey) String() string {
	return string(k)
}
