// Package domain contains core concepts of the messenger.
// This file defines Message and the commands producing them.
// Messages are immutable once stored.
package domain

import (
	"time"
)

// Message is a text sent from one participant to another.
// CreatedAt is assigned by the store at append time.
type Message struct {
	ID          string
	Text        string
	SenderID    ParticipantID
	RecipientID ParticipantID
	CreatedAt   time.Time
}

// IsIncomingFor reports whether the message was sent to local by someone else.
func (m Message) IsIncomingFor(local ParticipantID) bool {
	return m.SenderID != local
}

// SendMessageCommand carries an outgoing message before the store assigns its id and timestamp.
type SendMessageCommand struct {
	SenderID    ParticipantID `validate:"required,max=128"`
	RecipientID ParticipantID `validate:"required,max=128"`
	Text        string        `validate:"required,max=4000"`
}

func (c SendMessageCommand) Channel() ChannelKey {
	return ResolveChannel(c.SenderID, c.RecipientID)
}
