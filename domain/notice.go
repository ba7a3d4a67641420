package domain

import "time"

type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeAlert   NoticeLevel = "alert"
)

// Notice is a transient message shown to the user instead of an error.
type Notice struct {
	Level NoticeLevel
	Text  string
}

func (n Notice) IsZero() bool {
	return n.Text == ""
}

// SupportTicket is a free-text request forwarded to the support webhook.
type SupportTicket struct {
	From ParticipantID
	Text string
	At   time.Time
}

// ConversationView is what the presentation layer renders for one channel.
type ConversationView struct {
	Channel     ChannelKey
	Local       ParticipantID
	Peer        ParticipantID
	Messages    []Message
	Suggestions SuggestionSet
	Draft       string
	Variants    map[Tone]string
	Loading     bool
	Generating  bool
	Composing   bool
	Notice      Notice
}

// DirectoryStats summarizes the store for the dashboard.
type DirectoryStats struct {
	TotalUsers    int
	TotalMessages int
	Channels      int
}
