package services

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"wisp/contract"
	"wisp/domain"
)

const (
	noticeSupportEmpty         = "Please describe your issue before sending."
	noticeSupportNotConfigured = "Support feature is not configured."
	noticeSupportFailed        = "Failed to send message. Please try again later."
	noticeSupportSent          = "Your message has been sent successfully."
)

type SupportService struct {
	log    *slog.Logger
	sender contract.SupportSender
	local  domain.ParticipantID
	now    func() time.Time
}

// NewSupportService accepts a nil sender, tickets are then answered with a "not configured" notice.
func NewSupportService(log *slog.Logger, sender contract.SupportSender, local domain.ParticipantID) *SupportService {
	return &SupportService{log: log, sender: sender, local: local, now: time.Now}
}

// Submit forwards a ticket once, a failure is reported to the user and not retried.
func (s *SupportService) Submit(ctx context.Context, text string) domain.Notice {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Notice{Level: domain.NoticeWarning, Text: noticeSupportEmpty}
	}
	if s.sender == nil {
		return domain.Notice{Level: domain.NoticeWarning, Text: noticeSupportNotConfigured}
	}

	ticket := domain.SupportTicket{From: s.local, Text: text, At: s.now().UTC()}
	if err := s.sender.Send(ctx, ticket); err != nil {
		s.log.Error("Support ticket not delivered", "error", err)
		return domain.Notice{Level: domain.NoticeAlert, Text: noticeSupportFailed}
	}
	s.log.Info("Support ticket delivered", "from", s.local)
	return domain.Notice{Level: domain.NoticeInfo, Text: noticeSupportSent}
}
