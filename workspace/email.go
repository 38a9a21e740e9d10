package workspace

import (
	"context"
	"fmt"
	"strings"

	"github.com/recaphq/recap-cli/client"
	rcerrors "github.com/recaphq/recap-cli/pkg/errors"
	"github.com/recaphq/recap-cli/pkg/logging"
)

// DefaultEmailSubject is used when the meeting has no title.
const DefaultEmailSubject = "Meeting Summary"

// SplitRecipients parses a comma-separated recipients field, trimming
// whitespace and dropping empty entries. A field of only separators and
// spaces yields nil.
func SplitRecipients(field string) []string {
	var out []string
	for _, part := range strings.Split(field, ",") {
		if addr := strings.TrimSpace(part); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// SetRecipients stores the raw recipients field. It is parsed at send time.
func (s *Session) SetRecipients(field string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipients = field
}

// RecipientsField returns the raw recipients field.
func (s *Session) RecipientsField() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recipients
}

// SendEmail dispatches the current summary to the stored recipients. The
// subject is the meeting title, falling back to DefaultEmailSubject. On
// success the recipients field is cleared; on failure it is preserved for
// a retry.
func (s *Session) SendEmail(ctx context.Context) error {
	s.mu.Lock()
	s.clearFeedbackLocked()
	if s.current == nil || s.current.ID == "" {
		err := fmt.Errorf("%w: no summary to send, generate one first", rcerrors.ErrInvalidState)
		s.setErrorLocked(errorMessage(err))
		s.mu.Unlock()
		return err
	}
	to := SplitRecipients(s.recipients)
	if len(to) == 0 {
		err := fmt.Errorf("%w: at least one recipient is required", rcerrors.ErrValidation)
		s.setErrorLocked(errorMessage(err))
		s.mu.Unlock()
		return err
	}
	id := s.current.ID
	subject := s.current.Title
	if strings.TrimSpace(subject) == "" {
		subject = DefaultEmailSubject
	}
	summary := s.current.Summary
	s.pending = OpSending
	s.mu.Unlock()

	var html string
	if s.render != nil {
		rendered, err := s.render(subject, summary)
		if err != nil {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.clearPendingLocked(OpSending)
			s.setErrorLocked(errorMessage(err))
			return fmt.Errorf("rendering email body: %w", err)
		}
		html = rendered
	}

	ack, err := s.api.SendEmail(ctx, id, client.EmailRequest{
		To:      to,
		Subject: subject,
		Text:    summary,
		HTML:    html,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearPendingLocked(OpSending)
	if err != nil {
		s.setErrorLocked(errorMessage(err))
		return fmt.Errorf("sending email for meeting %s: %w", id, err)
	}
	s.recipients = ""
	s.setNoticeLocked(fmt.Sprintf("Email sent to %d recipient(s)", len(to)))
	s.log.Info("email sent",
		logging.F("meeting_id", id),
		logging.F("recipients", len(to)),
		logging.F("message_id", ack.MessageID))
	return nil
}
