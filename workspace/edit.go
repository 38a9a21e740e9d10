package workspace

import (
	"context"
	"fmt"

	"github.com/recaphq/recap-cli/client"
	rcerrors "github.com/recaphq/recap-cli/pkg/errors"
	"github.com/recaphq/recap-cli/pkg/logging"
)

// BeginEdit enters editing mode, capturing a snapshot of the current
// meeting for a later cancel. Calling it while already editing keeps the
// original snapshot.
func (s *Session) BeginEdit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return fmt.Errorf("%w: no meeting loaded", rcerrors.ErrInvalidState)
	}
	if s.mode == ModeEditing {
		return nil
	}
	s.snapshot = s.current.Clone()
	s.mode = ModeEditing
	return nil
}

// SetTitle updates the title of the meeting being edited. The change is
// speculative until Save confirms it against the backend.
func (s *Session) SetTitle(v string) error {
	return s.setField(func(m *client.Meeting) { m.Title = v })
}

// SetInstructions updates the instructions of the meeting being edited.
func (s *Session) SetInstructions(v string) error {
	return s.setField(func(m *client.Meeting) { m.Instructions = v })
}

// SetSummary updates the summary of the meeting being edited.
func (s *Session) SetSummary(v string) error {
	return s.setField(func(m *client.Meeting) { m.Summary = v })
}

func (s *Session) setField(mutate func(*client.Meeting)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != ModeEditing || s.current == nil {
		return fmt.Errorf("%w: not editing", rcerrors.ErrInvalidState)
	}
	mutate(s.current)
	return nil
}

// Save persists the edited title, instructions, and summary. The server's
// response is authoritative: the returned meeting replaces the local one
// wholesale, including any normalization the backend applied. On failure
// the session stays in editing mode with the local edits intact.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	s.clearFeedbackLocked()
	if s.current == nil || s.current.ID == "" {
		err := fmt.Errorf("%w: nothing to save, generate a summary first", rcerrors.ErrInvalidState)
		s.setErrorLocked(errorMessage(err))
		s.mu.Unlock()
		return err
	}
	id := s.current.ID
	title := s.current.Title
	instructions := s.current.Instructions
	summary := s.current.Summary
	s.pending = OpSaving
	s.mu.Unlock()

	updated, err := s.api.UpdateMeeting(ctx, id, client.MeetingUpdate{
		Title:        &title,
		Instructions: &instructions,
		Summary:      &summary,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearPendingLocked(OpSaving)
	if err != nil {
		s.setErrorLocked(errorMessage(err))
		return fmt.Errorf("saving meeting %s: %w", id, err)
	}
	s.current = updated
	s.snapshot = nil
	s.mode = ModeViewing
	s.setNoticeLocked("Summary saved")
	s.log.Info("meeting saved", logging.F("meeting_id", id))
	return nil
}

// CancelEdit discards local edits and restores the snapshot captured at
// BeginEdit. No network round trip takes place.
func (s *Session) CancelEdit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != ModeEditing {
		return fmt.Errorf("%w: not editing", rcerrors.ErrInvalidState)
	}
	s.current = s.snapshot
	s.snapshot = nil
	s.mode = ModeViewing
	return nil
}
