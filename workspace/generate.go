package workspace

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/recaphq/recap-cli/client"
	rcerrors "github.com/recaphq/recap-cli/pkg/errors"
	"github.com/recaphq/recap-cli/pkg/logging"
)

// GenerateInput carries the transcript submission for summary generation.
// Text and File are alternatives; when both are set the backend uses Text
// and falls back to the file only when Text is empty.
type GenerateInput struct {
	Title        string
	Instructions string
	Text         string
	FileName     string
	File         io.Reader
}

// Generate submits a transcript for summarization and installs the returned
// meeting as the current one. Generation is atomic from the workspace's
// point of view: on failure the current meeting is left untouched, on
// success the new meeting replaces it wholesale and the mode resets to
// viewing.
func (s *Session) Generate(ctx context.Context, in GenerateInput) error {
	s.mu.Lock()
	s.clearFeedbackLocked()
	if strings.TrimSpace(in.Text) == "" && in.File == nil {
		err := fmt.Errorf("%w: a transcript is required, paste text or attach a file", rcerrors.ErrValidation)
		s.setErrorLocked(errorMessage(err))
		s.mu.Unlock()
		return err
	}
	s.pending = OpGenerating
	s.mu.Unlock()

	s.log.Debug("generating summary", logging.F("title", in.Title))

	meeting, err := s.api.CreateSummary(ctx, client.CreateSummaryRequest{
		Title:        in.Title,
		Instructions: in.Instructions,
		Text:         in.Text,
		FileName:     in.FileName,
		File:         in.File,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearPendingLocked(OpGenerating)
	if err != nil {
		s.setErrorLocked(errorMessage(err))
		return fmt.Errorf("generating summary: %w", err)
	}
	s.current = meeting
	s.snapshot = nil
	s.mode = ModeViewing
	s.setNoticeLocked("Summary generated")
	s.log.Info("summary generated", logging.F("meeting_id", meeting.ID))
	return nil
}
