// Package workspace coordinates the meeting workspace: a single mutable
// current meeting shared by the generation, edit/save, and email controllers,
// plus a debounced cancellable searcher over the stored collection.
//
// The session is the sole owner of the current meeting. Controllers commit
// results back through the session's own methods and never mutate through
// stale copies. All feedback surfaces through a Notifier observer, keeping
// the core independent of any presentation layer.
package workspace

import (
	"context"
	"sync"

	"github.com/recaphq/recap-cli/client"
	"github.com/recaphq/recap-cli/pkg/logging"
)

// Mode is the workspace view mode.
type Mode int

const (
	ModeViewing Mode = iota
	ModeEditing
)

// String returns a human-readable mode name.
func (m Mode) String() string {
	switch m {
	case ModeViewing:
		return "viewing"
	case ModeEditing:
		return "editing"
	default:
		return "unknown"
	}
}

// PendingOp is the operation currently in flight, if any. The gate is
// advisory: callers disable re-triggering while an operation is pending,
// but nothing here blocks a racing call.
type PendingOp int

const (
	OpNone PendingOp = iota
	OpGenerating
	OpSaving
	OpSending
)

// String returns a human-readable operation name.
func (op PendingOp) String() string {
	switch op {
	case OpNone:
		return "none"
	case OpGenerating:
		return "generating"
	case OpSaving:
		return "saving"
	case OpSending:
		return "sending"
	default:
		return "unknown"
	}
}

// Notifier receives user-facing feedback on state transitions. Notice and
// Error are mutually exclusive: raising one clears the other.
type Notifier interface {
	Notice(msg string)
	Error(msg string)
}

// nopNotifier discards all feedback.
type nopNotifier struct{}

func (nopNotifier) Notice(msg string) {}
func (nopNotifier) Error(msg string)  {}

// MeetingAPI is the backend surface the session needs. *client.Client
// satisfies it.
type MeetingAPI interface {
	CreateSummary(ctx context.Context, req client.CreateSummaryRequest) (*client.Meeting, error)
	GetMeeting(ctx context.Context, id string) (*client.Meeting, error)
	UpdateMeeting(ctx context.Context, id string, update client.MeetingUpdate) (*client.Meeting, error)
	SendEmail(ctx context.Context, id string, req client.EmailRequest) (*client.EmailAck, error)
}

// RenderFunc pre-renders a summary for email dispatch. Nil leaves rendering
// to the backend.
type RenderFunc func(subject, summary string) (string, error)

// SessionOptions configures a Session.
type SessionOptions struct {
	// Notifier receives notices and errors. Nil discards them.
	Notifier Notifier

	// RenderHTML pre-renders the summary body for email dispatch.
	RenderHTML RenderFunc

	// Logger receives debug logs. Nil disables logging.
	Logger logging.Logger
}

// Session holds the workspace state for one meeting view.
type Session struct {
	mu       sync.Mutex
	api      MeetingAPI
	notifier Notifier
	render   RenderFunc
	log      logging.Logger

	current  *client.Meeting
	snapshot *client.Meeting // last server-confirmed copy, held while editing
	mode     Mode
	pending  PendingOp

	notice     string
	errMsg     string
	recipients string
}

// NewSession creates a Session backed by api.
func NewSession(api MeetingAPI, opts *SessionOptions) *Session {
	if opts == nil {
		opts = &SessionOptions{}
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}
	log := opts.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Session{
		api:      api,
		notifier: notifier,
		render:   opts.RenderHTML,
		log:      log,
	}
}

// Current returns the meeting under view, or nil. The session owns the
// meeting; callers must not hold the pointer across session operations.
func (s *Session) Current() *client.Meeting {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Mode returns the current view mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Pending returns the operation currently in flight.
func (s *Session) Pending() PendingOp {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Notice returns the latest success notice, or "".
func (s *Session) Notice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice
}

// Err returns the latest error message, or "".
func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Load fetches a meeting by ID and installs it as the current meeting.
func (s *Session) Load(ctx context.Context, id string) error {
	s.mu.Lock()
	s.clearFeedbackLocked()
	s.mu.Unlock()

	meeting, err := s.api.GetMeeting(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.setErrorLocked(errorMessage(err))
		return err
	}
	s.current = meeting
	s.snapshot = nil
	s.mode = ModeViewing
	return nil
}

// clearFeedbackLocked resets both feedback channels. Every user-initiated
// operation starts with this.
func (s *Session) clearFeedbackLocked() {
	s.notice = ""
	s.errMsg = ""
}

// setNoticeLocked records a success notice, clearing any error.
func (s *Session) setNoticeLocked(msg string) {
	s.notice = msg
	s.errMsg = ""
	s.notifier.Notice(msg)
}

// setErrorLocked records an error message, clearing any notice.
func (s *Session) setErrorLocked(msg string) {
	s.errMsg = msg
	s.notice = ""
	s.notifier.Error(msg)
}

// clearPendingLocked resets the pending gate if it still belongs to op.
// A racing operation of another kind may have taken the slot meanwhile.
func (s *Session) clearPendingLocked(op PendingOp) {
	if s.pending == op {
		s.pending = OpNone
	}
}

// errorMessage extracts the user-facing message from an operation error:
// the server-supplied text for transport failures, err.Error() otherwise.
func errorMessage(err error) string {
	if te, ok := client.AsTransportError(err); ok {
		return te.Message
	}
	return err.Error()
}
