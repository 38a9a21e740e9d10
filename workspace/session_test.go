package workspace

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recaphq/recap-cli/client"
	rcerrors "github.com/recaphq/recap-cli/pkg/errors"
)

// fakeAPI is a scriptable MeetingAPI. Optional gates block the call until
// released, for tests that observe in-flight state.
type fakeAPI struct {
	mu sync.Mutex

	createResp  *client.Meeting
	createErr   error
	createGate  chan struct{}
	createCalls int
	lastCreate  client.CreateSummaryRequest

	getResp *client.Meeting
	getErr  error

	updateResp  *client.Meeting
	updateErr   error
	updateCalls int
	updateID    string
	lastUpdate  client.MeetingUpdate

	emailAck   *client.EmailAck
	emailErr   error
	emailCalls int
	lastEmail  client.EmailRequest
}

func (f *fakeAPI) CreateSummary(ctx context.Context, req client.CreateSummaryRequest) (*client.Meeting, error) {
	f.mu.Lock()
	f.createCalls++
	f.lastCreate = req
	gate := f.createGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return f.createResp, f.createErr
}

func (f *fakeAPI) GetMeeting(ctx context.Context, id string) (*client.Meeting, error) {
	return f.getResp, f.getErr
}

func (f *fakeAPI) UpdateMeeting(ctx context.Context, id string, update client.MeetingUpdate) (*client.Meeting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	f.updateID = id
	f.lastUpdate = update
	return f.updateResp, f.updateErr
}

func (f *fakeAPI) SendEmail(ctx context.Context, id string, req client.EmailRequest) (*client.EmailAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emailCalls++
	f.lastEmail = req
	return f.emailAck, f.emailErr
}

// recordingNotifier captures feedback in arrival order.
type recordingNotifier struct {
	mu      sync.Mutex
	notices []string
	errors  []string
}

func (r *recordingNotifier) Notice(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, msg)
}

func (r *recordingNotifier) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, msg)
}

func testMeeting() *client.Meeting {
	return &client.Meeting{
		ID:             "m-1",
		Title:          "Q3 Planning",
		Instructions:   "Focus on action items",
		Summary:        "## Decisions\n- Ship in October",
		TranscriptText: "Alice: let's ship in October.",
		Recipients:     []string{"alice@example.com"},
	}
}

func loadedSession(t *testing.T, api *fakeAPI, opts *SessionOptions) *Session {
	t.Helper()
	api.getResp = testMeeting()
	s := NewSession(api, opts)
	require.NoError(t, s.Load(context.Background(), "m-1"))
	return s
}

func TestGenerate_InstallsMeeting(t *testing.T) {
	api := &fakeAPI{createResp: testMeeting()}
	s := NewSession(api, nil)

	err := s.Generate(context.Background(), GenerateInput{
		Title:        "Q3 Planning",
		Instructions: "Focus on action items",
		Text:         "Alice: let's ship in October.",
	})

	require.NoError(t, err)
	require.NotNil(t, s.Current())
	assert.Equal(t, "m-1", s.Current().ID)
	assert.Equal(t, ModeViewing, s.Mode())
	assert.Equal(t, OpNone, s.Pending())
	assert.Equal(t, "Summary generated", s.Notice())
	assert.Empty(t, s.Err())
	assert.Equal(t, "Q3 Planning", api.lastCreate.Title)
	assert.Equal(t, "Alice: let's ship in October.", api.lastCreate.Text)
}

func TestGenerate_RequiresTranscript(t *testing.T) {
	api := &fakeAPI{}
	s := NewSession(api, nil)

	err := s.Generate(context.Background(), GenerateInput{Title: "Untitled", Text: "   "})

	require.Error(t, err)
	assert.True(t, rcerrors.IsValidation(err))
	assert.Equal(t, 0, api.createCalls)
	assert.Contains(t, s.Err(), "transcript")
	assert.Nil(t, s.Current())
}

func TestGenerate_FailureLeavesCurrentUntouched(t *testing.T) {
	api := &fakeAPI{}
	s := loadedSession(t, api, nil)
	before := s.Current().Clone()

	api.createErr = &client.TransportError{StatusCode: 502, Message: "model unavailable"}
	err := s.Generate(context.Background(), GenerateInput{Text: "raw transcript"})

	require.Error(t, err)
	assert.Equal(t, before, s.Current())
	assert.Equal(t, "model unavailable", s.Err())
	assert.Empty(t, s.Notice())
	assert.Equal(t, OpNone, s.Pending())
}

func TestGenerate_ClearsPriorError(t *testing.T) {
	api := &fakeAPI{createErr: errors.New("boom")}
	s := NewSession(api, nil)
	_ = s.Generate(context.Background(), GenerateInput{Text: "t"})
	require.NotEmpty(t, s.Err())

	api.createErr = nil
	api.createResp = testMeeting()
	require.NoError(t, s.Generate(context.Background(), GenerateInput{Text: "t2"}))
	assert.Empty(t, s.Err())
	assert.Equal(t, "Summary generated", s.Notice())
}

func TestGenerate_PendingWhileInFlight(t *testing.T) {
	gate := make(chan struct{})
	api := &fakeAPI{createResp: testMeeting(), createGate: gate}
	s := NewSession(api, nil)

	done := make(chan error, 1)
	go func() {
		done <- s.Generate(context.Background(), GenerateInput{Text: "t"})
	}()

	assert.Eventually(t, func() bool { return s.Pending() == OpGenerating },
		time.Second, 5*time.Millisecond)

	close(gate)
	require.NoError(t, <-done)
	assert.Equal(t, OpNone, s.Pending())
}

func TestBeginEdit_RequiresMeeting(t *testing.T) {
	s := NewSession(&fakeAPI{}, nil)
	err := s.BeginEdit()
	require.Error(t, err)
	assert.True(t, rcerrors.IsInvalidState(err))
}

func TestSetField_RequiresEditing(t *testing.T) {
	s := loadedSession(t, &fakeAPI{}, nil)
	err := s.SetTitle("new title")
	require.Error(t, err)
	assert.True(t, rcerrors.IsInvalidState(err))
	assert.Equal(t, "Q3 Planning", s.Current().Title)
}

func TestSave_ServerResponseWins(t *testing.T) {
	api := &fakeAPI{}
	s := loadedSession(t, api, nil)
	require.NoError(t, s.BeginEdit())
	require.NoError(t, s.SetTitle("  padded title  "))
	require.NoError(t, s.SetSummary("edited summary"))

	api.updateResp = &client.Meeting{
		ID:        "m-1",
		Title:     "padded title",
		Summary:   "edited summary",
		UpdatedAt: "2026-08-29T10:00:00Z",
	}
	require.NoError(t, s.Save(context.Background()))

	require.NotNil(t, api.lastUpdate.Title)
	assert.Equal(t, "  padded title  ", *api.lastUpdate.Title)
	require.NotNil(t, api.lastUpdate.Summary)
	assert.Equal(t, "edited summary", *api.lastUpdate.Summary)

	assert.Equal(t, api.updateResp, s.Current())
	assert.Equal(t, "padded title", s.Current().Title)
	assert.Equal(t, ModeViewing, s.Mode())
	assert.Equal(t, "Summary saved", s.Notice())
}

func TestSave_FailureStaysEditing(t *testing.T) {
	api := &fakeAPI{updateErr: &client.TransportError{StatusCode: 500, Message: "write failed"}}
	s := loadedSession(t, api, nil)
	require.NoError(t, s.BeginEdit())
	require.NoError(t, s.SetTitle("local edit"))

	err := s.Save(context.Background())

	require.Error(t, err)
	assert.Equal(t, ModeEditing, s.Mode())
	assert.Equal(t, "local edit", s.Current().Title)
	assert.Equal(t, "write failed", s.Err())
}

func TestSave_RequiresStoredMeeting(t *testing.T) {
	api := &fakeAPI{}
	s := NewSession(api, nil)
	err := s.Save(context.Background())
	require.Error(t, err)
	assert.True(t, rcerrors.IsInvalidState(err))
	assert.Equal(t, 0, api.updateCalls)
}

func TestCancelEdit_RestoresSnapshot(t *testing.T) {
	s := loadedSession(t, &fakeAPI{}, nil)
	original := s.Current().Clone()

	require.NoError(t, s.BeginEdit())
	require.NoError(t, s.SetTitle("discarded"))
	require.NoError(t, s.SetInstructions("discarded"))
	require.NoError(t, s.SetSummary("discarded"))

	require.NoError(t, s.CancelEdit())

	assert.Equal(t, original, s.Current())
	assert.Equal(t, ModeViewing, s.Mode())

	err := s.CancelEdit()
	require.Error(t, err)
	assert.True(t, rcerrors.IsInvalidState(err))
}

func TestSplitRecipients(t *testing.T) {
	tests := []struct {
		name  string
		field string
		want  []string
	}{
		{"single", "a@example.com", []string{"a@example.com"}},
		{"multiple with spaces", " a@example.com , b@example.com ", []string{"a@example.com", "b@example.com"}},
		{"blank entries dropped", "a@example.com,, ,b@example.com", []string{"a@example.com", "b@example.com"}},
		{"only separators", "  , ,", nil},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitRecipients(tt.field))
		})
	}
}

func TestSendEmail_Success(t *testing.T) {
	api := &fakeAPI{emailAck: &client.EmailAck{OK: true, MessageID: "msg-9"}}
	s := loadedSession(t, api, nil)
	s.SetRecipients(" a@example.com, b@example.com ,, ")

	require.NoError(t, s.SendEmail(context.Background()))

	assert.Equal(t, []string{"a@example.com", "b@example.com"}, api.lastEmail.To)
	assert.Equal(t, "Q3 Planning", api.lastEmail.Subject)
	assert.Equal(t, s.Current().Summary, api.lastEmail.Text)
	assert.Empty(t, s.RecipientsField())
	assert.Equal(t, "Email sent to 2 recipient(s)", s.Notice())
}

func TestSendEmail_DefaultSubject(t *testing.T) {
	api := &fakeAPI{emailAck: &client.EmailAck{OK: true}}
	api.getResp = &client.Meeting{ID: "m-2", Summary: "body"}
	s := NewSession(api, nil)
	require.NoError(t, s.Load(context.Background(), "m-2"))
	s.SetRecipients("a@example.com")

	require.NoError(t, s.SendEmail(context.Background()))
	assert.Equal(t, DefaultEmailSubject, api.lastEmail.Subject)
}

func TestSendEmail_BlankRecipients(t *testing.T) {
	api := &fakeAPI{}
	s := loadedSession(t, api, nil)
	s.SetRecipients("  , ,")

	err := s.SendEmail(context.Background())

	require.Error(t, err)
	assert.True(t, rcerrors.IsValidation(err))
	assert.Equal(t, 0, api.emailCalls)
	assert.Contains(t, s.Err(), "recipient")
}

func TestSendEmail_FailurePreservesRecipients(t *testing.T) {
	api := &fakeAPI{emailErr: &client.TransportError{StatusCode: 502, Message: "smtp relay down"}}
	s := loadedSession(t, api, nil)
	s.SetRecipients("a@example.com")

	err := s.SendEmail(context.Background())

	require.Error(t, err)
	assert.Equal(t, "a@example.com", s.RecipientsField())
	assert.Equal(t, "smtp relay down", s.Err())
}

func TestSendEmail_RendersHTML(t *testing.T) {
	api := &fakeAPI{emailAck: &client.EmailAck{OK: true}}
	render := func(subject, summary string) (string, error) {
		return "<h2>" + subject + "</h2>" + summary, nil
	}
	s := loadedSession(t, api, &SessionOptions{RenderHTML: render})
	s.SetRecipients("a@example.com")

	require.NoError(t, s.SendEmail(context.Background()))
	assert.True(t, strings.HasPrefix(api.lastEmail.HTML, "<h2>Q3 Planning</h2>"))
}

func TestNotifier_LatestWins(t *testing.T) {
	rec := &recordingNotifier{}
	api := &fakeAPI{createErr: errors.New("boom")}
	s := NewSession(api, &SessionOptions{Notifier: rec})

	_ = s.Generate(context.Background(), GenerateInput{Text: "t"})
	require.NotEmpty(t, s.Err())
	assert.Empty(t, s.Notice())

	api.createErr = nil
	api.createResp = testMeeting()
	require.NoError(t, s.Generate(context.Background(), GenerateInput{Text: "t"}))
	assert.Empty(t, s.Err())
	assert.Equal(t, "Summary generated", s.Notice())

	assert.Equal(t, []string{"boom"}, rec.errors)
	assert.Equal(t, []string{"Summary generated"}, rec.notices)
}

func TestWorkspaceLifecycle(t *testing.T) {
	api := &fakeAPI{
		createResp: testMeeting(),
		emailAck:   &client.EmailAck{OK: true},
	}
	s := NewSession(api, nil)

	require.NoError(t, s.Generate(context.Background(), GenerateInput{
		Title: "Q3 Planning",
		Text:  "Alice: let's ship in October.",
	}))

	require.NoError(t, s.BeginEdit())
	require.NoError(t, s.SetSummary("tightened summary"))
	api.updateResp = &client.Meeting{ID: "m-1", Title: "Q3 Planning", Summary: "tightened summary"}
	require.NoError(t, s.Save(context.Background()))
	assert.Equal(t, "tightened summary", s.Current().Summary)

	s.SetRecipients("team@example.com")
	require.NoError(t, s.SendEmail(context.Background()))
	assert.Equal(t, "tightened summary", api.lastEmail.Text)
	assert.Empty(t, s.RecipientsField())
}
