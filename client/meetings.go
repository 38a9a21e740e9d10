package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
)

// Meeting is the aggregate representing one transcript-derived summary.
// The backend assigns ID and CreatedAt on creation; both are immutable.
// Title, Instructions, and Summary are independently optional.
//
// CreatedAt and UpdatedAt are opaque strings: the backend emits isoformat
// timestamps without a timezone offset, which RFC 3339 parsing rejects, and
// the client only ever displays them.
type Meeting struct {
	ID             string   `json:"_id,omitempty"`
	Title          string   `json:"title,omitempty"`
	Instructions   string   `json:"instructions,omitempty"`
	Summary        string   `json:"summary,omitempty"`
	TranscriptText string   `json:"transcriptText,omitempty"`
	Recipients     []string `json:"recipients,omitempty"`
	CreatedAt      string   `json:"createdAt,omitempty"`
	UpdatedAt      string   `json:"updatedAt,omitempty"`
}

// DisplayTitle returns the title or a placeholder for untitled meetings.
func (m *Meeting) DisplayTitle() string {
	if m.Title == "" {
		return "Untitled Meeting"
	}
	return m.Title
}

// Clone returns a deep copy of the meeting.
func (m *Meeting) Clone() *Meeting {
	if m == nil {
		return nil
	}
	out := *m
	if m.Recipients != nil {
		out.Recipients = append([]string(nil), m.Recipients...)
	}
	return &out
}

// SearchResult is a read-only projection of a meeting returned for a query.
// It never mutates a Meeting and relates to the workspace's current meeting
// only by shared ID.
type SearchResult struct {
	ID        string `json:"_id"`
	Title     string `json:"title,omitempty"`
	Summary   string `json:"summary,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// SearchScope selects which fields a search query matches against.
type SearchScope string

const (
	ScopeTitle   SearchScope = "title"
	ScopeSummary SearchScope = "summary"
	ScopeBoth    SearchScope = "both"
)

// IsValid reports whether the scope is one the backend accepts.
func (s SearchScope) IsValid() bool {
	switch s {
	case ScopeTitle, ScopeSummary, ScopeBoth:
		return true
	default:
		return false
	}
}

// CreateSummaryRequest carries the inputs for summary generation. Text and
// File are mutually permissive; the backend decides precedence when both are
// supplied.
type CreateSummaryRequest struct {
	Title        string
	Instructions string
	Text         string

	// FileName and File describe an attached transcript file.
	FileName string
	File     io.Reader
}

// MeetingUpdate carries the editable fields for an update. Nil fields are
// omitted so the backend leaves them unchanged.
type MeetingUpdate struct {
	Title        *string `json:"title,omitempty"`
	Instructions *string `json:"instructions,omitempty"`
	Summary      *string `json:"summary,omitempty"`
}

// EmailRequest is the payload for dispatching a summary by email. Text and
// HTML carry the summary body pre-rendered so the backend need not regenerate
// formatting.
type EmailRequest struct {
	To      []string `json:"to"`
	Subject string   `json:"subject,omitempty"`
	Text    string   `json:"text,omitempty"`
	HTML    string   `json:"html,omitempty"`
}

// EmailAck is the backend's delivery acknowledgment.
type EmailAck struct {
	OK        bool   `json:"ok"`
	MessageID string `json:"messageId,omitempty"`
}

// CreateSummary submits a transcript for summarization and returns the
// persisted Meeting. At least one of Text or File must be set; the client
// does not enforce this, the workspace does.
func (c *Client) CreateSummary(ctx context.Context, req CreateSummaryRequest) (*Meeting, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if req.Title != "" {
		if err := w.WriteField("title", req.Title); err != nil {
			return nil, fmt.Errorf("writing title field: %w", err)
		}
	}
	if req.Instructions != "" {
		if err := w.WriteField("instructions", req.Instructions); err != nil {
			return nil, fmt.Errorf("writing instructions field: %w", err)
		}
	}
	if req.Text != "" {
		if err := w.WriteField("text", req.Text); err != nil {
			return nil, fmt.Errorf("writing text field: %w", err)
		}
	}
	if req.File != nil {
		name := req.FileName
		if name == "" {
			name = "transcript.txt"
		}
		part, err := w.CreateFormFile("file", name)
		if err != nil {
			return nil, fmt.Errorf("creating file part: %w", err)
		}
		if _, err := io.Copy(part, req.File); err != nil {
			return nil, fmt.Errorf("copying file: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	var meeting Meeting
	err := c.do(ctx, http.MethodPost, "/api/meetings/summarize", nil, &buf, w.FormDataContentType(), &meeting)
	if err != nil {
		return nil, err
	}
	return &meeting, nil
}

// ListMeetings returns stored meetings, most recent first.
func (c *Client) ListMeetings(ctx context.Context) ([]Meeting, error) {
	var meetings []Meeting
	if err := c.doJSON(ctx, http.MethodGet, "/api/meetings", nil, nil, &meetings); err != nil {
		return nil, err
	}
	return meetings, nil
}

// GetMeeting fetches a meeting by ID.
func (c *Client) GetMeeting(ctx context.Context, id string) (*Meeting, error) {
	var meeting Meeting
	if err := c.doJSON(ctx, http.MethodGet, "/api/meetings/"+url.PathEscape(id), nil, nil, &meeting); err != nil {
		return nil, err
	}
	return &meeting, nil
}

// UpdateMeeting persists edits and returns the server's authoritative copy.
func (c *Client) UpdateMeeting(ctx context.Context, id string, update MeetingUpdate) (*Meeting, error) {
	var meeting Meeting
	if err := c.doJSON(ctx, http.MethodPut, "/api/meetings/"+url.PathEscape(id), nil, update, &meeting); err != nil {
		return nil, err
	}
	return &meeting, nil
}

// SendEmail dispatches the meeting's summary to the given recipients.
func (c *Client) SendEmail(ctx context.Context, id string, req EmailRequest) (*EmailAck, error) {
	var ack EmailAck
	if err := c.doJSON(ctx, http.MethodPost, "/api/meetings/"+url.PathEscape(id)+"/email", nil, req, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// SearchMeetings runs a ranked search over stored meetings.
func (c *Client) SearchMeetings(ctx context.Context, query string, scope SearchScope, limit int) ([]SearchResult, error) {
	if !scope.IsValid() {
		return nil, fmt.Errorf("invalid search scope %q", scope)
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("scope", string(scope))
	q.Set("limit", strconv.Itoa(limit))

	var results []SearchResult
	if err := c.doJSON(ctx, http.MethodGet, "/api/meetings/search", q, nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteMeeting removes a meeting. The acknowledgment body is discarded.
func (c *Client) DeleteMeeting(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/meetings/"+url.PathEscape(id), nil, nil, nil)
}
