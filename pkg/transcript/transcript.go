// Package transcript loads meeting transcripts from local files before
// upload. WebVTT exports (Teams, Zoom) are reduced to speaker-attributed
// dialogue text; anything else is treated as plain text.
package transcript

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Transcript is a transcript prepared for summarization.
type Transcript struct {
	// Text is the dialogue, one "Speaker: line" per utterance where
	// speakers are known.
	Text string

	// Speakers are the unique speaker names, in order of first appearance.
	Speakers []string

	// DurationSeconds is the elapsed time of the last timed utterance.
	// Zero when the source carries no timestamps.
	DurationSeconds int

	// Format is the detected source format: "vtt" or "text".
	Format string
}

// Load reads a transcript file, choosing the parser by file extension.
func Load(path string) (*Transcript, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening transcript: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".vtt":
		t, err := ParseVTT(f)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
		}
		return t, nil
	default:
		t, err := ParseText(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
		}
		return t, nil
	}
}

// ParseText reads a plain-text transcript as-is.
func ParseText(r io.Reader) (*Transcript, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &Transcript{
		Text:   strings.TrimSpace(string(data)),
		Format: "text",
	}, nil
}
