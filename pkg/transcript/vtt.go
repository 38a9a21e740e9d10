package transcript

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// WebVTT parsing regular expressions.
var (
	// Matches a cue identifier with an embedded speaker: 3 "Mitul Mehta" (3330436864)
	vttCueSpeakerRegex = regexp.MustCompile(`^\d+\s+"([^"]*)"(?:\s+\(\d+\))?$`)

	// Matches a timing line: 00:00:05.579 --> 00:00:06.858
	vttTimingRegex = regexp.MustCompile(`^(\d{2}:\d{2}:\d{2}\.\d{3})\s+-->\s+(\d{2}:\d{2}:\d{2}\.\d{3})`)

	// Matches an inline voice span: <v Mitul Mehta>text</v>
	vttVoiceSpanRegex = regexp.MustCompile(`^<v\s+([^>]+)>(.*?)(?:</v>)?$`)
)

// ParseVTT parses a WebVTT transcript into speaker-attributed dialogue.
func ParseVTT(r io.Reader) (*Transcript, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	out := &Transcript{Format: "vtt"}
	speakerSeen := make(map[string]bool)
	var dialogue strings.Builder

	addSpeaker := func(name string) {
		if name != "" && !speakerSeen[name] {
			speakerSeen[name] = true
			out.Speakers = append(out.Speakers, name)
		}
	}

	var currentSpeaker string
	var lastEndMs int
	inCue := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			inCue = false
			continue
		}
		if line == "WEBVTT" || strings.HasPrefix(line, "NOTE") {
			continue
		}

		if m := vttCueSpeakerRegex.FindStringSubmatch(line); m != nil {
			currentSpeaker = m[1]
			addSpeaker(currentSpeaker)
			continue
		}

		if m := vttTimingRegex.FindStringSubmatch(line); m != nil {
			if end := parseVTTTimestamp(m[2]); end > lastEndMs {
				lastEndMs = end
			}
			inCue = true
			continue
		}

		if !inCue {
			// Bare cue identifiers without a speaker.
			if _, err := strconv.Atoi(line); err == nil {
				continue
			}
		}

		text := line
		if m := vttVoiceSpanRegex.FindStringSubmatch(line); m != nil {
			currentSpeaker = strings.TrimSpace(m[1])
			addSpeaker(currentSpeaker)
			text = strings.TrimSpace(m[2])
		}
		if text == "" {
			continue
		}

		if dialogue.Len() > 0 {
			dialogue.WriteString("\n")
		}
		if currentSpeaker != "" {
			dialogue.WriteString(currentSpeaker)
			dialogue.WriteString(": ")
		}
		dialogue.WriteString(text)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	out.Text = dialogue.String()
	out.DurationSeconds = lastEndMs / 1000
	return out, nil
}

// parseVTTTimestamp converts HH:MM:SS.mmm to milliseconds.
func parseVTTTimestamp(ts string) int {
	parts := strings.Split(ts, ":")
	if len(parts) != 3 {
		return 0
	}

	hours, _ := strconv.Atoi(parts[0])
	minutes, _ := strconv.Atoi(parts[1])

	secParts := strings.Split(parts[2], ".")
	seconds, _ := strconv.Atoi(secParts[0])
	milliseconds := 0
	if len(secParts) > 1 {
		milliseconds, _ = strconv.Atoi(secParts[1])
	}

	return hours*3600000 + minutes*60000 + seconds*1000 + milliseconds
}
