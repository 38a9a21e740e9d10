// Package render converts markdown summaries to the HTML email body the
// backend mailer produces, so client-rendered and server-rendered emails
// look identical.
package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// md renders GitHub-flavored markdown, matching the backend's "extra"
// markdown extensions (tables, strikethrough, task lists).
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// SummaryHTML renders a markdown summary into a styled, self-contained email
// body with the subject as heading.
func SummaryHTML(subject, summary string) (string, error) {
	var body strings.Builder
	if err := md.Convert([]byte(summary), &body); err != nil {
		return "", fmt.Errorf("rendering summary: %w", err)
	}

	return fmt.Sprintf(
		"<div style='font-family:Inter,Segoe UI,Arial,sans-serif;line-height:1.6;color:#111827'>"+
			"<h2 style='margin:0 0 12px;font-size:20px'>%s</h2>"+
			"<div>%s</div>"+
			"</div>",
		html.EscapeString(subject), body.String()), nil
}
