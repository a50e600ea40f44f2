// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/winfunc/deepreasoning/internal/model"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports chats to a standalone HTML page with embedded CSS.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

type htmlPage struct {
	Title        string
	Created      string
	Updated      string
	MessageCount int
	Messages     []htmlMessage
	Exported     string
	Dark         bool
	Metadata     bool
}

type htmlMessage struct {
	RoleClass string
	RoleLabel string
	Timestamp string
	Content   string
	Thinking  string
}

var htmlTemplate = template.Must(template.New("chat").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; max-width: 52rem; margin: 0 auto; padding: 1rem;
  {{if .Dark}}background: #1a1b26; color: #c0caf5;{{else}}background: #ffffff; color: #24292f;{{end}} }
.msg { margin: 1rem 0; padding: 0.75rem 1rem; border-radius: 8px; }
.user { {{if .Dark}}background: #283457;{{else}}background: #ddf4ff;{{end}} }
.assistant { {{if .Dark}}background: #24283b;{{else}}background: #f6f8fa;{{end}} }
.role { font-weight: 600; font-size: 0.85rem; text-transform: uppercase; opacity: 0.7; }
.time { float: right; font-size: 0.8rem; opacity: 0.5; }
.content { white-space: pre-wrap; margin-top: 0.5rem; }
details { margin-top: 0.5rem; opacity: 0.75; font-style: italic; }
summary { cursor: pointer; font-style: normal; }
footer { margin-top: 2rem; font-size: 0.8rem; opacity: 0.5; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{if .Metadata}}<p>Created {{.Created}} · Updated {{.Updated}} · {{.MessageCount}} messages</p>{{end}}
{{range .Messages}}<div class="msg {{.RoleClass}}">
<span class="role">{{.RoleLabel}}</span>{{if .Timestamp}}<span class="time">{{.Timestamp}}</span>{{end}}
{{if .Thinking}}<details><summary>Reasoning</summary><div class="content">{{.Thinking}}</div></details>{{end}}
<div class="content">{{.Content}}</div>
</div>
{{end}}<footer>Exported from deepreasoning on {{.Exported}}</footer>
</body>
</html>
`))

// Export converts a chat to a self-contained HTML document.
func (e *HTMLExporter) Export(chat *model.Chat) ([]byte, error) {
	if chat == nil {
		return nil, fmt.Errorf("chat is nil")
	}
	if len(chat.Messages) == 0 {
		return nil, fmt.Errorf("chat has no messages")
	}

	page := htmlPage{
		Title:        chat.Title,
		Created:      formatTimestamp(chat.CreatedAt),
		Updated:      formatTimestamp(chat.UpdatedAt),
		MessageCount: len(chat.Messages),
		Exported:     time.Now().Format("January 2, 2006 at 3:04 PM"),
		Dark:         e.options.Theme != "light",
		Metadata:     e.options.IncludeMetadata,
	}

	for _, msg := range chat.Messages {
		hm := htmlMessage{
			RoleClass: msg.Role.String(),
			RoleLabel: msg.Role.DisplayName(),
			Content:   msg.Content,
		}
		if e.options.IncludeTimestamps {
			hm.Timestamp = formatShortTimestamp(msg.Timestamp)
		}
		if e.options.IncludeThinking && msg.HasThinking() {
			hm.Thinking = msg.Thinking
		}
		page.Messages = append(page.Messages, hm)
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}
