package api

import (
	"bytes"
	"html"
	"html/template"
	"strings"
	"unicode/utf8"

	"github.com/RichardoC/bioexpert/internal/models"
	"github.com/yuin/goldmark"
)

const previewLength = 60

// renderer turns stored messages into page HTML. Assistant replies are
// markdown; user input is shown as plain text. goldmark omits raw HTML
// unless told otherwise, so model output cannot inject markup.
type renderer struct {
	md goldmark.Markdown
}

func newRenderer() *renderer {
	return &renderer{md: goldmark.New()}
}

func (r *renderer) message(msg models.Message) template.HTML {
	if msg.Role != models.RoleAssistant {
		return plainHTML(msg.Content)
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(msg.Content), &buf); err != nil {
		return plainHTML(msg.Content)
	}
	return template.HTML(buf.String())
}

func plainHTML(s string) template.HTML {
	escaped := html.EscapeString(s)
	return template.HTML("<p>" + strings.ReplaceAll(escaped, "\n", "<br>") + "</p>")
}

// preview shortens text for the sidebar.
func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= previewLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:previewLength]) + "..."
}
