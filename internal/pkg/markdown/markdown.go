package markdown

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	boldPattern   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	linkPattern   = regexp.MustCompile(`\[(.*?)\]\(.*?\)`)
	markupPattern = regexp.MustCompile(`[#*_-]`)
)

// Renderer turns assistant answers into HTML. Raw HTML in the source is omitted.
type Renderer struct {
	md goldmark.Markdown
}

func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

func (r *Renderer) HTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// SpeechText strips markdown so the text reads naturally when synthesised.
func SpeechText(src string) string {
	out := boldPattern.ReplaceAllString(src, "$1")
	out = linkPattern.ReplaceAllString(out, "$1")
	return markupPattern.ReplaceAllString(out, "")
}
