package guide

import (
	"bytes"
	"fmt"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Format selects the rendition of the combined document.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts "html", "markdown" and "md".
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "html":
		return FormatHTML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unsupported output format: %s", s)
}

// RenderNotes converts Markdown cover notes to HTML.
func RenderNotes(src []byte) (string, error) {
	var buf bytes.Buffer
	mdown := goldmark.New(goldmark.WithExtensions(extension.Table))
	if err := mdown.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("render cover notes: %w", err)
	}
	return buf.String(), nil
}

// ToMarkdown converts an assembled HTML document to Markdown. Page breaks
// have no Markdown form and are dropped by the converter.
func ToMarkdown(doc []byte) ([]byte, error) {
	converter := md.NewConverter("", true, nil)
	out, err := converter.ConvertString(string(doc))
	if err != nil {
		return nil, fmt.Errorf("convert to markdown: %w", err)
	}
	return []byte(out), nil
}
