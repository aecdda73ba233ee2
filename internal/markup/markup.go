// Package markup finds Dreamweaver template markers and rewrites tag
// attributes within single lines of HTML using the x/net/html tokenizer.
//
// Lines are tokenized independently. Bytes belonging to tokens that are not
// changed are copied through verbatim, so whitespace, entity spelling and
// attribute quoting survive untouched everywhere except inside a rewritten
// tag.
package markup

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// MarkerKind distinguishes the two editable-region comments.
type MarkerKind int

const (
	BeginRegion MarkerKind = iota + 1
	EndRegion
)

// Marker is an editable-region comment found on a line.
type Marker struct {
	Kind MarkerKind
	Name string // empty for EndRegion
}

// Markers returns the editable-region markers on a line, left to right.
// Both the template-instance form (InstanceBeginEditable name="X") and the
// older library form (#BeginEditable "X") are recognized.
func Markers(line string) []Marker {
	var out []Marker
	for _, s := range MarkerSpans(line) {
		out = append(out, s.Marker)
	}
	return out
}

// Span is a marker with the byte range of its comment in the line.
type Span struct {
	Marker
	Start, End int
}

// MarkerSpans is like Markers but also reports where each marker sits.
func MarkerSpans(line string) []Span {
	if !strings.Contains(line, "<!--") {
		return nil
	}
	var out []Span
	pos := 0
	z := html.NewTokenizer(strings.NewReader(line))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return out
		}
		n := len(z.Raw())
		if tt == html.CommentToken {
			if m, ok := parseMarker(string(z.Text())); ok {
				out = append(out, Span{Marker: m, Start: pos, End: pos + n})
			}
		}
		pos += n
	}
}

func parseMarker(comment string) (Marker, bool) {
	c := strings.TrimSpace(comment)
	switch {
	case strings.HasPrefix(c, "InstanceBeginEditable"), strings.HasPrefix(c, "#BeginEditable"):
		return Marker{Kind: BeginRegion, Name: quoted(c)}, true
	case strings.HasPrefix(c, "InstanceEndEditable"), strings.HasPrefix(c, "#EndEditable"):
		return Marker{Kind: EndRegion}, true
	}
	return Marker{}, false
}

// quoted returns the first double-quoted string in s.
func quoted(s string) string {
	i := strings.IndexByte(s, '"')
	if i < 0 {
		return ""
	}
	j := strings.IndexByte(s[i+1:], '"')
	if j < 0 {
		return ""
	}
	return s[i+1 : i+1+j]
}

// Opens reports whether line opens an editable region with the given name.
func Opens(line, name string) bool {
	for _, m := range Markers(line) {
		if m.Kind == BeginRegion && m.Name == name {
			return true
		}
	}
	return false
}

// FirstAttr returns the value of attr on the first tag named tag that has it.
func FirstAttr(line, tag, attr string) (string, bool) {
	z := html.NewTokenizer(strings.NewReader(line))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return "", false
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		t := z.Token()
		if t.Data != tag {
			continue
		}
		for _, a := range t.Attr {
			if a.Key == attr {
				return a.Val, true
			}
		}
	}
}

// TagFunc inspects a start tag and may modify its attributes in place. It
// reports whether anything changed.
type TagFunc func(t *html.Token) bool

// RewriteTags applies fn to every start or self-closing tag on line and
// returns the line with changed tags re-serialized. A trailing fragment the
// tokenizer cannot complete, such as a tag continued on the next line, is
// kept as is.
func RewriteTags(line string, fn TagFunc) string {
	if !strings.Contains(line, "<") {
		return line
	}
	var b strings.Builder
	b.Grow(len(line))
	consumed := 0
	z := html.NewTokenizer(strings.NewReader(line))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() == io.EOF && consumed < len(line) {
				b.WriteString(line[consumed:])
			}
			return b.String()
		}
		// Token lowercases the tag name inside the tokenizer buffer, so the
		// raw bytes are copied first.
		raw := string(z.Raw())
		consumed += len(raw)
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			b.WriteString(raw)
			continue
		}
		t := z.Token()
		if fn(&t) {
			b.WriteString(t.String())
		} else {
			b.WriteString(raw)
		}
	}
}

// Attr returns a pointer to the named attribute of t, or nil.
func Attr(t *html.Token, key string) *html.Attribute {
	for i := range t.Attr {
		if t.Attr[i].Key == key {
			return &t.Attr[i]
		}
	}
	return nil
}
