package guide

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/dgallion1/guidetools/internal/markup"
	"golang.org/x/net/html"
)

// Rewriter extracts the main content region of a page and retargets its
// images, links and anchors for a document rooted at StartDir.
type Rewriter struct {
	StartDir   string
	MainRegion string
}

// ExtractMain returns the rewritten lines of the page's main content region.
// Lines before the region opens are dropped, nested regions are kept as
// content, and extraction stops at the close that brings the depth back to
// zero. Text sharing a line with the opening or closing marker is kept. A
// page without the region yields nil.
func (rw Rewriter) ExtractMain(p Page) []string {
	prefix := ImagePrefix(rw.StartDir, p.Dir)
	pagePath := p.Path()

	var out []string
	emit := func(text string, partial bool) {
		if partial && strings.TrimSpace(text) == "" {
			return
		}
		out = append(out, RewriteLine(text, prefix, pagePath))
	}

	depth := 0
	for _, line := range p.Lines {
		spans := markup.MarkerSpans(line)
		from, opened := 0, false
		if depth == 0 {
			i := openingSpan(spans, rw.MainRegion)
			if i < 0 {
				continue
			}
			depth, from, opened = 1, spans[i].End, true
			spans = spans[i+1:]
		}
		for _, s := range spans {
			switch s.Kind {
			case markup.BeginRegion:
				depth++
			case markup.EndRegion:
				depth--
			}
			if depth == 0 {
				emit(line[from:s.Start], true)
				return out
			}
		}
		emit(line[from:], opened)
	}
	return out
}

func openingSpan(spans []markup.Span, name string) int {
	for i, s := range spans {
		if s.Kind == markup.BeginRegion && s.Name == name {
			return i
		}
	}
	return -1
}

// RewriteLine applies the image, link and anchor rewrites in that order.
// Links are rewritten before anchors since both produce target names but
// links name the page they point at while anchors name the page they are on.
func RewriteLine(line, imagePrefix, pagePath string) string {
	line = RewriteImages(line, imagePrefix)
	line = RewriteLinks(line, pagePath)
	line = RewriteAnchors(line, pagePath)
	return line
}

// ImagePrefix returns the path of cwd relative to startDir, slash-joined
// and without a leading slash. It is empty when the two are the same.
func ImagePrefix(startDir, cwd string) string {
	startDir, cwd = path.Clean(startDir), path.Clean(cwd)
	if startDir == cwd {
		return ""
	}
	rel, err := filepath.Rel(filepath.FromSlash(startDir), filepath.FromSlash(cwd))
	if err != nil {
		return ""
	}
	rel = strings.TrimLeft(filepath.ToSlash(rel), "/")
	if rel == "." {
		return ""
	}
	return rel
}

// RewriteImages prefixes every relative <img src> on the line.
func RewriteImages(line, prefix string) string {
	if prefix == "" {
		return line
	}
	return markup.RewriteTags(line, func(t *html.Token) bool {
		if t.Data != "img" {
			return false
		}
		src := markup.Attr(t, "src")
		if src == nil || src.Val == "" || isExternal(src.Val) ||
			strings.HasPrefix(src.Val, "/") || strings.HasPrefix(src.Val, prefix+"/") {
			return false
		}
		src.Val = prefix + "/" + src.Val
		return true
	})
}

// RewriteLinks points every internal <a href> on the line at the target
// name of its destination. pagePath resolves empty and relative file parts.
func RewriteLinks(line, pagePath string) string {
	return markup.RewriteTags(line, func(t *html.Token) bool {
		if t.Data != "a" {
			return false
		}
		href := markup.Attr(t, "href")
		if href == nil || isExternal(href.Val) {
			return false
		}
		file, fragment := splitLink(href.Val)
		if file == "" {
			if isRetargeted(fragment) {
				return false
			}
			file = pagePath
		} else {
			if strings.HasSuffix(file, "/") {
				file += "index.html"
			}
			file = path.Join(path.Dir(pagePath), file)
		}
		href.Val = "#" + MakeTarget(file, fragment)
		return true
	})
}

// RewriteAnchors renames every <a name> on the line so that it is unique
// across the combined document.
func RewriteAnchors(line, pagePath string) string {
	return markup.RewriteTags(line, func(t *html.Token) bool {
		if t.Data != "a" {
			return false
		}
		name := markup.Attr(t, "name")
		if name == nil || name.Val == "" || isRetargeted(name.Val) {
			return false
		}
		name.Val = MakeTarget(pagePath, name.Val)
		return true
	})
}
