package guide

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"strings"
)

// PageBreak separates pages in the combined document.
const PageBreak = `<div class="pagebreak"></div>`

// Section is one visited page with its rewritten main content.
type Section struct {
	Page  Page
	Lines []string
}

// Target returns the anchor name declared at the top of the section.
func (s Section) Target() string {
	return MakeTarget(s.Page.Path(), "")
}

// Cover is the title block printed before the table of contents.
type Cover struct {
	Title     string
	Version   string
	Logo      string
	NotesHTML string // pre-rendered, inserted as is
}

// AssembleOptions shapes the HTML shell around the sections.
type AssembleOptions struct {
	Title      string
	Stylesheet string

	// Cover and TOC are only emitted when Cover is non-nil.
	Cover *Cover
	TOC   []string
}

// Assemble writes the combined document: prologue, optional cover and table
// of contents, then every section behind its own anchor and followed by a
// page break, then the epilogue.
func Assemble(w io.Writer, sections []Section, opts AssembleOptions) error {
	bw := bufio.NewWriter(w)
	writePrologue(bw, opts)

	if opts.Cover != nil {
		writeCover(bw, opts.Cover)
		if len(opts.TOC) > 0 {
			bw.WriteString("<div class=\"toc\">\n")
			for _, line := range opts.TOC {
				bw.WriteString(line)
				bw.WriteByte('\n')
			}
			bw.WriteString("</div>\n")
			bw.WriteString(PageBreak + "\n")
		}
	}

	for _, s := range sections {
		fmt.Fprintf(bw, "<a name=\"%s\"></a>\n", s.Target())
		for _, line := range s.Lines {
			bw.WriteString(line)
			bw.WriteByte('\n')
		}
		bw.WriteString(PageBreak + "\n")
	}

	bw.WriteString("</body>\n</html>\n")
	return bw.Flush()
}

func writePrologue(bw *bufio.Writer, opts AssembleOptions) {
	bw.WriteString("<!DOCTYPE html PUBLIC \"-//W3C//DTD HTML 4.01 Transitional//EN\" \"http://www.w3.org/TR/html4/loose.dtd\">\n")
	bw.WriteString("<html>\n<head>\n")
	bw.WriteString("<meta http-equiv=\"Content-Type\" content=\"text/html; charset=UTF-8\">\n")
	if opts.Title != "" {
		fmt.Fprintf(bw, "<title>%s</title>\n", html.EscapeString(opts.Title))
	}
	if opts.Stylesheet != "" {
		fmt.Fprintf(bw, "<link rel=\"stylesheet\" href=\"%s\" type=\"text/css\">\n", html.EscapeString(opts.Stylesheet))
	}
	bw.WriteString("<style type=\"text/css\">\n.pagebreak { page-break-after: always; }\n</style>\n")
	bw.WriteString("</head>\n<body>\n")
}

func writeCover(bw *bufio.Writer, c *Cover) {
	bw.WriteString("<div class=\"cover\">\n")
	if c.Title != "" {
		fmt.Fprintf(bw, "<h1>%s</h1>\n", html.EscapeString(c.Title))
	}
	if c.Version != "" {
		fmt.Fprintf(bw, "<h2>Version %s</h2>\n", html.EscapeString(c.Version))
	}
	if c.Logo != "" {
		fmt.Fprintf(bw, "<img src=\"%s\" alt=\"\">\n", html.EscapeString(c.Logo))
	}
	if c.NotesHTML != "" {
		bw.WriteString(strings.TrimRight(c.NotesHTML, "\n"))
		bw.WriteByte('\n')
	}
	bw.WriteString("</div>\n")
	bw.WriteString(PageBreak + "\n")
}

// FilterTOC drops the table-of-contents lines before the first one that
// mentions target as a whole attribute value. When no line does, the lines
// are returned unchanged.
func FilterTOC(lines []string, target string) []string {
	quoted := target + `"`
	for i, line := range lines {
		if strings.Contains(line, quoted) {
			return lines[i:]
		}
	}
	return lines
}
