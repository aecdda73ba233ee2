package guide

import (
	"bytes"
	"strings"
	"testing"
)

func TestAssemble_SectionsInOrder(t *testing.T) {
	sections := []Section{
		{Page: Page{Name: "A.html", Dir: "."}, Lines: []string{"<p>first</p>"}},
		{Page: Page{Name: "B.html", Dir: "sub"}, Lines: []string{"<p>second</p>"}},
	}
	var buf bytes.Buffer
	if err := Assemble(&buf, sections, AssembleOptions{Title: "Guide", Stylesheet: "mcidasv.css"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "<!DOCTYPE") {
		t.Errorf("expected doctype prologue, got %q", out[:min(40, len(out))])
	}
	if !strings.HasSuffix(out, "</body>\n</html>\n") {
		t.Errorf("expected html epilogue, got tail %q", out[max(0, len(out)-40):])
	}
	for _, want := range []string{
		"<title>Guide</title>",
		`href="mcidasv.css"`,
		`<a name="TARGET_A__FILE"></a>`,
		`<a name="TARGET_B__FILE"></a>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}

	first := strings.Index(out, "<p>first</p>")
	second := strings.Index(out, "<p>second</p>")
	if first < 0 || second < 0 || first > second {
		t.Errorf("expected sections in traversal order, got first=%d second=%d", first, second)
	}
	if n := strings.Count(out, PageBreak); n != 2 {
		t.Errorf("expected 2 page breaks, got %d", n)
	}
	if strings.Contains(out, `class="cover"`) {
		t.Error("expected no cover block without a cover")
	}
}

func TestAssemble_CoverAndTOC(t *testing.T) {
	sections := []Section{
		{Page: Page{Name: "A.html", Dir: "."}, Lines: []string{"<p>body</p>"}},
	}
	opts := AssembleOptions{
		Title: "Guide",
		Cover: &Cover{Title: "User's Guide", Version: "1.9", Logo: "images/logo.gif", NotesHTML: "<p>notes</p>\n"},
		TOC:   []string{`<li><a href="#TARGET_A__FILE">A</a></li>`},
	}
	var buf bytes.Buffer
	if err := Assemble(&buf, sections, opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"<h1>User&#39;s Guide</h1>",
		"<h2>Version 1.9</h2>",
		`<img src="images/logo.gif" alt="">`,
		"<p>notes</p>",
		`<div class="toc">`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
	toc := strings.Index(out, `<div class="toc">`)
	body := strings.Index(out, "<p>body</p>")
	cover := strings.Index(out, `<div class="cover">`)
	if !(cover < toc && toc < body) {
		t.Errorf("expected cover, toc, body order; got cover=%d toc=%d body=%d", cover, toc, body)
	}
	if n := strings.Count(out, PageBreak); n != 3 {
		t.Errorf("expected 3 page breaks, got %d", n)
	}
}

func TestFilterTOC(t *testing.T) {
	lines := []string{
		"<p>preface</p>",
		`<li><a href="#TARGET_Intro__FILEX">not this one</a></li>`,
		`<li><a href="#TARGET_Intro__FILE">Intro</a></li>`,
		`<li><a href="#TARGET_Next__FILE">Next</a></li>`,
	}
	got := FilterTOC(lines, "TARGET_Intro__FILE")
	if len(got) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(got), got)
	}
	if got[0] != lines[2] {
		t.Errorf("expected first line %q, got %q", lines[2], got[0])
	}
}

func TestFilterTOC_NoMatchKeepsAll(t *testing.T) {
	lines := []string{"<p>a</p>", "<p>b</p>"}
	if got := FilterTOC(lines, "TARGET_Missing__FILE"); len(got) != 2 {
		t.Errorf("expected all lines kept, got %q", got)
	}
}

func TestRenderNotes(t *testing.T) {
	got, err := RenderNotes([]byte("# Welcome\n\nHello **world**.\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "<h1>Welcome</h1>") || !strings.Contains(got, "<strong>world</strong>") {
		t.Errorf("unexpected rendering: %q", got)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatHTML, false},
		{"html", FormatHTML, false},
		{"md", FormatMarkdown, false},
		{"markdown", FormatMarkdown, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q): unexpected error state %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestToMarkdown(t *testing.T) {
	out, err := ToMarkdown([]byte("<html><body><h1>Title</h1><p>Some <b>bold</b> text.</p></body></html>"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := string(out)
	if !strings.Contains(got, "Title") || !strings.Contains(got, "**bold**") {
		t.Errorf("unexpected markdown: %q", got)
	}
}
