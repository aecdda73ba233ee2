package markup

import (
	"testing"

	"golang.org/x/net/html"
)

func TestMarkers_BothForms(t *testing.T) {
	tests := []struct {
		line string
		want []Marker
	}{
		{`<!-- InstanceBeginEditable name="MainContent" -->`, []Marker{{Kind: BeginRegion, Name: "MainContent"}}},
		{`<!-- #BeginEditable "GoToNext" -->`, []Marker{{Kind: BeginRegion, Name: "GoToNext"}}},
		{`<!-- InstanceEndEditable -->`, []Marker{{Kind: EndRegion}}},
		{`<!-- #EndEditable -->`, []Marker{{Kind: EndRegion}}},
		{
			`<!-- InstanceBeginEditable name="GoToNext" --><a href="B.html">Next</a><!-- InstanceEndEditable -->`,
			[]Marker{{Kind: BeginRegion, Name: "GoToNext"}, {Kind: EndRegion}},
		},
		{`<!-- just a comment -->`, nil},
		{`<p>no comments</p>`, nil},
	}
	for _, tt := range tests {
		got := Markers(tt.line)
		if len(got) != len(tt.want) {
			t.Errorf("Markers(%q): expected %v, got %v", tt.line, tt.want, got)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("Markers(%q)[%d]: expected %v, got %v", tt.line, i, tt.want[i], got[i])
			}
		}
	}
}

func TestOpens(t *testing.T) {
	line := `<!-- InstanceBeginEditable name="MainContent" -->`
	if !Opens(line, "MainContent") {
		t.Error("expected line to open MainContent")
	}
	if Opens(line, "GoToNext") {
		t.Error("expected line not to open GoToNext")
	}
}

func TestMarkerSpans(t *testing.T) {
	open := `<!-- InstanceBeginEditable name="MainContent" -->`
	line := `<p>x</p>` + open + `<h1>T</h1><!-- InstanceEndEditable -->`
	spans := MarkerSpans(line)
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %v", spans)
	}
	if got := line[spans[0].Start:spans[0].End]; got != open {
		t.Errorf("expected opening span %q, got %q", open, got)
	}
	if got := line[spans[0].End:spans[1].Start]; got != "<h1>T</h1>" {
		t.Errorf("expected text between markers %q, got %q", "<h1>T</h1>", got)
	}
	if spans[1].End != len(line) {
		t.Errorf("expected closing span to end the line, got %d of %d", spans[1].End, len(line))
	}
}

func TestFirstAttr(t *testing.T) {
	line := `<a name="x">x</a> <A HREF="B.html">Next</A> <a href="C.html">`
	got, ok := FirstAttr(line, "a", "href")
	if !ok {
		t.Fatal("expected an href")
	}
	if got != "B.html" {
		t.Errorf("expected %q, got %q", "B.html", got)
	}
	if _, ok := FirstAttr(line, "img", "src"); ok {
		t.Error("expected no img src")
	}
}

func TestRewriteTags_NoChangeIsVerbatim(t *testing.T) {
	lines := []string{
		`<P CLASS='x'>&nbsp;Tom &amp; Jerry <IMG SRC=a.png></P>`,
		`plain text`,
		`keep <b`,
		`<!-- comment --> <br/>`,
	}
	noop := func(*html.Token) bool { return false }
	for _, line := range lines {
		if got := RewriteTags(line, noop); got != line {
			t.Errorf("expected %q unchanged, got %q", line, got)
		}
	}
}

func TestRewriteTags_OnlyChangedTagReserialized(t *testing.T) {
	line := `<P CLASS="x">&nbsp;<IMG SRC="a.png"></P>`
	got := RewriteTags(line, func(tok *html.Token) bool {
		if tok.Data != "img" {
			return false
		}
		Attr(tok, "src").Val = "b.png"
		return true
	})
	want := `<P CLASS="x">&nbsp;<img src="b.png"></P>`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestAttr(t *testing.T) {
	tok := html.Token{Attr: []html.Attribute{{Key: "href", Val: "a"}}}
	if a := Attr(&tok, "href"); a == nil || a.Val != "a" {
		t.Errorf("expected href attribute, got %v", a)
	}
	if a := Attr(&tok, "name"); a != nil {
		t.Errorf("expected nil, got %v", a)
	}
}

func TestTitle(t *testing.T) {
	lines := []string{
		"<html><head>",
		"<title>Data  Explorer",
		"  Basics</title>",
		"</head><body><p>x</p></body></html>",
	}
	if got := Title(lines); got != "Data Explorer Basics" {
		t.Errorf("expected %q, got %q", "Data Explorer Basics", got)
	}
	if got := Title([]string{"<p>untitled</p>"}); got != "" {
		t.Errorf("expected empty title, got %q", got)
	}
}
