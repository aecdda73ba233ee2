package guide

import (
	"strings"
	"testing"
)

func TestImagePrefix(t *testing.T) {
	tests := []struct {
		start, cwd, want string
	}{
		{"/doc", "/doc/quickstart", "quickstart"},
		{"/doc", "/doc", ""},
		{".", "quickstart", "quickstart"},
		{".", "tools/scripting", "tools/scripting"},
		{"docs", "docs/data", "data"},
	}
	for _, tt := range tests {
		if got := ImagePrefix(tt.start, tt.cwd); got != tt.want {
			t.Errorf("ImagePrefix(%q, %q): expected %q, got %q", tt.start, tt.cwd, tt.want, got)
		}
	}
}

func TestRewriteImages_SingleImage(t *testing.T) {
	got := RewriteImages(`<img src="pic.png">`, ImagePrefix("/doc", "/doc/quickstart"))
	want := `<img src="quickstart/pic.png">`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRewriteImages_MultiplePerLine(t *testing.T) {
	line := `<p>Before <img src="a.png" alt="A"> middle <img src="b.png"> after &nbsp;</p>`
	got := RewriteImages(line, "quickstart")
	want := `<p>Before <img src="quickstart/a.png" alt="A"> middle <img src="quickstart/b.png"> after &nbsp;</p>`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRewriteImages_LeavesAbsoluteAndExternal(t *testing.T) {
	line := `<img src="http://example.com/a.png"><img src="/images/b.png">`
	if got := RewriteImages(line, "quickstart"); got != line {
		t.Errorf("expected line unchanged, got %q", got)
	}
}

func TestRewriteImages_NoPrefixNoChange(t *testing.T) {
	line := `<IMG SRC="pic.png">`
	if got := RewriteImages(line, ""); got != line {
		t.Errorf("expected line unchanged, got %q", got)
	}
}

func TestRewriteLinks_FileAndFragment(t *testing.T) {
	got := RewriteLinks(`<a href="Other.html#sec1">`, "Cur.html")
	want := `<a href="#TARGET_Other__sec1">`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRewriteLinks_FragmentOnlyUsesCurrentPage(t *testing.T) {
	got := RewriteLinks(`see <a href="#below">below</a>`, "quickstart/Cur.html")
	want := `see <a href="#TARGET_Cur__below">below</a>`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRewriteLinks_ExternalUnchanged(t *testing.T) {
	line := `<a href="http://www.ssec.wisc.edu/mcidas/">McIDAS</a> <a href="mailto:help@example.com">mail</a>`
	if got := RewriteLinks(line, "Cur.html"); got != line {
		t.Errorf("expected line unchanged, got %q", got)
	}
}

func TestRewriteLinks_ProtocolRelativeUnchanged(t *testing.T) {
	line := `<a href="//cdn.example.com/x.html">cdn</a><img src="//cdn.example.com/p.png">`
	if got := RewriteLine(line, "sub", "sub/Cur.html"); got != line {
		t.Errorf("expected line unchanged, got %q", got)
	}
}

func TestRewriteLinks_QueryStringDropped(t *testing.T) {
	got := RewriteLinks(`<a href="Other.html?v=1#s">`, "Cur.html")
	want := `<a href="#TARGET_Other__s">`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRewriteLinks_DirectoryIndex(t *testing.T) {
	got := RewriteLinks(`<a href="../tools/index.html">Tools</a>`, "quickstart/Cur.html")
	want := `<a href="#TARGET_tools__FILE">Tools</a>`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRewriteLinks_TrailingSlashIsIndex(t *testing.T) {
	got := RewriteLinks(`<a href="tools/">Tools</a>`, "Cur.html")
	want := `<a href="#TARGET_tools__FILE">Tools</a>`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRewriteAnchors(t *testing.T) {
	got := RewriteAnchors(`<a name="sec1"></a><h2>Section</h2>`, "Cur.html")
	want := `<a name="TARGET_Cur__sec1"></a><h2>Section</h2>`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRewriteLine_LinkAndAnchorInOneTag(t *testing.T) {
	got := RewriteLine(`<a name="top" href="#intro">Top</a>`, "", "Cur.html")
	want := `<a name="TARGET_Cur__top" href="#TARGET_Cur__intro">Top</a>`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRewriteLine_Idempotent(t *testing.T) {
	line := `<a name="x"></a><a href="Other.html#y">y</a><img src="pic.png">`
	once := RewriteLine(line, "sub", "sub/Cur.html")
	twice := RewriteLine(once, "sub", "sub/Cur.html")
	if once != twice {
		t.Errorf("expected rewrite to be idempotent:\n once: %q\ntwice: %q", once, twice)
	}
}

func TestRewrite_AnchorLinkRoundTrip(t *testing.T) {
	decl := RewriteAnchors(`<a name="sec1"></a>`, "data/Other.html")
	ref := RewriteLinks(`<a href="data/Other.html#sec1">`, "Cur.html")

	name := strings.TrimSuffix(strings.TrimPrefix(decl, `<a name="`), `"></a>`)
	href := strings.TrimSuffix(strings.TrimPrefix(ref, `<a href="#`), `">`)
	if name != href {
		t.Errorf("expected declared name %q to equal link target %q", name, href)
	}
}

func mainPage(dir, name string, lines ...string) Page {
	return Page{Name: name, Dir: dir, Lines: lines}
}

func TestExtractMain_NestedRegions(t *testing.T) {
	p := mainPage(".", "Cur.html",
		`<p>before</p>`,
		`<!-- InstanceBeginEditable name="MainContent" -->`,
		`<h1>Title</h1>`,
		`<!-- InstanceBeginEditable name="Inner" -->`,
		`<p>inner</p>`,
		`<!-- InstanceEndEditable -->`,
		`<p>after inner</p>`,
		`<!-- InstanceEndEditable -->`,
		`<p>trailer</p>`,
	)
	rw := Rewriter{StartDir: ".", MainRegion: "MainContent"}
	got := rw.ExtractMain(p)
	want := []string{
		`<h1>Title</h1>`,
		`<!-- InstanceBeginEditable name="Inner" -->`,
		`<p>inner</p>`,
		`<!-- InstanceEndEditable -->`,
		`<p>after inner</p>`,
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d lines, got %d: %q", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestExtractMain_NoRegion(t *testing.T) {
	p := mainPage(".", "Cur.html", `<p>no template here</p>`, `<!-- InstanceEndEditable -->`)
	rw := Rewriter{StartDir: ".", MainRegion: "MainContent"}
	if got := rw.ExtractMain(p); len(got) != 0 {
		t.Errorf("expected no lines, got %q", got)
	}
}

func TestExtractMain_RewritesInSubdirectory(t *testing.T) {
	p := mainPage("quickstart", "Intro.html",
		`<!-- InstanceBeginEditable name="MainContent" -->`,
		`<a name="top"></a><img src="pic.png"> see <a href="../Other.html#sec1">other</a>`,
		`<!-- InstanceEndEditable -->`,
	)
	rw := Rewriter{StartDir: ".", MainRegion: "MainContent"}
	got := rw.ExtractMain(p)
	want := `<a name="TARGET_Intro__top"></a><img src="quickstart/pic.png"> see <a href="#TARGET_Other__sec1">other</a>`
	if len(got) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(got), got)
	}
	if got[0] != want {
		t.Errorf("expected %q, got %q", want, got[0])
	}
}

func TestExtractMain_SingleLineRegionIsEmpty(t *testing.T) {
	p := mainPage(".", "Cur.html",
		`<!-- InstanceBeginEditable name="MainContent" --><!-- InstanceEndEditable -->`,
		`<p>outside</p>`,
	)
	rw := Rewriter{StartDir: ".", MainRegion: "MainContent"}
	if got := rw.ExtractMain(p); len(got) != 0 {
		t.Errorf("expected no lines, got %q", got)
	}
}

func TestExtractMain_KeepsTextBesideMarkers(t *testing.T) {
	p := mainPage(".", "Cur.html",
		`<p>nav</p><!-- InstanceBeginEditable name="MainContent" --><h1>Title</h1>`,
		`<p>body</p>`,
		`<p>last</p><!-- InstanceEndEditable --><p>footer</p>`,
	)
	rw := Rewriter{StartDir: ".", MainRegion: "MainContent"}
	got := rw.ExtractMain(p)
	want := []string{`<h1>Title</h1>`, `<p>body</p>`, `<p>last</p>`}
	if len(got) != len(want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestExtractMain_SingleLineRegionWithContent(t *testing.T) {
	p := mainPage(".", "Cur.html",
		`<!-- InstanceBeginEditable name="MainContent" --><a name="x"></a>only<!-- InstanceEndEditable -->`,
	)
	rw := Rewriter{StartDir: ".", MainRegion: "MainContent"}
	got := rw.ExtractMain(p)
	if len(got) != 1 || got[0] != `<a name="TARGET_Cur__x"></a>only` {
		t.Errorf("unexpected lines %q", got)
	}
}
