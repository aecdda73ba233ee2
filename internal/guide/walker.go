package guide

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"

	"github.com/dgallion1/guidetools/internal/markup"
)

var (
	// ErrPageNotFound is returned when a page in the chain cannot be read.
	ErrPageNotFound = errors.New("page not found")
	// ErrCycle is returned when the chain revisits a page before its end.
	ErrCycle = errors.New("cycle detected")
	// ErrHopLimit is returned when the chain grows past WalkOptions.MaxHops.
	ErrHopLimit = errors.New("hop limit exceeded")
)

// DefaultMaxHops bounds a walk when WalkOptions.MaxHops is not set.
const DefaultMaxHops = 2000

// Page is one source document visited by the walker.
type Page struct {
	Name  string   // base file name
	Dir   string   // working directory the page was read in, slash-separated
	Lines []string // raw lines without terminators
}

// Path returns the page's canonical path relative to the walk root.
func (p Page) Path() string {
	return path.Join(p.Dir, p.Name)
}

// Title returns the text of the page's <title> element.
func (p Page) Title() string {
	return markup.Title(p.Lines)
}

// StopReason says why a walk ended normally.
type StopReason int

const (
	StopNoNext StopReason = iota + 1
	StopEndReached
)

func (r StopReason) String() string {
	switch r {
	case StopNoNext:
		return "no_next"
	case StopEndReached:
		return "end_reached"
	}
	return "unknown"
}

// Chain is the ordered result of a walk.
type Chain struct {
	StartDir string
	Pages    []Page
	Stop     StopReason
}

// WalkOptions configures Walk.
type WalkOptions struct {
	NextRegion string
	MaxHops    int
	Log        *slog.Logger
}

// Walk follows the "next page" links from start until the page named end is
// reached in the start directory, or until a page has no next link. Paths
// are resolved against fsys, whose root plays the role of the invocation
// directory.
//
// On error the returned chain holds the pages visited so far.
func Walk(ctx context.Context, fsys fs.FS, start, end string, opts WalkOptions) (*Chain, error) {
	log := opts.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	maxHops := opts.MaxHops
	if maxHops <= 0 {
		maxHops = DefaultMaxHops
	}

	startDir, name := path.Split(path.Clean(start))
	startDir = path.Clean(startDir)
	chain := &Chain{StartDir: startDir}

	cwd := startDir
	visited := make(map[string]bool)
	last := false

	for {
		if err := ctx.Err(); err != nil {
			return chain, err
		}

		p := Page{Name: name, Dir: cwd}
		lines, err := readLines(fsys, p.Path())
		if err != nil {
			return chain, fmt.Errorf("%w: %s: %v", ErrPageNotFound, p.Path(), err)
		}
		p.Lines = lines
		chain.Pages = append(chain.Pages, p)
		visited[p.Path()] = true
		log.Debug("visited page", "page", p.Path(), "lines", len(lines))

		if last {
			chain.Stop = StopEndReached
			return chain, nil
		}

		ref, ok := NextRef(lines, opts.NextRegion)
		if !ok {
			chain.Stop = StopNoNext
			return chain, nil
		}

		dir, file := path.Split(ref)
		if file == "" {
			file = "index.html"
		}
		nextDir := cwd
		if dir != "" {
			nextDir = path.Join(cwd, dir)
		}
		next := path.Join(nextDir, file)

		switch {
		case file == end && nextDir == startDir:
			if visited[next] {
				chain.Stop = StopEndReached
				return chain, nil
			}
			last = true
		case visited[next]:
			return chain, fmt.Errorf("%w: %s links back to %s", ErrCycle, p.Path(), next)
		}

		if len(chain.Pages) >= maxHops {
			return chain, fmt.Errorf("%w: %d pages visited without reaching %s", ErrHopLimit, len(chain.Pages), end)
		}
		cwd, name = nextDir, file
	}
}

// NextRef returns the destination of the first link on a line that opens
// the named navigation region. External links and bare fragments do not
// count as a next page.
func NextRef(lines []string, nextRegion string) (string, bool) {
	for _, line := range lines {
		if !markup.Opens(line, nextRegion) {
			continue
		}
		href, ok := markup.FirstAttr(line, "a", "href")
		if !ok {
			continue
		}
		file, _ := splitLink(href)
		if file == "" || isExternal(file) {
			return "", false
		}
		return file, true
	}
	return "", false
}

// LoadPage reads a single page outside of a walk.
func LoadPage(fsys fs.FS, pagePath string) (Page, error) {
	dir, name := path.Split(path.Clean(pagePath))
	p := Page{Name: name, Dir: path.Clean(dir)}
	lines, err := readLines(fsys, p.Path())
	if err != nil {
		return p, fmt.Errorf("%w: %s: %v", ErrPageNotFound, p.Path(), err)
	}
	p.Lines = lines
	return p, nil
}

func readLines(fsys fs.FS, name string) ([]string, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
