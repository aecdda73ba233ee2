package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"

	"github.com/dgallion1/guidetools/internal/check"
	"github.com/dgallion1/guidetools/internal/config"
	"github.com/dgallion1/guidetools/internal/guide"
	"github.com/dgallion1/guidetools/internal/vcssync"
)

// Orchestrator runs the guide operations against a configured guide
// directory and repository.
type Orchestrator struct {
	cfg    config.Config
	guide  fs.FS
	repo   fs.FS
	runner vcssync.Runner
	log    *slog.Logger
}

// NewOrchestrator wires an orchestrator. guideFS is rooted at the guide
// directory, repoFS at the repository root.
func NewOrchestrator(cfg config.Config, guideFS, repoFS fs.FS, runner vcssync.Runner, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:    cfg,
		guide:  guideFS,
		repo:   repoFS,
		runner: runner,
		log:    log,
	}
}

// CombineOptions selects the pages and rendition of a combined document.
type CombineOptions struct {
	Start  string
	End    string
	Cover  bool
	Format guide.Format
	// Strict turns a missing page into an error instead of truncating the
	// document at the last page that could be read.
	Strict bool
}

// DefaultCombineOptions returns the options implied by the configuration.
func (o *Orchestrator) DefaultCombineOptions() CombineOptions {
	return CombineOptions{
		Start:  o.cfg.StartPage,
		End:    o.cfg.EndPage,
		Format: guide.FormatHTML,
	}
}

// CombineResult summarizes a combine run.
type CombineResult struct {
	Pages     int    `json:"pages"`
	Stop      string `json:"stop"`
	Truncated string `json:"truncated,omitempty"`
}

// Chain walks the guide without extracting content.
func (o *Orchestrator) Chain(ctx context.Context, start, end string) (*guide.Chain, error) {
	return guide.Walk(ctx, o.guide, start, end, guide.WalkOptions{
		NextRegion: o.cfg.NextRegion,
		MaxHops:    o.cfg.MaxHops,
		Log:        o.log.With("component", "walker"),
	})
}

// Combine walks the guide and writes the combined document to w.
func (o *Orchestrator) Combine(ctx context.Context, w io.Writer, opts CombineOptions) (*CombineResult, error) {
	log := o.log.With("start", opts.Start, "end", opts.End)

	chain, err := o.Chain(ctx, opts.Start, opts.End)
	res := &CombineResult{}
	switch {
	case err == nil:
		res.Stop = chain.Stop.String()
	case errors.Is(err, guide.ErrPageNotFound) && !opts.Strict && len(chain.Pages) > 0:
		log.Warn("guide chain truncated", "error", err, "pages", len(chain.Pages))
		res.Stop = "page_not_found"
		res.Truncated = err.Error()
	default:
		return nil, fmt.Errorf("walk guide: %w", err)
	}

	rw := guide.Rewriter{StartDir: chain.StartDir, MainRegion: o.cfg.MainRegion}
	sections := make([]guide.Section, 0, len(chain.Pages))
	for _, p := range chain.Pages {
		lines := rw.ExtractMain(p)
		if lines == nil {
			log.Debug("no main content", "page", p.Path())
		}
		sections = append(sections, guide.Section{Page: p, Lines: lines})
	}
	res.Pages = len(sections)

	aopts := guide.AssembleOptions{Title: o.cfg.Title, Stylesheet: o.cfg.Stylesheet}
	if opts.Cover {
		if err := o.addCover(&aopts, rw, opts.Start); err != nil {
			return nil, err
		}
	}

	if opts.Format != guide.FormatMarkdown {
		if err := guide.Assemble(w, sections, aopts); err != nil {
			return nil, fmt.Errorf("assemble: %w", err)
		}
		log.Info("combined guide", "pages", res.Pages, "stop", res.Stop)
		return res, nil
	}

	var buf bytes.Buffer
	if err := guide.Assemble(&buf, sections, aopts); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	out, err := guide.ToMarkdown(buf.Bytes())
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(out); err != nil {
		return nil, fmt.Errorf("write markdown: %w", err)
	}
	log.Info("combined guide", "pages", res.Pages, "stop", res.Stop, "format", opts.Format)
	return res, nil
}

func (o *Orchestrator) addCover(aopts *guide.AssembleOptions, rw guide.Rewriter, start string) error {
	cover := &guide.Cover{
		Title:   o.cfg.Title,
		Version: o.version(),
		Logo:    o.cfg.Logo,
	}
	if o.cfg.CoverNotes != "" {
		src, err := fs.ReadFile(o.repo, o.cfg.CoverNotes)
		if err != nil {
			return fmt.Errorf("read cover notes: %w", err)
		}
		notes, err := guide.RenderNotes(src)
		if err != nil {
			return err
		}
		cover.NotesHTML = notes
	}
	aopts.Cover = cover

	toc, err := guide.LoadPage(o.guide, o.cfg.TOCPage)
	if err != nil {
		o.log.Warn("table of contents unavailable", "error", err)
		return nil
	}
	startTarget := guide.MakeTarget(path.Clean(start), "")
	aopts.TOC = guide.FilterTOC(rw.ExtractMain(toc), startTarget)
	return nil
}

// version prefers the configured version and falls back to the release
// version recorded in the repository.
func (o *Orchestrator) version() string {
	if o.cfg.Version != "" {
		return o.cfg.Version
	}
	v, err := check.ReleaseVersion(o.repo, o.cfg.VersionProperties)
	if err != nil {
		o.log.Debug("no release version", "error", err)
		return ""
	}
	return v
}

// Report collects the results of every check.
type Report struct {
	DeadLinks []string             `json:"dead_links"`
	TOC       []check.Problem      `json:"toc"`
	Versions  *check.VersionReport `json:"versions,omitempty"`
	Errors    []string             `json:"errors,omitempty"`
}

// OK reports whether no check found a problem.
func (r *Report) OK() bool {
	return len(r.DeadLinks) == 0 && len(r.TOC) == 0 && len(r.Errors) == 0 &&
		(r.Versions == nil || len(r.Versions.Problems) == 0)
}

// Problems flattens the report into readable lines.
func (r *Report) Problems() []string {
	var out []string
	for _, t := range r.DeadLinks {
		out = append(out, "dead link: #"+t)
	}
	for _, p := range r.TOC {
		out = append(out, p.String())
	}
	if r.Versions != nil {
		for _, p := range r.Versions.Problems {
			out = append(out, p.String())
		}
	}
	return append(out, r.Errors...)
}

// Check combines the guide and validates links, the table of contents and
// version consistency. A failing check is recorded in the report; only a
// cancelled context is returned as an error.
func (o *Orchestrator) Check(ctx context.Context) (*Report, error) {
	report := &Report{}

	var buf bytes.Buffer
	if res, err := o.Combine(ctx, &buf, o.DefaultCombineOptions()); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		report.Errors = append(report.Errors, err.Error())
	} else {
		if res.Truncated != "" {
			report.Errors = append(report.Errors, "guide chain truncated: "+res.Truncated)
		}
		dead, err := check.DeadLinks(&buf)
		if err != nil {
			report.Errors = append(report.Errors, err.Error())
		}
		report.DeadLinks = dead
	}

	if data, err := fs.ReadFile(o.guide, o.cfg.TOCPage); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("read %s: %v", o.cfg.TOCPage, err))
	} else {
		problems, err := check.ValidateTOC(bytes.NewReader(data), o.cfg.TOCPage)
		if err != nil {
			report.Errors = append(report.Errors, err.Error())
		}
		report.TOC = problems
	}

	versions, err := check.ValidateVersions(o.repo, check.VersionSources{
		Properties: o.cfg.VersionProperties,
		Install4j:  o.cfg.Install4jProject,
		Docs:       o.cfg.VersionedDocs,
		Product:    o.cfg.ProductName,
	})
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
	}
	report.Versions = versions

	o.log.Info("checks complete", "ok", report.OK(), "problems", len(report.Problems()))
	return report, nil
}

// Sync runs the checks, logs what they found, then stages, commits and
// pushes documentation changes. Check problems do not block the sync.
func (o *Orchestrator) Sync(ctx context.Context, dryRun bool) (*vcssync.Result, *Report, error) {
	report, err := o.Check(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, p := range report.Problems() {
		o.log.Warn("check problem", "problem", p)
	}

	s := &vcssync.Syncer{
		Runner:   o.runner,
		RepoRoot: o.cfg.RepoRoot,
		DocDir:   o.cfg.DocDir,
		Inquiry:  o.cfg.CommitInquiry,
		Message:  o.cfg.CommitMessage,
		Branch:   o.cfg.Branch,
		DryRun:   dryRun,
		Log:      o.log.With("component", "sync"),
	}
	res, err := s.Sync(ctx)
	if err != nil {
		return res, report, fmt.Errorf("sync: %w", err)
	}
	return res, report, nil
}
