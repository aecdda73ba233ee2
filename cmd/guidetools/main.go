package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/pkg/errors"

	"github.com/dgallion1/guidetools/internal/api"
	"github.com/dgallion1/guidetools/internal/config"
	"github.com/dgallion1/guidetools/internal/guide"
	"github.com/dgallion1/guidetools/internal/output"
	"github.com/dgallion1/guidetools/internal/pipeline"
	"github.com/dgallion1/guidetools/internal/vcssync"
)

type CombineCmd struct {
	Start  string `arg:"-s,--start" help:"first page, relative to the guide directory (GUIDE_START)"`
	End    string `arg:"-e,--end" help:"page in the start directory that ends the walk (GUIDE_END)"`
	Cover  bool   `arg:"--cover" help:"prepend the cover block and table of contents"`
	Format string `arg:"-f,--format" default:"html" help:"output format: html or markdown"`
	Output string `arg:"-o,--output" help:"write to this file instead of standard output"`
	Strict bool   `arg:"--strict" help:"fail when a page in the chain is missing"`
}

type ChainCmd struct {
	Start string `arg:"-s,--start" help:"first page (GUIDE_START)"`
	End   string `arg:"-e,--end" help:"page that ends the walk (GUIDE_END)"`
}

type CheckCmd struct {
	JSON bool `arg:"--json" help:"print the report as JSON"`
}

type SyncCmd struct {
	DryRun bool `arg:"-n,--dry-run" help:"print git commands instead of running them"`
}

type ServeCmd struct {
	Port string `arg:"-p,--port" help:"listen port (PORT)"`
}

type Args struct {
	Guide   string `arg:"-g,--guide" help:"guide directory (GUIDE_DIR)"`
	Repo    string `arg:"-r,--repo" help:"repository root (REPO_ROOT)"`
	Verbose bool   `arg:"-v,--verbose" help:"log debug messages"`

	Combine *CombineCmd `arg:"subcommand:combine" help:"flatten the guide into a single document"`
	Chain   *ChainCmd   `arg:"subcommand:chain" help:"print the pages the walker visits"`
	Check   *CheckCmd   `arg:"subcommand:check" help:"validate links, table of contents and versions"`
	Sync    *SyncCmd    `arg:"subcommand:sync" help:"commit and push documentation changes"`
	Serve   *ServeCmd   `arg:"subcommand:serve" help:"serve the combined guide over HTTP"`
}

func (Args) Description() string {
	return "guidetools builds, checks and publishes the Dreamweaver user guide.\n"
}

func (Args) Version() string {
	return "guidetools " + version
}

// version is overwritten at link time.
var version = "debug build"

func main() {
	var args Args
	parser, err := arg.NewParser(arg.Config{Program: "guidetools"}, &args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	switch err := parser.Parse(os.Args[1:]); {
	case errors.Is(err, arg.ErrHelp):
		parser.WriteHelp(os.Stdout)
		os.Exit(0)
	case errors.Is(err, arg.ErrVersion):
		fmt.Println(args.Version())
		os.Exit(0)
	case err != nil:
		parser.Fail(err.Error())
	}
	if parser.Subcommand() == nil {
		parser.Fail("missing subcommand")
	}

	cfg := config.Load()
	if args.Guide != "" {
		cfg.GuideDir = args.Guide
	}
	if args.Repo != "" {
		cfg.RepoRoot = args.Repo
	}
	if args.Verbose {
		cfg.LogLevel = slog.LevelDebug
	}

	// Standard output carries documents, so logs go to standard error.
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orch := pipeline.NewOrchestrator(cfg, os.DirFS(cfg.GuideDir), os.DirFS(cfg.RepoRoot), vcssync.ExecRunner{}, log)

	switch {
	case args.Combine != nil:
		err = runCombine(ctx, orch, args.Combine)
	case args.Chain != nil:
		err = runChain(ctx, orch, args.Chain)
	case args.Check != nil:
		err = runCheck(ctx, orch, args.Check)
	case args.Sync != nil:
		err = runSync(ctx, orch, args.Sync)
	case args.Serve != nil:
		err = runServe(ctx, orch, cfg, log, args.Serve)
	}
	if err != nil {
		log.Error("command failed", "command", subcommandName(parser), "error", err)
		os.Exit(1)
	}
}

func subcommandName(p *arg.Parser) string {
	names := p.SubcommandNames()
	return strings.Join(names, " ")
}

func runCombine(ctx context.Context, orch *pipeline.Orchestrator, cmd *CombineCmd) error {
	format, err := guide.ParseFormat(cmd.Format)
	if err != nil {
		return err
	}
	opts := orch.DefaultCombineOptions()
	if cmd.Start != "" {
		opts.Start = cmd.Start
	}
	if cmd.End != "" {
		opts.End = cmd.End
	}
	opts.Cover = cmd.Cover
	opts.Format = format
	opts.Strict = cmd.Strict

	combine := func(w io.Writer) error {
		_, err := orch.Combine(ctx, w, opts)
		return errors.Wrap(err, "combine")
	}
	if cmd.Output == "" {
		return combine(os.Stdout)
	}
	return writeFile(cmd.Output, combine)
}

// writeFile creates name, hands it to write and closes it, returning the
// first error.
func writeFile(name string, write func(io.Writer) error) error {
	f, err := os.Create(filepath.Clean(name))
	if err != nil {
		return errors.Wrap(err, "create output")
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "close output")
}

func runChain(ctx context.Context, orch *pipeline.Orchestrator, cmd *ChainCmd) error {
	opts := orch.DefaultCombineOptions()
	if cmd.Start != "" {
		opts.Start = cmd.Start
	}
	if cmd.End != "" {
		opts.End = cmd.End
	}
	chain, walkErr := orch.Chain(ctx, opts.Start, opts.End)

	tree := output.NewChainTree(opts.Start)
	for i, p := range chain.Pages {
		rel, err := filepath.Rel(chain.StartDir, p.Path())
		if err != nil {
			rel = p.Path()
		}
		tree.Insert(filepath.ToSlash(rel), i+1, p.Title())
	}
	fmt.Print(tree.Render())
	if walkErr != nil {
		return errors.Wrap(walkErr, "walk")
	}
	fmt.Printf("%d pages, stopped: %s\n", len(chain.Pages), chain.Stop)
	return nil
}

func runCheck(ctx context.Context, orch *pipeline.Orchestrator, cmd *CheckCmd) error {
	report, err := orch.Check(ctx)
	if err != nil {
		return errors.Wrap(err, "check")
	}
	if cmd.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return errors.Wrap(err, "encode report")
		}
	} else {
		for _, p := range report.Problems() {
			fmt.Println(p)
		}
	}
	if !report.OK() {
		return errors.Errorf("%d problems found", len(report.Problems()))
	}
	return nil
}

func runSync(ctx context.Context, orch *pipeline.Orchestrator, cmd *SyncCmd) error {
	res, _, err := orch.Sync(ctx, cmd.DryRun)
	if err != nil {
		return err
	}
	if res.Changes.Empty() {
		fmt.Println("nothing to do...")
	}
	return nil
}

func runServe(ctx context.Context, orch *pipeline.Orchestrator, cfg config.Config, log *slog.Logger, cmd *ServeCmd) error {
	port := cfg.Port
	if cmd.Port != "" {
		port = cmd.Port
	}

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      api.NewServer(orch, log, cfg),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		<-ctx.Done()
		log.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting guidetools preview", "port", port, "guide", cfg.GuideDir)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "serve")
	}
	return nil
}
