// Package vcssync stages documentation changes into git and publishes them.
package vcssync

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Runner executes a command in dir and returns its standard output.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (string, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stdout.String(), fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// Syncer commits the changes under DocDir and pushes them.
type Syncer struct {
	Runner   Runner
	RepoRoot string
	DocDir   string // relative to RepoRoot
	Inquiry  string
	Message  string
	Branch   string
	DryRun   bool
	Log      *slog.Logger
}

// Result describes what Sync did.
type Result struct {
	Changes   Changes `json:"changes"`
	Committed bool    `json:"committed"`
	Pushed    bool    `json:"pushed"`
}

// Sync stages untracked, deleted and modified files, then commits and pushes
// if anything was staged. In dry-run mode only `git status` is executed and
// the remaining commands are logged.
func (s *Syncer) Sync(ctx context.Context) (*Result, error) {
	log := s.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	log = log.With("repo", s.RepoRoot, "doc_dir", s.DocDir)

	out, err := s.Runner.Run(ctx, s.RepoRoot, "git", "status", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("git status: %w", err)
	}
	changes := ParseStatus(out, s.DocDir)
	res := &Result{Changes: changes}

	if changes.Empty() {
		log.Info("nothing to do")
		return res, nil
	}

	for _, p := range changes.Untracked {
		if err := s.git(ctx, log, "add", p); err != nil {
			return res, err
		}
	}
	for _, p := range changes.Deleted {
		if err := s.git(ctx, log, "rm", p); err != nil {
			return res, err
		}
	}
	for _, p := range changes.Modified {
		if err := s.git(ctx, log, "add", p); err != nil {
			return res, err
		}
	}

	msg := fmt.Sprintf("[%s] %s", s.Inquiry, s.Message)
	if err := s.git(ctx, log, "commit", "-m", msg); err != nil {
		return res, err
	}
	res.Committed = !s.DryRun

	branch := s.Branch
	if branch == "" {
		branch = "master"
	}
	if err := s.git(ctx, log, "push", "--quiet", "origin", branch); err != nil {
		return res, err
	}
	res.Pushed = !s.DryRun

	log.Info("synced documentation changes",
		"untracked", len(changes.Untracked),
		"modified", len(changes.Modified),
		"deleted", len(changes.Deleted),
		"dry_run", s.DryRun,
	)
	return res, nil
}

func (s *Syncer) git(ctx context.Context, log *slog.Logger, args ...string) error {
	if s.DryRun {
		log.Info("dry run", "command", "git "+strings.Join(args, " "))
		return nil
	}
	if _, err := s.Runner.Run(ctx, s.RepoRoot, "git", args...); err != nil {
		return fmt.Errorf("git %s: %w", args[0], err)
	}
	return nil
}
