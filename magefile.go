//go:build mage

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/vk/mdprune/internal/ctxlog"
	"github.com/vk/mdprune/internal/pipeline"
)

// Default target to run when none is specified.
var Default = Check

const taskFile = "tasks.hcl"

// Format formats every Go file in the workspace.
func Format(ctx context.Context) error { return runTask(ctx, "format") }

// Lint lints with auto-fix; any finding fails the run.
func Lint(ctx context.Context) error { return runTask(ctx, "lint") }

// LintAll lints tests and every build tag with auto-fix.
func LintAll(ctx context.Context) error { return runTask(ctx, "lint-all") }

// Clean removes build artifacts and caches.
func Clean(ctx context.Context) error { return runTask(ctx, "clean") }

// Build builds every package.
func Build(ctx context.Context) error { return runTask(ctx, "build") }

// Check runs format, lint, clean and build, stopping at the first failure.
func Check(ctx context.Context) error { return runTask(ctx, "check") }

// runTask loads the task file and runs name, exiting with the status of
// the command that failed.
func runTask(ctx context.Context, name string) error {
	level := slog.LevelInfo
	if mg.Verbose() {
		level = slog.LevelDebug
	}
	ctx = ctxlog.WithLogger(ctx, slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	tf, err := pipeline.NewLoader().Load(ctx, taskFile)
	if err != nil {
		return err
	}
	if err := pipeline.NewRunner(tf, pipeline.NewExecCommander(os.Stdout, os.Stderr)).Run(ctx, name); err != nil {
		return mg.Fatal(pipeline.ExitCode(err), err)
	}
	return nil
}
