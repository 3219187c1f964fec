package render

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/kubakubakuba/templogger/internal/modules/temperature/types"
)

// Job is one render request: the series, its styling and where files go.
type Job struct {
	Room       string
	Date       time.Time
	Points     []types.Point
	Style      Style
	ScriptPath string
	OutputPath string
	// KeepScript leaves the script on disk after a successful render.
	KeepScript bool
}

// Renderer turns a job whose script is already on disk into the artifact at
// job.OutputPath. Failures should be reported as *RenderError.
type Renderer interface {
	Render(ctx context.Context, job *Job) error
}

// Func adapts a plain function to Renderer.
type Func func(ctx context.Context, job *Job) error

func (f Func) Render(ctx context.Context, job *Job) error {
	return f(ctx, job)
}

// RenderError carries the renderer diagnostic. Kind is types.ErrRendererMissing
// or types.ErrRendererFailed.
type RenderError struct {
	Kind       error
	Diagnostic string
}

func (e *RenderError) Error() string {
	if e.Diagnostic == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Diagnostic
}

func (e *RenderError) Unwrap() error {
	return e.Kind
}

func Failed(format string, args ...any) *RenderError {
	return &RenderError{Kind: types.ErrRendererFailed, Diagnostic: fmt.Sprintf(format, args...)}
}

type Options struct {
	OutputDir string
	ScriptDir string
	Timeout   time.Duration
	Keying    Keying
	// KeepScripts applies to every job built, like the offline plotter does.
	KeepScripts bool
}

// Builder composes render jobs and runs them against a Renderer.
type Builder struct {
	renderer Renderer
	opts     Options
	logger   *slog.Logger
}

func NewBuilder(renderer Renderer, opts Options, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{renderer: renderer, opts: opts, logger: logger}
}

func (b *Builder) OutputDir() string {
	return b.opts.OutputDir
}

// Build derives script and output paths from the room and style only, so
// rerunning an identical job overwrites the same files.
func (b *Builder) Build(room string, date time.Time, points []types.Point, style Style) *Job {
	return &Job{
		Room:       room,
		Date:       date,
		Points:     points,
		Style:      style,
		ScriptPath: filepath.Join(b.opts.ScriptDir, ScriptName(room, style, b.opts.Keying)),
		OutputPath: filepath.Join(b.opts.OutputDir, ArtifactName(room, style, b.opts.Keying)),
		KeepScript: b.opts.KeepScripts,
	}
}

// Run writes the script, invokes the renderer with a bounded wait and removes
// the script after success. It returns the artifact path.
//
// Two concurrent jobs for the same room race on the same files; whichever
// finishes last wins.
func (b *Builder) Run(ctx context.Context, job *Job) (string, error) {
	script, err := job.Script()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(job.ScriptPath, script, 0o644); err != nil {
		return "", fmt.Errorf("write script %s: %w", job.ScriptPath, err)
	}
	// A stale artifact must not pass for this render's output.
	if err := os.Remove(job.OutputPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("remove previous artifact %s: %w", job.OutputPath, err)
	}

	if b.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	err = b.renderer.Render(ctx, job)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = Failed("timed out after %s", b.opts.Timeout)
		}
		var re *RenderError
		if !errors.As(err, &re) {
			err = &RenderError{Kind: types.ErrRendererFailed, Diagnostic: err.Error()}
		}
		b.logger.Error("render failed",
			"room", job.Room,
			"script", job.ScriptPath,
			"error", err,
		)
		return "", err
	}

	if _, err := os.Stat(job.OutputPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: renderer produced no %s", types.ErrArtifactNotFound, filepath.Base(job.OutputPath))
		}
		return "", fmt.Errorf("stat artifact %s: %w", job.OutputPath, err)
	}

	if !job.KeepScript {
		if err := os.Remove(job.ScriptPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			b.logger.Warn("remove script", "path", job.ScriptPath, "error", err)
		}
	}

	b.logger.Debug("plot rendered",
		"room", job.Room,
		"mode", job.Style.Mode.String(),
		"points", len(job.Points),
		"output", job.OutputPath,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return job.OutputPath, nil
}
