package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/kubakubakuba/templogger/internal/modules/temperature/types"
)

// fakeGnuplot writes an executable shell script standing in for gnuplot.
func fakeGnuplot(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stand-in needs a unix shell")
	}
	path := filepath.Join(t.TempDir(), "gnuplot")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write fake gnuplot: %v", err)
	}
	return path
}

func TestGnuplot_Success(t *testing.T) {
	// Pull the output path out of the script like gnuplot would.
	bin := fakeGnuplot(t, `out=$(sed -n "s/^set output '\(.*\)'$/\1/p" "$1")
echo rendered > "$out"
`)
	b, out, _ := newTestBuilder(t, Gnuplot{Path: bin}, false)
	job := b.Build("kitchen", time.Now(), points(), DefaultStyle())

	path, err := b.Run(context.Background(), job)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(out, "kitchen.png"))
	if err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
	if path != filepath.Join(out, "kitchen.png") || strings.TrimSpace(string(got)) != "rendered" {
		t.Errorf("path=%q content=%q", path, got)
	}
}

func TestGnuplot_NonZeroExit(t *testing.T) {
	bin := fakeGnuplot(t, "echo '\"script\" line 2: invalid command' >&2\nexit 1\n")
	job := &Job{ScriptPath: "unused.gnuplot"}

	err := Gnuplot{Path: bin}.Render(context.Background(), job)
	if !errors.Is(err, types.ErrRendererFailed) {
		t.Fatalf("err = %v; want ErrRendererFailed", err)
	}
	var re *RenderError
	if !errors.As(err, &re) || !strings.Contains(re.Diagnostic, "invalid command") {
		t.Errorf("diagnostic = %v; want stderr text", err)
	}
}

func TestGnuplot_Missing(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"not on PATH", "templogger-no-such-gnuplot"},
		{"absolute path", filepath.Join(t.TempDir(), "gnuplot")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Gnuplot{Path: tt.path}.Render(context.Background(), &Job{ScriptPath: "x.gnuplot"})
			if !errors.Is(err, types.ErrRendererMissing) {
				t.Errorf("err = %v; want ErrRendererMissing", err)
			}
		})
	}
}

func TestGnuplot_Timeout(t *testing.T) {
	bin := fakeGnuplot(t, "sleep 5\n")
	b, _, _ := newTestBuilder(t, Gnuplot{Path: bin}, false)
	b.opts.Timeout = 100 * time.Millisecond

	start := time.Now()
	_, err := b.Run(context.Background(), b.Build("kitchen", time.Now(), points(), DefaultStyle()))
	if !errors.Is(err, types.ErrRendererFailed) || !strings.Contains(err.Error(), "timed out") {
		t.Fatalf("err = %v; want timeout failure", err)
	}
	if elapsed := time.Since(start); elapsed > 4*time.Second {
		t.Errorf("Run took %s; the wait is not bounded", elapsed)
	}
}
