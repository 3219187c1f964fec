package render

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os/exec"
	"strings"
	"time"

	"github.com/kubakubakuba/templogger/internal/modules/temperature/types"
)

const DefaultGnuplot = "gnuplot"

// Gnuplot runs the external gnuplot binary against the job script.
type Gnuplot struct {
	Path string
}

func (g Gnuplot) binary() string {
	if g.Path == "" {
		return DefaultGnuplot
	}
	return g.Path
}

func (g Gnuplot) Render(ctx context.Context, job *Job) error {
	cmd := exec.CommandContext(ctx, g.binary(), job.ScriptPath)
	cmd.WaitDelay = 2 * time.Second
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return &RenderError{Kind: types.ErrRendererMissing, Diagnostic: g.binary() + " is not installed"}
	}
	diag := strings.TrimSpace(out.String())
	if diag == "" {
		diag = err.Error()
	}
	return &RenderError{Kind: types.ErrRendererFailed, Diagnostic: diag}
}
