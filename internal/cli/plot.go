package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kubakubakuba/templogger/internal/app"
	"github.com/kubakubakuba/templogger/internal/config"
	"github.com/kubakubakuba/templogger/internal/logging"
	"github.com/kubakubakuba/templogger/internal/modules/temperature/render"
	"github.com/kubakubakuba/templogger/internal/modules/temperature/series"
	"github.com/kubakubakuba/templogger/internal/modules/temperature/service"
	"github.com/kubakubakuba/templogger/internal/modules/temperature/store"
	"github.com/kubakubakuba/templogger/internal/modules/temperature/types"
)

const (
	batchWidth  = 800
	batchHeight = 600
)

var (
	styleOK    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	styleLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	stylePath  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

type plotFlags struct {
	text    bool
	inverse bool
	width   int
	height  int
	month   int
	day     int
	backend string
}

func newPlotCmd(version string) *cobra.Command {
	var f plotFlags
	cmd := &cobra.Command{
		Use:   "plot <file.tlog>",
		Short: "Render the latest day of a log file next to it",
		Long: `Render one sensor log offline. Readings below -69 are dropped, the
temperature axis is fixed to [0, 40] and the latest recorded day is plotted
unless --month and --day are given. The plot and its gnuplot script are
written next to the log file.

The file name without its extension names the room and may only contain
letters, digits, '_', '-' and '.', and must not start with '.'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlot(cmd, args[0], f, version)
		},
	}
	fl := cmd.Flags()
	fl.BoolVar(&f.text, "text", false, "render a text plot instead of an image")
	fl.BoolVar(&f.inverse, "inverse", false, "light on dark colors")
	fl.IntVar(&f.width, "width", batchWidth, "image width in pixels")
	fl.IntVar(&f.height, "height", batchHeight, "image height in pixels")
	fl.IntVar(&f.month, "month", 0, "month to plot (requires --day)")
	fl.IntVar(&f.day, "day", 0, "day of month to plot (requires --month)")
	fl.StringVar(&f.backend, "backend", "", "renderer: gnuplot or chart (default from RENDER_BACKEND)")
	return cmd
}

func (f plotFlags) date() (*types.MonthDay, error) {
	if f.month == 0 && f.day == 0 {
		return nil, nil
	}
	if f.month < 1 || f.month > 12 || f.day < 1 || f.day > 31 {
		return nil, errors.New("--month (1-12) and --day (1-31) must be given together")
	}
	return &types.MonthDay{Month: time.Month(f.month), Day: f.day}, nil
}

func (f plotFlags) style() render.Style {
	s := render.Style{
		Mode:        render.ModeRaster,
		Width:       f.width,
		Height:      f.height,
		Inverse:     f.inverse,
		FixedYRange: true,
	}
	if f.text {
		s.Mode = render.ModeText
	}
	return s
}

func runPlot(cmd *cobra.Command, file string, f plotFlags, version string) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if f.backend != "" {
		cfg.RenderBackend = strings.ToLower(f.backend)
	}
	logger := logging.NewWithWriter(cmd.ErrOrStderr(), cfg, version, appName)

	date, err := f.date()
	if err != nil {
		return err
	}

	abs, err := filepath.Abs(file)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	ext := filepath.Ext(abs)
	room := strings.TrimSuffix(filepath.Base(abs), ext)
	if ext == "" {
		return fmt.Errorf("%s: expected a log file with an extension", file)
	}
	if !store.ValidRoom(room) {
		return fmt.Errorf("%w: %q (use letters, digits, '_', '-' and '.'; rename %s)", types.ErrInvalidRoom, room, filepath.Base(abs))
	}

	renderer, err := app.NewRenderer(cfg)
	if err != nil {
		return err
	}
	builder := render.NewBuilder(renderer, render.Options{
		OutputDir:   dir,
		ScriptDir:   dir,
		Timeout:     cfg.RenderTimeout,
		KeepScripts: true,
	}, logger)
	svc := service.NewService(store.NewFileStore(dir, ext), builder, service.Options{
		Parse: series.ParseOptions{MinTemperature: series.MinTemperature(series.BatchMinTemperature)},
	}, logger)

	style := f.style()
	art, err := svc.Plot(cmd.Context(), service.PlotRequest{Room: room, Date: date, Style: style})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if f.text {
		content, err := os.ReadFile(art.Path)
		if err != nil {
			return err
		}
		if _, err := out.Write(content); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(out, "%s %s %s %s\n",
		styleOK.Render("plot saved"),
		stylePath.Render(art.Path),
		styleLabel.Render(fmt.Sprintf("(%d samples on %s)", len(art.Points), art.Date.Format("2006-01-02"))),
		styleLabel.Render("script "+filepath.Join(dir, render.ScriptName(room, style, render.KeyByRoom))),
	)
	return err
}
