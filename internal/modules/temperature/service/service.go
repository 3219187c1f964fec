package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/kubakubakuba/templogger/internal/modules/temperature/render"
	"github.com/kubakubakuba/templogger/internal/modules/temperature/series"
	"github.com/kubakubakuba/templogger/internal/modules/temperature/store"
	"github.com/kubakubakuba/templogger/internal/modules/temperature/types"
)

// galleryConcurrency bounds parallel renders on the gallery page.
const galleryConcurrency = 4

type Options struct {
	Parse series.ParseOptions
	// Style is the default raster style for pages and the gallery.
	Style render.Style
	// Now is the clock used for ingestion timestamps and "today".
	Now func() time.Time
}

type Service struct {
	store   store.SampleStore
	builder *render.Builder
	opts    Options
	logger  *slog.Logger
}

func NewService(s store.SampleStore, b *render.Builder, opts Options, logger *slog.Logger) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Style == (render.Style{}) {
		opts.Style = render.DefaultStyle()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: s, builder: b, opts: opts, logger: logger}
}

type PlotRequest struct {
	Room  string
	Date  *types.MonthDay
	Style render.Style
}

// Artifact describes a finished render.
type Artifact struct {
	Room   string
	Name   string
	Path   string
	Date   time.Time
	Points []types.Point
}

func (s *Service) Now() time.Time {
	return s.opts.Now()
}

func (s *Service) DefaultStyle() render.Style {
	return s.opts.Style
}

func (s *Service) Today() types.MonthDay {
	return types.MonthDayOf(s.Now())
}

func (s *Service) Rooms() ([]string, error) {
	return s.store.Rooms()
}

// Ingest appends one reading stamped with the current time. temperature must
// parse as a finite number; its text is stored as given.
func (s *Service) Ingest(room, temperature string) (time.Time, error) {
	temperature = strings.TrimSpace(temperature)
	v, err := strconv.ParseFloat(temperature, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return time.Time{}, fmt.Errorf("%w: %q", types.ErrInvalidTemperature, temperature)
	}
	ts := s.Now()
	if err := s.store.Append(room, ts, temperature); err != nil {
		return time.Time{}, err
	}
	s.logger.Debug("reading logged", "room", room, "temperature", temperature)
	return ts, nil
}

// Record stores a reading received from another transport. A zero timestamp
// means "now".
func (s *Service) Record(r types.Reading) error {
	if math.IsNaN(r.Temperature) || math.IsInf(r.Temperature, 0) {
		return fmt.Errorf("%w: %v", types.ErrInvalidTemperature, r.Temperature)
	}
	ts := r.Timestamp
	if ts.IsZero() {
		ts = s.Now()
	}
	return s.store.Append(r.Room, ts.In(time.Local), strconv.FormatFloat(r.Temperature, 'f', -1, 64))
}

// Plot runs the whole pipeline for one room: read the log, parse and filter
// it, select the day, normalize it and render.
func (s *Service) Plot(ctx context.Context, req PlotRequest) (Artifact, error) {
	if err := req.Style.Validate(); err != nil {
		return Artifact{}, err
	}
	content, err := s.store.Read(req.Room)
	if err != nil {
		return Artifact{}, err
	}
	parsed, err := series.Parse(string(content), s.opts.Parse)
	if err != nil {
		return Artifact{}, fmt.Errorf("%s: %w", req.Room, err)
	}
	selected, err := series.SelectDay(parsed.Samples, parsed.Last, req.Date)
	if err != nil {
		if req.Date != nil {
			return Artifact{}, fmt.Errorf("%s on %s: %w", req.Room, req.Date, err)
		}
		return Artifact{}, fmt.Errorf("%s: %w", req.Room, err)
	}
	points := series.Normalize(selected)
	s.logger.Debug("series selected",
		"room", req.Room,
		"samples", len(parsed.Samples),
		"selected", len(points),
	)

	date := selected[0].Time
	job := s.builder.Build(req.Room, date, points, req.Style)
	path, err := s.builder.Run(ctx, job)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{
		Room:   req.Room,
		Name:   filepath.Base(path),
		Path:   path,
		Date:   date,
		Points: points,
	}, nil
}

// GalleryEntry is the outcome of rendering one room for the gallery.
type GalleryEntry struct {
	Room  string
	File  string
	Error string
}

// PlotAll renders today's raster plot for every room. Failures are reported
// per room and never abort the others.
func (s *Service) PlotAll(ctx context.Context, style render.Style) ([]GalleryEntry, error) {
	rooms, err := s.Rooms()
	if err != nil {
		return nil, err
	}
	today := s.Today()
	entries := make([]GalleryEntry, len(rooms))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(galleryConcurrency)
	for i, room := range rooms {
		g.Go(func() error {
			entries[i].Room = room
			art, err := s.Plot(gctx, PlotRequest{Room: room, Date: &today, Style: style})
			if err != nil {
				s.logger.Info("gallery plot skipped", "room", room, "error", err)
				entries[i].Error = err.Error()
				return nil
			}
			entries[i].File = art.Name
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Artifacts lists the raster artifacts present in the output directory.
func (s *Service) Artifacts() ([]string, error) {
	dir := s.builder.OutputDir()
	files, err := doublestar.Glob(os.DirFS(dir), "*.png", doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("list artifacts in %s: %w", dir, err)
	}
	slices.Sort(files)
	return files, nil
}

// ArtifactPath resolves a previously generated artifact by file name. Only
// plain names inside the output directory are served.
func (s *Service) ArtifactPath(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", types.ErrArtifactNotFound, name)
	}
	path := filepath.Join(s.builder.OutputDir(), name)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", types.ErrArtifactNotFound, name)
		}
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s", types.ErrArtifactNotFound, name)
	}
	return path, nil
}
