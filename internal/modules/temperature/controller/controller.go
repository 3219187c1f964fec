package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/kubakubakuba/templogger/internal/modules/temperature/render"
	"github.com/kubakubakuba/templogger/internal/modules/temperature/service"
	"github.com/kubakubakuba/templogger/internal/modules/temperature/types"
)

// PlotService is the part of service.Service the HTTP layer needs.
type PlotService interface {
	Now() time.Time
	Today() types.MonthDay
	DefaultStyle() render.Style
	Rooms() ([]string, error)
	Ingest(room, temperature string) (time.Time, error)
	Plot(ctx context.Context, req service.PlotRequest) (service.Artifact, error)
	PlotAll(ctx context.Context, style render.Style) ([]service.GalleryEntry, error)
	Artifacts() ([]string, error)
	ArtifactPath(name string) (string, error)
}

type TemperatureController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type temperatureControllerImpl struct {
	service PlotService
	logger  *slog.Logger
}

func NewTemperatureController(svc PlotService, logger *slog.Logger) TemperatureController {
	if logger == nil {
		logger = slog.Default()
	}
	return &temperatureControllerImpl{service: svc, logger: logger}
}

func (c *temperatureControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleIndex)
	mux.HandleFunc("GET /api/rooms", c.handleRooms)
	mux.HandleFunc("GET /temp/{room}/{temp}", c.handleLogTemperature)

	mux.HandleFunc("GET /plottemp/{room}", c.handlePlotPageToday)
	mux.HandleFunc("GET /plottemp/{room}/{month}/{day}", c.handlePlotPage)
	mux.HandleFunc("GET /plotsimple/{room}", c.handlePlotTextToday)
	mux.HandleFunc("GET /plotsimple/{room}/{month}/{day}", c.handlePlotText)
	mux.HandleFunc("GET /plot/{room}", c.handlePlotImage)
	mux.HandleFunc("GET /plot/{room}/{month}/{day}", c.handlePlotImage)

	mux.HandleFunc("GET /plots/{filename}", c.handleArtifact)
	mux.HandleFunc("GET /all", c.handleGallery)
}
