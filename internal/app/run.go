package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/kubakubakuba/templogger/internal/config"
	"github.com/kubakubakuba/templogger/internal/httpapi"
	"github.com/kubakubakuba/templogger/internal/modules/temperature"
	"github.com/kubakubakuba/templogger/internal/modules/temperature/render"
	"github.com/kubakubakuba/templogger/internal/modules/temperature/series"
	"github.com/kubakubakuba/templogger/internal/modules/temperature/service"
	"github.com/kubakubakuba/templogger/internal/modules/temperature/store"
	temperatureviews "github.com/kubakubakuba/templogger/internal/modules/temperature/views"
	"github.com/kubakubakuba/templogger/internal/mqtt"
)

// NewRenderer returns the backend selected by RENDER_BACKEND.
func NewRenderer(cfg config.Config) (render.Renderer, error) {
	switch cfg.RenderBackend {
	case "", "gnuplot":
		return render.Gnuplot{Path: cfg.GnuplotPath}, nil
	case "chart":
		return render.Chart{}, nil
	default:
		return nil, fmt.Errorf("unknown render backend %q", cfg.RenderBackend)
	}
}

// NewService builds the plotting pipeline from cfg. keepScripts keeps the
// generated scripts next to the logs.
func NewService(cfg config.Config, keepScripts bool, logger *slog.Logger) (*service.Service, error) {
	for _, dir := range []string{cfg.LogDir, cfg.PlotsDir, cfg.ScriptDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	renderer, err := NewRenderer(cfg)
	if err != nil {
		return nil, err
	}
	keying, err := render.ParseKeying(cfg.ArtifactKeying)
	if err != nil {
		return nil, err
	}
	builder := render.NewBuilder(renderer, render.Options{
		OutputDir:   cfg.PlotsDir,
		ScriptDir:   cfg.ScriptDir,
		Timeout:     cfg.RenderTimeout,
		Keying:      keying,
		KeepScripts: keepScripts,
	}, logger)

	style := render.DefaultStyle()
	style.Width = cfg.PlotWidth
	style.Height = cfg.PlotHeight
	if err := style.Validate(); err != nil {
		return nil, fmt.Errorf("PLOT_WIDTH/PLOT_HEIGHT: %w", err)
	}

	return service.NewService(
		store.NewFileStore(cfg.LogDir, cfg.LogExt),
		builder,
		service.Options{
			Parse: series.ParseOptions{MinTemperature: cfg.MinTemperature},
			Style: style,
		},
		logger,
	), nil
}

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"logDir", cfg.LogDir,
		"logExt", cfg.LogExt,
		"plotsDir", cfg.PlotsDir,
		"scriptDir", cfg.ScriptDir,
		"renderBackend", cfg.RenderBackend,
		"renderTimeout", cfg.RenderTimeout,
		"artifactKeying", cfg.ArtifactKeying,
		"mqttEnabled", cfg.MQTTEnabled,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopic", cfg.MQTTTopic,
	)

	svc, err := NewService(cfg, false, slog.Default())
	if err != nil {
		return err
	}
	if err := temperatureviews.LoadTemplates(); err != nil {
		return err
	}

	mux := httpapi.NewMux(cfg.LogDir, cfg.PlotsDir)

	// Set the MQTT handler before Connect so the on-connect subscription
	// delivers queued messages to it.
	var subscriber *mqtt.Subscriber
	if cfg.MQTTEnabled {
		subscriber = mqtt.NewSubscriber(cfg, slog.Default())
		temperature.RegisterFeature(mux, svc, subscriber, slog.Default())

		// Short timeout so a missing broker does not block startup.
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		err = subscriber.Connect(connectCtx)
		connectCancel()
		if err != nil {
			slog.Warn("mqtt connection failed (continuing without mqtt)", "error", err)
		}
	} else {
		temperature.RegisterFeature(mux, svc, nil, slog.Default())
	}

	srv := httpapi.NewServer(cfg.HTTPAddr, mux)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if subscriber != nil {
			subscriber.Disconnect()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if subscriber != nil {
		slog.Info("mqtt disconnecting")
		subscriber.Disconnect()
	}

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
