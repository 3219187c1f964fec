package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// LogDir holds one {room}.{LogExt} file per sensor.
	LogDir string
	LogExt string
	// PlotsDir receives rendered artifacts; ScriptDir the generated gnuplot scripts.
	PlotsDir  string
	ScriptDir string

	RenderBackend  string
	GnuplotPath    string
	RenderTimeout  time.Duration
	PlotWidth      int
	PlotHeight     int
	ArtifactKeying string
	// MinTemperature, when set, drops implausible samples before plotting.
	MinTemperature *float64

	MQTTEnabled  bool
	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string
	MQTTTopic    string
}

// LoadDotEnv loads variables from the given files (default .env) without
// overriding ones already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	httpAddr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	logDir, err := absDir("LOG_DIR", ".")
	if err != nil {
		return Config{}, err
	}
	logExt := strings.TrimPrefix(strings.TrimSpace(os.Getenv("LOG_EXT")), ".")
	if logExt == "" {
		logExt = "tlog"
	}
	if strings.ContainsAny(logExt, `/\*?[`) {
		return Config{}, fmt.Errorf("invalid LOG_EXT %q", logExt)
	}
	plotsDir, err := absDir("PLOTS_DIR", "plots")
	if err != nil {
		return Config{}, err
	}
	scriptDir, err := absDir("SCRIPT_DIR", logDir)
	if err != nil {
		return Config{}, err
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("RENDER_BACKEND")))
	if backend == "" {
		backend = "gnuplot"
	}
	switch backend {
	case "gnuplot", "chart":
	default:
		return Config{}, fmt.Errorf("invalid RENDER_BACKEND %q (allowed: gnuplot, chart)", backend)
	}

	gnuplotPath := strings.TrimSpace(os.Getenv("GNUPLOT_PATH"))
	if gnuplotPath == "" {
		gnuplotPath = "gnuplot"
	}

	renderTimeoutStr := strings.TrimSpace(os.Getenv("RENDER_TIMEOUT"))
	if renderTimeoutStr == "" {
		renderTimeoutStr = "30s"
	}
	renderTimeout, err := time.ParseDuration(renderTimeoutStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid RENDER_TIMEOUT %q: %w", renderTimeoutStr, err)
	}
	if renderTimeout <= 0 {
		return Config{}, fmt.Errorf("RENDER_TIMEOUT must be positive, got %v", renderTimeout)
	}

	plotWidth, err := intEnv("PLOT_WIDTH", 1600)
	if err != nil {
		return Config{}, err
	}
	plotHeight, err := intEnv("PLOT_HEIGHT", 600)
	if err != nil {
		return Config{}, err
	}

	keying := strings.ToLower(strings.TrimSpace(os.Getenv("ARTIFACT_KEYING")))
	if keying == "" {
		keying = "room"
	}
	switch keying {
	case "room", "style":
	default:
		return Config{}, fmt.Errorf("invalid ARTIFACT_KEYING %q (allowed: room, style)", keying)
	}

	var minTemperature *float64
	if s := strings.TrimSpace(os.Getenv("MIN_TEMPERATURE")); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid MIN_TEMPERATURE %q: %w", s, err)
		}
		minTemperature = &v
	}

	mqttEnabled := false
	if s := strings.TrimSpace(os.Getenv("MQTT_ENABLED")); s != "" {
		mqttEnabled, err = strconv.ParseBool(s)
		if err != nil {
			return Config{}, fmt.Errorf("invalid MQTT_ENABLED %q: %w", s, err)
		}
	}

	mqttBroker := strings.TrimSpace(os.Getenv("MQTT_BROKER"))
	if mqttBroker == "" {
		mqttBroker = "localhost"
	}
	mqttPort, err := intEnv("MQTT_PORT", 1883)
	if err != nil {
		return Config{}, err
	}
	mqttClientID := strings.TrimSpace(os.Getenv("MQTT_CLIENT_ID"))
	if mqttClientID == "" {
		mqttClientID = "templogger-server"
	}
	mqttTopic := strings.TrimSpace(os.Getenv("MQTT_TOPIC"))
	if mqttTopic == "" {
		mqttTopic = "templogger/+/temperature"
	}

	return Config{
		AppEnv:         appEnv,
		LogLevel:       level,
		HTTPAddr:       httpAddr,
		LogDir:         logDir,
		LogExt:         logExt,
		PlotsDir:       plotsDir,
		ScriptDir:      scriptDir,
		RenderBackend:  backend,
		GnuplotPath:    gnuplotPath,
		RenderTimeout:  renderTimeout,
		PlotWidth:      plotWidth,
		PlotHeight:     plotHeight,
		ArtifactKeying: keying,
		MinTemperature: minTemperature,
		MQTTEnabled:    mqttEnabled,
		MQTTBroker:     mqttBroker,
		MQTTPort:       mqttPort,
		MQTTClientID:   mqttClientID,
		MQTTTopic:      mqttTopic,
	}, nil
}

// absDir resolves a directory variable against the working directory.
func absDir(key, def string) (string, error) {
	dir := strings.TrimSpace(os.Getenv(key))
	if dir == "" {
		dir = def
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%s %q: %w", key, dir, err)
	}
	return abs, nil
}

func intEnv(key string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, n)
	}
	return n, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
