package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/kubakubakuba/templogger/internal/utils"
)

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	dirs []string
}

// NewHealthchecker reports healthy while every directory in dirs is accessible.
func NewHealthchecker(dirs []string) healthchecker {
	return &healthcheckerImpl{dirs: dirs}
}

func (h *healthcheckerImpl) check() error {
	for _, dir := range h.dirs {
		info, err := os.Stat(dir)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", dir)
		}
	}
	return nil
}

func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := h.check(); err != nil {
		slog.Error("failed to check data directories", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to check data directories")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func registerHealthcheck(mux *http.ServeMux, dirs []string) {
	healthchecker := NewHealthchecker(dirs)
	mux.HandleFunc("GET /healthz", healthchecker.handleHealthz)
}
