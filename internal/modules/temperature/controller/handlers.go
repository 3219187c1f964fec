package controller

import (
	"bytes"
	"fmt"
	"net/http"
	"os"

	"github.com/kubakubakuba/templogger/internal/modules/temperature/render"
	"github.com/kubakubakuba/templogger/internal/modules/temperature/service"
	"github.com/kubakubakuba/templogger/internal/modules/temperature/store"
	"github.com/kubakubakuba/templogger/internal/modules/temperature/types"
	"github.com/kubakubakuba/templogger/internal/modules/temperature/views"
	"github.com/kubakubakuba/templogger/internal/utils"
)

func (c *temperatureControllerImpl) handleIndex(w http.ResponseWriter, r *http.Request) {
	rooms, err := c.service.Rooms()
	if err != nil {
		c.logger.Error("index: list rooms failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to list sensors")
		return
	}
	var buf bytes.Buffer
	if err := views.RenderIndex(&buf, &views.IndexData{Title: "Sensors", Rooms: rooms}); err != nil {
		c.logger.Error("index template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	c.writeHTML(w, buf.Bytes())
}

func (c *temperatureControllerImpl) handleRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := c.service.Rooms()
	if err != nil {
		c.logger.Error("rooms: list failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to list sensors")
		return
	}
	utils.WriteJSON(w, http.StatusOK, rooms)
}

func (c *temperatureControllerImpl) handleLogTemperature(w http.ResponseWriter, r *http.Request) {
	room := r.PathValue("room")
	temp := r.PathValue("temp")

	ts, err := c.service.Ingest(room, temp)
	if err != nil {
		c.writeServiceError(w, "ingest", room, err)
		return
	}
	utils.WriteText(w, http.StatusOK,
		fmt.Sprintf("Logged %s°C for %s at %s\n", temp, room, ts.Format(store.TimestampLayout)))
}

func (c *temperatureControllerImpl) handlePlotPageToday(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, datedPath("plottemp", r.PathValue("room"), c.service.Today()), http.StatusFound)
}

func (c *temperatureControllerImpl) handlePlotPage(w http.ResponseWriter, r *http.Request) {
	room := r.PathValue("room")
	date, err := parseDate(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	art, err := c.service.Plot(r.Context(), service.PlotRequest{Room: room, Date: &date, Style: c.service.DefaultStyle()})
	if err != nil {
		c.writeServiceError(w, "plot page", room, err)
		return
	}

	data := &views.PlotData{
		Title:    "Temperature for " + room,
		Room:     room,
		Date:     art.Date.Format("2006-01-02"),
		Month:    int(date.Month),
		Day:      date.Day,
		Samples:  len(art.Points),
		PlotFile: art.Name,
		Version:  c.service.Now().UnixNano(),
	}
	var buf bytes.Buffer
	if err := views.RenderPlot(&buf, data); err != nil {
		c.logger.Error("plot template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	c.writeHTML(w, buf.Bytes())
}

func (c *temperatureControllerImpl) handlePlotTextToday(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, datedPath("plotsimple", r.PathValue("room"), c.service.Today()), http.StatusFound)
}

func (c *temperatureControllerImpl) handlePlotText(w http.ResponseWriter, r *http.Request) {
	room := r.PathValue("room")
	date, err := parseDate(r)
	if err != nil {
		utils.WriteText(w, http.StatusBadRequest, "Error: "+err.Error()+"\n")
		return
	}

	style := c.service.DefaultStyle()
	style.Mode = render.ModeText
	art, err := c.service.Plot(r.Context(), service.PlotRequest{Room: room, Date: &date, Style: style})
	if err != nil {
		status := errorStatus(err)
		c.logError("plot text", room, err, status)
		utils.WriteText(w, status, "Error: "+errorMessage(err, status)+"\n")
		return
	}
	content, err := os.ReadFile(art.Path)
	if err != nil {
		c.logger.Error("plot text: read artifact failed", "room", room, "error", err)
		utils.WriteText(w, http.StatusNotFound, "Error: "+types.ErrArtifactNotFound.Error()+"\n")
		return
	}
	utils.WriteText(w, http.StatusOK, string(content))
}

// handlePlotImage renders today's or the given day's raster and returns the
// image that was actually produced.
func (c *temperatureControllerImpl) handlePlotImage(w http.ResponseWriter, r *http.Request) {
	room := r.PathValue("room")
	date := c.service.Today()
	if r.PathValue("month") != "" {
		d, err := parseDate(r)
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		date = d
	}
	style, err := parseImageQuery(r, c.service.DefaultStyle())
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	c.logger.Debug("plotting", "room", room, "date", date.String(), "inverse", style.Inverse,
		"width", style.Width, "height", style.Height)

	art, err := c.service.Plot(r.Context(), service.PlotRequest{Room: room, Date: &date, Style: style})
	if err != nil {
		c.writeServiceError(w, "plot image", room, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	http.ServeFile(w, r, art.Path)
}

func (c *temperatureControllerImpl) handleArtifact(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("filename")
	path, err := c.service.ArtifactPath(name)
	if err != nil {
		c.writeServiceError(w, "artifact", name, err)
		return
	}
	http.ServeFile(w, r, path)
}

func (c *temperatureControllerImpl) handleGallery(w http.ResponseWriter, r *http.Request) {
	entries, err := c.service.PlotAll(r.Context(), c.service.DefaultStyle())
	if err != nil {
		c.logger.Error("gallery: render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render plots")
		return
	}
	files, err := c.service.Artifacts()
	if err != nil {
		c.logger.Error("gallery: list artifacts failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to list plots")
		return
	}

	data := &views.GalleryData{
		Title:     "All plots",
		PlotFiles: files,
		Version:   c.service.Now().UnixNano(),
	}
	for _, e := range entries {
		if e.Error != "" {
			data.Failed = append(data.Failed, views.FailedRoom{Room: e.Room, Error: e.Error})
		}
	}
	var buf bytes.Buffer
	if err := views.RenderGallery(&buf, data); err != nil {
		c.logger.Error("gallery template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	c.writeHTML(w, buf.Bytes())
}

func (c *temperatureControllerImpl) writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(body); err != nil {
		c.logger.Error("write response failed", "error", err)
	}
}

func (c *temperatureControllerImpl) writeServiceError(w http.ResponseWriter, op, subject string, err error) {
	status := errorStatus(err)
	c.logError(op, subject, err, status)
	utils.WriteError(w, status, errorMessage(err, status))
}

func (c *temperatureControllerImpl) logError(op, subject string, err error, status int) {
	if status >= http.StatusInternalServerError {
		c.logger.Error(op+" failed", "subject", subject, "status", status, "error", err)
		return
	}
	c.logger.Info(op+" rejected", "subject", subject, "status", status, "error", err)
}
