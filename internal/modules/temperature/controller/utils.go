package controller

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kubakubakuba/templogger/internal/modules/temperature/render"
	"github.com/kubakubakuba/templogger/internal/modules/temperature/types"
)

// parseDate reads the {month}/{day} path values.
func parseDate(r *http.Request) (types.MonthDay, error) {
	month, err := strconv.Atoi(r.PathValue("month"))
	if err != nil || month < 1 || month > 12 {
		return types.MonthDay{}, errors.New("invalid month (expected 1-12)")
	}
	day, err := strconv.Atoi(r.PathValue("day"))
	if err != nil || day < 1 || day > 31 {
		return types.MonthDay{}, errors.New("invalid day (expected 1-31)")
	}
	return types.MonthDay{Month: time.Month(month), Day: day}, nil
}

// parseImageQuery reads w, h and inverse for the raster endpoint on top of style.
func parseImageQuery(r *http.Request, style render.Style) (render.Style, error) {
	q := r.URL.Query()

	var err error
	if style.Width, err = parseSize(q.Get("w"), style.Width, "w"); err != nil {
		return render.Style{}, err
	}
	if style.Height, err = parseSize(q.Get("h"), style.Height, "h"); err != nil {
		return render.Style{}, err
	}
	if s := q.Get("inverse"); s != "" {
		v, convErr := strconv.ParseBool(s)
		if convErr != nil {
			return render.Style{}, errors.New("invalid 'inverse' (expected 0, 1, true or false)")
		}
		style.Inverse = v
	}
	return style, nil
}

func parseSize(s string, def int, name string) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid '%s' (expected integer)", name)
	}
	if n < render.MinSize || n > render.MaxSize {
		return 0, fmt.Errorf("'%s' must be between %d and %d", name, render.MinSize, render.MaxSize)
	}
	return n, nil
}

// errorStatus maps pipeline errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, types.ErrInvalidRoom),
		errors.Is(err, types.ErrInvalidTemperature),
		errors.Is(err, types.ErrInvalidStyle):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrMissingFile),
		errors.Is(err, types.ErrEmptyData),
		errors.Is(err, types.ErrNoDataForDate),
		errors.Is(err, types.ErrArtifactNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrRendererMissing),
		errors.Is(err, types.ErrRendererFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage hides unexpected errors from clients.
func errorMessage(err error, status int) string {
	if status == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}

func datedPath(prefix, room string, d types.MonthDay) string {
	return fmt.Sprintf("/%s/%s/%d/%d", prefix, url.PathEscape(room), int(d.Month), d.Day)
}
