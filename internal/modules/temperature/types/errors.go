package types

import "errors"

var (
	ErrInvalidRoom        = errors.New("invalid room name")
	ErrInvalidTemperature = errors.New("invalid temperature")
	ErrInvalidStyle       = errors.New("invalid plot options")
	ErrMissingFile        = errors.New("no log file for room")
	ErrEmptyData          = errors.New("no data")
	ErrNoDataForDate      = errors.New("no data for date")
	ErrRendererMissing    = errors.New("renderer not found")
	ErrRendererFailed     = errors.New("renderer failed")
	ErrArtifactNotFound   = errors.New("plot file not found")
)
