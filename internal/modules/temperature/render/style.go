package render

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/kubakubakuba/templogger/internal/modules/temperature/types"
)

// Mode is the renderer terminal.
type Mode int

const (
	ModeRaster Mode = iota
	ModeText
)

func (m Mode) String() string {
	switch m {
	case ModeText:
		return "text"
	default:
		return "raster"
	}
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "raster", "png":
		return ModeRaster, nil
	case "text", "dumb":
		return ModeText, nil
	default:
		return ModeRaster, fmt.Errorf("invalid render mode %q (allowed: raster, text)", s)
	}
}

const (
	DefaultWidth  = 1600
	DefaultHeight = 600
	MinSize       = 100
	MaxSize       = 4000
)

// Style holds every option that changes the rendered artifact.
type Style struct {
	Mode    Mode
	Width   int
	Height  int
	Inverse bool
	// FixedYRange pins the temperature axis to [0,40] instead of autoscaling.
	FixedYRange bool
}

func DefaultStyle() Style {
	return Style{Mode: ModeRaster, Width: DefaultWidth, Height: DefaultHeight}
}

// Validate checks raster dimensions. Text output ignores size and colors.
func (s Style) Validate() error {
	if s.Mode == ModeText {
		return nil
	}
	if s.Width < MinSize || s.Width > MaxSize {
		return fmt.Errorf("%w: width %d out of range [%d, %d]", types.ErrInvalidStyle, s.Width, MinSize, MaxSize)
	}
	if s.Height < MinSize || s.Height > MaxSize {
		return fmt.Errorf("%w: height %d out of range [%d, %d]", types.ErrInvalidStyle, s.Height, MinSize, MaxSize)
	}
	return nil
}

func (s Style) inverse() bool {
	return s.Inverse && s.Mode == ModeRaster
}

// Hash is a short stable digest of the style, used to key artifacts per style.
func (s Style) Hash() string {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s|%d|%d|%t|%t", s.Mode, s.Width, s.Height, s.inverse(), s.FixedYRange)
	return fmt.Sprintf("%08x", h.Sum32())
}

// Keying decides how artifact and script names are derived.
type Keying int

const (
	// KeyByRoom names files after the room only; renders of one room overwrite each other.
	KeyByRoom Keying = iota
	// KeyByStyle adds the mode and style hash so different styles never collide.
	KeyByStyle
)

func ParseKeying(s string) (Keying, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "room":
		return KeyByRoom, nil
	case "style":
		return KeyByStyle, nil
	default:
		return KeyByRoom, fmt.Errorf("invalid artifact keying %q (allowed: room, style)", s)
	}
}

func (k Keying) String() string {
	if k == KeyByStyle {
		return "style"
	}
	return "room"
}

// ArtifactName returns the output file name: {room}.png, {room}_inverse.png or
// {room}.plot, or {room}_{mode}_{hash}.{ext} when keyed by style.
func ArtifactName(room string, style Style, keying Keying) string {
	ext := ".png"
	if style.Mode == ModeText {
		ext = ".plot"
	}
	if keying == KeyByStyle {
		return fmt.Sprintf("%s_%s_%s%s", room, style.Mode, style.Hash(), ext)
	}
	if style.inverse() {
		return room + "_inverse" + ext
	}
	return room + ext
}

func ScriptName(room string, style Style, keying Keying) string {
	if keying == KeyByStyle {
		return fmt.Sprintf("%s_%s_%s.gnuplot", room, style.Mode, style.Hash())
	}
	return room + ".gnuplot"
}
