package series

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/kubakubakuba/templogger/internal/modules/temperature/types"
)

// maxHourOffset keeps the last seconds of a day on the same day.
const maxHourOffset = 23.99

// HourOffset returns the wall-clock time elapsed since midnight of t's date in
// hours, rounded to two decimals and capped below 24.
func HourOffset(t time.Time) float64 {
	secs := t.Hour()*3600 + t.Minute()*60 + t.Second()
	return math.Min(math.Round(float64(secs)/36)/100, maxHourOffset)
}

func Normalize(samples []types.Sample) []types.Point {
	points := make([]types.Point, 0, len(samples))
	for _, s := range samples {
		points = append(points, types.Point{Hour: HourOffset(s.Time), Temperature: s.Temperature})
	}
	return points
}

// DataBlock renders points as "x y" lines, the inline data format of the plot script.
func DataBlock(points []types.Point) string {
	var b strings.Builder
	for _, p := range points {
		b.WriteString(FormatNumber(p.Hour))
		b.WriteByte(' ')
		b.WriteString(FormatNumber(p.Temperature))
		b.WriteByte('\n')
	}
	return b.String()
}

// FormatNumber prints the shortest exact form of v and always keeps a decimal point.
func FormatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
