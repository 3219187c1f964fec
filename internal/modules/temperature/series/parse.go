package series

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/kubakubakuba/templogger/internal/modules/temperature/store"
	"github.com/kubakubakuba/templogger/internal/modules/temperature/types"
)

// BatchMinTemperature is the plausibility floor used by offline rendering;
// lower values come from sensor glitches.
const BatchMinTemperature = -69.0

type ParseOptions struct {
	// MinTemperature drops samples strictly below it when set.
	MinTemperature *float64
	// Location interprets log timestamps; nil means time.Local.
	Location *time.Location
}

// Parsed holds the kept samples in log order and the greatest timestamp among them.
type Parsed struct {
	Samples []types.Sample
	Last    time.Time
}

// Parse turns raw sensor log content into samples. Lines that do not have
// exactly two fields, or whose timestamp or temperature do not parse, are
// skipped. It returns types.ErrEmptyData when nothing is left.
func Parse(content string, opts ParseOptions) (Parsed, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	var out Parsed
	for line := range strings.Lines(content) {
		sample, ok := parseLine(line, loc)
		if !ok {
			continue
		}
		if opts.MinTemperature != nil && sample.Temperature < *opts.MinTemperature {
			continue
		}
		out.Samples = append(out.Samples, sample)
		if sample.Time.After(out.Last) {
			out.Last = sample.Time
		}
	}
	if len(out.Samples) == 0 {
		return Parsed{}, types.ErrEmptyData
	}
	return out, nil
}

func parseLine(line string, loc *time.Location) (types.Sample, bool) {
	parts := strings.Split(strings.TrimSpace(line), store.FieldSeparator)
	if len(parts) != 2 {
		return types.Sample{}, false
	}
	ts, err := time.ParseInLocation(store.TimestampLayout, parts[0], loc)
	if err != nil {
		return types.Sample{}, false
	}
	temp, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || math.IsNaN(temp) || math.IsInf(temp, 0) {
		return types.Sample{}, false
	}
	return types.Sample{Time: ts, Temperature: temp}, true
}

// MinTemperature is a helper for building ParseOptions.
func MinTemperature(v float64) *float64 {
	return &v
}
