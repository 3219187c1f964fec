package series

import (
	"time"

	"github.com/kubakubakuba/templogger/internal/modules/temperature/types"
)

// SelectDay keeps the samples of one calendar day. With an explicit date only
// month and day are compared, so the same day of different years is merged.
// Without one, the day of last (the newest sample) is used.
func SelectDay(samples []types.Sample, last time.Time, date *types.MonthDay) ([]types.Sample, error) {
	keep := func(t time.Time) bool {
		return sameDate(t, last)
	}
	if date != nil {
		keep = date.Matches
	}

	var out []types.Sample
	for _, s := range samples {
		if keep(s.Time) {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, types.ErrNoDataForDate
	}
	return out, nil
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
