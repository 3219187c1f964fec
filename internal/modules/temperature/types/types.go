package types

import (
	"fmt"
	"time"
)

// Sample is one parsed sensor log record.
type Sample struct {
	Time        time.Time
	Temperature float64
}

// Point is a sample placed on the [0,24) hour-of-day axis.
type Point struct {
	Hour        float64 `json:"hour"`
	Temperature float64 `json:"temperature"`
}

// MonthDay selects a calendar day regardless of year.
type MonthDay struct {
	Month time.Month
	Day   int
}

func MonthDayOf(t time.Time) MonthDay {
	return MonthDay{Month: t.Month(), Day: t.Day()}
}

func (md MonthDay) Matches(t time.Time) bool {
	return t.Month() == md.Month && t.Day() == md.Day
}

func (md MonthDay) String() string {
	return fmt.Sprintf("%02d-%02d", int(md.Month), md.Day)
}

// Reading is a single ingested measurement, before it is written to a sensor log.
type Reading struct {
	Room        string    `json:"room"`
	Temperature float64   `json:"temperature"`
	Timestamp   time.Time `json:"timestamp"`
}
