package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnknownFrequency = errors.New("instruction: unknown frequency")

type Frequency string

const (
	Daily     Frequency = "DAILY"
	Weekly    Frequency = "WEEKLY"
	Monthly   Frequency = "MONTHLY"
	Quarterly Frequency = "QUARTERLY"
	Yearly    Frequency = "YEARLY"
)

var Frequencies = []Frequency{Daily, Weekly, Monthly, Quarterly, Yearly}

func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Frequencies {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFrequency, s)
}

// Advance returns the calendar date one step after date. Month based steps
// clamp to the last day of the target month, so Jan 31 advances to Feb 28
// (or 29) rather than spilling into March.
func (f Frequency) Advance(date time.Time) time.Time {
	d := Date(date)
	switch f {
	case Daily:
		return d.AddDate(0, 0, 1)
	case Weekly:
		return d.AddDate(0, 0, 7)
	case Monthly:
		return addMonths(d, 1)
	case Quarterly:
		return addMonths(d, 3)
	case Yearly:
		return addMonths(d, 12)
	default:
		return d
	}
}

func addMonths(d time.Time, months int) time.Time {
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, months, 0)
	last := first.AddDate(0, 1, -1).Day()
	day := d.Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// Date truncates t to its calendar date at UTC midnight.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
