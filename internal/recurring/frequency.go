// Package recurring expands recurring rules into concrete transactions.
//
// This file implements the Strategy Pattern for occurrence stepping. Each
// frequency has its own Stepper that knows how to move from one occurrence to
// the next, looked up by frequency.
package recurring

import (
	"errors"
	"fmt"
	"time"

	"fintrack/internal/core"
)

var ErrUnknownFrequency = errors.New("unknown frequency")

// Stepper advances a date to the following occurrence.
type Stepper interface {
	Next(t time.Time) time.Time
}

// DayStepper moves forward a fixed number of calendar days.
type DayStepper struct{ Days int }

func (s DayStepper) Next(t time.Time) time.Time { return t.AddDate(0, 0, s.Days) }

// MonthStepper moves forward calendar months, clamping to the end of short months.
type MonthStepper struct{ Months int }

func (s MonthStepper) Next(t time.Time) time.Time { return core.AddMonths(t, s.Months) }

// YearStepper moves forward calendar years. Feb 29 lands on Feb 28 in common years.
type YearStepper struct{ Years int }

func (s YearStepper) Next(t time.Time) time.Time { return core.AddYears(t, s.Years) }

var steppers = map[core.Frequency]Stepper{
	core.Daily:    DayStepper{Days: 1},
	core.Weekly:   DayStepper{Days: 7},
	core.Biweekly: DayStepper{Days: 14},
	core.Monthly:  MonthStepper{Months: 1},
	core.Yearly:   YearStepper{Years: 1},
}

// GetStepper returns the stepper registered for a frequency.
func GetStepper(f core.Frequency) (Stepper, error) {
	s, ok := steppers[f]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFrequency, f)
	}
	return s, nil
}

// Next returns the occurrence following t for the given frequency.
func Next(t time.Time, f core.Frequency) (time.Time, error) {
	s, err := GetStepper(f)
	if err != nil {
		return time.Time{}, err
	}
	return s.Next(t), nil
}
