package core

import "time"

// Range is an inclusive time interval.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DayRange spans from the first instant of start's day to the last instant of end's day.
func DayRange(start, end time.Time) Range {
	return Range{Start: StartOfDay(start), End: EndOfDay(end)}
}

// Contains reports whether t lies within the range, bounds included.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// StartOfWeek returns Monday 00:00 of the week containing t.
func StartOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return StartOfDay(t).AddDate(0, 0, -offset)
}

// EndOfWeek returns the last instant of the Sunday closing t's week.
func EndOfWeek(t time.Time) time.Time {
	return EndOfDay(StartOfWeek(t).AddDate(0, 0, 6))
}

func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

func EndOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return EndOfDay(time.Date(y, m+1, 0, 0, 0, 0, 0, t.Location()))
}

// DaysInMonth returns the number of days in t's month.
func DaysInMonth(t time.Time) int {
	y, m, _ := t.Date()
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonths adds n calendar months, clamping the day to the end of the target
// month (Jan 31 + 1 month is Feb 28 or 29, never early March).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := DaysInMonth(first); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// AddYears adds n calendar years with the same clamping as AddMonths.
func AddYears(t time.Time, n int) time.Time {
	return AddMonths(t, 12*n)
}

// Named periods, all relative to now.

func Today(now time.Time) Range {
	return DayRange(now, now)
}

func ThisWeek(now time.Time) Range {
	return Range{Start: StartOfWeek(now), End: EndOfWeek(now)}
}

func ThisMonth(now time.Time) Range {
	return Range{Start: StartOfMonth(now), End: EndOfMonth(now)}
}

func LastMonth(now time.Time) Range {
	return ThisMonth(StartOfMonth(now).AddDate(0, -1, 0))
}

// BudgetRange returns the current window a budget of the given period is measured against.
func BudgetRange(period BudgetPeriod, now time.Time) Range {
	if period == WeeklyBudget {
		return ThisWeek(now)
	}
	return ThisMonth(now)
}
