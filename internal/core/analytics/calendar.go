package analytics

import "time"

// Calendar resolves calendar days and months in a fixed location.
// The zero value uses the process's local time zone and the wall clock.
type Calendar struct {
	Location *time.Location
	Now      func() time.Time
}

// DefaultCalendar is the process-local calendar.
func DefaultCalendar() Calendar {
	return Calendar{Location: time.Local, Now: time.Now}
}

func (c Calendar) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// Today returns the current instant in the calendar's location.
func (c Calendar) Today() time.Time {
	if c.Now == nil {
		return time.Now().In(c.location())
	}
	return c.Now().In(c.location())
}

// StartOfDay truncates t to midnight of its calendar day.
func (c Calendar) StartOfDay(t time.Time) time.Time {
	t = t.In(c.location())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.location())
}

// MonthStart returns midnight of the first day of t's month.
func (c Calendar) MonthStart(t time.Time) time.Time {
	t = t.In(c.location())
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, c.location())
}

// LastDayOfMonth returns midnight of the last day of t's month.
func (c Calendar) LastDayOfMonth(t time.Time) time.Time {
	start := c.MonthStart(t)
	return time.Date(start.Year(), start.Month()+1, 0, 0, 0, 0, 0, c.location())
}

// SameMonth compares year and month in the calendar's location.
func (c Calendar) SameMonth(a, b time.Time) bool {
	a, b = a.In(c.location()), b.In(c.location())
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// SameDay compares year, month and day in the calendar's location.
func (c Calendar) SameDay(a, b time.Time) bool {
	a, b = a.In(c.location()), b.In(c.location())
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// dayBounds returns [start, next) of the day offset days before day.
func (c Calendar) dayBounds(day time.Time, offset int) (time.Time, time.Time) {
	d := day.In(c.location())
	start := time.Date(d.Year(), d.Month(), d.Day()-offset, 0, 0, 0, 0, c.location())
	next := time.Date(d.Year(), d.Month(), d.Day()-offset+1, 0, 0, 0, 0, c.location())
	return start, next
}
