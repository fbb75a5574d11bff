package panel

import (
	"time"
)

// MonthLayout is used when rendering months in errors and tables.
const MonthLayout = "2006-01"

// MonthStart truncates t to midnight UTC on the first day of its month. The calendar month is
// read in t's own location so a local first-of-month does not slip to the previous month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths moves a month start by n calendar months.
func AddMonths(t time.Time, n int) time.Time {
	return MonthStart(t).AddDate(0, n, 0)
}

// NextMonths returns the n months following last.
func NextMonths(last time.Time, n int) TimeSlice {
	if n <= 0 {
		return nil
	}
	out := make(TimeSlice, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, AddMonths(last, i))
	}
	return out
}

type TimeSlice []time.Time

func (t TimeSlice) StartTime() time.Time {
	var startTime time.Time
	if len(t) < 1 {
		return startTime
	}
	return t[0]
}

func (t TimeSlice) EndTime() time.Time {
	var lastTime time.Time
	if len(t) < 1 {
		return lastTime
	}
	return t[len(t)-1]
}

// Gaps counts the calendar months missing between the first and last month.
func (t TimeSlice) Gaps() int {
	if len(t) < 2 {
		return 0
	}
	start, end := t.StartTime(), t.EndTime()
	span := (end.Year()-start.Year())*12 + int(end.Month()-start.Month()) + 1
	return span - len(t)
}
