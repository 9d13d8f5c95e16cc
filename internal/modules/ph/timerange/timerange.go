// Package timerange turns a date selection and two times of day into the
// closed UTC interval the observation stores are queried with.
//
// Dates and times are wall-clock values in a display location. Each
// date/time pair is built in that location and converted to UTC, so stores
// always see UTC instants (epoch milliseconds or UTC text).
package timerange

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AndreyATC/ph-monitor/internal/modules/ph/types"
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidTime      = errors.New("invalid time of day")
	ErrInvalidSelection = errors.New("invalid date selection")
)

const (
	DateLayout = "2006-01-02"

	// DefaultSpanDays is how far back the default selection starts.
	DefaultSpanDays = 2
)

type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w %q (expected YYYY-MM-DD)", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC))
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

var (
	StartOfDay = TimeOfDay{}
	EndOfDay   = TimeOfDay{Hour: 23, Minute: 59, Second: 59}
)

// ParseTimeOfDay accepts HH:MM and HH:MM:SS.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("%w %q (expected HH:MM or HH:MM:SS)", ErrInvalidTime, s)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// Short drops the seconds, which is what an HTML time input expects.
func (t TimeOfDay) Short() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Selection is the user's date pick. A single date yields StartDate == EndDate.
type Selection struct {
	StartDate Date
	EndDate   Date
}

func NewSelection(dates ...Date) (Selection, error) {
	switch len(dates) {
	case 1:
		return Selection{StartDate: dates[0], EndDate: dates[0]}, nil
	case 2:
		return Selection{StartDate: dates[0], EndDate: dates[1]}, nil
	default:
		return Selection{}, fmt.Errorf("%w: got %d dates, want 1 or 2", ErrInvalidSelection, len(dates))
	}
}

// DefaultSelection covers the last DefaultSpanDays days up to today in loc.
func DefaultSelection(now time.Time, loc *time.Location) Selection {
	today := DateOf(now.In(loc))
	return Selection{StartDate: today.AddDays(-DefaultSpanDays), EndDate: today}
}

// Resolve combines the selection with the two times of day. start > end is
// not rejected; it simply matches no observations downstream.
func Resolve(sel Selection, start, end TimeOfDay, loc *time.Location) types.Interval {
	if loc == nil {
		loc = time.UTC
	}
	return types.Interval{
		Start: at(sel.StartDate, start, loc),
		End:   at(sel.EndDate, end, loc),
	}
}

func at(d Date, t TimeOfDay, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, t.Hour, t.Minute, t.Second, 0, loc).UTC()
}
