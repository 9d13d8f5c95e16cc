package timerange

import (
	"strings"
	"time"

	"github.com/AndreyATC/ph-monitor/internal/modules/ph/types"
)

// Input is the raw form of a range request, as typed into the dashboard form
// or passed on the command line. Empty fields take their defaults.
type Input struct {
	StartDate string
	EndDate   string
	StartTime string
	EndTime   string
}

// Range is a fully resolved Input.
type Range struct {
	Selection Selection
	StartTime TimeOfDay
	EndTime   TimeOfDay
	Interval  types.Interval
}

// Resolve parses in and resolves it against loc. With no dates the default
// selection relative to now is used. With one date, that date is both ends.
func (in Input) Resolve(now time.Time, loc *time.Location) (Range, error) {
	if loc == nil {
		loc = time.UTC
	}

	var dates []Date
	for _, s := range []string{in.StartDate, in.EndDate} {
		if strings.TrimSpace(s) == "" {
			continue
		}
		d, err := ParseDate(s)
		if err != nil {
			return Range{}, err
		}
		dates = append(dates, d)
	}

	var sel Selection
	if len(dates) == 0 {
		sel = DefaultSelection(now, loc)
	} else {
		var err error
		if sel, err = NewSelection(dates...); err != nil {
			return Range{}, err
		}
	}

	start, err := timeOrDefault(in.StartTime, StartOfDay)
	if err != nil {
		return Range{}, err
	}
	end, err := timeOrDefault(in.EndTime, EndOfDay)
	if err != nil {
		return Range{}, err
	}

	return Range{
		Selection: sel,
		StartTime: start,
		EndTime:   end,
		Interval:  Resolve(sel, start, end, loc),
	}, nil
}

func timeOrDefault(s string, def TimeOfDay) (TimeOfDay, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	return ParseTimeOfDay(s)
}
