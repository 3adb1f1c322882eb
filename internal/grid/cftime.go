package grid

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Units written for the time axis of every file produced by ctacid.
const (
	TimeUnits    = "days since 1850-01-01"
	TimeCalendar = "standard"
)

var epoch1850 = time.Date(1850, time.January, 1, 0, 0, 0, 0, time.UTC)

var unitSecs = map[string]float64{
	"second": 1, "seconds": 1, "sec": 1, "secs": 1, "s": 1,
	"minute": 60, "minutes": 60, "min": 60, "mins": 60,
	"hour": 3600, "hours": 3600, "hr": 3600, "hrs": 3600, "h": 3600,
	"day": 86400, "days": 86400, "d": 86400,
}

var refLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006-1-2 15:04:05",
	"2006-1-2",
}

func parseRef(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "Z")
	s = strings.TrimSuffix(s, " UTC")
	if i := strings.Index(s, "."); i > 0 && strings.Count(s, ":") == 2 {
		s = s[:i]
	}
	for _, l := range refLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported reference date %q", s)
}

// DecodeTime converts CF encoded time values into calendar times.
// Supported units are "<seconds|minutes|hours|days> since <date>"; empty
// or "year(s)" units are read as calendar years. The noleap/365_day and
// 360_day calendars are honoured.
func DecodeTime(vals []float64, units, calendar string) ([]time.Time, error) {
	out := make([]time.Time, len(vals))
	units = strings.TrimSpace(units)
	if units == "" || units == "year" || units == "years" {
		for i, v := range vals {
			out[i] = yearFraction(v)
		}
		return out, nil
	}
	unit, ref, ok := strings.Cut(units, " since ")
	if !ok {
		return nil, fmt.Errorf("unsupported time units %q", units)
	}
	secs, ok := unitSecs[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		return nil, fmt.Errorf("unsupported time unit %q", unit)
	}
	t0, err := parseRef(ref)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(calendar) {
	case "noleap", "365_day":
		for i, v := range vals {
			out[i] = addFixedYear(t0, v*secs, noLeapMonths)
		}
	case "360_day":
		for i, v := range vals {
			out[i] = addFixedYear(t0, v*secs, flatMonths)
		}
	default:
		for i, v := range vals {
			// split into whole days so long spans do not overflow a Duration
			s := v * secs
			days := math.Floor(s / 86400)
			out[i] = t0.AddDate(0, 0, int(days)).Add(time.Duration((s - days*86400) * float64(time.Second)))
		}
	}
	return out, nil
}

var (
	noLeapMonths = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	flatMonths   = [12]int{30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30}
)

// addFixedYear adds secs to t0 in a calendar where every year has the
// same month lengths. The result is expressed as a Gregorian date with
// the same year, month and day numbers.
func addFixedYear(t0 time.Time, secs float64, months [12]int) time.Time {
	yearDays := 0
	for _, m := range months {
		yearDays += m
	}
	// day of year of the reference date within the fixed calendar
	doy := 0
	for m := 0; m < int(t0.Month())-1; m++ {
		doy += months[m]
	}
	doy += t0.Day() - 1
	clock := float64(t0.Hour()*3600+t0.Minute()*60+t0.Second()) + secs
	days := math.Floor(clock / 86400)
	rem := clock - days*86400

	total := int(days) + doy
	year := t0.Year() + floorDiv(total, yearDays)
	d := total - floorDiv(total, yearDays)*yearDays
	month := 0
	for d >= months[month] {
		d -= months[month]
		month++
	}
	day := time.Date(year, time.Month(month+1), d+1, 0, 0, 0, 0, time.UTC)
	return day.Add(time.Duration(rem * float64(time.Second)))
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// EncodeTime converts times into days since 1850-01-01.
func EncodeTime(ts []time.Time) []float64 {
	out := make([]float64, len(ts))
	for i, t := range ts {
		// a Duration cannot span more than 292 years
		out[i] = float64(t.Unix()-epoch1850.Unix())/86400 + float64(t.Nanosecond())/86400e9
	}
	return out
}

// DecimalYear converts a time into a fractional calendar year, the x
// coordinate of the time series figures.
func DecimalYear(t time.Time) float64 {
	start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	return float64(t.Year()) + t.Sub(start).Seconds()/end.Sub(start).Seconds()
}

func yearFraction(y float64) time.Time {
	whole := math.Floor(y)
	start := time.Date(int(whole), time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	return start.Add(time.Duration((y - whole) * float64(end.Sub(start))))
}
