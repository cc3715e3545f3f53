package shared

import (
	"errors"
	"time"
)

var ErrInvalidDateRange = errors.New("start date must not be after end date")

// DateLayout is the business date format used in requests and reports
const DateLayout = "2006-01-02"

// BusinessDate truncates t to midnight in loc.
func BusinessDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// DateRange is an inclusive range of business dates
type DateRange struct {
	From time.Time
	To   time.Time
}

// NewDateRange parses two YYYY-MM-DD dates. Empty values default to today.
func NewDateRange(from, to string, now time.Time, loc *time.Location) (DateRange, error) {
	today := BusinessDate(now, loc)
	r := DateRange{From: today, To: today}

	if from != "" {
		parsed, err := time.ParseInLocation(DateLayout, from, today.Location())
		if err != nil {
			return DateRange{}, err
		}
		r.From = parsed
	}
	if to != "" {
		parsed, err := time.ParseInLocation(DateLayout, to, today.Location())
		if err != nil {
			return DateRange{}, err
		}
		r.To = parsed
	}
	if r.From.After(r.To) {
		return DateRange{}, ErrInvalidDateRange
	}
	return r, nil
}

// Contains reports whether d falls on a day inside the range
func (r DateRange) Contains(d time.Time) bool {
	day := BusinessDate(d, r.From.Location())
	return !day.Before(r.From) && !day.After(r.To)
}
