package report

import (
	"strings"
	"time"

	"github.com/shopdesk/backend/internal/domain/shared"
)

// Preset names a relative reporting period
type Preset string

const (
	PresetToday     Preset = "today"
	PresetYesterday Preset = "yesterday"
	PresetThisWeek  Preset = "this_week"
	PresetLast7Days Preset = "last_7_days"
	PresetThisMonth Preset = "this_month"
	PresetLastMonth Preset = "last_month"
	PresetThisYear  Preset = "this_year"
	PresetCustom    Preset = "custom"
)

// DateRange is a half-open [From, To) interval
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Days returns the start of every day covered by the range
func (r DateRange) Days() []time.Time {
	var days []time.Time
	for d := startOfDay(r.From); d.Before(r.To); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Contains reports whether t falls within the range
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && t.Before(r.To)
}

// ResolveRange turns a preset or an explicit from/to pair into a DateRange.
// An explicit "to" date is inclusive of that whole day.
func ResolveRange(preset string, from, to *time.Time, now time.Time) (DateRange, error) {
	p := Preset(strings.ToLower(strings.TrimSpace(preset)))
	if p == "" {
		if from != nil || to != nil {
			p = PresetCustom
		} else {
			p = PresetThisMonth
		}
	}

	today := startOfDay(now)
	switch p {
	case PresetToday:
		return DateRange{From: today, To: today.AddDate(0, 0, 1)}, nil
	case PresetYesterday:
		return DateRange{From: today.AddDate(0, 0, -1), To: today}, nil
	case PresetThisWeek:
		offset := (int(today.Weekday()) + 6) % 7
		start := today.AddDate(0, 0, -offset)
		return DateRange{From: start, To: today.AddDate(0, 0, 1)}, nil
	case PresetLast7Days:
		return DateRange{From: today.AddDate(0, 0, -6), To: today.AddDate(0, 0, 1)}, nil
	case PresetThisMonth:
		start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		return DateRange{From: start, To: start.AddDate(0, 1, 0)}, nil
	case PresetLastMonth:
		thisMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		return DateRange{From: thisMonth.AddDate(0, -1, 0), To: thisMonth}, nil
	case PresetThisYear:
		start := time.Date(today.Year(), 1, 1, 0, 0, 0, 0, today.Location())
		return DateRange{From: start, To: start.AddDate(1, 0, 0)}, nil
	case PresetCustom:
		if from == nil || to == nil {
			return DateRange{}, shared.NewDomainError("INVALID_RANGE", "Custom range requires both from and to dates")
		}
		r := DateRange{From: startOfDay(*from), To: startOfDay(*to).AddDate(0, 0, 1)}
		if !r.From.Before(r.To) {
			return DateRange{}, shared.NewDomainError("INVALID_RANGE", "From date must not be after to date")
		}
		return r, nil
	}
	return DateRange{}, shared.NewDomainError("INVALID_RANGE", "Unknown report period "+preset)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
