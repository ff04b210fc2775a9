package trade

import (
	"time"

	"github.com/shopdesk/backend/internal/domain/shared"
)

func listFilter(page, pageSize int, from, to *time.Time) shared.Filter {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}
	filter.From = from
	filter.To = inclusiveEnd(to)
	return filter
}

// inclusiveEnd turns a date-only upper bound into the start of the next day
func inclusiveEnd(to *time.Time) *time.Time {
	if to == nil {
		return nil
	}
	end := *to
	if end.Hour() == 0 && end.Minute() == 0 && end.Second() == 0 && end.Nanosecond() == 0 {
		end = end.AddDate(0, 0, 1)
	}
	return &end
}
