package dataprocessing

import (
	"time"

	"bikepulse/pkg/contracts/domain"
)

// Filter returns the records whose calendar day lies in [start, end], in
// source order. Times of day on start and end are ignored. An inverted
// window yields an empty table rather than an error.
func Filter(t *Table, start, end time.Time) *Table {
	from, to := truncateDay(start), truncateDay(end)
	if from.After(to) {
		return &Table{schema: t.schema, records: []domain.Record{}}
	}

	kept := make([]domain.Record, 0, len(t.records))
	for _, r := range t.records {
		day := truncateDay(r.Date)
		if day.Before(from) || day.After(to) {
			continue
		}
		kept = append(kept, r)
	}
	return &Table{schema: t.schema, records: kept}
}

// FilterRange is Filter over a domain.DateRange
func FilterRange(t *Table, rng domain.DateRange) *Table {
	return Filter(t, rng.Start, rng.End)
}

func truncateDay(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
