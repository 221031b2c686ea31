package dataprocessing

import (
	"sort"
	"time"

	"bikepulse/pkg/contracts/domain"
)

// MonthLabelLayout formats month buckets as "Jan-24"
const MonthLabelLayout = "Jan-06"

// rideCounts accumulates the three count columns for one group key
type rideCounts struct {
	casual     int64
	registered int64
	total      int64
}

func (c *rideCounts) add(r *domain.Record) {
	c.casual += r.Casual
	c.registered += r.Registered
	c.total += r.Total
}

// Totals sums the three count columns over the whole table
func Totals(t *Table) domain.Totals {
	var c rideCounts
	t.each(c.add)
	return domain.Totals{
		TotalRides:      c.total,
		CasualRides:     c.casual,
		RegisteredRides: c.registered,
		Records:         t.Len(),
	}
}

// Monthly buckets records by calendar month in chronological order. Months
// between the first and last populated month are emitted with zero counts,
// so the series has no holes.
func Monthly(t *Table) domain.MonthlySummary {
	out := domain.MonthlySummary{}
	if t.Len() == 0 {
		return out
	}

	buckets := make(map[time.Time]*rideCounts)
	var first, last time.Time
	t.each(func(r *domain.Record) {
		key := monthStart(r.Date)
		c, ok := buckets[key]
		if !ok {
			c = &rideCounts{}
			buckets[key] = c
		}
		c.add(r)
		if first.IsZero() || key.Before(first) {
			first = key
		}
		if key.After(last) {
			last = key
		}
	})

	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		row := domain.MonthlyRow{YearMonth: m.Format(MonthLabelLayout)}
		if c, ok := buckets[m]; ok {
			row.CasualRides = c.casual
			row.RegisteredRides = c.registered
			row.TotalRides = c.total
		}
		out = append(out, row)
	}
	return out
}

// Seasonal groups by season and reshapes to long form: two rows per season
// present in the table, casual first, seasons in Spring..Winter order.
func Seasonal(t *Table) domain.SeasonalSummary {
	var groups [4]*rideCounts
	t.each(func(r *domain.Record) {
		i := r.Season.Index()
		if i < 0 {
			return
		}
		if groups[i] == nil {
			groups[i] = &rideCounts{}
		}
		groups[i].add(r)
	})

	out := domain.SeasonalSummary{}
	for i, c := range groups {
		if c == nil {
			continue
		}
		season := domain.Seasons[i]
		out = append(out,
			domain.SeasonalRow{Season: season, TypeOfRides: domain.RideTypeCasual, CountRides: c.casual},
			domain.SeasonalRow{Season: season, TypeOfRides: domain.RideTypeRegistered, CountRides: c.registered},
		)
	}
	return out
}

// Weekday groups by day of week and reshapes to long form, Monday first
func Weekday(t *Table) domain.WeekdaySummary {
	var groups [7]*rideCounts
	t.each(func(r *domain.Record) {
		i := r.Weekday.Index()
		if i < 0 {
			return
		}
		if groups[i] == nil {
			groups[i] = &rideCounts{}
		}
		groups[i].add(r)
	})

	out := domain.WeekdaySummary{}
	for i, c := range groups {
		if c == nil {
			continue
		}
		day := domain.Weekdays[i]
		out = append(out,
			domain.WeekdayRow{Weekday: day, TypeOfRides: domain.RideTypeCasual, CountRides: c.casual},
			domain.WeekdayRow{Weekday: day, TypeOfRides: domain.RideTypeRegistered, CountRides: c.registered},
		)
	}
	return out
}

// Hourly groups by hour of day, 0 through 23, emitting only hours present.
// Daily-granularity tables have no hour column and are rejected rather than
// collapsed into a single bucket.
func Hourly(t *Table) (domain.HourlySummary, error) {
	if !t.schema.HasHour {
		return nil, &MissingColumnError{Column: ColumnHour, Op: "hourly"}
	}

	var groups [24]*rideCounts
	t.each(func(r *domain.Record) {
		if r.Hour < 0 || r.Hour > 23 {
			return
		}
		if groups[r.Hour] == nil {
			groups[r.Hour] = &rideCounts{}
		}
		groups[r.Hour].add(r)
	})

	out := domain.HourlySummary{}
	for hr, c := range groups {
		if c == nil {
			continue
		}
		out = append(out, domain.HourlyRow{
			Hour:            hr,
			CasualRides:     c.casual,
			RegisteredRides: c.registered,
			TotalRides:      c.total,
		})
	}
	return out, nil
}

// Daily sums counts per calendar day, oldest first. Hourly tables collapse to
// one row per day.
func Daily(t *Table) domain.DailySummary {
	buckets := make(map[time.Time]*rideCounts)
	t.each(func(r *domain.Record) {
		key := truncateDay(r.Date)
		c, ok := buckets[key]
		if !ok {
			c = &rideCounts{}
			buckets[key] = c
		}
		c.add(r)
	})

	days := make([]time.Time, 0, len(buckets))
	for d := range buckets {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	out := make(domain.DailySummary, 0, len(days))
	for _, d := range days {
		c := buckets[d]
		out = append(out, domain.DailyRow{
			Date:            d.Format(domain.DateLayout),
			CasualRides:     c.casual,
			RegisteredRides: c.registered,
			TotalRides:      c.total,
		})
	}
	return out
}

// Scatter pairs each record's temperature with its total count, in source
// order. Requires the temp column.
func Scatter(t *Table) (domain.ScatterSeries, error) {
	if !t.schema.HasTemp {
		return nil, &MissingColumnError{Column: ColumnTemp, Op: "scatter"}
	}
	out := make(domain.ScatterSeries, 0, t.Len())
	t.each(func(r *domain.Record) {
		out = append(out, domain.ScatterPoint{Temp: r.Temp, Count: r.Total, Season: r.Season})
	})
	return out, nil
}

func monthStart(ts time.Time) time.Time {
	y, m, _ := ts.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}
