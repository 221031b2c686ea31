package domain

import (
	"time"
)

// Dashboard is everything the page needs for one filter selection. Summaries
// whose source columns are absent are left nil and reported in Errors under
// the summary's name.
type Dashboard struct {
	Range       DateRange         `json:"range"`
	Bounds      DateRange         `json:"bounds"`
	Totals      Totals            `json:"totals"`
	Monthly     MonthlySummary    `json:"monthly"`
	Seasonal    SeasonalSummary   `json:"seasonal"`
	Weekday     WeekdaySummary    `json:"weekday"`
	Hourly      HourlySummary     `json:"hourly,omitempty"`
	Daily       DailySummary      `json:"daily"`
	Scatter     ScatterSeries     `json:"scatter,omitempty"`
	Errors      map[string]string `json:"errors,omitempty"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// Summary names accepted by the API and the report CLI
const (
	SummaryTotals   = "totals"
	SummaryMonthly  = "monthly"
	SummarySeasonal = "seasonal"
	SummaryWeekday  = "weekday"
	SummaryHourly   = "hourly"
	SummaryDaily    = "daily"
	SummaryScatter  = "scatter"
)

// SummaryNames lists every summary in the order the page renders them
var SummaryNames = []string{
	SummaryTotals,
	SummaryMonthly,
	SummarySeasonal,
	SummaryWeekday,
	SummaryHourly,
	SummaryDaily,
	SummaryScatter,
}
