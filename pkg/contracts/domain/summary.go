package domain

import (
	"strconv"
)

// Tabular is implemented by every summary table so exporters can write any
// of them without knowing the row type.
type Tabular interface {
	Columns() []string
	Rows() [][]string
}

// MonthlyRow is one calendar-month bucket, labelled like "Jan-24"
type MonthlyRow struct {
	YearMonth       string `json:"yearmonth"`
	CasualRides     int64  `json:"casual_rides"`
	RegisteredRides int64  `json:"registered_rides"`
	TotalRides      int64  `json:"total_rides"`
}

// MonthlySummary is the wide-form monthly table
type MonthlySummary []MonthlyRow

// Columns returns the monthly header row
func (s MonthlySummary) Columns() []string {
	return []string{"yearmonth", "casual_rides", "registered_rides", "total_rides"}
}

// Rows formats each monthly entry as strings
func (s MonthlySummary) Rows() [][]string {
	rows := make([][]string, 0, len(s))
	for _, r := range s {
		rows = append(rows, []string{r.YearMonth, itoa(r.CasualRides), itoa(r.RegisteredRides), itoa(r.TotalRides)})
	}
	return rows
}

// HourlyRow is one hour-of-day bucket
type HourlyRow struct {
	Hour            int   `json:"hr"`
	CasualRides     int64 `json:"casual_rides"`
	RegisteredRides int64 `json:"registered_rides"`
	TotalRides      int64 `json:"total_rides"`
}

// HourlySummary is the wide-form hourly table
type HourlySummary []HourlyRow

// Columns returns the hourly header row
func (s HourlySummary) Columns() []string {
	return []string{"hr", "casual_rides", "registered_rides", "total_rides"}
}

// Rows formats each hourly entry as strings
func (s HourlySummary) Rows() [][]string {
	rows := make([][]string, 0, len(s))
	for _, r := range s {
		rows = append(rows, []string{strconv.Itoa(r.Hour), itoa(r.CasualRides), itoa(r.RegisteredRides), itoa(r.TotalRides)})
	}
	return rows
}

// SeasonalRow is one (season, ride type) pair of the long-form table
type SeasonalRow struct {
	Season      Season   `json:"season"`
	TypeOfRides RideType `json:"type_of_rides"`
	CountRides  int64    `json:"count_rides"`
}

// SeasonalSummary is the long-form seasonal table
type SeasonalSummary []SeasonalRow

// Columns returns the seasonal header row
func (s SeasonalSummary) Columns() []string {
	return []string{"season", "type_of_rides", "count_rides"}
}

// Rows formats each seasonal entry as strings
func (s SeasonalSummary) Rows() [][]string {
	rows := make([][]string, 0, len(s))
	for _, r := range s {
		rows = append(rows, []string{string(r.Season), string(r.TypeOfRides), itoa(r.CountRides)})
	}
	return rows
}

// WeekdayRow is one (weekday, ride type) pair of the long-form table
type WeekdayRow struct {
	Weekday     Weekday  `json:"weekday"`
	TypeOfRides RideType `json:"type_of_rides"`
	CountRides  int64    `json:"count_rides"`
}

// WeekdaySummary is the long-form weekday table
type WeekdaySummary []WeekdayRow

// Columns returns the weekday header row
func (s WeekdaySummary) Columns() []string {
	return []string{"weekday", "type_of_rides", "count_rides"}
}

// Rows formats each weekday entry as strings
func (s WeekdaySummary) Rows() [][]string {
	rows := make([][]string, 0, len(s))
	for _, r := range s {
		rows = append(rows, []string{string(r.Weekday), string(r.TypeOfRides), itoa(r.CountRides)})
	}
	return rows
}

// DailyRow is the per-day total used by the daily line chart
type DailyRow struct {
	Date            string `json:"dteday"`
	CasualRides     int64  `json:"casual_rides"`
	RegisteredRides int64  `json:"registered_rides"`
	TotalRides      int64  `json:"total_rides"`
}

// DailySummary is the wide-form daily table
type DailySummary []DailyRow

// Columns returns the daily header row
func (s DailySummary) Columns() []string {
	return []string{"dteday", "casual_rides", "registered_rides", "total_rides"}
}

// Rows formats each daily entry as strings
func (s DailySummary) Rows() [][]string {
	rows := make([][]string, 0, len(s))
	for _, r := range s {
		rows = append(rows, []string{r.Date, itoa(r.CasualRides), itoa(r.RegisteredRides), itoa(r.TotalRides)})
	}
	return rows
}

// ScatterPoint pairs a record's temperature with its ride count
type ScatterPoint struct {
	Temp   float64 `json:"temp"`
	Count  int64   `json:"cnt"`
	Season Season  `json:"season"`
}

// ScatterSeries feeds the temperature/count cluster chart
type ScatterSeries []ScatterPoint

// Columns returns the scatter header row
func (s ScatterSeries) Columns() []string {
	return []string{"temp", "cnt", "season"}
}

// Rows formats each scatter entry as strings
func (s ScatterSeries) Rows() [][]string {
	rows := make([][]string, 0, len(s))
	for _, p := range s {
		rows = append(rows, []string{strconv.FormatFloat(p.Temp, 'f', -1, 64), itoa(p.Count), string(p.Season)})
	}
	return rows
}

// Totals holds the headline metrics shown above the charts
type Totals struct {
	TotalRides      int64 `json:"total_rides"`
	CasualRides     int64 `json:"casual_rides"`
	RegisteredRides int64 `json:"registered_rides"`
	Records         int   `json:"records"`
}

// Columns returns the totals header row
func (t Totals) Columns() []string {
	return []string{"total_rides", "casual_rides", "registered_rides", "records"}
}

// Rows returns the metrics as a single row
func (t Totals) Rows() [][]string {
	return [][]string{{itoa(t.TotalRides), itoa(t.CasualRides), itoa(t.RegisteredRides), strconv.Itoa(t.Records)}}
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
