package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Season is the meteorological season a record falls in
type Season string

const (
	SeasonSpring Season = "Spring"
	SeasonSummer Season = "Summer"
	SeasonFall   Season = "Fall"
	SeasonWinter Season = "Winter"
)

// Seasons lists the seasons in presentation order
var Seasons = []Season{SeasonSpring, SeasonSummer, SeasonFall, SeasonWinter}

// Index returns the position of the season in presentation order, or -1
func (s Season) Index() int {
	for i, v := range Seasons {
		if v == s {
			return i
		}
	}
	return -1
}

// ParseSeason accepts a season name (any case) or the numeric codes 1-4
// used by the UCI bike-sharing dataset.
func ParseSeason(raw string) (Season, error) {
	v := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(v); err == nil {
		if n >= 1 && n <= len(Seasons) {
			return Seasons[n-1], nil
		}
		return "", fmt.Errorf("season code out of range: %d", n)
	}
	for _, s := range Seasons {
		if strings.EqualFold(v, string(s)) {
			return s, nil
		}
	}
	if strings.EqualFold(v, "autumn") {
		return SeasonFall, nil
	}
	return "", fmt.Errorf("unknown season: %q", raw)
}

// Weekday is a day of the week, Monday first
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// Weekdays lists the days in presentation order
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Index returns the position of the day in presentation order, or -1
func (d Weekday) Index() int {
	for i, v := range Weekdays {
		if v == d {
			return i
		}
	}
	return -1
}

// WeekdayOf maps a time.Weekday onto the Monday-first enumeration
func WeekdayOf(d time.Weekday) Weekday {
	return Weekdays[(int(d)+6)%7]
}

// ParseWeekday accepts full names, three-letter abbreviations, or the
// numeric codes 0 (Sunday) through 6 (Saturday).
func ParseWeekday(raw string) (Weekday, error) {
	v := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(v); err == nil {
		if n >= 0 && n <= 6 {
			return WeekdayOf(time.Weekday(n)), nil
		}
		return "", fmt.Errorf("weekday code out of range: %d", n)
	}
	for _, d := range Weekdays {
		if strings.EqualFold(v, string(d)) || strings.EqualFold(v, string(d)[:3]) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown weekday: %q", raw)
}

// RideType names one of the two rider populations
type RideType string

const (
	RideTypeCasual     RideType = "casual_rides"
	RideTypeRegistered RideType = "registered_rides"
)

// Record is one observation of the bike-share dataset. Daily datasets carry
// Hour 0 on every row.
type Record struct {
	Date       time.Time `json:"dteday"`
	Hour       int       `json:"hr"`
	Casual     int64     `json:"casual"`
	Registered int64     `json:"registered"`
	Total      int64     `json:"cnt"`
	Season     Season    `json:"season"`
	Weekday    Weekday   `json:"weekday"`
	Temp       float64   `json:"temp"`
}

// Timestamp returns the date plus hour of day
func (r Record) Timestamp() time.Time {
	return r.Date.Add(time.Duration(r.Hour) * time.Hour)
}

// DateRange is an inclusive calendar-day window
type DateRange struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// String renders the window as start..end
func (r DateRange) String() string {
	return fmt.Sprintf("%s..%s", r.Start.Format(DateLayout), r.End.Format(DateLayout))
}

// MarshalJSON keeps dates in the same layout the filter accepts
func (r DateRange) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`{"start_date":%q,"end_date":%q}`,
		r.Start.Format(DateLayout), r.End.Format(DateLayout))), nil
}

// UnmarshalJSON reads the layout written by MarshalJSON
func (r *DateRange) UnmarshalJSON(data []byte) error {
	var raw struct {
		Start string `json:"start_date"`
		End   string `json:"end_date"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	start, err := time.Parse(DateLayout, raw.Start)
	if err != nil {
		return fmt.Errorf("invalid start_date: %w", err)
	}
	end, err := time.Parse(DateLayout, raw.End)
	if err != nil {
		return fmt.Errorf("invalid end_date: %w", err)
	}
	r.Start, r.End = start, end
	return nil
}

// DateLayout is the calendar-day layout used on the wire
const DateLayout = "2006-01-02"
