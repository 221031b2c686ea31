package dataprocessing

import (
	"time"

	"bikepulse/pkg/contracts/domain"
)

// Schema records which optional columns the source dataset carried
type Schema struct {
	HasHour bool `json:"has_hour"`
	HasTemp bool `json:"has_temp"`
}

// Table is the loaded dataset. It is never mutated after construction, so a
// single instance can be shared by every request.
type Table struct {
	schema  Schema
	records []domain.Record
}

// NewTable copies records into a new table
func NewTable(records []domain.Record, schema Schema) *Table {
	owned := make([]domain.Record, len(records))
	copy(owned, records)
	return &Table{schema: schema, records: owned}
}

// Len returns the number of records
func (t *Table) Len() int {
	return len(t.records)
}

// Schema returns the optional-column flags of the source
func (t *Table) Schema() Schema {
	return t.schema
}

// Records returns a copy of the records in source order
func (t *Table) Records() []domain.Record {
	out := make([]domain.Record, len(t.records))
	copy(out, t.records)
	return out
}

// Bounds returns the earliest and latest calendar day in the table.
// ok is false for an empty table.
func (t *Table) Bounds() (start, end time.Time, ok bool) {
	if len(t.records) == 0 {
		return time.Time{}, time.Time{}, false
	}
	start, end = t.records[0].Date, t.records[0].Date
	for _, r := range t.records[1:] {
		if r.Date.Before(start) {
			start = r.Date
		}
		if r.Date.After(end) {
			end = r.Date
		}
	}
	return start, end, true
}

// each walks records without copying; only aggregators in this package use it
func (t *Table) each(fn func(r *domain.Record)) {
	for i := range t.records {
		fn(&t.records[i])
	}
}
