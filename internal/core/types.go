// Package core provides the normalization, validation and filtering logic
// for contact-record CSV files. This package has no I/O dependencies and can
// be driven by the CLI, the HTTP server, or tests.
package core

import (
	"sort"
	"time"
)

// Header column names, in output order.
const (
	ColumnPhone = "ph"
	ColumnName  = "name"
	ColumnCount = "count"
)

// Columns lists the header columns in the order they are written.
var Columns = []string{ColumnPhone, ColumnName, ColumnCount}

// Record is one row of the contact table.
type Record struct {
	Phone string // Mobile phone number (header "ph")
	Name  string
	Count uint16
}

// Rejection describes a record that failed validation.
type Rejection struct {
	Line       int    // 1-indexed line in the input file
	Reason     string // Human-readable reason
	Record     Record // The record as read
	Normalized string // The phone after normalization
}

// RegionCounts maps an ISO 3166-1 region code to a number of accepted records.
type RegionCounts map[string]int

// Regions returns the region codes in sorted order.
func (c RegionCounts) Regions() []string {
	out := make([]string, 0, len(c))
	for r := range c {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// Result summarizes a single pipeline run.
type Result struct {
	Rule      string
	Read      int // Rows decoded from the input
	Accepted  int // Rows written to the output
	Rejected  int // Rows dropped by the validator
	Regions   RegionCounts
	BytesRead int64
	Duration  time.Duration
}
