// Package csv reads and writes contact-record CSV files.
//
// It is a thin layer over encoding/csv that adds header matching, typed
// decoding into core.Record, and line-numbered errors.
package csv

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/mobcsv/internal/core"
)

// HeaderIndex maps cleaned column names to their position in a row.
type HeaderIndex map[string]int

// CleanHeader normalizes a header cell for matching: it drops a BOM, an
// Excel formula prefix (="..."), surrounding quotes and whitespace, and
// lowercases the result.
func CleanHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.TrimSpace(h)
	h = strings.TrimPrefix(h, "=")
	h = strings.Trim(h, `"'`)
	return strings.ToLower(strings.TrimSpace(h))
}

// MakeHeaderIndex builds a HeaderIndex from a header row. When a name
// repeats, the first occurrence wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := CleanHeader(h)
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

// ValidateHeaders checks that every column in core.Columns is present.
func ValidateHeaders(header []string) (HeaderIndex, error) {
	idx := MakeHeaderIndex(header)
	var missing []string
	for _, col := range core.Columns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", core.ErrMissingColumn, strings.Join(missing, ", "))
	}
	return idx, nil
}
