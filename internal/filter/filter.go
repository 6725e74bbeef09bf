package filter

import "github.com/hyperifyio/pagescrape/internal/extract"

// ReportFunc observes every row the filter looks at. index is the row's
// position in the unfiltered input.
type ReportFunc func(index int, row extract.Row, kept bool)

// Rows returns the rows whose entry count equals cols, preserving order.
// Rows of any other length are dropped. report may be nil; it is a side
// channel for diagnostics and never changes the result.
func Rows(rows []extract.Row, cols int, report ReportFunc) []extract.Row {
	out := make([]extract.Row, 0, len(rows))
	for i, row := range rows {
		kept := len(row) == cols
		if report != nil {
			report(i, row, kept)
		}
		if kept {
			out = append(out, row)
		}
	}
	return out
}
