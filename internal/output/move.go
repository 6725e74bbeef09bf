package output

import "github.com/hyperifyio/pagescrape/internal/extract"

// Move is the typed view of a move table row. Cells are taken positionally;
// missing trailing cells are left empty.
type Move struct {
	Name      string
	Type      string
	Category  string
	Power     string
	Accuracy  string
	PointPool string
	Effect    string
}

// MoveFromRow maps cells 0..6 onto a Move.
func MoveFromRow(row extract.Row) Move {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	return Move{
		Name:      cell(0),
		Type:      cell(1),
		Category:  cell(2),
		Power:     cell(3),
		Accuracy:  cell(4),
		PointPool: cell(5),
		Effect:    cell(6),
	}
}
