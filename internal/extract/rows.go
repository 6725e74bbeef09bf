package extract

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// Rows returns every non-empty table row in document order.
//
// Only <tr> and <td> change state. Each text fragment inside a cell becomes
// its own trimmed entry, so a cell split by nested markup yields several
// entries. Unbalanced tags are followed mechanically: a stray </tr> records
// the current buffer again and text after a missing </td> still lands in the
// buffer.
func Rows(input []byte, opts Options) []Row {
	s := &rowScanner{opts: opts}
	scan(input, s)
	return s.rows
}

type rowScanner struct {
	opts Options

	inRow   bool
	inCell  bool
	current Row
	rows    []Row
}

func (s *rowScanner) startTag(name string, attrs []html.Attribute) {
	switch name {
	case "tr":
		s.inRow = true
		s.current = Row{}
	case "td":
		s.inCell = true
	case "img":
		if !s.inCell || !s.opts.AltText {
			return
		}
		if alt, ok := altText(attrs); ok {
			s.current = append(s.current, alt)
		}
	}
}

func (s *rowScanner) endTag(name string) {
	switch name {
	case "tr":
		s.inRow = false
		if len(s.current) > 0 {
			s.rows = append(s.rows, slices.Clone(s.current))
		}
	case "td":
		s.inCell = false
	}
}

func (s *rowScanner) text(data string) {
	if s.inCell {
		s.current = append(s.current, strings.TrimSpace(data))
	}
}
