package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// Text concatenates every text fragment and every image alt attribute in the
// order they appear. Nothing is trimmed and no separators are inserted.
func Text(input []byte) string {
	s := &textScanner{}
	scan(input, s)
	return s.b.String()
}

type textScanner struct {
	b strings.Builder
}

func (s *textScanner) startTag(name string, attrs []html.Attribute) {
	if name != "img" {
		return
	}
	if alt, ok := altText(attrs); ok {
		s.b.WriteString(alt)
	}
}

func (s *textScanner) endTag(string) {}

func (s *textScanner) text(data string) {
	s.b.WriteString(data)
}
