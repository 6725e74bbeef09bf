package extract

import (
	"bytes"

	"golang.org/x/net/html"
)

// Row is the ordered list of cell entries recorded for one table row.
type Row []string

// Result is what a single pass over a document produced. Text is set by the
// full-text extractor, Rows by the row extractor.
type Result struct {
	Text string
	Rows []Row
}

// handler receives tokenizer events in document order.
type handler interface {
	startTag(name string, attrs []html.Attribute)
	endTag(name string)
	text(data string)
}

// scan walks the markup once, front to back, and dispatches every tag and text
// token to h. Tag names arrive lowercased and text with entities decoded.
// Malformed markup is not an error: the tokenizer keeps going and h sees
// whatever tags it reports.
func scan(input []byte, h handler) {
	z := html.NewTokenizer(bytes.NewReader(input))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a reader error; both end the document for us.
			return
		case html.TextToken:
			h.text(string(z.Text()))
		case html.StartTagToken:
			t := z.Token()
			h.startTag(t.Data, t.Attr)
		case html.SelfClosingTagToken:
			t := z.Token()
			h.startTag(t.Data, t.Attr)
			h.endTag(t.Data)
		case html.EndTagToken:
			name, _ := z.TagName()
			h.endTag(string(name))
		}
	}
}

// altText returns the value of the alt attribute and whether it was present.
// An empty alt="" still counts as present.
func altText(attrs []html.Attribute) (string, bool) {
	for _, a := range attrs {
		if a.Namespace == "" && a.Key == "alt" {
			return a.Val, true
		}
	}
	return "", false
}
