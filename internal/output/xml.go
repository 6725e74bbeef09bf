package output

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hyperifyio/pagescrape/internal/extract"
)

// ManifestName is the file written inside the target directory.
const ManifestName = "moves.xml"

const control = "revision"

// WriteXMLManifest writes <dir>/moves.xml with one self-closing <move> element
// per row and returns the file path. Attribute values are XML-escaped.
func WriteXMLManifest(dir string, rows []extract.Row) (string, error) {
	if err := ensureDir(dir); err != nil {
		return "", err
	}
	path := filepath.Join(dir, ManifestName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fileMode)
	if err != nil {
		return "", fmt.Errorf("create manifest: %w", err)
	}
	w := bufio.NewWriter(f)
	w.WriteString(xml.Header)
	w.WriteString("<moves>\n")
	lower := cases.Lower(language.Und)
	for _, row := range rows {
		m := MoveFromRow(row)
		fmt.Fprintf(w, "    <move name=\"%s\" words=\"%s\" control=\"%s\" script=\"%s\"/>\n",
			attr(m.Name), attr(lower.String(m.Name)), control, attr(m.Type+"/"+m.Name+".lua"))
	}
	w.WriteString("</moves>\n")
	if err := w.Flush(); err != nil {
		f.Close()
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return path, f.Close()
}

func attr(s string) string {
	var b strings.Builder
	// strings.Builder never returns a write error.
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
