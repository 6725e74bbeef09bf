// Package output writes extracted page content to disk in the supported
// formats. Writers that target a directory create it first; writers that
// target a single file expect its parent to exist.
package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/hyperifyio/pagescrape/internal/extract"
)

const (
	fileMode = 0o644
	dirMode  = 0o755
)

// Separator joins cells on a delimited line.
const Separator = " - "

// WriteText writes the document text verbatim.
func WriteText(path string, text string) error {
	if err := os.WriteFile(path, []byte(text), fileMode); err != nil {
		return fmt.Errorf("write text: %w", err)
	}
	return nil
}

// JoinRow renders one delimited line without the trailing newline.
func JoinRow(row extract.Row) string {
	return strings.Join(row, Separator)
}

// WriteDelimited writes one line per row, cells joined by Separator, each line
// ending in a newline.
func WriteDelimited(path string, rows []extract.Row) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fileMode)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	for _, row := range rows {
		if _, err := f.WriteString(JoinRow(row) + "\n"); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return f.Close()
}

func ensureDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("output directory not configured")
	}
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}
