package output

import (
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// WritePDF renders lines into a simple A4 document, one paragraph per line.
// Blank lines become vertical space. The core Helvetica font only covers
// Latin-1, so text is translated through the cp1252 table first.
func WritePDF(path string, lines []string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, line := range lines {
		s := strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(s) == "" {
			pdf.Ln(4)
			continue
		}
		pdf.MultiCell(0, 5, tr(s), "", "L", false)
	}
	return pdf.OutputFileAndClose(path)
}

// TextLines splits document text into lines for WritePDF.
func TextLines(text string) []string {
	return strings.Split(text, "\n")
}
