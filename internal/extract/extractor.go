package extract

// Extractor turns raw HTML bytes into a Result in a single explicit call.
// Implementations keep no state between calls.
type Extractor interface {
	Extract(input []byte) Result
}

// Options tune the row extractor.
type Options struct {
	// AltText appends an image's alt attribute as a cell entry when the image
	// sits inside a table cell.
	AltText bool
}

// DefaultOptions enables alt-text substitution.
func DefaultOptions() Options {
	return Options{AltText: true}
}

// TextExtractor collects the full document text.
type TextExtractor struct{}

func (TextExtractor) Extract(input []byte) Result {
	return Result{Text: Text(input)}
}

// RowExtractor collects table rows.
type RowExtractor struct {
	Options Options
}

func (e RowExtractor) Extract(input []byte) Result {
	return Result{Rows: Rows(input, e.Options)}
}
