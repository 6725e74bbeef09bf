package app

import (
	"errors"
	"time"
)

// Mode selects which extractor runs and which writer receives its output.
type Mode string

const (
	// ModePage saves the full page text.
	ModePage Mode = "page"
	// ModeTable saves table rows as delimited lines.
	ModeTable Mode = "table"
	// ModeXML writes the moves.xml manifest.
	ModeXML Mode = "xml"
	// ModeScript writes one script file per row.
	ModeScript Mode = "lua"
)

// Defaults applied before file, env and flags.
const (
	DefaultTarget    = "https://pokemondb.net/move/generation/1"
	DefaultColumns   = 7
	DefaultOutFile   = "content.txt"
	DefaultOutputDir = "Moves"
	DefaultTimeout   = 30 * time.Second
)

var (
	// ErrConflictingModes is returned when more than one output mode is selected.
	ErrConflictingModes = errors.New("only one of --page, --table, --xml, --lua may be selected")
	// ErrInvalidColumns is returned for a non-positive column count.
	ErrInvalidColumns = errors.New("column count must be a positive integer")
)

// Config holds runtime configuration. It is built once in main and passed by
// value; nothing mutates it afterwards.
type Config struct {
	TargetURL  string
	Columns    int
	OutputPath string
	OutputDir  string
	Mode       Mode
	Debug      bool

	// Extraction / output
	AltText            bool
	ScriptTemplatePath string
	OutputPDFPath      string

	// HTTP
	UserAgent      string
	UserAgentsFile string
	Timeout        time.Duration
	Retries        int
	RespectRobots  bool

	// Cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool
}

// DefaultConfig returns the configuration used when nothing else is set.
func DefaultConfig() Config {
	return Config{
		TargetURL:  DefaultTarget,
		Columns:    DefaultColumns,
		OutputPath: DefaultOutFile,
		OutputDir:  DefaultOutputDir,
		Mode:       ModePage,
		AltText:    true,
		UserAgent:  "pagescrape/" + BuildVersion,
		Timeout:    DefaultTimeout,
	}
}

// SelectMode resolves the mutually exclusive mode switches. No switch means
// ModePage; more than one is ErrConflictingModes.
func SelectMode(page, table, xml, script bool) (Mode, error) {
	var picked []Mode
	if page {
		picked = append(picked, ModePage)
	}
	if table {
		picked = append(picked, ModeTable)
	}
	if xml {
		picked = append(picked, ModeXML)
	}
	if script {
		picked = append(picked, ModeScript)
	}
	switch len(picked) {
	case 0:
		return ModePage, nil
	case 1:
		return picked[0], nil
	default:
		return "", ErrConflictingModes
	}
}

// ParseMode accepts the mode names used in config files and env.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModePage, ModeTable, ModeXML, ModeScript:
		return Mode(s), true
	case "script":
		return ModeScript, true
	}
	return "", false
}

// UsesRows reports whether the mode runs the row extractor.
func (m Mode) UsesRows() bool {
	return m != ModePage
}
