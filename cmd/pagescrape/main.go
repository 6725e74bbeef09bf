package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"

	"github.com/hyperifyio/pagescrape/internal/app"
)

// flagValues mirrors the command line. Only flags the user actually set are
// copied into the config, so env and config file values survive otherwise.
type flagValues struct {
	page, table, xml, lua bool

	target     string
	cols       int
	outfile    string
	dir        string
	debug      bool
	alt        bool
	scriptTmpl string
	outputPDF  string

	configPath string
	envFiles   string

	userAgent  string
	userAgents string
	timeout    time.Duration
	retries    int
	robots     bool

	cacheDir    string
	cacheMaxAge time.Duration
	cacheClear  bool
	cacheStrict bool

	version bool
}

func newFlagSet(v *flagValues, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("pagescrape", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: pagescrape [--page | --table | --xml | --lua] [OPTIONS]\n\nSave webpage content or table data.\n\n")
		fs.PrintDefaults()
	}
	d := app.DefaultConfig()

	fs.BoolVar(&v.page, "page", false, "(default) save the whole page as plain text into --outfile")
	fs.BoolVar(&v.table, "table", false, "save table rows into --outfile, cells separated by ' - '")
	fs.BoolVar(&v.xml, "xml", false, "write a moves.xml manifest into --dir")
	fs.BoolVar(&v.lua, "lua", false, "write one script file per row into --dir")
	fs.BoolVar(&v.lua, "script", false, "alias for --lua")

	fs.StringVarP(&v.target, "target", "t", d.TargetURL, "target website for content extraction")
	fs.IntVarP(&v.cols, "cols", "c", d.Columns, "number of columns a table row must have (table, xml and lua modes)")
	fs.StringVarP(&v.outfile, "outfile", "f", d.OutputPath, "file receiving the text in page and table modes")
	fs.StringVarP(&v.dir, "dir", "l", d.OutputDir, "directory receiving the files in xml and lua modes")
	fs.BoolVarP(&v.debug, "debug", "d", false, "activate debug messages")
	fs.BoolVar(&v.alt, "alt", d.AltText, "use an image's alt text as a cell entry")
	fs.StringVar(&v.scriptTmpl, "script.template", "", "template file for lua mode (built-in template when empty)")
	fs.StringVar(&v.outputPDF, "output.pdf", "", "also render the page or table output as PDF at this path")

	fs.StringVar(&v.configPath, "config", "", "YAML or JSON config file")
	fs.StringVar(&v.envFiles, "env", ".env", "comma-separated dotenv files to load")

	fs.StringVar(&v.userAgent, "ua", d.UserAgent, "User-Agent header")
	fs.StringVar(&v.userAgents, "ua.file", "", `JSON list of weighted user agents, e.g. [{"ua":"...","pct":70}]`)
	fs.DurationVar(&v.timeout, "timeout", d.Timeout, "per-request timeout (0 disables)")
	fs.IntVar(&v.retries, "retries", 0, "extra attempts on 5xx or timeout")
	fs.BoolVar(&v.robots, "robots", false, "check robots.txt before fetching the target")

	fs.StringVar(&v.cacheDir, "cache.dir", "", "HTTP cache directory (empty disables the cache)")
	fs.DurationVar(&v.cacheMaxAge, "cache.maxAge", 0, "purge cache entries older than this (e.g. 24h); 0 disables")
	fs.BoolVar(&v.cacheClear, "cache.clear", false, "clear the cache directory before the run")
	fs.BoolVar(&v.cacheStrict, "cache.strictPerms", false, "restrict cache permissions (0700 dirs, 0600 files)")

	fs.BoolVar(&v.version, "version", false, "print version and exit")
	return fs
}

// buildConfig layers defaults < config file < env < flags and validates the
// result. Conflicting mode flags fail before any file is read. No network or
// output file is touched here.
func buildConfig(fs *flag.FlagSet, v flagValues) (app.Config, error) {
	cfg := app.DefaultConfig()

	mode, err := app.SelectMode(v.page, v.table, v.xml, v.lua)
	if err != nil {
		return cfg, err
	}

	if v.configPath != "" {
		fc, err := app.LoadConfigFile(v.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		if err := app.ApplyFileConfig(&cfg, fc); err != nil {
			return cfg, err
		}
	}
	if err := app.LoadEnvFiles(strings.Split(v.envFiles, ",")...); err != nil {
		return cfg, fmt.Errorf("load env: %w", err)
	}
	if err := app.ApplyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}

	if v.page || v.table || v.xml || v.lua {
		cfg.Mode = mode
	}

	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("target", func() { cfg.TargetURL = v.target })
	set("cols", func() { cfg.Columns = v.cols })
	set("outfile", func() { cfg.OutputPath = v.outfile })
	set("dir", func() { cfg.OutputDir = v.dir })
	set("debug", func() { cfg.Debug = v.debug })
	set("alt", func() { cfg.AltText = v.alt })
	set("script.template", func() { cfg.ScriptTemplatePath = v.scriptTmpl })
	set("output.pdf", func() { cfg.OutputPDFPath = v.outputPDF })
	set("ua", func() { cfg.UserAgent = v.userAgent })
	set("ua.file", func() { cfg.UserAgentsFile = v.userAgents })
	set("timeout", func() { cfg.Timeout = v.timeout })
	set("retries", func() { cfg.Retries = v.retries })
	set("robots", func() { cfg.RespectRobots = v.robots })
	set("cache.dir", func() { cfg.CacheDir = v.cacheDir })
	set("cache.maxAge", func() { cfg.CacheMaxAge = v.cacheMaxAge })
	set("cache.clear", func() { cfg.CacheClear = v.cacheClear })
	set("cache.strictPerms", func() { cfg.CacheStrictPerms = v.cacheStrict })

	return cfg, app.ValidateConfig(cfg)
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Str("run", uuid.NewString()).Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var v flagValues
	fs := newFlagSet(&v, os.Stderr)
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}
	if v.version {
		fmt.Println(app.VersionString())
		os.Exit(0)
	}

	cfg, err := buildConfig(fs, v)
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		fs.Usage()
		os.Exit(2)
	}
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Debug().Msg("debug is on, starting routine")
	}
	if !v.page && !v.table && !v.xml && !v.lua && cfg.Mode == app.ModePage {
		log.Debug().Msg("parsing method was not chosen, saving the whole page")
	}

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
	log.Info().Msg(app.SuccessMessage)
}

func run(cfg app.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	return a.Run(ctx)
}
