package app

import (
	"context"
	"fmt"
	"text/template"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/pagescrape/internal/cache"
	"github.com/hyperifyio/pagescrape/internal/extract"
	"github.com/hyperifyio/pagescrape/internal/fetch"
	"github.com/hyperifyio/pagescrape/internal/filter"
	"github.com/hyperifyio/pagescrape/internal/output"
	"github.com/hyperifyio/pagescrape/internal/robots"
	"github.com/hyperifyio/pagescrape/internal/useragent"
)

// SuccessMessage is logged when a run completes.
const SuccessMessage = "Code execution finished successfully."

// App runs one fetch-extract-write pass for a Config.
type App struct {
	cfg     Config
	fetcher *fetch.Client
	robots  *robots.Checker
	script  *template.Template
}

// New prepares everything that can fail without touching the network: cache
// maintenance, the user-agent list and the script template.
func New(ctx context.Context, cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	httpClient := newHTTPClient()
	a := &App{
		cfg: cfg,
		fetcher: &fetch.Client{
			HTTPClient:        httpClient,
			UserAgent:         cfg.UserAgent,
			MaxAttempts:       1 + cfg.Retries,
			PerRequestTimeout: cfg.Timeout,
		},
	}

	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed; continuing")
			}
		}
		if cfg.CacheMaxAge > 0 {
			if n, err := cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge); err != nil {
				log.Warn().Err(err).Msg("cache purge failed; continuing")
			} else if n > 0 {
				log.Debug().Int("removed", n).Msg("purged expired cache entries")
			}
		}
		a.fetcher.Cache = &cache.HTTPCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
	}

	if cfg.UserAgentsFile != "" {
		agents, err := useragent.Load(cfg.UserAgentsFile)
		if err != nil {
			return nil, fmt.Errorf("user agents: %w", err)
		}
		a.fetcher.Agents = agents
	}

	if cfg.RespectRobots {
		rc := *httpClient
		rc.Timeout = cfg.Timeout
		a.robots = &robots.Checker{HTTPClient: &rc}
	}

	if cfg.Mode == ModeScript {
		t, err := output.LoadScriptTemplate(cfg.ScriptTemplatePath)
		if err != nil {
			return nil, err
		}
		a.script = t
	}
	return a, nil
}

// Run fetches the target, extracts according to the mode and writes the
// result. Any error is fatal for the run; files already written stay.
func (a *App) Run(ctx context.Context) error {
	cfg := a.cfg
	log.Debug().Str("mode", string(cfg.Mode)).Str("target", cfg.TargetURL).Msg("starting routine")

	// One agent per run so robots.txt is evaluated for the agent that fetches.
	fetcher := *a.fetcher
	fetcher.UserAgent, fetcher.Agents = a.fetcher.PickUserAgent(), nil
	log.Debug().Str("user_agent", fetcher.UserAgent).Msg("picked user agent")

	if a.robots != nil {
		checker := *a.robots
		checker.UserAgent = fetcher.UserAgent
		if err := checker.Check(ctx, cfg.TargetURL); err != nil {
			return fmt.Errorf("robots: %w", err)
		}
	}

	page, err := fetcher.Get(ctx, cfg.TargetURL)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", cfg.TargetURL, err)
	}
	log.Debug().Int("bytes", len(page.Body)).Bool("cached", page.FromCache).Str("content_type", page.ContentType).Msg("got website response and content")

	res := a.extractor().Extract(page.Body)
	if !cfg.Mode.UsesRows() {
		log.Debug().Int("chars", len(res.Text)).Msg("parsed full page text")
		return a.writePage(res.Text)
	}
	log.Debug().Int("rows", len(res.Rows)).Msg("parsed table rows")

	rows := filter.Rows(res.Rows, cfg.Columns, logRow)
	log.Debug().Int("kept", len(rows)).Int("dropped", len(res.Rows)-len(rows)).Int("cols", cfg.Columns).Msg("filtered rows")
	return a.writeRows(rows)
}

func (a *App) extractor() extract.Extractor {
	if a.cfg.Mode.UsesRows() {
		return extract.RowExtractor{Options: extract.Options{AltText: a.cfg.AltText}}
	}
	return extract.TextExtractor{}
}

func logRow(index int, row extract.Row, kept bool) {
	if kept {
		log.Debug().Int("row", index).Strs("cells", row).Msg("processing row")
		return
	}
	log.Debug().Int("row", index).Int("cells_found", len(row)).Strs("cells", row).Msg("row has the wrong column count, ignoring it")
}

func (a *App) writePage(text string) error {
	if err := output.WriteText(a.cfg.OutputPath, text); err != nil {
		return err
	}
	log.Debug().Str("out", a.cfg.OutputPath).Msg("full text content saved")
	return a.writePDF(output.TextLines(text))
}

func (a *App) writeRows(rows []extract.Row) error {
	cfg := a.cfg
	switch cfg.Mode {
	case ModeTable:
		if err := output.WriteDelimited(cfg.OutputPath, rows); err != nil {
			return err
		}
		log.Debug().Str("out", cfg.OutputPath).Int("rows", len(rows)).Msg("table content saved")
		lines := make([]string, len(rows))
		for i, r := range rows {
			lines[i] = output.JoinRow(r)
		}
		return a.writePDF(lines)
	case ModeXML:
		path, err := output.WriteXMLManifest(cfg.OutputDir, rows)
		if err != nil {
			return err
		}
		log.Debug().Str("out", path).Int("moves", len(rows)).Msg("xml manifest saved")
	case ModeScript:
		paths, err := output.WriteScripts(cfg.OutputDir, rows, a.script)
		if err != nil {
			return err
		}
		log.Debug().Str("dir", cfg.OutputDir).Int("files", len(paths)).Msg("script files saved")
	default:
		return fmt.Errorf("unsupported mode %q", cfg.Mode)
	}
	return nil
}

func (a *App) writePDF(lines []string) error {
	if a.cfg.OutputPDFPath == "" {
		return nil
	}
	if err := output.WritePDF(a.cfg.OutputPDFPath, lines); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	log.Debug().Str("out", a.cfg.OutputPDFPath).Msg("pdf saved")
	return nil
}
