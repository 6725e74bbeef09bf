package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides overrides cfg fields with environment variables that are
// set. It runs after the config file and before flags, giving the precedence
// flags > env > file > defaults.
func ApplyEnvOverrides(cfg *Config) error {
	if cfg == nil {
		return nil
	}
	if v := os.Getenv("PAGESCRAPE_TARGET"); v != "" {
		cfg.TargetURL = v
	}
	if v := strings.TrimSpace(os.Getenv("PAGESCRAPE_COLS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errInvalidEnv("PAGESCRAPE_COLS", v)
		}
		cfg.Columns = n
	}
	if v := os.Getenv("PAGESCRAPE_OUTFILE"); v != "" {
		cfg.OutputPath = v
	}
	if v := os.Getenv("PAGESCRAPE_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := strings.TrimSpace(os.Getenv("PAGESCRAPE_MODE")); v != "" {
		m, ok := ParseMode(strings.ToLower(v))
		if !ok {
			return errInvalidEnv("PAGESCRAPE_MODE", v)
		}
		cfg.Mode = m
	}
	if v := os.Getenv("PAGESCRAPE_SCRIPT_TEMPLATE"); v != "" {
		cfg.ScriptTemplatePath = v
	}
	if v := os.Getenv("PAGESCRAPE_OUTPUT_PDF"); v != "" {
		cfg.OutputPDFPath = v
	}
	if v := os.Getenv("PAGESCRAPE_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("PAGESCRAPE_USER_AGENTS_FILE"); v != "" {
		cfg.UserAgentsFile = v
	}
	if v := os.Getenv("CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}

	setDuration := func(dst *time.Duration, key string) error {
		if s := strings.TrimSpace(os.Getenv(key)); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				return errInvalidEnv(key, s)
			}
			*dst = d
		}
		return nil
	}
	if err := setDuration(&cfg.Timeout, "PAGESCRAPE_TIMEOUT"); err != nil {
		return err
	}
	if err := setDuration(&cfg.CacheMaxAge, "CACHE_MAX_AGE"); err != nil {
		return err
	}
	if v := strings.TrimSpace(os.Getenv("PAGESCRAPE_RETRIES")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errInvalidEnv("PAGESCRAPE_RETRIES", v)
		}
		cfg.Retries = n
	}

	// Booleans override when present and truthy/falsey; other values are ignored.
	setBool := func(dst *bool, key string) {
		switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
		case "1", "true", "yes", "on":
			*dst = true
		case "0", "false", "no", "off":
			*dst = false
		}
	}
	setBool(&cfg.Debug, "PAGESCRAPE_DEBUG")
	setBool(&cfg.AltText, "PAGESCRAPE_ALT")
	setBool(&cfg.RespectRobots, "PAGESCRAPE_ROBOTS")
	setBool(&cfg.CacheClear, "CACHE_CLEAR")
	setBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")
	return nil
}

type envError struct {
	key, value string
}

func (e *envError) Error() string {
	return "env: invalid value for " + e.key + ": " + strconv.Quote(e.value)
}

func errInvalidEnv(key, value string) error {
	return &envError{key: key, value: value}
}
