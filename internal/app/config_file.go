package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the YAML/JSON configuration file schema.
type FileConfig struct {
	Target  string `yaml:"target" json:"target"`
	Cols    int    `yaml:"cols" json:"cols"`
	Outfile string `yaml:"outfile" json:"outfile"`
	Dir     string `yaml:"dir" json:"dir"`
	Mode    string `yaml:"mode" json:"mode"`
	Debug   bool   `yaml:"debug" json:"debug"`
	// Alt is a pointer so an explicit false can disable the default.
	Alt *bool `yaml:"alt" json:"alt"`

	Script struct {
		Template string `yaml:"template" json:"template"`
	} `yaml:"script" json:"script"`

	Output struct {
		PDF string `yaml:"pdf" json:"pdf"`
	} `yaml:"output" json:"output"`

	HTTP struct {
		UserAgent  string        `yaml:"userAgent" json:"userAgent"`
		UserAgents string        `yaml:"userAgentsFile" json:"userAgentsFile"`
		Timeout    time.Duration `yaml:"timeout" json:"timeout"`
		Retries    int           `yaml:"retries" json:"retries"`
		Robots     bool          `yaml:"robots" json:"robots"`
	} `yaml:"http" json:"http"`

	Cache struct {
		Dir         string        `yaml:"dir" json:"dir"`
		MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
		Clear       bool          `yaml:"clear" json:"clear"`
		StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
	} `yaml:"cache" json:"cache"`
}

// LoadConfigFile reads YAML or JSON into FileConfig, chosen by extension.
// Unknown extensions try YAML, then JSON.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays every value the file sets. It runs before env and
// flags, so later layers win.
func ApplyFileConfig(cfg *Config, fc FileConfig) error {
	if cfg == nil {
		return nil
	}
	if fc.Target != "" {
		cfg.TargetURL = fc.Target
	}
	if fc.Cols != 0 {
		cfg.Columns = fc.Cols
	}
	if fc.Outfile != "" {
		cfg.OutputPath = fc.Outfile
	}
	if fc.Dir != "" {
		cfg.OutputDir = fc.Dir
	}
	if fc.Mode != "" {
		m, ok := ParseMode(strings.ToLower(strings.TrimSpace(fc.Mode)))
		if !ok {
			return fmt.Errorf("config: unknown mode %q", fc.Mode)
		}
		cfg.Mode = m
	}
	if fc.Debug {
		cfg.Debug = true
	}
	if fc.Alt != nil {
		cfg.AltText = *fc.Alt
	}
	if fc.Script.Template != "" {
		cfg.ScriptTemplatePath = fc.Script.Template
	}
	if fc.Output.PDF != "" {
		cfg.OutputPDFPath = fc.Output.PDF
	}
	if fc.HTTP.UserAgent != "" {
		cfg.UserAgent = fc.HTTP.UserAgent
	}
	if fc.HTTP.UserAgents != "" {
		cfg.UserAgentsFile = fc.HTTP.UserAgents
	}
	if fc.HTTP.Timeout > 0 {
		cfg.Timeout = fc.HTTP.Timeout
	}
	if fc.HTTP.Retries > 0 {
		cfg.Retries = fc.HTTP.Retries
	}
	if fc.HTTP.Robots {
		cfg.RespectRobots = true
	}
	if fc.Cache.Dir != "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = fc.Cache.MaxAge
	}
	if fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if fc.Cache.StrictPerms {
		cfg.CacheStrictPerms = true
	}
	return nil
}

// ValidateConfig checks everything that must hold before any network or file
// operation starts.
func ValidateConfig(cfg Config) error {
	if _, ok := ParseMode(string(cfg.Mode)); !ok {
		return fmt.Errorf("config: unknown mode %q", cfg.Mode)
	}
	u, err := url.Parse(strings.TrimSpace(cfg.TargetURL))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("config: target must be an http(s) URL, got %q", cfg.TargetURL)
	}
	if cfg.Mode.UsesRows() && cfg.Columns <= 0 {
		return fmt.Errorf("config: %w (got %d)", ErrInvalidColumns, cfg.Columns)
	}
	switch cfg.Mode {
	case ModePage, ModeTable:
		if strings.TrimSpace(cfg.OutputPath) == "" {
			return errors.New("config: output file is required")
		}
	case ModeXML, ModeScript:
		if strings.TrimSpace(cfg.OutputDir) == "" {
			return errors.New("config: output directory is required")
		}
		if cfg.OutputPDFPath != "" {
			return fmt.Errorf("config: PDF output is only available in page and table modes")
		}
	}
	if cfg.Timeout < 0 || cfg.Retries < 0 || cfg.CacheMaxAge < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	return nil
}
