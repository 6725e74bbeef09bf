// Package useragent picks request user agents from a weighted list.
package useragent

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mroth/weightedrand/v2"
)

// Option is one user agent and its relative weight.
type Option struct {
	UserAgent string `json:"ua"`
	Percent   int    `json:"pct"`
}

// Chooser returns a user agent per call, weighted by Option.Percent.
type Chooser struct {
	chooser *weightedrand.Chooser[string, int]
}

// New builds a Chooser. Options with blank agents or non-positive weights are
// skipped; at least one usable option is required.
func New(options []Option) (*Chooser, error) {
	choices := make([]weightedrand.Choice[string, int], 0, len(options))
	for _, o := range options {
		ua := strings.TrimSpace(o.UserAgent)
		if ua == "" || o.Percent <= 0 {
			continue
		}
		choices = append(choices, weightedrand.NewChoice(ua, o.Percent))
	}
	if len(choices) == 0 {
		return nil, errors.New("no usable user agents")
	}
	c, err := weightedrand.NewChooser(choices...)
	if err != nil {
		return nil, fmt.Errorf("build chooser: %w", err)
	}
	return &Chooser{chooser: c}, nil
}

// Load reads a JSON array of {"ua": ..., "pct": ...} objects.
func Load(path string) (*Chooser, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read user agents: %w", err)
	}
	var options []Option
	if err := json.Unmarshal(b, &options); err != nil {
		return nil, fmt.Errorf("parse user agents: %w", err)
	}
	return New(options)
}

// Pick returns one user agent.
func (c *Chooser) Pick() string {
	return c.chooser.Pick()
}
