// Package robots answers whether a single URL may be fetched according to the
// host's robots.txt.
package robots

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrDisallowed is returned by Check when robots.txt forbids the target.
var ErrDisallowed = errors.New("disallowed by robots.txt")

// Rules is a parsed robots.txt.
type Rules struct {
	Groups []Group
}

// Group is one block of user-agent lines followed by their directives.
type Group struct {
	Agents   []string
	Allow    []string
	Disallow []string
}

// Checker fetches robots.txt for a target and evaluates it.
type Checker struct {
	HTTPClient *http.Client
	UserAgent  string
}

// Check returns nil when target may be fetched, ErrDisallowed when it may not,
// or the error that prevented the decision. A missing robots.txt (4xx) allows
// everything.
func (c *Checker) Check(ctx context.Context, target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	rules, err := c.fetch(ctx, u)
	if err != nil {
		return err
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	if !rules.IsAllowed(c.UserAgent, path) {
		return fmt.Errorf("%w: %s", ErrDisallowed, target)
	}
	return nil
}

func (c *Checker) fetch(ctx context.Context, target *url.URL) (Rules, error) {
	robotsURL := (&url.URL{Scheme: target.Scheme, Host: target.Host, Path: "/robots.txt"}).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return Rules{}, fmt.Errorf("new request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Rules{}, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return Rules{}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Rules{}, fmt.Errorf("fetch robots.txt: unexpected status: %d", resp.StatusCode)
	}
	// robots.txt files beyond 500 KiB may be truncated by crawlers.
	b, err := io.ReadAll(io.LimitReader(resp.Body, 500<<10))
	if err != nil {
		return Rules{}, fmt.Errorf("read robots.txt: %w", err)
	}
	return Parse(string(b)), nil
}

// Parse reads robots.txt text. Unknown directives and comments are ignored.
func Parse(text string) Rules {
	var groups []Group
	var cur Group
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		val = strings.TrimSpace(val)
		switch key {
		case "user-agent", "useragent":
			// A user-agent line after directives starts a new group.
			if len(cur.Allow)+len(cur.Disallow) > 0 {
				groups = append(groups, cur)
				cur = Group{}
			}
			cur.Agents = append(cur.Agents, strings.ToLower(val))
		case "allow":
			cur.Allow = append(cur.Allow, val)
		case "disallow":
			cur.Disallow = append(cur.Disallow, val)
		}
	}
	if len(cur.Agents) > 0 {
		groups = append(groups, cur)
	}
	return Rules{Groups: groups}
}

// IsAllowed applies the most specific matching group for userAgent to path.
// The longest matching pattern wins and Allow wins ties. No match allows.
func (r Rules) IsAllowed(userAgent, path string) bool {
	g := r.group(userAgent)
	if g == nil {
		return true
	}
	best, allow := -1, true
	consider := func(patterns []string, isAllow bool) {
		for _, p := range patterns {
			if p == "" || !match(p, path) {
				continue
			}
			score := len(strings.ReplaceAll(strings.TrimSuffix(p, "$"), "*", ""))
			if score > best || (score == best && isAllow) {
				best, allow = score, isAllow
			}
		}
	}
	consider(g.Disallow, false)
	consider(g.Allow, true)
	return allow
}

func (r Rules) group(userAgent string) *Group {
	ua := strings.ToLower(userAgent)
	var best *Group
	bestLen := -1
	for i := range r.Groups {
		for _, a := range r.Groups[i].Agents {
			n := -1
			switch {
			case a == "*":
				n = 0
			case a != "" && strings.Contains(ua, a):
				n = len(a)
			}
			if n > bestLen {
				best, bestLen = &r.Groups[i], n
			}
		}
	}
	return best
}

// match reports whether a robots pattern matches path. '*' matches any run of
// characters and a trailing '$' anchors the end; otherwise it is a prefix match.
func match(pattern, path string) bool {
	anchored := strings.HasSuffix(pattern, "$")
	pattern = strings.TrimSuffix(pattern, "$")
	parts := strings.Split(pattern, "*")
	if !strings.HasPrefix(path, parts[0]) {
		return false
	}
	rest := path[len(parts[0]):]
	for i := 1; i < len(parts); i++ {
		if i == len(parts)-1 && anchored {
			return strings.HasSuffix(rest, parts[i])
		}
		j := strings.Index(rest, parts[i])
		if j < 0 {
			return false
		}
		rest = rest[j+len(parts[i]):]
	}
	return !anchored || rest == ""
}
