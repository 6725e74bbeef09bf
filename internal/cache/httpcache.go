// Package cache keeps fetched pages on disk so repeated runs against the same
// target can revalidate with ETag / Last-Modified instead of downloading again.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Entry is the metadata stored next to a cached body.
type Entry struct {
	URL          string    `json:"url"`
	ContentType  string    `json:"content_type"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	SavedAt      time.Time `json:"saved_at"`
}

const (
	metaSuffix = ".meta.json"
	bodySuffix = ".body"
)

// HTTPCache stores one <sha256(url)>.meta.json and <sha256(url)>.body pair per
// URL under Dir. There is no eviction beyond PurgeByAge.
type HTTPCache struct {
	Dir string
	// StrictPerms creates the directory 0700 and files 0600.
	StrictPerms bool
}

func (c *HTTPCache) modes() (os.FileMode, os.FileMode) {
	if c.StrictPerms {
		return 0o700, 0o600
	}
	return 0o755, 0o644
}

func (c *HTTPCache) ensureDir() error {
	if c == nil || c.Dir == "" {
		return errors.New("cache dir not configured")
	}
	dirMode, _ := c.modes()
	return os.MkdirAll(c.Dir, dirMode)
}

func (c *HTTPCache) base(url string) string {
	h := sha256.Sum256([]byte(url))
	return filepath.Join(c.Dir, hex.EncodeToString(h[:]))
}

// Lookup returns the stored metadata for url. A miss is reported as an error
// satisfying errors.Is(err, os.ErrNotExist).
func (c *HTTPCache) Lookup(url string) (*Entry, error) {
	if err := c.ensureDir(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(c.base(url) + metaSuffix)
	if err != nil {
		return nil, err
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("decode cache meta: %w", err)
	}
	return &e, nil
}

// Body returns the stored body for url.
func (c *HTTPCache) Body(url string) ([]byte, error) {
	if err := c.ensureDir(); err != nil {
		return nil, err
	}
	return os.ReadFile(c.base(url) + bodySuffix)
}

// Save writes body and metadata. The metadata goes last, through a rename, so
// a reader never sees metadata pointing at a half-written body.
func (c *HTTPCache) Save(e Entry, body []byte) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	_, fileMode := c.modes()
	base := c.base(e.URL)
	if err := os.WriteFile(base+bodySuffix, body, fileMode); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if e.SavedAt.IsZero() {
		e.SavedAt = time.Now().UTC()
	}
	meta, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	tmp := base + metaSuffix + ".tmp"
	if err := os.WriteFile(tmp, meta, fileMode); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	return os.Rename(tmp, base+metaSuffix)
}
