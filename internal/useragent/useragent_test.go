package useragent

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew_SingleOptionAlwaysPicked(t *testing.T) {
	c, err := New([]Option{{UserAgent: "only/1.0", Percent: 100}, {UserAgent: "zero/1.0", Percent: 0}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for i := 0; i < 50; i++ {
		if got := c.Pick(); got != "only/1.0" {
			t.Fatalf("unexpected pick %q", got)
		}
	}
}

func TestNew_PicksFromAllWeightedOptions(t *testing.T) {
	c, err := New([]Option{{UserAgent: "a", Percent: 50}, {UserAgent: "b", Percent: 50}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		seen[c.Pick()] = true
	}
	if !seen["a"] || !seen["b"] {
		t.Fatalf("expected both agents to be picked, saw %v", seen)
	}
}

func TestNew_NoUsableOptions(t *testing.T) {
	if _, err := New([]Option{{UserAgent: " ", Percent: 10}}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.json")
	if err := os.WriteFile(path, []byte(`[{"ua":"json/1.0","pct":3}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Pick() != "json/1.0" {
		t.Fatalf("unexpected pick")
	}
	bad := filepath.Join(t.TempDir(), "bad.json")
	_ = os.WriteFile(bad, []byte(`{`), 0o644)
	if _, err := Load(bad); err == nil {
		t.Fatalf("expected parse error")
	}
}
