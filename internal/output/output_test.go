package output

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/hyperifyio/pagescrape/internal/extract"
)

var ember = extract.Row{"Ember", "Fire", "Special", "40", "100", "25", "Effect text"}

func TestWriteText_Verbatim(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.txt")
	text := "  Hi\nthere ünïcode \n"
	if err := WriteText(path, text); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != text {
		t.Fatalf("expected %q, got %q", text, string(b))
	}
}

func TestWriteText_MissingParentFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "content.txt")
	if err := WriteText(path, "x"); err == nil {
		t.Fatalf("expected error for missing parent directory")
	}
}

func TestWriteDelimited_OneLinePerRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.txt")
	rows := []extract.Row{{"Tackle", "Normal", "40"}, {"Ember", "Fire", "40"}}
	if err := WriteDelimited(path, rows); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, _ := os.ReadFile(path)
	want := "Tackle - Normal - 40\nEmber - Fire - 40\n"
	if string(b) != want {
		t.Fatalf("expected %q, got %q", want, string(b))
	}
}

func TestJoinRow_SplitRecoversCells(t *testing.T) {
	rows := []extract.Row{
		{"a", "b", "c"},
		{"Double-Edge", "Normal", "", "120"},
		{"x"},
	}
	for _, row := range rows {
		got := strings.Split(JoinRow(row), Separator)
		if !reflect.DeepEqual(extract.Row(got), row) {
			t.Fatalf("round trip mismatch: %#v vs %#v", got, row)
		}
	}
}

func TestWriteXMLManifest_Tackle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "Moves")
	rows := []extract.Row{{"Tackle", "Normal", "Physical", "40", "100", "35", "-"}}
	path, err := WriteXMLManifest(dir, rows)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if filepath.Base(path) != "moves.xml" {
		t.Fatalf("unexpected path %s", path)
	}
	b, _ := os.ReadFile(path)
	s := string(b)
	if !strings.HasPrefix(s, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Fatalf("missing xml header: %q", s)
	}
	want := `    <move name="Tackle" words="tackle" control="revision" script="Normal/Tackle.lua"/>`
	if strings.Count(s, "<move ") != 1 || !strings.Contains(s, want) {
		t.Fatalf("unexpected manifest:\n%s", s)
	}
	if !strings.Contains(s, "<moves>\n") || !strings.HasSuffix(s, "</moves>\n") {
		t.Fatalf("missing root element:\n%s", s)
	}
}

func TestWriteXMLManifest_EscapesAttributes(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteXMLManifest(dir, []extract.Row{{`Say "Hi" & <run>`, "Normal"}})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	b, _ := os.ReadFile(path)
	s := string(b)
	if strings.Contains(s, `"Hi"`) || strings.Contains(s, "<run>") {
		t.Fatalf("attribute values not escaped:\n%s", s)
	}
	if !strings.Contains(s, "&amp;") {
		t.Fatalf("expected escaped ampersand:\n%s", s)
	}
}

func TestWriteScripts_DefaultTemplate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Moves")
	paths, err := WriteScripts(dir, []extract.Row{ember}, nil)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != "Ember.lua" {
		t.Fatalf("unexpected paths %v", paths)
	}
	b, err := os.ReadFile(filepath.Join(dir, "Ember.lua"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	s := string(b)
	for _, want := range []string{
		"local power = 40",
		`local name = "Ember"`,
		"local accuracy = 100",
		"local pointPool = 25",
		"function onCastSpell(cid, var)",
		"function onTargetCreature(cid, target)",
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("expected %q in script:\n%s", want, s)
		}
	}
}

func TestWriteScripts_CustomTemplate(t *testing.T) {
	tmp := t.TempDir()
	tplPath := filepath.Join(tmp, "move.tmpl")
	if err := os.WriteFile(tplPath, []byte("{{.Name}}|{{.Type}}|{{.Effect}}"), 0o644); err != nil {
		t.Fatal(err)
	}
	tmpl, err := LoadScriptTemplate(tplPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	dir := filepath.Join(tmp, "out")
	if _, err := WriteScripts(dir, []extract.Row{ember}, tmpl); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, _ := os.ReadFile(filepath.Join(dir, "Ember.lua"))
	if string(b) != "Ember|Fire|Effect text" {
		t.Fatalf("unexpected content %q", string(b))
	}
}

func TestWriteScripts_RejectsUnsafeNames(t *testing.T) {
	cases := []string{"../escaped", "a/b", `a\b`, "..", "", "   "}
	for _, name := range cases {
		t.Run(name, func(t *testing.T) {
			root := t.TempDir()
			dir := filepath.Join(root, "Moves")
			row := extract.Row{name, "Normal", "Physical", "40", "100", "35", ""}
			paths, err := WriteScripts(dir, []extract.Row{row}, nil)
			if !errors.Is(err, ErrUnsafeScriptName) {
				t.Fatalf("expected ErrUnsafeScriptName, got %v", err)
			}
			if len(paths) != 0 {
				t.Fatalf("no paths expected, got %v", paths)
			}
			if _, err := os.Stat(filepath.Join(root, "escaped.lua")); !os.IsNotExist(err) {
				t.Fatalf("script written outside dir: %v", err)
			}
			entries, _ := os.ReadDir(dir)
			if len(entries) != 0 {
				t.Fatalf("no scripts expected in dir, got %d", len(entries))
			}
		})
	}
}

func TestWriteScripts_StopsAtUnsafeName(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Moves")
	rows := []extract.Row{ember, {"../Tackle", "Normal", "Physical", "40", "100", "35", ""}}
	paths, err := WriteScripts(dir, rows, nil)
	if !errors.Is(err, ErrUnsafeScriptName) {
		t.Fatalf("expected ErrUnsafeScriptName, got %v", err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != "Ember.lua" {
		t.Fatalf("earlier script should remain, got %v", paths)
	}
}

func TestLoadScriptTemplate_Errors(t *testing.T) {
	if _, err := LoadScriptTemplate(filepath.Join(t.TempDir(), "nope.tmpl")); err == nil {
		t.Fatalf("expected error for missing template")
	}
	bad := filepath.Join(t.TempDir(), "bad.tmpl")
	_ = os.WriteFile(bad, []byte("{{.Name"), 0o644)
	if _, err := LoadScriptTemplate(bad); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestMoveFromRow_ShortRow(t *testing.T) {
	m := MoveFromRow(extract.Row{"Tackle", "Normal"})
	if m.Name != "Tackle" || m.Type != "Normal" || m.Effect != "" {
		t.Fatalf("unexpected move %#v", m)
	}
}

func TestWritePDF_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pdf")
	if err := WritePDF(path, TextLines("Tackle - Normal\n\nEmber - Fire")); err != nil {
		t.Fatalf("pdf: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(string(b), "%PDF-") {
		t.Fatalf("not a pdf")
	}
}
