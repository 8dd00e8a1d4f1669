package docload

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadDir_PlainText(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "resume.txt", "  Go engineer with Kafka experience.  \n")
	write(t, dir, "readme.md", "# Team notes\nhiring process outline")

	docs, skipped, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if skipped != 0 {
		t.Fatalf("expected no skipped files, got %d", skipped)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}

	bySource := map[string]Document{}
	for _, d := range docs {
		bySource[d.Source] = d
	}
	txt, ok := bySource["resume.txt"]
	if !ok {
		t.Fatal("missing resume.txt document")
	}
	if txt.Text != "Go engineer with Kafka experience." {
		t.Fatalf("expected trimmed text, got %q", txt.Text)
	}
	if txt.Title != "resume" {
		t.Fatalf("expected title from filename, got %q", txt.Title)
	}
}

func TestLoadDir_CSVOneDocumentPerRow(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "jobs.csv",
		"job_title,skills,location\n"+
			"Data Scientist,Python and statistics,Berlin\n"+
			"Go Developer,Go and Kafka,\n")

	docs, _, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected one document per data row, got %d", len(docs))
	}

	first := docs[0]
	if first.Title != "Data Scientist" {
		t.Fatalf("expected title from the title column, got %q", first.Title)
	}
	if !strings.Contains(first.Text, "job_title: Data Scientist") ||
		!strings.Contains(first.Text, "skills: Python and statistics") {
		t.Fatalf("expected header: value lines, got %q", first.Text)
	}

	// empty cells are dropped from the rendered text
	if strings.Contains(docs[1].Text, "location") {
		t.Fatalf("empty cell should be omitted, got %q", docs[1].Text)
	}
}

func TestLoadDir_SkipsUnreadableAndIgnoresUnknown(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "good.txt", "usable content")
	write(t, dir, "empty.txt", "   ")
	write(t, dir, "broken.pdf", "not a pdf at all")
	write(t, dir, "ignored.json", `{"not": "loaded"}`)

	docs, skipped, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	// empty.txt and broken.pdf are skipped; ignored.json is not counted
	if skipped != 2 {
		t.Fatalf("expected 2 skipped files, got %d", skipped)
	}
}

func TestLoadDir_NothingLoadable(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "ignored.json", "{}")

	_, _, err := LoadDir(dir)
	if !errors.Is(err, ErrNoDocuments) {
		t.Fatalf("expected ErrNoDocuments, got %v", err)
	}
}

func TestLoadDir_MissingDirectory(t *testing.T) {
	_, _, err := LoadDir(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestLoadDir_CSVWithoutDataRows(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "header-only.csv", "job_title,skills\n")
	write(t, dir, "good.txt", "something loadable")

	docs, skipped, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(docs) != 1 || skipped != 1 {
		t.Fatalf("expected header-only csv to be skipped, got %d docs %d skipped", len(docs), skipped)
	}
}
