// Package docload loads raw documents from a directory. PDF, CSV, plain
// text and markdown files are supported; a CSV file yields one document per
// row. Unreadable files are skipped and logged, they never abort a run.
package docload

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"talentsearch/internal/pkg/pdfextract"
	"talentsearch/pkg/log"
)

// ErrNoDocuments is returned when a directory contains nothing loadable.
var ErrNoDocuments = errors.New("no loadable documents in directory")

// Document is one raw source document before chunking.
type Document struct {
	Source string // originating filename
	Title  string // document label, e.g. a job title from a CSV row
	Text   string
}

// LoadDir loads every supported file directly under dir. It returns the
// loaded documents and the number of skipped files; ErrNoDocuments when
// nothing could be loaded at all.
func LoadDir(dir string) ([]Document, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("read source directory failed: %w", err)
	}

	var docs []Document
	skipped := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		path := filepath.Join(dir, name)

		var (
			loaded  []Document
			loadErr error
		)
		switch strings.ToLower(filepath.Ext(name)) {
		case ".pdf":
			loaded, loadErr = loadPDF(path, name)
		case ".csv":
			loaded, loadErr = loadCSV(path, name)
		case ".txt", ".md":
			loaded, loadErr = loadPlain(path, name)
		default:
			continue
		}
		if loadErr != nil {
			log.Warnf("skipping %s: %v", name, loadErr)
			skipped++
			continue
		}
		docs = append(docs, loaded...)
	}

	if len(docs) == 0 {
		return nil, skipped, ErrNoDocuments
	}
	return docs, skipped, nil
}

func loadPDF(path, name string) ([]Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	text, err := pdfextract.ExtractText(f)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("no extractable text")
	}
	return []Document{{Source: name, Title: baseName(name), Text: text}}, nil
}

func loadPlain(path, name string) ([]Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(string(b))
	if text == "" {
		return nil, errors.New("file is empty")
	}
	return []Document{{Source: name, Title: baseName(name), Text: text}}, nil
}

// loadCSV turns each data row into one document. The cell of the first
// header containing "title" becomes the document title; the full row is
// rendered as "header: value" lines.
func loadCSV(path, name string) ([]Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, errors.New("csv has no data rows")
	}

	header := rows[0]
	titleCol := -1
	for i, h := range header {
		if strings.Contains(strings.ToLower(h), "title") {
			titleCol = i
			break
		}
	}

	var docs []Document
	for _, row := range rows[1:] {
		var lines []string
		title := ""
		for i, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" || i >= len(header) {
				continue
			}
			if i == titleCol {
				title = cell
			}
			lines = append(lines, header[i]+": "+cell)
		}
		if len(lines) == 0 {
			continue
		}
		docs = append(docs, Document{
			Source: name,
			Title:  title,
			Text:   strings.Join(lines, "\n"),
		})
	}
	if len(docs) == 0 {
		return nil, errors.New("csv has no usable rows")
	}
	return docs, nil
}

func baseName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
