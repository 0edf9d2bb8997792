// Package inventory turns a description of the paper archive into the page
// and size totals an estimate needs.
package inventory

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// AvgPageSizeKB is the assumed scanned size of one page when only a page
// count is known.
const AvgPageSizeKB = 350

// ErrNoDocuments is returned when an inventory lists nothing to cost.
var ErrNoDocuments = errors.New("inventory has no documents")

// Document is one scanned file in the archive.
type Document struct {
	Name   string  `yaml:"name" json:"name"`
	Path   string  `yaml:"path,omitempty" json:"path,omitempty"`
	Pages  int     `yaml:"pages" json:"pages"`
	SizeKB float64 `yaml:"size_kb,omitempty" json:"size_kb"`
}

// File is the on-disk inventory format.
type File struct {
	Documents []Document `yaml:"documents"`
}

// Summary is the combined size of an archive.
type Summary struct {
	Documents   []Document `json:"documents"`
	Skipped     []string   `json:"skipped,omitempty"`
	TotalPages  int        `json:"total_pages"`
	TotalSizeKB float64    `json:"total_size_kb"`
	SizeGB      float64    `json:"size_gb"`
}

// ManualSizeGB estimates archive size from a page count alone.
func ManualSizeGB(pages int) float64 {
	return float64(pages) * AvgPageSizeKB / 1024 / 1024
}

// Load reads an inventory YAML file.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read inventory %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parse inventory %s: %w", path, err)
	}
	return f, nil
}

// Aggregate sums pages and sizes over docs. A document whose name was
// already seen is skipped with a warning. When size_kb is missing the size
// is read from path, resolved against baseDir when relative.
func Aggregate(docs []Document, baseDir string) (Summary, error) {
	if len(docs) == 0 {
		return Summary{}, ErrNoDocuments
	}

	var s Summary
	seen := make(map[string]bool, len(docs))

	for i, d := range docs {
		if d.Name == "" {
			d.Name = filepath.Base(d.Path)
		}
		if d.Name == "" || d.Name == "." {
			return Summary{}, fmt.Errorf("document %d: name or path is required", i+1)
		}
		if seen[d.Name] {
			slog.Warn("Document already listed, skipping", "name", d.Name)
			s.Skipped = append(s.Skipped, d.Name)
			continue
		}
		seen[d.Name] = true

		if d.Pages < 0 {
			return Summary{}, fmt.Errorf("document %s: pages must not be negative: %d", d.Name, d.Pages)
		}
		if d.SizeKB < 0 {
			return Summary{}, fmt.Errorf("document %s: size_kb must not be negative: %v", d.Name, d.SizeKB)
		}
		if d.SizeKB == 0 && d.Path != "" {
			size, err := fileSizeKB(resolve(baseDir, d.Path))
			if err != nil {
				return Summary{}, fmt.Errorf("document %s: %w", d.Name, err)
			}
			d.SizeKB = size
		}

		s.Documents = append(s.Documents, d)
		s.TotalPages += d.Pages
		s.TotalSizeKB += d.SizeKB
	}

	s.SizeGB = s.TotalSizeKB / 1024 / 1024
	slog.Debug("Inventory aggregated",
		"documents", len(s.Documents),
		"skipped", len(s.Skipped),
		"pages", s.TotalPages,
		"size_gb", s.SizeGB,
	)
	return s, nil
}

func fileSizeKB(path string) (float64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%s is a directory", path)
	}
	return float64(info.Size()) / 1024, nil
}

func resolve(baseDir, path string) string {
	if filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}
