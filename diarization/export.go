package diarization

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// WriteJSON writes report as indented JSON.
func WriteJSON(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report json: %w", err)
	}
	return nil
}

// WriteYAML writes report as YAML.
func WriteYAML(w io.Writer, report *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report yaml: %w", err)
	}
	return enc.Close()
}

// ReadReport decodes a JSON or YAML report. A bare {"segments": [...]}
// document is accepted; Speakers is recomputed from the segments.
func ReadReport(r io.Reader, format string) (*Report, error) {
	var report Report
	var err error
	switch format {
	case "yaml", "yml":
		err = yaml.NewDecoder(r).Decode(&report)
	default:
		err = json.NewDecoder(r).Decode(&report)
	}
	if err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	if err := checkSegments(report.Segments); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	report.Speakers = DistinctSpeakers(report.Segments)
	return &report, nil
}

// SaveReport writes report to path, choosing YAML for .yml/.yaml and JSON
// otherwise.
func SaveReport(path string, report *Report) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	if isYAML(path) {
		return WriteYAML(f, report)
	}
	return WriteJSON(f, report)
}

// LoadReport reads a report saved by SaveReport.
func LoadReport(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	format := "json"
	if isYAML(path) {
		format = "yaml"
	}
	return ReadReport(f, format)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yml" || ext == ".yaml"
}
