package syncer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// LogPrefix starts the name of every transcript file.
const LogPrefix = "translation-log-"

// Record is one translation call in the run transcript.
type Record struct {
	Lang            string `json:"lang"`
	Key             string `json:"key"`
	Index           *int   `json:"index,omitempty"`
	Value           string `json:"value"`
	TranslatedValue string `json:"translatedValue"`
	Fallback        bool   `json:"fallback,omitempty"`
	Error           string `json:"error,omitempty"`
}

// LogFileName returns the transcript name for a run started at t.
func LogFileName(t time.Time) string {
	ts := t.UTC().Format("2006-01-02T15-04-05.000Z")
	return LogPrefix + ts + ".json"
}

// writeLog writes records to dir as a JSON array and returns the path.
func writeLog(dir string, t time.Time, records []Record) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}
	if records == nil {
		records = []Record{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return "", fmt.Errorf("marshaling log: %w", err)
	}

	path := filepath.Join(dir, LogFileName(t))
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// ReadLog decodes a transcript file.
func ReadLog(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return records, nil
}

// LogFiles lists transcript files in dir, oldest first.
func LogFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), LogPrefix) || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
