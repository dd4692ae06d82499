// Package export writes collected leads to JSON and CSV files.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/JakeFAU/yellowpages-leads/internal/leads"
)

// WriteJSON writes the leads as a pretty-printed JSON array. Non-ASCII text is
// written as-is. An empty slice produces "[]".
func WriteJSON(path string, records []leads.Lead) error {
	if records == nil {
		records = []leads.Lead{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("marshal leads: %w", err)
	}
	return writeFile(path, buf.Bytes())
}

// WriteCSV writes one row per lead under a header of the first lead's column
// names, sorted. It reports whether a file was written: an empty slice writes
// nothing.
func WriteCSV(path string, records []leads.Lead) (bool, error) {
	if len(records) == 0 {
		return false, nil
	}

	header := records[0].Columns()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return false, fmt.Errorf("write csv header: %w", err)
	}
	row := make([]string, len(header))
	for _, lead := range records {
		for i, col := range header {
			row[i] = lead.Value(col)
		}
		if err := w.Write(row); err != nil {
			return false, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return false, fmt.Errorf("flush csv: %w", err)
	}

	if err := writeFile(path, buf.Bytes()); err != nil {
		return false, err
	}
	return true, nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create output dir for %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
