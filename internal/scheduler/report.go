package scheduler

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"MarketAnalyst/internal/analyst"
)

// DatePlaceholder in a report path is replaced by the run's as-of date.
const DatePlaceholder = "{date}"

// ReportPath expands DatePlaceholder in path.
func ReportPath(path string, asOf time.Time) string {
	return strings.ReplaceAll(path, DatePlaceholder, asOf.Format(time.DateOnly))
}

// WriteReport encodes rep as indented JSON.
func WriteReport(w io.Writer, rep *analyst.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// SaveReport writes rep to a JSON file, replacing it atomically.
func SaveReport(path string, rep *analyst.Report) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
