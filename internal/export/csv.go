// Package export persists cycle results as timestamped CSV files for
// downstream analysis.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/blueforce/skyshield/internal/airquality"
)

// csvHeader is the stable column set regardless of which sources
// contributed to the cycle.
var csvHeader = []string{
	"pollutant", "value", "units", "source", "rating", "indicator", "description", "aqi", "timestamp",
}

// CSVExporter writes one file per cycle into a directory.
type CSVExporter struct {
	dir string
}

// NewCSVExporter ensures the target directory exists.
func NewCSVExporter(dir string) (*CSVExporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	return &CSVExporter{dir: dir}, nil
}

// Export writes the cycle's measurements to air_quality_<timestamp>.csv.
func (e *CSVExporter) Export(res airquality.Result) error {
	name := fmt.Sprintf("air_quality_%s.csv", res.Timestamp.UTC().Format("20060102_1504"))
	path := filepath.Join(e.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, m := range res.Measurements {
		rawIndex := ""
		if m.RawIndex != nil {
			rawIndex = strconv.FormatFloat(*m.RawIndex, 'f', -1, 64)
		}

		record := []string{
			string(m.Pollutant),
			strconv.FormatFloat(m.Value, 'f', -1, 64),
			m.Unit,
			m.Source,
			string(m.Rating),
			m.Indicator,
			m.Description,
			rawIndex,
			m.Timestamp.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

var _ airquality.Exporter = (*CSVExporter)(nil)
