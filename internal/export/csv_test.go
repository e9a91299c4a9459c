package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueforce/skyshield/internal/airquality"
)

func TestCSVExporterWritesStableColumns(t *testing.T) {
	dir := t.TempDir()

	exporter, err := NewCSVExporter(dir)
	require.NoError(t, err)

	ts := time.Date(2025, 10, 3, 14, 30, 0, 0, time.UTC)
	raw := 75.0
	res := airquality.Result{
		ID:        "cycle-1",
		Timestamp: ts,
		Measurements: []airquality.Measurement{
			{
				Pollutant:   airquality.PollutantPM25,
				Value:       23.5,
				Unit:        "µg/m³",
				Source:      "IQAir - New York",
				Rating:      airquality.RatingModerate,
				Indicator:   "[M]",
				Description: "Moderate - acceptable air quality",
				RawIndex:    &raw,
				Timestamp:   ts,
			},
			{
				Pollutant: airquality.PollutantNO2,
				Value:     40,
				Unit:      "ppb",
				Source:    "OpenAQ: Station",
				Rating:    airquality.RatingGood,
				Indicator: "[G]",
				Timestamp: ts,
			},
		},
	}

	require.NoError(t, exporter.Export(res))

	path := filepath.Join(dir, "air_quality_20251003_1430.csv")
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "PM2_5", records[1][0])
	assert.Equal(t, "23.5", records[1][1])
	assert.Equal(t, "75", records[1][7])
	assert.Equal(t, "NO2", records[2][0])
	assert.Equal(t, "", records[2][7]) // no raw index for direct readings
}

func TestCSVExporterCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "exports")

	_, err := NewCSVExporter(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
