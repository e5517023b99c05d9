// Package series holds the hourly consumption time series: the Series
// type, a seeded synthetic generator, and CSV load/save.
package series

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"
)

// Step is the fixed spacing between observations.
const Step = time.Hour

// Timestamp layouts accepted by Load, tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// Series is a univariate hourly time series. Values[i] is the
// observation at Start + i hours.
type Series struct {
	Start  time.Time
	Values []float64
}

// Len returns the number of observations.
func (s *Series) Len() int { return len(s.Values) }

// TimeAt returns the timestamp of observation i.
func (s *Series) TimeAt(i int) time.Time {
	return s.Start.Add(time.Duration(i) * Step)
}

// End returns the timestamp of the last observation.
func (s *Series) End() time.Time {
	if len(s.Values) == 0 {
		return s.Start
	}
	return s.TimeAt(len(s.Values) - 1)
}

// Validate checks that every value is finite.
func (s *Series) Validate() error {
	if len(s.Values) == 0 {
		return fmt.Errorf("series: empty series")
	}
	for i, v := range s.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("series: non-finite value %v at index %d (%s)", v, i, s.TimeAt(i).Format(time.RFC3339))
		}
	}
	return nil
}

func parseTimestamp(raw string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("series: unparseable timestamp %q", raw)
}

// Read parses a timestamp,consumption CSV from r. A header row is
// detected and skipped. Rows must be hourly, strictly increasing and
// gap-free; values must be finite numbers.
func Read(r io.Reader) (*Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2

	s := &Series{}
	row := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("series: read csv: %w", err)
		}
		row++

		ts, err := parseTimestamp(rec[0])
		if err != nil {
			if row == 1 {
				// Header row.
				continue
			}
			return nil, fmt.Errorf("series: row %d: %w", row, err)
		}

		v, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("series: row %d: non-numeric consumption %q", row, rec[1])
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("series: row %d: non-finite consumption %v", row, v)
		}

		if len(s.Values) == 0 {
			s.Start = ts
		} else {
			want := s.TimeAt(len(s.Values))
			if !ts.Equal(want) {
				return nil, fmt.Errorf("series: row %d: timestamp %s, want %s (hourly, no gaps)",
					row, ts.Format(time.RFC3339), want.Format(time.RFC3339))
			}
		}
		s.Values = append(s.Values, v)
	}

	if len(s.Values) == 0 {
		return nil, fmt.Errorf("series: csv contains no data rows")
	}
	return s, nil
}

// Load reads a series from a CSV file.
func Load(path string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("series: open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Write emits the series as timestamp,consumption CSV with a header.
func (s *Series) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "consumption"}); err != nil {
		return fmt.Errorf("series: write header: %w", err)
	}
	for i, v := range s.Values {
		rec := []string{
			s.TimeAt(i).Format(time.RFC3339),
			strconv.FormatFloat(v, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("series: write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Save writes the series to a CSV file.
func (s *Series) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("series: create %s: %w", path, err)
	}
	defer f.Close()
	return s.Write(f)
}
