// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: May 2nd 2026
// Project: Compartmental SIRD/SIRDV Epidemic Forecasting with Logit-VAR Scenario Simulation
// Class: 02-613 at Caregie Mellon University

package timeseries

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ReadCSV loads a frame from a CSV file whose first column is named
// "date" (2006-01-02 or RFC 3339) and whose remaining columns hold
// float64 values. Empty cells become NaN.
func ReadCSV(path string) (*Frame, error) {
	// 1. Open file
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	// 2. Make CSV reader
	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	// 3. Read header row
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("%s: need a date column and at least one value column", path)
	}
	if !strings.EqualFold(header[0], "date") {
		return nil, fmt.Errorf("%s: first column must be \"date\", got %q", path, header[0])
	}
	names := header[1:]

	var (
		dates   []time.Time
		columns = make([][]float64, len(names))
		row     int
	)

	// 4. Read each data row
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row+2, err) // +2 for header + 1-based
		}

		// Skip completely empty lines
		if len(record) == 1 && record[0] == "" {
			continue
		}

		if len(record) != len(header) {
			return nil, fmt.Errorf("row %d: expected %d columns, got %d", row+2, len(header), len(record))
		}

		t, err := parseDate(record[0])
		if err != nil {
			return nil, fmt.Errorf("parse date at row %d (%q): %w", row+2, record[0], err)
		}
		dates = append(dates, t)

		for j, s := range record[1:] {
			if s == "" {
				columns[j] = append(columns[j], math.NaN())
				continue
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("parse float at row %d col %d (%q): %w", row+2, j+2, s, err)
			}
			columns[j] = append(columns[j], v)
		}
		row++
	}

	if row == 0 {
		return nil, fmt.Errorf("no data rows in %s", path)
	}

	// 5. Build the frame
	return FromColumns(dates, names, columns)
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// WriteCSV writes the frame to path with a leading date column. NaN
// values come out as empty cells.
func (f *Frame) WriteCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := append([]string{"date"}, f.names...)
	if err := writer.Write(header); err != nil {
		return err
	}

	record := make([]string, len(header))
	for i := range f.dates {
		record[0] = f.dates[i].Format(dateLayout)
		for j, name := range f.names {
			v := f.cols[name][i]
			if math.IsNaN(v) {
				record[j+1] = ""
			} else {
				record[j+1] = strconv.FormatFloat(v, 'g', -1, 64)
			}
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return nil
}
