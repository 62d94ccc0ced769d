package appstore

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Daily SUMMARY sales reports are tab-separated with a fixed column
// layout; the header row names the columns but the positions are stable,
// so rows are read by offset rather than by header lookup.
const (
	colUnits             = 7
	colDeveloperProceeds = 8
)

// parseSalesReport gunzips a daily sales report and totals units and
// developer proceeds across all rows.
func parseSalesReport(r io.Reader) (units, proceeds float64, err error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return 0, 0, fmt.Errorf("appstore: opening gzip report: %w", err)
	}
	defer gz.Close()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			first = false
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) <= colDeveloperProceeds {
			continue
		}

		u, err := strconv.ParseFloat(strings.TrimSpace(fields[colUnits]), 64)
		if err != nil {
			continue
		}
		p, err := strconv.ParseFloat(strings.TrimSpace(fields[colDeveloperProceeds]), 64)
		if err != nil {
			continue
		}

		units += u
		// Proceeds are per-unit in the report, so each row contributes
		// proceeds * units.
		proceeds += p * u
	}
	if err := scanner.Err(); err != nil {
		return 0, 0, fmt.Errorf("appstore: reading report: %w", err)
	}

	return units, proceeds, nil
}
