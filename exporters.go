package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// exportStationCSV serializes the table as UTF-8 CSV, keeping the two-level
// (year, month) index as the leading columns. Missing cells stay empty.
func exportStationCSV(table StationTable, w io.Writer) error {
	writer := csv.NewWriter(w)

	header := append([]string{"year", "month"}, table.Columns...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, row := range table.Rows {
		record := make([]string, 0, len(header))
		record = append(record, strconv.Itoa(row.Year), strconv.Itoa(row.Month))
		for _, cell := range row.Cells {
			if cell == nil {
				record = append(record, "")
				continue
			}
			record = append(record, strconv.FormatFloat(*cell, 'f', -1, 64))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing CSV row %s: %w", row.YearMonth, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// writeStationCSV exports the table to a file named after the station.
func writeStationCSV(table StationTable, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating CSV file: %w", err)
	}
	defer f.Close()
	if err := exportStationCSV(table, f); err != nil {
		return err
	}
	return f.Close()
}

// parseStationCSV reads a table back from its CSV form. The round trip
// through exportStationCSV preserves the index and every numeric value.
func parseStationCSV(r io.Reader) (StationTable, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return StationTable{}, fmt.Errorf("parsing CSV: %w", err)
	}
	if len(records) == 0 || len(records[0]) < 2 {
		return StationTable{}, fmt.Errorf("CSV has no year/month index")
	}

	table := StationTable{Columns: records[0][2:]}
	for _, record := range records[1:] {
		year, err := strconv.Atoi(record[0])
		if err != nil {
			return StationTable{}, fmt.Errorf("bad year %q: %w", record[0], err)
		}
		month, err := strconv.Atoi(record[1])
		if err != nil {
			return StationTable{}, fmt.Errorf("bad month %q: %w", record[1], err)
		}
		row := TableRow{YearMonth: YearMonth{Year: year, Month: month}}
		for _, field := range record[2:] {
			if field == "" {
				row.Cells = append(row.Cells, nil)
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return StationTable{}, fmt.Errorf("bad cell %q: %w", field, err)
			}
			row.Cells = append(row.Cells, &v)
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}
