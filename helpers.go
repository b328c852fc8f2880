package main

import (
	"strings"
	"time"
)

// monthSpan returns the ISO dates of the first and last day of a month.
// Both endpoints must name real days or the archive returns nothing, so the
// last day follows the calendar, leap years included.
func monthSpan(year, month int) (string, string) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format("2006-01-02"), last.Format("2006-01-02")
}

// csvFileName derives the export file name from a station display name.
func csvFileName(stationName string) string {
	return strings.ToLower(strings.ReplaceAll(stationName, " ", "-")) + ".csv"
}

// sweepMonths lists every (year, month) from the archive start through the
// month before now, in chronological order.
func sweepMonths(startYear int, now time.Time) []YearMonth {
	var months []YearMonth
	for year := startYear; year <= now.Year(); year++ {
		for month := 1; month <= 12; month++ {
			if year == now.Year() && month >= int(now.Month()) {
				break
			}
			months = append(months, YearMonth{Year: year, Month: month})
		}
	}
	return months
}
