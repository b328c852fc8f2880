package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthSpan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		year  int
		month int
		first string
		last  string
	}{
		{2023, 1, "2023-01-01", "2023-01-31"},
		{2023, 2, "2023-02-01", "2023-02-28"},
		{2024, 2, "2024-02-01", "2024-02-29"},
		{2000, 2, "2000-02-01", "2000-02-29"},
		{1900, 2, "1900-02-01", "1900-02-28"},
		{1948, 4, "1948-04-01", "1948-04-30"},
		{2023, 12, "2023-12-01", "2023-12-31"},
	}

	for _, tt := range tests {
		first, last := monthSpan(tt.year, tt.month)
		assert.Equal(t, tt.first, first)
		assert.Equal(t, tt.last, last)
	}
}

func TestCSVFileName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "lendava.csv", csvFileName("LENDAVA"))
	assert.Equal(t, "murska-sobota.csv", csvFileName("MURSKA SOBOTA"))
}

func TestSweepMonths(t *testing.T) {
	t.Parallel()

	now := time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC)
	months := sweepMonths(2022, now)

	// All of 2022 plus January and February 2023.
	assert.Len(t, months, 14)
	assert.Equal(t, YearMonth{Year: 2022, Month: 1}, months[0])
	assert.Equal(t, YearMonth{Year: 2023, Month: 2}, months[len(months)-1])
}

func TestYearMonthCompare(t *testing.T) {
	t.Parallel()

	assert.Negative(t, YearMonth{1961, 12}.Compare(YearMonth{1962, 1}))
	assert.Positive(t, YearMonth{1962, 2}.Compare(YearMonth{1962, 1}))
	assert.Zero(t, YearMonth{1962, 1}.Compare(YearMonth{1962, 1}))
}
