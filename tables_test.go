package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"
)

var tableColumnOrder = []string{"tpov", "padavine", "sonce", "veter"}

func sampleRawData() map[YearMonth]Observation {
	return map[YearMonth]Observation{
		{1962, 1}: {
			"tpov":     StringValue("-1.5"),
			"padavine": StringValue("42"),
			"sonce":    StringValue("x"), // non-numeric, coerces to missing
		},
		{1961, 1}: {
			"tpov":     NumberValue(0.5),
			"padavine": StringValue("57.3"),
			"sonce":    StringValue(""),
		},
		{1961, 2}: {
			// Entirely non-numeric row, dropped after column drops.
			"tpov":     StringValue("n/a"),
			"padavine": MissingValue(),
			"sonce":    StringValue(""),
		},
		{1961, 3}: nil, // absent month, never a row
	}
}

func TestBuildStationTable(t *testing.T) {
	t.Parallel()

	table := buildStationTable(sampleRawData(), tableColumnOrder)

	// "sonce" never coerces to a number and "veter" never appears, so only
	// two columns survive; the all-missing February row goes with them.
	assert.Equal(t, []string{"tpov", "padavine"}, table.Columns)
	require.Len(t, table.Rows, 2)

	assert.Equal(t, YearMonth{1961, 1}, table.Rows[0].YearMonth)
	assert.Equal(t, YearMonth{1962, 1}, table.Rows[1].YearMonth)

	assert.Equal(t, []*float64{ptr.To(0.5), ptr.To(57.3)}, table.Rows[0].Cells)
	assert.Equal(t, []*float64{ptr.To(-1.5), ptr.To(42.0)}, table.Rows[1].Cells)
}

func TestBuildStationTable_idempotent(t *testing.T) {
	t.Parallel()

	first := buildStationTable(sampleRawData(), tableColumnOrder)
	second := buildStationTable(sampleRawData(), tableColumnOrder)
	assert.Equal(t, first, second)
}

func TestBuildStationTable_empty(t *testing.T) {
	t.Parallel()

	table := buildStationTable(map[YearMonth]Observation{}, tableColumnOrder)
	assert.Empty(t, table.Columns)
	assert.Empty(t, table.Rows)
}

func TestAggregateStationTable_sumTreatsMissingAsZero(t *testing.T) {
	t.Parallel()

	table := StationTable{
		Columns: []string{"padavine"},
		Rows: []TableRow{
			{YearMonth: YearMonth{1961, 1}, Cells: []*float64{ptr.To(10.0)}},
			{YearMonth: YearMonth{1962, 1}, Cells: []*float64{nil}},
		},
	}

	agg := aggregateStationTable(table, map[string]string{"padavine": "sum"})

	require.Equal(t, []int{1}, agg.Months)
	value, ok := agg.Cell(1, "padavine")
	require.True(t, ok)
	assert.Equal(t, 10.0, value)
}

func TestAggregateStationTable_reductions(t *testing.T) {
	t.Parallel()

	table := StationTable{
		Columns: []string{"tpov", "tmax_abs", "tmin_abs"},
		Rows: []TableRow{
			{YearMonth: YearMonth{1961, 7}, Cells: []*float64{ptr.To(19.456), ptr.To(33.1), ptr.To(8.2)}},
			{YearMonth: YearMonth{1962, 7}, Cells: []*float64{ptr.To(21.0), ptr.To(35.6), ptr.To(6.4)}},
		},
	}
	aggs := map[string]string{"tpov": "mean", "tmax_abs": "max", "tmin_abs": "min"}

	agg := aggregateStationTable(table, aggs)

	mean, _ := agg.Cell(7, "tpov")
	assert.Equal(t, 20.23, mean, "mean rounds to 2 decimals")
	max, _ := agg.Cell(7, "tmax_abs")
	assert.Equal(t, 35.6, max)
	min, _ := agg.Cell(7, "tmin_abs")
	assert.Equal(t, 6.4, min)
}

func TestAggregateStationTable_fillsEmptyGroupsWithZero(t *testing.T) {
	t.Parallel()

	table := StationTable{
		Columns: []string{"tpov", "padavine"},
		Rows: []TableRow{
			{YearMonth: YearMonth{1961, 1}, Cells: []*float64{ptr.To(1.0), nil}},
		},
	}
	aggs := map[string]string{"tpov": "mean", "padavine": "mean"}

	agg := aggregateStationTable(table, aggs)

	value, ok := agg.Cell(1, "padavine")
	require.True(t, ok)
	assert.Zero(t, value)
}

func TestAggregateStationTable_restrictedToTableColumns(t *testing.T) {
	t.Parallel()

	table := StationTable{
		Columns: []string{"tpov"},
		Rows: []TableRow{
			{YearMonth: YearMonth{1961, 1}, Cells: []*float64{ptr.To(1.0)}},
		},
	}
	aggs := map[string]string{"tpov": "mean", "padavine": "sum", "veter": "bogus"}

	agg := aggregateStationTable(table, aggs)

	assert.Equal(t, []AggregateColumn{{Name: "tpov", Aggregation: "mean"}}, agg.Columns)
}
