package main

import (
	"fmt"
	"strconv"
	"time"
)

// archiveStartYear is the first year covered by the digital archive. The
// locations endpoint returns nothing before it.
const archiveStartYear = 1948

// YearMonth identifies one calendar month in the archive.
type YearMonth struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

// Compare orders year-months chronologically.
func (ym YearMonth) Compare(other YearMonth) int {
	if ym.Year != other.Year {
		return ym.Year - other.Year
	}
	return ym.Month - other.Month
}

// ValueKind discriminates the variants of a decoded observation cell.
type ValueKind int

const (
	ValueMissing ValueKind = iota
	ValueNumber
	ValueString
)

// Value is a decoded payload cell: a number, a string, or missing. The
// archive mixes all three freely, so cells carry their variant until the
// table builder coerces them.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
}

func NumberValue(f float64) Value { return Value{Kind: ValueNumber, Num: f} }
func StringValue(s string) Value  { return Value{Kind: ValueString, Str: s} }
func MissingValue() Value         { return Value{Kind: ValueMissing} }

// Float coerces the value to a number. Non-numeric strings, empty strings
// and missing values report false.
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case ValueNumber:
		return v.Num, true
	case ValueString:
		f, err := strconv.ParseFloat(v.Str, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// toValue maps a raw decoded payload value to its tagged variant.
func toValue(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return MissingValue()
	case float64:
		return NumberValue(v)
	case int:
		return NumberValue(float64(v))
	case int64:
		return NumberValue(float64(v))
	case string:
		return StringValue(v)
	case bool:
		if v {
			return NumberValue(1)
		}
		return NumberValue(0)
	default:
		return StringValue(fmt.Sprint(v))
	}
}

// Observation holds one station-month of measurements keyed by canonical
// parameter name. A nil Observation means the archive had no data for that
// month.
type Observation map[string]Value

// LocationRecord is one station id as the archive saw it: the display name,
// coordinates, and every year-month the id appeared under that name. The id
// itself is the directory key. Records sharing a name are linked only by
// name equality; the archive has no stable station key.
type LocationRecord struct {
	Name       string      `json:"name"`
	Lon        float64     `json:"lon"`
	Lat        float64     `json:"lat"`
	Alt        float64     `json:"alt"`
	YearMonths []YearMonth `json:"year_months"`
}

// WorkItem is one fetch unit: which id to ask for and which month.
type WorkItem struct {
	StationID int
	YearMonth
}

// StationMeta is the per-name metadata used by the weatherbox header,
// averaged over every id the name was assigned.
type StationMeta struct {
	Name string
	Lon  float64
	Lat  float64
	Alt  float64
}

// TableRow is one (year, month) row of a station table. Cells align with
// the table's column names; nil marks a missing measurement.
type TableRow struct {
	YearMonth
	Cells []*float64
}

// StationTable is the cleaned time series for one station name: rows sorted
// by (year, month), all-missing columns and rows dropped, every surviving
// cell numerically coerced.
type StationTable struct {
	Columns []string
	Rows    []TableRow
}

// AggregateColumn names one reduced column of an aggregate table.
type AggregateColumn struct {
	Name        string
	Aggregation string
}

// AggregateTable groups a station table by month across all years. Values
// align Months x Columns; post-aggregation gaps are filled with zero.
type AggregateTable struct {
	Columns []AggregateColumn
	Months  []int
	Values  [][]float64
}

// Cell returns the aggregated value for a month and column name.
func (a AggregateTable) Cell(month int, name string) (float64, bool) {
	col := -1
	for i, c := range a.Columns {
		if c.Name == name {
			col = i
			break
		}
	}
	if col == -1 {
		return 0, false
	}
	for i, m := range a.Months {
		if m == month {
			return a.Values[i][col], true
		}
	}
	return 0, false
}

// monthAbbr returns the English 3-letter abbreviation used by the
// weatherbox template.
func monthAbbr(month int) string {
	return time.Month(month).String()[:3]
}
