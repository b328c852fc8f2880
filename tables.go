package main

import (
	"math"
	"sort"
)

// buildStationTable reshapes the orchestrator's keyed output into the
// cleaned time series: rows sorted by (year, month), columns taken in
// catalog order, all-missing columns dropped first and then all-missing
// rows, every surviving cell coerced to a number. Non-numeric content
// becomes missing, never an error. The result depends only on the input
// mapping, so building twice yields identical tables.
func buildStationTable(raw map[YearMonth]Observation, columnOrder []string) StationTable {
	yms := make([]YearMonth, 0, len(raw))
	for ym, obs := range raw {
		if obs != nil {
			yms = append(yms, ym)
		}
	}
	sort.Slice(yms, func(i, j int) bool { return yms[i].Compare(yms[j]) < 0 })

	// Candidate columns: catalog order, restricted to names that appear.
	seen := make(map[string]bool)
	for _, ym := range yms {
		for name := range raw[ym] {
			seen[name] = true
		}
	}
	var candidates []string
	for _, name := range columnOrder {
		if seen[name] {
			candidates = append(candidates, name)
		}
	}

	// Coerce every cell up front so column and row drops agree on what is
	// missing.
	cells := make([][]*float64, len(yms))
	for i, ym := range yms {
		row := make([]*float64, len(candidates))
		for j, name := range candidates {
			if value, ok := raw[ym][name]; ok {
				if f, numeric := value.Float(); numeric {
					v := f
					row[j] = &v
				}
			}
		}
		cells[i] = row
	}

	// Drop columns that are missing in every row.
	var keep []int
	for j := range candidates {
		for i := range cells {
			if cells[i][j] != nil {
				keep = append(keep, j)
				break
			}
		}
	}

	table := StationTable{Columns: make([]string, len(keep))}
	for k, j := range keep {
		table.Columns[k] = candidates[j]
	}

	// Then drop rows that are missing in every kept column.
	for i, ym := range yms {
		row := TableRow{YearMonth: ym, Cells: make([]*float64, len(keep))}
		empty := true
		for k, j := range keep {
			row.Cells[k] = cells[i][j]
			if row.Cells[k] != nil {
				empty = false
			}
		}
		if !empty {
			table.Rows = append(table.Rows, row)
		}
	}
	return table
}

// aggregateFuncs are the reductions the catalog may name. They see only the
// non-missing values of a group.
var aggregateFuncs = map[string]func([]float64) float64{
	"mean": func(vs []float64) float64 {
		sum := 0.0
		for _, v := range vs {
			sum += v
		}
		return sum / float64(len(vs))
	},
	"sum": func(vs []float64) float64 {
		sum := 0.0
		for _, v := range vs {
			sum += v
		}
		return sum
	},
	"max": func(vs []float64) float64 {
		m := vs[0]
		for _, v := range vs[1:] {
			if v > m {
				m = v
			}
		}
		return m
	},
	"min": func(vs []float64) float64 {
		m := vs[0]
		for _, v := range vs[1:] {
			if v < m {
				m = v
			}
		}
		return m
	},
}

// aggregateStationTable groups the table by calendar month across all years
// and reduces each column with its configured function, restricted to
// columns the table actually has. Groups with no values at all come out as
// zero; that fill can understate sum columns when many months are missing,
// which is accepted, documented behavior. Results are rounded to 2
// decimals.
func aggregateStationTable(table StationTable, aggregations map[string]string) AggregateTable {
	var agg AggregateTable
	for _, name := range table.Columns {
		fn, ok := aggregations[name]
		if !ok {
			continue
		}
		if _, known := aggregateFuncs[fn]; !known {
			continue
		}
		agg.Columns = append(agg.Columns, AggregateColumn{Name: name, Aggregation: fn})
	}

	monthSeen := make(map[int]bool)
	for _, row := range table.Rows {
		monthSeen[row.Month] = true
	}
	for month := 1; month <= 12; month++ {
		if monthSeen[month] {
			agg.Months = append(agg.Months, month)
		}
	}

	columnIndex := make(map[string]int, len(table.Columns))
	for i, name := range table.Columns {
		columnIndex[name] = i
	}

	agg.Values = make([][]float64, len(agg.Months))
	for i, month := range agg.Months {
		agg.Values[i] = make([]float64, len(agg.Columns))
		for j, column := range agg.Columns {
			var group []float64
			for _, row := range table.Rows {
				if row.Month != month {
					continue
				}
				if cell := row.Cells[columnIndex[column.Name]]; cell != nil {
					group = append(group, *cell)
				}
			}
			if len(group) == 0 {
				// Missing after aggregation is filled with zero.
				continue
			}
			agg.Values[i][j] = round2(aggregateFuncs[column.Aggregation](group))
		}
	}
	return agg
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
