package main

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Color definitions using fatih/color
var (
	labelColor   = color.New(color.FgCyan)
	valueColor   = color.New(color.FgWhite)
	headerColor  = color.New(color.FgBlue)
	numberColor  = color.New(color.FgGreen)
	missingColor = color.New(color.FgYellow)
)

const weatherboxSource = "National Meteorological Service of Slovenia – Archive"
const weatherboxCiteTitle = "meteo.si - Uradna vremenska napoved za Slovenijo - Državna meteorološka služba RS - Državna meteorološka služba"

// formatWeatherbox renders the aggregated table as a wiki-markup weatherbox
// block. Only columns with a weatherbox unit mapping are emitted, one line
// per month each, using the template's 3-letter month abbreviations. The
// header carries the station name, rounded altitude, the year range the
// table covers, and a citation dated now.
func formatWeatherbox(table StationTable, agg AggregateTable, meta StationMeta, units map[string]string, now time.Time) string {
	var b strings.Builder

	b.WriteString("{{Weatherbox\n")
	if len(table.Rows) > 0 {
		fmt.Fprintf(&b, "| location = %s (%dm elev.) [%d-%d]\n",
			meta.Name,
			int(math.Round(meta.Alt)),
			table.Rows[0].Year,
			table.Rows[len(table.Rows)-1].Year)
	} else {
		fmt.Fprintf(&b, "| location = %s (%dm elev.)\n", meta.Name, int(math.Round(meta.Alt)))
	}
	fmt.Fprintf(&b, "| source = %s<ref>{{Cite web |title=%s |url=https://meteo.arso.gov.si/ |access-date=%s |website=meteo.arso.gov.si}}</ref>\n",
		weatherboxSource, weatherboxCiteTitle, now.Format("2006-01-02"))
	b.WriteString(`| width = auto
| metric first = yes
| single line  = true
| unit rain days = 0.1 mm
| unit snow days = 0.1 mm
| unit precipitation days = 0.1 mm
`)

	for j, column := range agg.Columns {
		field, ok := units[column.Name]
		if !ok {
			continue
		}
		for i, month := range agg.Months {
			fmt.Fprintf(&b, "| %s %s = %s\n", monthAbbr(month), field, formatCell(agg.Values[i][j]))
		}
	}

	b.WriteString("}}\n")
	return b.String()
}

// formatCell renders an aggregated value the way the weatherbox expects it.
func formatCell(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// printStationTable writes a colored console rendering of the cleaned
// table: localized column labels where the catalog has them, one row per
// (year, month), dashes for missing cells.
func printStationTable(w io.Writer, table StationTable, labels map[string]string) {
	if len(table.Rows) == 0 {
		fmt.Fprintln(w, "no data")
		return
	}

	headerColor.Fprintf(w, "%-9s", "month")
	for _, name := range table.Columns {
		label := name
		if l, ok := labels[name]; ok {
			label = l
		}
		headerColor.Fprintf(w, " %18s", truncateLabel(label, 18))
	}
	fmt.Fprintln(w)

	for _, row := range table.Rows {
		labelColor.Fprintf(w, "%-9s", row.YearMonth)
		for _, cell := range row.Cells {
			if cell == nil {
				missingColor.Fprintf(w, " %18s", "-")
				continue
			}
			numberColor.Fprintf(w, " %18s", strconv.FormatFloat(*cell, 'f', -1, 64))
		}
		fmt.Fprintln(w)
	}

	labelColor.Fprint(w, "rows: ")
	valueColor.Fprintf(w, "%d", len(table.Rows))
	labelColor.Fprint(w, "  columns: ")
	valueColor.Fprintf(w, "%d", len(table.Columns))
	labelColor.Fprint(w, "  span: ")
	valueColor.Fprintf(w, "%s to %s\n", table.Rows[0].YearMonth, table.Rows[len(table.Rows)-1].YearMonth)
}

func truncateLabel(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
