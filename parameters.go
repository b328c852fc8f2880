package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
)

// Parameter describes one measured quantity: the archive's numeric variable
// id, the canonical name the rest of the pipeline keys on, localized display
// labels, the weatherbox template field it feeds (if any), and the reduction
// used when collapsing years into climate normals (if any).
type Parameter struct {
	ID          int
	Name        string
	Labels      map[string]string
	Weatherbox  string
	Aggregation string
}

// Catalog is the static parameter table, loaded once from the embedded CSV
// and read-only afterward.
type Catalog struct {
	params []Parameter
	byName map[string]*Parameter
}

// loadCatalog parses the embedded variable table. Language columns are read
// from the header, so adding a language means adding a column, not code.
func loadCatalog() (*Catalog, error) {
	raw, err := embeddedVarsCSV()
	if err != nil {
		return nil, fmt.Errorf("reading embedded parameter table: %w", err)
	}
	return parseCatalog(raw)
}

func parseCatalog(raw []byte) (*Catalog, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing parameter table: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("parameter table has no rows")
	}

	header := records[0]
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"pid", "name", "weatherbox", "aggregation"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("parameter table is missing the %q column", required)
		}
	}

	// Everything that is not a fixed column is a language label column.
	fixed := map[string]bool{"pid": true, "name": true, "weatherbox": true, "aggregation": true}
	var langs []string
	for _, name := range header {
		if !fixed[name] {
			langs = append(langs, name)
		}
	}

	catalog := &Catalog{byName: make(map[string]*Parameter, len(records)-1)}
	for _, record := range records[1:] {
		id, err := strconv.Atoi(record[col["pid"]])
		if err != nil {
			return nil, fmt.Errorf("parameter table has bad pid %q: %w", record[col["pid"]], err)
		}
		p := Parameter{
			ID:          id,
			Name:        record[col["name"]],
			Labels:      make(map[string]string, len(langs)),
			Weatherbox:  record[col["weatherbox"]],
			Aggregation: record[col["aggregation"]],
		}
		for _, lang := range langs {
			if label := record[col[lang]]; label != "" {
				p.Labels[lang] = label
			}
		}
		if _, dup := catalog.byName[p.Name]; dup {
			return nil, fmt.Errorf("parameter table repeats name %q", p.Name)
		}
		catalog.params = append(catalog.params, p)
		catalog.byName[p.Name] = &catalog.params[len(catalog.params)-1]
	}
	return catalog, nil
}

// VariableIDs lists every variable id in table order, ready for the data
// endpoint's vars argument.
func (c *Catalog) VariableIDs() []int {
	ids := make([]int, len(c.params))
	for i, p := range c.params {
		ids[i] = p.ID
	}
	return ids
}

// Names lists every canonical parameter name in table order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.params))
	for i, p := range c.params {
		names[i] = p.Name
	}
	return names
}

// WeatherboxUnits maps parameter names to their weatherbox template fields,
// restricted to parameters that have one.
func (c *Catalog) WeatherboxUnits() map[string]string {
	units := make(map[string]string)
	for _, p := range c.params {
		if p.Weatherbox != "" {
			units[p.Name] = p.Weatherbox
		}
	}
	return units
}

// Aggregations maps parameter names to their reduction function names,
// restricted to parameters that have one.
func (c *Catalog) Aggregations() map[string]string {
	aggs := make(map[string]string)
	for _, p := range c.params {
		if p.Aggregation != "" {
			aggs[p.Name] = p.Aggregation
		}
	}
	return aggs
}

// Labels maps parameter names to display labels for one language,
// restricted to parameters labeled in that language.
func (c *Catalog) Labels(lang string) map[string]string {
	labels := make(map[string]string)
	for _, p := range c.params {
		if label, ok := p.Labels[lang]; ok {
			labels[p.Name] = label
		}
	}
	return labels
}
