package main

import (
	"embed"
)

//go:embed assets/vars.csv
var embeddedFiles embed.FS

// embeddedVarsCSV returns the static parameter table shipped with the
// binary.
func embeddedVarsCSV() ([]byte, error) {
	return embeddedFiles.ReadFile("assets/vars.csv")
}
