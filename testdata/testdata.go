package testdata

import (
	"embed"
	"testing"

	"github.com/stretchr/testify/require"
)

//go:embed *.xml
var data embed.FS

func read(t *testing.T, path string) []byte {
	t.Helper()
	raw, err := data.ReadFile(path)
	require.NoError(t, err)
	return raw
}

// Locations is a captured locations.xml response for one month.
func Locations(t *testing.T) []byte {
	return read(t, "locations.xml")
}

// Monthly is a captured data.xml response for one station-month.
func Monthly(t *testing.T) []byte {
	return read(t, "monthly.xml")
}
