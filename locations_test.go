package main

import (
	"context"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gasperk/meteoarhiv/testdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSweepDirectory_mergesMonths(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// One month has no archive data; it must be skipped, not fatal.
		if strings.HasPrefix(r.URL.Query().Get("d1"), "2022-03") {
			http.NotFound(w, r)
			return
		}
		w.Write(testdata.Locations(t))
	}))

	now := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	dir, err := sweepDirectory(context.Background(), client, 2022, now, zap.NewNop())
	require.NoError(t, err)

	require.Equal(t, 3, dir.Len())
	record := dir.records[1639]
	require.NotNil(t, record)
	assert.Equal(t, "LENDAVA", record.Name)
	assert.Len(t, record.YearMonths, 11, "the absent month must not be recorded")
	assert.Equal(t, YearMonth{2022, 1}, record.YearMonths[0])
	assert.NotContains(t, record.YearMonths, YearMonth{2022, 3})
}

func TestDirectory_saveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	dir := &Directory{records: map[int]*LocationRecord{
		1639: {Name: "LENDAVA", Lon: 16.4497, Lat: 46.5525, Alt: 189, YearMonths: yearMonths(1961, 1, 3)},
		3001: {Name: "KREDARICA", Lat: 46.3788, Alt: 2513.6, YearMonths: yearMonths(1961, 2, 2)},
	}}

	path := filepath.Join(t.TempDir(), "locations_all.json")
	require.NoError(t, dir.save(path))

	loaded, err := loadDirectory(path)
	require.NoError(t, err)
	assert.Equal(t, dir.records, loaded.records)
}

func TestLoadDirectory_missingFile(t *testing.T) {
	t.Parallel()

	_, err := loadDirectory(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestOpenDirectory_sweepsOnceThenLoads(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(testdata.Locations(t))
	}))

	cfg := &Config{}
	cfg.Directory.Path = filepath.Join(t.TempDir(), "locations_all.json")
	cfg.Directory.SweepStart = time.Now().Year() - 1 // keep the sweep short

	first, err := openDirectory(context.Background(), client, cfg, false, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, 3, first.Len())
	sweepHits := hits.Load()
	require.Positive(t, sweepHits)

	second, err := openDirectory(context.Background(), client, cfg, false, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, first.records, second.records)
	assert.Equal(t, sweepHits, hits.Load(), "second run must load the artifact, not re-sweep")

	_, err = openDirectory(context.Background(), client, cfg, true, zap.NewNop())
	require.NoError(t, err)
	assert.Greater(t, hits.Load(), sweepHits, "force refresh must re-sweep")
}

func TestDirectory_resolveUnknownName(t *testing.T) {
	t.Parallel()

	dir := &Directory{records: map[int]*LocationRecord{
		1639: {Name: "LENDAVA", YearMonths: yearMonths(1961, 1, 2)},
	}}

	assert.Empty(t, dir.Resolve("NEZNANO"))

	_, ok := dir.Metadata("NEZNANO")
	assert.False(t, ok)
}
