package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// Directory is the universe of every station id the archive ever listed.
// The archive has no "list all stations" endpoint, so the universe is
// reconstructed by sweeping the locations endpoint month by month from the
// start of the digital archive, and persisted so later runs skip the sweep.
type Directory struct {
	records map[int]*LocationRecord
}

// openDirectory loads the persisted directory, or performs the full
// historical sweep and persists the result. forceRefresh re-sweeps even
// when the artifact exists; historical data rarely changes, so the file
// going stale is otherwise accepted. There is no partial-sweep resume: a
// failed sweep starts over.
func openDirectory(ctx context.Context, client *archiveClient, cfg *Config, forceRefresh bool, logger *zap.Logger) (*Directory, error) {
	if !forceRefresh {
		dir, err := loadDirectory(cfg.Directory.Path)
		if err == nil {
			logger.Info("location directory loaded",
				zap.String("path", cfg.Directory.Path),
				zap.Int("stations", len(dir.records)))
			return dir, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	dir, err := sweepDirectory(ctx, client, cfg.Directory.SweepStart, time.Now(), logger)
	if err != nil {
		return nil, err
	}
	if err := dir.save(cfg.Directory.Path); err != nil {
		return nil, err
	}
	logger.Info("location directory persisted",
		zap.String("path", cfg.Directory.Path),
		zap.Int("stations", len(dir.records)))
	return dir, nil
}

// sweepDirectory walks every month of the archive and merges the stations
// each month reports into one record per id. Months the archive has
// nothing for are skipped, not fatal.
func sweepDirectory(ctx context.Context, client *archiveClient, startYear int, now time.Time, logger *zap.Logger) (*Directory, error) {
	months := sweepMonths(startYear, now)
	logger.Info("sweeping archive for station universe",
		zap.Int("start_year", startYear),
		zap.Int("months", len(months)))

	bar := progressbar.Default(int64(len(months)), "sweeping locations")
	dir := &Directory{records: make(map[int]*LocationRecord)}
	for _, ym := range months {
		stations, err := client.fetchLocations(ctx, ym)
		if err != nil {
			return nil, fmt.Errorf("sweep failed at %s: %w", ym, err)
		}
		for id, point := range stations {
			if record, ok := dir.records[id]; ok {
				record.YearMonths = append(record.YearMonths, ym)
				continue
			}
			dir.records[id] = &LocationRecord{
				Name:       point.Name,
				Lon:        point.Lon,
				Lat:        point.Lat,
				Alt:        point.Alt,
				YearMonths: []YearMonth{ym},
			}
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	return dir, nil
}

// loadDirectory reads the persisted station universe, keyed by station id.
func loadDirectory(path string) (*Directory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	keyed := make(map[string]*LocationRecord)
	if err := json.Unmarshal(raw, &keyed); err != nil {
		return nil, fmt.Errorf("parsing location directory %s: %w", path, err)
	}
	dir := &Directory{records: make(map[int]*LocationRecord, len(keyed))}
	for key, record := range keyed {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("location directory %s has bad station id %q", path, key)
		}
		dir.records[id] = record
	}
	return dir, nil
}

func (d *Directory) save(path string) error {
	keyed := make(map[string]*LocationRecord, len(d.records))
	for id, record := range d.records {
		keyed[strconv.Itoa(id)] = record
	}
	raw, err := json.Marshal(keyed)
	if err != nil {
		return fmt.Errorf("encoding location directory: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("writing location directory: %w", err)
	}
	return nil
}

// Len reports the number of distinct station ids ever observed.
func (d *Directory) Len() int { return len(d.records) }

// Resolve returns one work item per historical month the display name was
// active, covering every id the name was ever assigned. Matching is exact
// string equality; the source data is known to mangle non-ASCII names and
// that is deliberately left alone.
func (d *Directory) Resolve(name string) []WorkItem {
	var items []WorkItem
	for id, record := range d.records {
		if record.Name != name {
			continue
		}
		for _, ym := range record.YearMonths {
			items = append(items, WorkItem{StationID: id, YearMonth: ym})
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].YearMonth.Compare(items[j].YearMonth) < 0
	})
	return items
}

// Metadata averages coordinates and altitude over every record matching the
// display name. Reports false when the name is unknown.
func (d *Directory) Metadata(name string) (StationMeta, bool) {
	meta := StationMeta{Name: name}
	count := 0
	for _, record := range d.records {
		if record.Name != name {
			continue
		}
		meta.Lon += record.Lon
		meta.Lat += record.Lat
		meta.Alt += record.Alt
		count++
	}
	if count == 0 {
		return StationMeta{}, false
	}
	meta.Lon /= float64(count)
	meta.Lat /= float64(count)
	meta.Alt /= float64(count)
	return meta, true
}
