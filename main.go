package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"
)

// defaultStation is the station fetched when none is named, as it appears
// on the meteo.si station map (https://meteo.arso.gov.si/met/sl/archive/).
// Non-ASCII names are stored corrupted by the archive itself, e.g.
// "Bohinjska Češnjica" is recorded as "BOHINJSKA ÄŒEÅ NJICA"; pass the
// corrupted form.
const defaultStation = "LENDAVA"

func main() {
	stationFlag := flag.String("station", "", "station name as recorded by the archive")
	refreshFlag := flag.Bool("refresh-locations", false, "re-sweep the archive even if the location directory file exists")
	noTableFlag := flag.Bool("no-table", false, "skip the console table")
	noCSVFlag := flag.Bool("no-csv", false, "skip the CSV export")
	noWeatherboxFlag := flag.Bool("no-weatherbox", false, "skip the weatherbox wikitext")
	flagNoColor := flag.Bool("no-color", false, "disable color output")
	workersFlag := flag.Int("workers", 0, "override the fetch worker count")
	verboseFlag := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	if *flagNoColor {
		color.NoColor = true // disables colorized output globally
	}

	logger := newLogger(*verboseFlag)
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg := loadConfig()
	if *workersFlag > 0 {
		cfg.Fetch.Workers = *workersFlag
	}

	stationName := *stationFlag
	if stationName == "" && flag.NArg() > 0 {
		stationName = flag.Arg(0)
	}
	if stationName == "" {
		stationName = defaultStation
	}

	ctx := context.Background()

	catalog, err := loadCatalog()
	if err != nil {
		logger.Fatal("failed to load parameter catalog", zap.Error(err))
	}

	transport := newCachingTransport(cfg.Cache.Dir, cfg.Cache.TTL, nil, logger)
	client := newArchiveClient(cfg, transport, logger)

	directory, err := openDirectory(ctx, client, cfg, *refreshFlag, logger)
	if err != nil {
		logger.Fatal("failed to open location directory", zap.Error(err))
	}

	items := directory.Resolve(stationName)
	if len(items) == 0 {
		logger.Fatal("station not found in the directory; names are matched exactly as the archive records them",
			zap.String("station", stationName),
			zap.Int("known_stations", directory.Len()))
	}
	meta, _ := directory.Metadata(stationName)
	logger.Info("station resolved",
		zap.String("station", stationName),
		zap.Int("months", len(items)),
		zap.Float64("altitude", meta.Alt))

	raw, err := fetchStationData(ctx, client, items, catalog.VariableIDs(), cfg.Fetch.Workers, logger)
	if err != nil {
		logger.Fatal("failed to fetch station data", zap.Error(err))
	}

	table := buildStationTable(raw, catalog.Names())
	if len(table.Rows) == 0 {
		logger.Fatal("archive returned no usable data for station", zap.String("station", stationName))
	}

	if !*noTableFlag {
		printStationTable(os.Stdout, table, catalog.Labels(cfg.Language))
	}

	if !*noCSVFlag {
		path := csvFileName(stationName)
		if err := writeStationCSV(table, path); err != nil {
			logger.Fatal("failed to export CSV", zap.Error(err))
		}
		logger.Info("CSV exported", zap.String("path", path))
	}

	if !*noWeatherboxFlag {
		agg := aggregateStationTable(table, catalog.Aggregations())
		fmt.Print(formatWeatherbox(table, agg, meta, catalog.WeatherboxUnits(), time.Now()))
	}
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
