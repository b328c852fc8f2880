package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// fetchResult is what one completed request produced. A non-success status
// still lands here, not in an error: the archive answers 404 for any month
// it has nothing for, and the pipeline maps that to "no data for this
// unit". Only transport-level trouble is an error, so the circuit breaker
// counts real outages, not empty months.
type fetchResult struct {
	body   []byte
	status int
}

// archiveClient talks to the webmet archive endpoints. Requests go through
// the caching transport, a bounded exponential-backoff retry and a circuit
// breaker; the archive design itself had no retry, so treat the retry as a
// quality improvement, not a contract.
type archiveClient struct {
	http       *http.Client
	baseURL    string
	language   string
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
	maxRetries int
	retryDelay time.Duration
	multiplier float64
}

func newArchiveClient(cfg *Config, transport http.RoundTripper, logger *zap.Logger) *archiveClient {
	breakerSettings := gobreaker.Settings{
		Name:        "webmet-archive",
		MaxRequests: 1,
		Timeout:     cfg.Fetch.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				zap.String("client", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &archiveClient{
		http: &http.Client{
			Timeout:   cfg.Fetch.Timeout,
			Transport: transport,
		},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		language:   cfg.Language,
		breaker:    gobreaker.NewCircuitBreaker(breakerSettings),
		logger:     logger,
		maxRetries: cfg.Fetch.MaxRetries,
		retryDelay: cfg.Fetch.RetryDelay,
		multiplier: cfg.Fetch.Multiplier,
	}
}

// get fetches one archive document. A non-success status after retries
// reports ok=false with a nil error; only transport-level trouble is an
// error.
func (c *archiveClient) get(ctx context.Context, path string, query url.Values) ([]byte, bool, error) {
	requestURL := c.baseURL + path + "?" + query.Encode()

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doGetWithRetry(ctx, requestURL)
	})
	if err != nil {
		return nil, false, err
	}

	fetched := result.(*fetchResult)
	if fetched.status < 200 || fetched.status >= 300 {
		c.logger.Debug("archive has no data for request",
			zap.String("url", requestURL),
			zap.Int("status", fetched.status))
		return nil, false, nil
	}
	return fetched.body, true, nil
}

func (c *archiveClient) doGetWithRetry(ctx context.Context, requestURL string) (*fetchResult, error) {
	var lastErr error
	var lastStatus int

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(float64(c.retryDelay) * math.Pow(c.multiplier, float64(attempt-1)))
			c.logger.Debug("retrying request",
				zap.String("url", requestURL),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay))

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request failed: %w", err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			c.logger.Warn("HTTP request failed",
				zap.String("url", requestURL),
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				lastErr = err
				continue
			}
			return &fetchResult{body: body, status: resp.StatusCode}, nil
		}

		resp.Body.Close()
		lastStatus = resp.StatusCode

		// Client errors are definitive; only server trouble and rate
		// limiting are worth another attempt.
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			break
		}
	}

	if lastStatus != 0 {
		return &fetchResult{status: lastStatus}, nil
	}
	return nil, lastErr
}

// stationPoint is one station as the locations endpoint reports it for a
// single month.
type stationPoint struct {
	Name string
	Lon  float64
	Lat  float64
	Alt  float64
}

// fetchLocations lists the stations active during one month, keyed by
// station id. A nil map with a nil error means the archive had nothing for
// that month.
func (c *archiveClient) fetchLocations(ctx context.Context, ym YearMonth) (map[int]stationPoint, error) {
	d1, d2 := monthSpan(ym.Year, ym.Month)
	query := url.Values{
		"d1":   {d1},
		"d2":   {d2},
		"type": {"1,2,3"},
		"lang": {c.language},
	}

	body, ok, err := c.get(ctx, "/locations.xml", query)
	if err != nil {
		return nil, fmt.Errorf("fetching locations for %s: %w", ym, err)
	}
	if !ok {
		return nil, nil
	}

	payload, err := decodePayload(body)
	if err != nil {
		return nil, err
	}
	points, err := payloadPoints(payload)
	if err != nil {
		return nil, fmt.Errorf("locations payload for %s: %w", ym, err)
	}

	stations := make(map[int]stationPoint, len(points))
	for key, fields := range points {
		id, err := strconv.Atoi(strings.TrimPrefix(key, "_"))
		if err != nil {
			return nil, fmt.Errorf("locations payload for %s has bad point key %q", ym, key)
		}
		point := stationPoint{Name: pointString(fields["name"])}
		point.Lon, _ = toValue(fields["lon"]).Float()
		point.Lat, _ = toValue(fields["lat"]).Float()
		point.Alt, _ = toValue(fields["alt"]).Float()
		stations[id] = point
	}
	return stations, nil
}

func pointString(raw any) string {
	if s, ok := raw.(string); ok {
		return s
	}
	return fmt.Sprint(raw)
}

// fetchMonthly retrieves the monthly aggregates for one station and month.
// The response keys each value by a request-local handle ("p29", "p30", …)
// and ships its own handle-to-name table, which must be applied here: the
// handles are not stable across requests. A nil Observation with a nil
// error means the archive had no data for that station-month.
func (c *archiveClient) fetchMonthly(ctx context.Context, stationID int, ym YearMonth, vars []int) (Observation, error) {
	d1, d2 := monthSpan(ym.Year, ym.Month)
	ids := make([]string, len(vars))
	for i, id := range vars {
		ids[i] = strconv.Itoa(id)
	}
	query := url.Values{
		"vars":  {strings.Join(ids, ",")},
		"group": {"monthlyData1"},
		"type":  {"monthly"},
		"id":    {strconv.Itoa(stationID)},
		"d1":    {d1},
		"d2":    {d2},
		"lang":  {c.language},
	}

	body, ok, err := c.get(ctx, "/data.xml", query)
	if err != nil {
		return nil, fmt.Errorf("fetching data for station %d %s: %w", stationID, ym, err)
	}
	if !ok {
		return nil, nil
	}

	payload, err := decodePayload(body)
	if err != nil {
		return nil, err
	}
	points, err := payloadPoints(payload)
	if err != nil {
		return nil, fmt.Errorf("data payload for station %d %s: %w", stationID, ym, err)
	}
	point, ok := points["_"+strconv.Itoa(stationID)]
	if !ok {
		return nil, nil
	}

	handles, ok := payload["params"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("data payload for station %d %s has no params table", stationID, ym)
	}

	obs := make(Observation, len(point))
	for handle, raw := range point {
		meta, ok := handles[handle].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("data payload for station %d %s has no params entry for handle %q", stationID, ym, handle)
		}
		name, ok := meta["name"].(string)
		if !ok {
			return nil, fmt.Errorf("data payload for station %d %s has unnamed handle %q", stationID, ym, handle)
		}
		obs[name] = toValue(raw)
	}
	return obs, nil
}

// monthResult carries one station-month back to the collector.
type monthResult struct {
	ym  YearMonth
	obs Observation
}

// fetchStationData fans the work list out over a bounded worker group and
// collects results over a channel into one keyed map. Months the archive
// has nothing for are dropped; any worker error aborts the batch. Order is
// not preserved, the table builder re-sorts.
func fetchStationData(ctx context.Context, client *archiveClient, items []WorkItem, vars []int, workers int, logger *zap.Logger) (map[YearMonth]Observation, error) {
	if workers < 1 {
		workers = 1
	}

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	results := make(chan monthResult, len(items))

	started := time.Now()
	for _, item := range items {
		item := item
		group.Go(func() error {
			obs, err := client.fetchMonthly(ctx, item.StationID, item.YearMonth, vars)
			if err != nil {
				return err
			}
			results <- monthResult{ym: item.YearMonth, obs: obs}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	close(results)

	collected := make(map[YearMonth]Observation, len(items))
	missing := 0
	for result := range results {
		if result.obs == nil {
			missing++
			continue
		}
		collected[result.ym] = result.obs
	}

	logger.Info("station data fetched",
		zap.Int("months_requested", len(items)),
		zap.Int("months_with_data", len(collected)),
		zap.Int("months_missing", missing),
		zap.Duration("duration", time.Since(started)))
	return collected, nil
}
