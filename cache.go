package main

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/peterbourgon/diskv/v3"
	"go.uber.org/zap"
)

// cachedResponse is the on-disk form of one cached GET response.
type cachedResponse struct {
	FetchedAt time.Time   `json:"fetched_at"`
	Status    int         `json:"status"`
	Header    http.Header `json:"header"`
	Body      []byte      `json:"body"`
}

// cachingTransport caches successful GET responses on disk for a fixed TTL.
// The archive serves historical data, so a full-day TTL loses nothing; the
// cache exists to make repeat runs and the decade-long locations sweep
// survivable. Single-process use only.
type cachingTransport struct {
	store  *diskv.Diskv
	ttl    time.Duration
	next   http.RoundTripper
	logger *zap.Logger
	now    func() time.Time
}

func newCachingTransport(dir string, ttl time.Duration, next http.RoundTripper, logger *zap.Logger) *cachingTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	store := diskv.New(diskv.Options{
		BasePath:     dir,
		Transform:    func(string) []string { return []string{} },
		CacheSizeMax: 8 << 20,
	})
	return &cachingTransport{
		store:  store,
		ttl:    ttl,
		next:   next,
		logger: logger,
		now:    time.Now,
	}
}

func cacheKey(req *http.Request) string {
	sum := sha256.Sum256([]byte(req.URL.String()))
	return hex.EncodeToString(sum[:])
}

func (t *cachingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.next.RoundTrip(req)
	}

	key := cacheKey(req)
	if cached, ok := t.load(key); ok {
		t.logger.Debug("response cache hit", zap.String("url", req.URL.String()))
		return &http.Response{
			StatusCode: cached.Status,
			Status:     http.StatusText(cached.Status),
			Header:     cached.Header,
			Body:       io.NopCloser(bytes.NewReader(cached.Body)),
			Request:    req,
			Proto:      "HTTP/1.1",
			ProtoMajor: 1,
			ProtoMinor: 1,
		}, nil
	}

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	// Only successful responses are worth keeping.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	t.save(key, cachedResponse{
		FetchedAt: t.now(),
		Status:    resp.StatusCode,
		Header:    resp.Header,
		Body:      body,
	})
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

func (t *cachingTransport) load(key string) (cachedResponse, bool) {
	raw, err := t.store.Read(key)
	if err != nil {
		return cachedResponse{}, false
	}
	var cached cachedResponse
	if err := json.Unmarshal(raw, &cached); err != nil {
		// An unreadable entry is just evicted; the origin still has it.
		_ = t.store.Erase(key)
		return cachedResponse{}, false
	}
	if t.now().Sub(cached.FetchedAt) > t.ttl {
		_ = t.store.Erase(key)
		return cachedResponse{}, false
	}
	return cached, true
}

func (t *cachingTransport) save(key string, cached cachedResponse) {
	raw, err := json.Marshal(cached)
	if err != nil {
		t.logger.Warn("could not encode cached response", zap.Error(err))
		return
	}
	if err := t.store.Write(key, raw); err != nil {
		t.logger.Warn("could not persist cached response", zap.Error(err))
	}
}
