package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestRun_BatchCompletesWhenEveryFetchFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewCoordinator(newTestProcessor(t), 4, zap.NewNop())
	results := c.Run(context.Background(), []string{srv.URL})

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Homepage != srv.URL || results[0].Email != "" {
		t.Fatalf("expected empty-email result for %s, got %+v", srv.URL, results[0])
	}
}

func TestRun_ConcurrentDuplicatesFetchOnce(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.Write([]byte(`<html>hello@example.com</html>`))
	}))
	defer srv.Close()

	urls := make([]string, 16)
	for i := range urls {
		urls[i] = srv.URL + "/page"
	}

	c := NewCoordinator(newTestProcessor(t), 8, zap.NewNop())
	results := c.Run(context.Background(), urls)

	if len(results) != 1 {
		t.Fatalf("expected one result for one homepage, got %d", len(results))
	}
	if n := atomic.LoadInt64(&hits); n != 1 {
		t.Fatalf("expected exactly one fetch, got %d", n)
	}
}

func TestRun_ConcurrencyIsBounded(t *testing.T) {
	const workers = 3

	var inFlight, highWater int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		cur := atomic.AddInt64(&inFlight, 1)
		for {
			prev := atomic.LoadInt64(&highWater)
			if cur <= prev || atomic.CompareAndSwapInt64(&highWater, prev, cur) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
	})

	// Distinct servers mean distinct homepages, so nothing deduplicates.
	servers := make([]*httptest.Server, 9)
	urls := make([]string, len(servers))
	for i := range servers {
		servers[i] = httptest.NewServer(handler)
		defer servers[i].Close()
		urls[i] = servers[i].URL
	}

	c := NewCoordinator(newTestProcessor(t), workers, zap.NewNop())
	results := c.Run(context.Background(), urls)

	if len(results) != len(urls) {
		t.Fatalf("expected %d results, got %d", len(urls), len(results))
	}
	if hw := atomic.LoadInt64(&highWater); hw > workers {
		t.Fatalf("expected at most %d concurrent fetches, saw %d", workers, hw)
	}
}

func TestRun_ResultSetMatchesUniqueHomepages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html>owner@site.test</html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	urls := []string{srv.URL, srv.URL + "/about", "not-a-url"}

	c := NewCoordinator(newTestProcessor(t), 2, zap.NewNop())
	results := c.Run(context.Background(), urls)

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d: %+v", len(results), results)
	}
	if results[0].Email != "owner@site.test" {
		t.Fatalf("unexpected email %q", results[0].Email)
	}
}
