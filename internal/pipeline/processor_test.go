package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/user/email-finder/internal/config"
	"github.com/user/email-finder/internal/fetcher"
	"github.com/user/email-finder/internal/monitoring"
	"github.com/user/email-finder/internal/proxy"
)

func newTestProcessor(t *testing.T) *Processor {
	t.Helper()
	cfg := &config.Config{FetchTimeout: 5, MaxBodyBytes: 1 << 20}
	m := monitoring.NewMetrics(prometheus.NewRegistry())
	f := fetcher.New(cfg, proxy.NewManager("", nil), m, zap.NewNop())
	return NewProcessor(f, m, zap.NewNop())
}

func TestProcessSite_DirectEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html>questions? mail team@example.com</html>`))
	}))
	defer srv.Close()

	p := newTestProcessor(t)
	res, ok := p.ProcessSite(context.Background(), srv.URL+"/some/page", NewMemoryVisited())
	if !ok {
		t.Fatal("expected a result")
	}
	if res.Homepage != srv.URL {
		t.Fatalf("expected homepage %q, got %q", srv.URL, res.Homepage)
	}
	if res.Email != "team@example.com" {
		t.Fatalf("expected direct email, got %q", res.Email)
	}
}

func TestProcessSite_ContactPageFallbackStopsAtFirstHit(t *testing.T) {
	var aboutHits int64
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html><a href="/contact">contact</a><a href="/about">about</a></html>`))
	})
	mux.HandleFunc("/contact", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html>write to support@example.org</html>`))
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt64(&aboutHits, 1)
		w.Write([]byte(`<html>other@example.org</html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := newTestProcessor(t)
	res, ok := p.ProcessSite(context.Background(), srv.URL, NewMemoryVisited())
	if !ok {
		t.Fatal("expected a result")
	}
	if res.Email != "support@example.org" {
		t.Fatalf("expected contact page email, got %q", res.Email)
	}
	if n := atomic.LoadInt64(&aboutHits); n != 0 {
		t.Fatalf("later candidates must not be fetched after a hit, got %d fetches", n)
	}
}

func TestProcessSite_FailedCandidateContinuesToNext(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html><a href="/contact">contact</a><a href="/about">about</a></html>`))
	})
	mux.HandleFunc("/contact", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html>fallback@example.org</html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := newTestProcessor(t)
	res, _ := p.ProcessSite(context.Background(), srv.URL, NewMemoryVisited())
	if res.Email != "fallback@example.org" {
		t.Fatalf("expected fallback email, got %q", res.Email)
	}
}

func TestProcessSite_MailtoBeatsContactLinks(t *testing.T) {
	var contactHits int64
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		// The image filename is the first pattern match, which voids the
		// direct scan and hands control to the href walk.
		w.Write([]byte(`<html><img src="logo@2x.png"><a href="mailto:boss@example.com">mail</a><a href="/contact">contact</a></html>`))
	})
	mux.HandleFunc("/contact", func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt64(&contactHits, 1)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := newTestProcessor(t)
	res, _ := p.ProcessSite(context.Background(), srv.URL, NewMemoryVisited())
	if res.Email != "boss@example.com" {
		t.Fatalf("expected mailto email, got %q", res.Email)
	}
	if n := atomic.LoadInt64(&contactHits); n != 0 {
		t.Fatalf("contact page must not be fetched when mailto wins, got %d fetches", n)
	}
}

func TestProcessSite_CandidateWithAtSignUsedAsEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			t.Errorf("unexpected fetch of %s", r.URL.Path)
		}
		w.Write([]byte(`<html><a href="/contact@team">reach out</a></html>`))
	}))
	defer srv.Close()

	p := newTestProcessor(t)
	res, _ := p.ProcessSite(context.Background(), srv.URL, NewMemoryVisited())
	// The href resolves against the homepage like any relative link; the
	// @-token heuristic then takes the resolved value verbatim.
	want := srv.URL + "/contact@team"
	if res.Email != want {
		t.Fatalf("expected %q, got %q", want, res.Email)
	}
}

func TestProcessSite_UnreachableSiteStillYieldsResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := newTestProcessor(t)
	res, ok := p.ProcessSite(context.Background(), srv.URL, NewMemoryVisited())
	if !ok {
		t.Fatal("expected a terminal result even when the fetch fails")
	}
	if res.Homepage != srv.URL {
		t.Fatalf("expected homepage %q, got %q", srv.URL, res.Homepage)
	}
	if res.Email != "" {
		t.Fatalf("expected no email, got %q", res.Email)
	}
}

func TestProcessSite_DuplicateHomepageIsDropped(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.Write([]byte(`<html>info@example.com</html>`))
	}))
	defer srv.Close()

	p := newTestProcessor(t)
	visited := NewMemoryVisited()

	if _, ok := p.ProcessSite(context.Background(), srv.URL+"/a", visited); !ok {
		t.Fatal("first invocation should produce a result")
	}
	if _, ok := p.ProcessSite(context.Background(), srv.URL+"/b", visited); ok {
		t.Fatal("second invocation on the same homepage should produce nothing")
	}
	if n := atomic.LoadInt64(&hits); n != 1 {
		t.Fatalf("expected exactly one fetch, got %d", n)
	}
}

func TestProcessSite_UnusableURLIsSkipped(t *testing.T) {
	p := newTestProcessor(t)
	if _, ok := p.ProcessSite(context.Background(), "not-a-url", NewMemoryVisited()); ok {
		t.Fatal("expected no result for a URL without scheme or host")
	}
}
