package fetcher

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"github.com/user/email-finder/internal/config"
	"github.com/user/email-finder/internal/domain"
	"github.com/user/email-finder/internal/monitoring"
	"github.com/user/email-finder/internal/proxy"
)

// Fetcher performs single bounded HTTP GETs. A non-200 status, transport
// error, timeout or malformed URL comes back as a *domain.FetchError; nothing
// panics or retries at this layer.
type Fetcher struct {
	client   *http.Client
	limiter  *rate.Limiter
	proxies  *proxy.Manager
	metrics  *monitoring.Metrics
	logger   *zap.Logger
	timeout  time.Duration
	maxBytes int64
}

func New(cfg *config.Config, pm *proxy.Manager, m *monitoring.Metrics, l *zap.Logger) *Fetcher {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
	// Proxy selection is per request so the manager's rotation applies
	// across fetches, not once at startup.
	transport.Proxy = func(*http.Request) (*url.URL, error) {
		p := pm.GetProxy()
		if p == "" {
			return nil, nil
		}
		return url.Parse(p)
	}

	// Some contact pages sit behind cookie-gated redirects; a jar with the
	// public suffix list keeps those sessions working.
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Fetcher{
		client: &http.Client{
			Transport: transport,
			Jar:       jar,
		},
		limiter:  rate.NewLimiter(limit, 1),
		proxies:  pm,
		metrics:  m,
		logger:   l,
		timeout:  cfg.FetchTimeoutDuration(),
		maxBytes: cfg.MaxBodyBytes,
	}
}

// Fetch issues one GET for rawURL and returns the body as text. The context
// bounds the whole attempt on top of the configured per-fetch timeout, so a
// hung server cannot stall the batch.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	start := time.Now()
	body, err := f.fetch(ctx, rawURL)
	elapsed := time.Since(start)

	if err != nil {
		var fe *domain.FetchError
		outcome := string(domain.FailTransport)
		if errors.As(err, &fe) {
			outcome = string(fe.Kind)
		}
		f.metrics.ObserveFetch(outcome, elapsed.Seconds())
		f.logger.Warn("fetch failed",
			zap.String("url", rawURL),
			zap.String("reason", outcome),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return "", err
	}

	f.metrics.ObserveFetch("success", elapsed.Seconds())
	f.logger.Info("fetch succeeded",
		zap.String("url", rawURL),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", elapsed))
	return body, nil
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", &domain.FetchError{URL: rawURL, Kind: domain.FailTimeout, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &domain.FetchError{URL: rawURL, Kind: domain.FailBadRequest, Err: err}
	}
	req.Header.Set("User-Agent", f.proxies.GetUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &domain.FetchError{URL: rawURL, Kind: classify(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &domain.FetchError{URL: rawURL, Kind: domain.FailStatus, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "", &domain.FetchError{URL: rawURL, Kind: classify(err), Err: err}
	}
	return string(body), nil
}

func classify(err error) domain.FailureKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.FailTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.FailTimeout
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return domain.FailTimeout
	}
	return domain.FailTransport
}
