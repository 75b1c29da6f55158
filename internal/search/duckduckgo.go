package search

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const htmlEndpoint = "https://html.duckduckgo.com/html/"

// PageFetcher is the subset of the fetcher this provider needs.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// HTMLProvider scrapes the DuckDuckGo HTML endpoint, which serves static
// markup without JavaScript. Result links come wrapped in a redirect URL
// whose uddg parameter carries the real destination.
type HTMLProvider struct {
	fetcher  PageFetcher
	endpoint string
	logger   *zap.Logger
}

func NewHTMLProvider(f PageFetcher, l *zap.Logger) *HTMLProvider {
	return &HTMLProvider{fetcher: f, endpoint: htmlEndpoint, logger: l}
}

// Search returns up to q.Limit result URLs for the keyword. A failed or
// partial scrape is not fatal: whatever was gathered is returned and the
// caller proceeds with it.
func (p *HTMLProvider) Search(ctx context.Context, q Query) ([]string, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	params := url.Values{}
	params.Set("q", q.Keyword)
	if q.Locale != "" {
		params.Set("kl", q.Locale)
	}

	body, err := p.fetcher.Fetch(ctx, p.endpoint+"?"+params.Encode())
	if err != nil {
		p.logger.Warn("search request failed", zap.String("keyword", q.Keyword), zap.Error(err))
		return nil, err
	}

	urls := ParseResults(body, limit)
	p.logger.Info("search complete",
		zap.String("keyword", q.Keyword),
		zap.Int("results", len(urls)))
	return urls, nil
}

// ParseResults pulls result URLs out of a DuckDuckGo HTML result page, in
// page order, unwrapping redirect hrefs.
func ParseResults(htmlContent string, limit int) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil
	}

	var urls []string
	doc.Find("a.result__a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if !ok {
			return true
		}
		if target := unwrapRedirect(href); target != "" {
			urls = append(urls, target)
		}
		return len(urls) < limit
	})
	return urls
}

func unwrapRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "http" || u.Scheme == "https" {
		return href
	}
	return ""
}
