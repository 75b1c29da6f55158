package domain

import (
	"fmt"
	"net/url"
)

// SiteResult is the outcome of processing one unique homepage. Email is empty
// when nothing was found; the homepage was still processed.
type SiteResult struct {
	Homepage string `json:"homepage"`
	Email    string `json:"email,omitempty"`
}

// HasEmail reports whether an email address was discovered for the site.
func (r SiteResult) HasEmail() bool {
	return r.Email != ""
}

// ScrapeRequest is the payload for the API. Either URLs is given directly, or
// Keyword (plus optional Locale/Limit) is resolved through the search provider.
type ScrapeRequest struct {
	Keyword string   `json:"keyword,omitempty"`
	Locale  string   `json:"locale,omitempty"`
	Limit   int      `json:"limit,omitempty"`
	URLs    []string `json:"urls,omitempty"`
}

// ScrapeResponse is the API response for a completed batch.
type ScrapeResponse struct {
	Processed int          `json:"processed"`
	Results   []SiteResult `json:"results"`
}

// HomepageOf projects a URL onto its scheme://host form, the identity key
// used for deduplication. Two URLs with the same projection are the same site.
func HomepageOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("url %q has no scheme or host", rawURL)
	}
	return u.Scheme + "://" + u.Host, nil
}
