package search

import "context"

// Query describes one keyword search against a provider.
type Query struct {
	Keyword string
	Locale  string
	Limit   int
}

// DefaultLimit caps how many result URLs a query returns when the caller
// does not say otherwise.
const DefaultLimit = 30

// Provider abstracts the keyword-to-URL discovery collaborator. The pipeline
// treats the returned list as opaque input; implementations may scrape a
// search engine, call an API, or read a fixture.
type Provider interface {
	Search(ctx context.Context, q Query) ([]string, error)
}
