package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/user/email-finder/internal/domain"
	"github.com/user/email-finder/internal/extract"
	"github.com/user/email-finder/internal/monitoring"
)

// PageFetcher fetches one URL and returns its body text, or a typed error.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// Processor runs the per-site state machine: fetch the homepage, scan it
// directly, and if that misses, walk the contact-candidate links one level
// deep, stopping at the first email found.
type Processor struct {
	fetcher PageFetcher
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

func NewProcessor(f PageFetcher, m *monitoring.Metrics, l *zap.Logger) *Processor {
	return &Processor{fetcher: f, metrics: m, logger: l}
}

// ProcessSite handles one candidate URL. It returns ok=false when the URL's
// homepage was already claimed by another invocation (or cannot be derived at
// all); otherwise it returns exactly one SiteResult, even when every fetch
// fails. No error escapes this method.
func (p *Processor) ProcessSite(ctx context.Context, rawURL string, visited Visited) (domain.SiteResult, bool) {
	homepage, err := domain.HomepageOf(rawURL)
	if err != nil {
		p.logger.Warn("skipping candidate with no usable homepage", zap.String("url", rawURL), zap.Error(err))
		return domain.SiteResult{}, false
	}

	seen, err := visited.LoadOrStore(ctx, homepage)
	if err != nil {
		// A broken dedup store must not sink the batch; risk a duplicate
		// fetch instead.
		p.logger.Warn("visited store error, proceeding unchecked", zap.String("homepage", homepage), zap.Error(err))
	} else if seen {
		return domain.SiteResult{}, false
	}

	p.metrics.IncSitesProcessed()

	email := p.findEmail(ctx, homepage)
	return domain.SiteResult{Homepage: homepage, Email: email}, true
}

func (p *Processor) findEmail(ctx context.Context, homepage string) string {
	content, err := p.fetcher.Fetch(ctx, homepage)
	if err != nil {
		return ""
	}

	if email, ok := extract.FirstEmail(content); ok {
		p.metrics.IncEmailsFound("direct")
		return email
	}

	sig := extract.ContactSignals(homepage, content)
	if sig.MailtoEmail != "" {
		p.metrics.IncEmailsFound("mailto")
		return sig.MailtoEmail
	}

	for _, link := range sig.Links {
		// Some collected hrefs are raw email-like tokens rather than pages.
		if strings.Contains(link, "@") {
			p.metrics.IncEmailsFound("link_token")
			return link
		}
		body, err := p.fetcher.Fetch(ctx, link)
		if err != nil {
			continue
		}
		if email, ok := extract.FirstEmail(body); ok {
			p.metrics.IncEmailsFound("contact_page")
			return email
		}
	}
	return ""
}
