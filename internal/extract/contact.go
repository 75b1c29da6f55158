package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Substrings marking a link as a contact candidate. Matching is unanchored
// and case-sensitive, so "contacts-page" and "contactless" both qualify.
var contactMarkers = []string{"contact", "about", "terms"}

// Signals is what a contact scan of one page yields: either a mailto email
// (first one wins, link collection stops there) or an ordered list of
// contact-candidate links.
type Signals struct {
	MailtoEmail string
	Links       []string
}

// ContactSignals scans every href attribute in the document in order. A
// mailto link short-circuits the scan: its address, stripped of any ?query,
// is returned as the sole result. Other hrefs containing a contact marker are
// collected in document order, resolved against baseURL unless they already
// carry "http".
func ContactSignals(baseURL, htmlContent string) Signals {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return Signals{}
	}

	base, baseErr := url.Parse(baseURL)

	var sig Signals
	doc.Find("[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if strings.HasPrefix(href, "mailto:") {
			email := strings.TrimPrefix(href, "mailto:")
			if i := strings.Index(email, "?"); i >= 0 {
				email = email[:i]
			}
			if email != "" {
				sig = Signals{MailtoEmail: email}
				return false
			}
			return true
		}

		if !containsMarker(href) {
			return true
		}
		if strings.Contains(href, "http") || baseErr != nil {
			sig.Links = append(sig.Links, href)
			return true
		}
		rel, err := url.Parse(href)
		if err != nil {
			sig.Links = append(sig.Links, href)
			return true
		}
		sig.Links = append(sig.Links, base.ResolveReference(rel).String())
		return true
	})

	return sig
}

func containsMarker(href string) bool {
	for _, marker := range contactMarkers {
		if strings.Contains(href, marker) {
			return true
		}
	}
	return false
}
