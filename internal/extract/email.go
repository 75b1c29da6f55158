package extract

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

// Filenames like logo@2x.png match the email pattern; a match ending in one of
// these extensions is discarded outright.
var imageExtensions = []string{"png", "jpg", "jpeg", "gif", "svg", "bmp", "webp"}

// FirstEmail returns the first syntactically valid email address in text, in
// document order. Pure and deterministic; no I/O.
func FirstEmail(text string) (string, bool) {
	match := emailPattern.FindString(text)
	if match == "" {
		return "", false
	}
	for _, ext := range imageExtensions {
		if strings.HasSuffix(match, ext) {
			return "", false
		}
	}
	return match, true
}
