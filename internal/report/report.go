// Package report writes the final two-column (Website, Email) table. Sites
// where no email was found were still processed but produce no row.
package report

import (
	"fmt"

	"github.com/user/email-finder/internal/domain"
)

// Writer is the output sink for a completed batch.
type Writer interface {
	Write(results []domain.SiteResult) error
}

// ForFormat returns the sink for the given format name writing to path.
func ForFormat(format, path string) (Writer, error) {
	switch format {
	case "csv":
		return NewCSVFile(path), nil
	case "xlsx":
		return NewXLSXFile(path), nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}
