package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/user/email-finder/internal/domain"
)

// CSVWriter writes the report table to an io.Writer.
type CSVWriter struct {
	w io.Writer
}

func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: w}
}

func (c *CSVWriter) Write(results []domain.SiteResult) error {
	writer := csv.NewWriter(c.w)
	if err := writer.Write([]string{"Website", "Email"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, res := range results {
		if !res.HasEmail() {
			continue
		}
		if err := writer.Write([]string{res.Homepage, res.Email}); err != nil {
			return fmt.Errorf("write csv row for %s: %w", res.Homepage, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// csvFile defers file creation until Write so an empty run still produces a
// well-formed file with just the header.
type csvFile struct {
	path string
}

func NewCSVFile(path string) Writer {
	return &csvFile{path: path}
}

func (c *csvFile) Write(results []domain.SiteResult) error {
	f, err := os.Create(c.path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if err := NewCSVWriter(f).Write(results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
