package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/user/email-finder/internal/domain"
)

const xlsxSheet = "Results"

// xlsxFile writes the report table as an Excel workbook.
type xlsxFile struct {
	path string
}

func NewXLSXFile(path string) Writer {
	return &xlsxFile{path: path}
}

func (x *xlsxFile) Write(results []domain.SiteResult) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(xlsxSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	if err := f.SetSheetRow(xlsxSheet, "A1", &[]string{"Website", "Email"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := 2
	for _, res := range results {
		if !res.HasEmail() {
			continue
		}
		cell := fmt.Sprintf("A%d", row)
		if err := f.SetSheetRow(xlsxSheet, cell, &[]string{res.Homepage, res.Email}); err != nil {
			return fmt.Errorf("write row for %s: %w", res.Homepage, err)
		}
		row++
	}

	if err := f.SaveAs(x.path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
