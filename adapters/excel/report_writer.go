package excel

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"expdesign/domain/experiment"
	"expdesign/internal/errors"
)

// ReportWriter renders a design document as an .xlsx workbook with a
// Design sheet (label/value rows) and an Allocation sheet (the 50/50
// traffic split).
type ReportWriter struct{}

// NewReportWriter creates an xlsx report writer
func NewReportWriter() *ReportWriter {
	return &ReportWriter{}
}

// ContentType returns the xlsx MIME type
func (w *ReportWriter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// FileExtension returns "xlsx"
func (w *ReportWriter) FileExtension() string {
	return "xlsx"
}

// Write renders the workbook and returns its bytes
func (w *ReportWriter) Write(ctx context.Context, doc *experiment.DesignDoc) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const designSheet = "Design"
	idx, err := f.NewSheet(designSheet)
	if err != nil {
		return nil, errors.Wrap(err, "creating design sheet failed")
	}
	f.SetActiveSheet(idx)

	for i, field := range doc.ReportPayload() {
		row := i + 1
		if err := f.SetCellValue(designSheet, fmt.Sprintf("A%d", row), field.Label); err != nil {
			return nil, errors.Wrap(err, "writing design sheet failed")
		}
		if err := f.SetCellValue(designSheet, fmt.Sprintf("B%d", row), field.Value); err != nil {
			return nil, errors.Wrap(err, "writing design sheet failed")
		}
	}
	// Labels run long; widen the first column so they stay readable.
	if err := f.SetColWidth(designSheet, "A", "A", 36); err != nil {
		return nil, errors.Wrap(err, "sizing design sheet failed")
	}
	if err := f.SetColWidth(designSheet, "B", "B", 40); err != nil {
		return nil, errors.Wrap(err, "sizing design sheet failed")
	}

	if err := w.writeAllocation(f, doc); err != nil {
		return nil, err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, errors.Wrap(err, "removing default sheet failed")
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, errors.Wrap(err, "serializing workbook failed")
	}
	return buf.Bytes(), nil
}

func (w *ReportWriter) writeAllocation(f *excelize.File, doc *experiment.DesignDoc) error {
	const sheet = "Allocation"
	if _, err := f.NewSheet(sheet); err != nil {
		return errors.Wrap(err, "creating allocation sheet failed")
	}

	headers := []string{"Group", "Daily Users", "Users Needed", "Days"}
	for c, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return errors.Wrap(err, "writing allocation header failed")
		}
	}

	for r, row := range doc.AllocationTable() {
		values := []interface{}{row.Group, row.DailyUsers, row.UsersNeeded, row.Days}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return errors.Wrap(err, "writing allocation row failed")
			}
		}
	}
	return nil
}
