package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/multierr"

	"github.com/charlesng35/resourcedesk/internal/models"
)

const xlsxSheet = "Request"

// XLSXExporter renders a request as a two-column spreadsheet.
type XLSXExporter struct{}

// NewXLSXExporter constructs an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Format implements Exporter.
func (*XLSXExporter) Format() Format { return FormatXLSX }

// Export implements Exporter.
func (*XLSXExporter) Export(ctx context.Context, req models.ResourceRequest) (artifact Artifact, err error) {
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}

	f := excelize.NewFile()
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return Artifact{}, fmt.Errorf("rename sheet: %w", err)
	}

	header := []interface{}{"Field", "Value"}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return Artifact{}, fmt.Errorf("write header: %w", err)
	}
	for i, field := range fields(req) {
		row := []interface{}{field[0], field[1]}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return Artifact{}, err
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return Artifact{}, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return Artifact{}, fmt.Errorf("create style: %w", err)
	}
	if err := f.SetCellStyle(xlsxSheet, "A1", "B1", style); err != nil {
		return Artifact{}, fmt.Errorf("apply style: %w", err)
	}
	if err := f.SetColWidth(xlsxSheet, "A", "A", 24); err != nil {
		return Artifact{}, err
	}
	if err := f.SetColWidth(xlsxSheet, "B", "B", 60); err != nil {
		return Artifact{}, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return Artifact{}, fmt.Errorf("encode workbook: %w", err)
	}

	return Artifact{
		Filename:    filename(req, "xlsx"),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Body:        buf.Bytes(),
	}, nil
}
