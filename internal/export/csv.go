package export

import (
	"bytes"
	"context"
	"encoding/csv"

	"github.com/charlesng35/resourcedesk/internal/models"
)

// CSVExporter renders a request as Field,Value rows.
type CSVExporter struct{}

// NewCSVExporter constructs a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Format implements Exporter.
func (*CSVExporter) Format() Format { return FormatCSV }

// Export implements Exporter.
func (*CSVExporter) Export(ctx context.Context, req models.ResourceRequest) (Artifact, error) {
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Field", "Value"}); err != nil {
		return Artifact{}, err
	}
	for _, f := range fields(req) {
		if err := w.Write([]string{f[0], f[1]}); err != nil {
			return Artifact{}, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return Artifact{}, err
	}

	return Artifact{
		Filename:    filename(req, "csv"),
		ContentType: "text/csv; charset=utf-8",
		Body:        buf.Bytes(),
	}, nil
}
