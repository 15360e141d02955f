// Package export renders resource requests into downloadable artifacts and
// fetches text summaries from an external summary service. Export never
// changes request state.
package export

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charlesng35/resourcedesk/internal/models"
	apperrors "github.com/charlesng35/resourcedesk/pkg/errors"
)

// Format identifies an artifact encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Artifact is a rendered export ready to be streamed to a client.
type Artifact struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Exporter renders a single request.
type Exporter interface {
	Format() Format
	Export(ctx context.Context, req models.ResourceRequest) (Artifact, error)
}

// Registry resolves exporters by format.
type Registry struct {
	exporters map[Format]Exporter
}

// NewRegistry builds a registry from the supplied exporters.
func NewRegistry(exporters ...Exporter) *Registry {
	r := &Registry{exporters: make(map[Format]Exporter, len(exporters))}
	for _, e := range exporters {
		if e != nil {
			r.exporters[e.Format()] = e
		}
	}
	return r
}

// DefaultRegistry registers the CSV and XLSX exporters.
func DefaultRegistry() *Registry {
	return NewRegistry(NewCSVExporter(), NewXLSXExporter())
}

// Formats lists the registered formats in sorted order.
func (r *Registry) Formats() []Format {
	out := make([]Format, 0, len(r.exporters))
	for f := range r.exporters {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Export renders req in the named format. Rendering failures are reported as
// EXPORT_FAILED; an unknown format is a validation error.
func (r *Registry) Export(ctx context.Context, format Format, req models.ResourceRequest) (Artifact, error) {
	exporter, ok := r.exporters[Format(strings.ToLower(string(format)))]
	if !ok {
		return Artifact{}, apperrors.NewValidation(fmt.Sprintf("unsupported export format %q", format))
	}
	artifact, err := exporter.Export(ctx, req)
	if err != nil {
		return Artifact{}, apperrors.ErrExportFailed.WithInternal(err)
	}
	return artifact, nil
}

// fields lists the label/value pairs every artifact carries, in display order.
func fields(req models.ResourceRequest) [][2]string {
	assigned := ""
	if req.AssignedApproverID != nil {
		assigned = *req.AssignedApproverID
	}
	comments := ""
	if req.HandlerComments != nil {
		comments = *req.HandlerComments
	}
	return [][2]string{
		{"Request ID", req.RequestID},
		{"Request Type", string(req.RequestType)},
		{"Short Description", req.ShortDescription},
		{"Justification", req.Justification},
		{"Priority", string(req.Priority)},
		{"Status", string(req.Status)},
		{"Requester ID", req.RequesterID},
		{"Assigned Approver ID", assigned},
		{"Requested Date", formatTime(req.RequestedDate)},
		{"Target Resolution Date", formatTime(req.TargetResolutionDate)},
		{"Handler Comments", comments},
		{"Created At", formatTime(req.CreatedAt)},
		{"Updated At", formatTime(req.UpdatedAt)},
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func filename(req models.ResourceRequest, ext string) string {
	id := req.RequestID
	if id == "" {
		id = "request"
	}
	return fmt.Sprintf("%s_summary.%s", id, ext)
}
