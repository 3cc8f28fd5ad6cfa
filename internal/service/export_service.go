package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/quilldesk/brokerage-api/internal/models"
	appErrors "github.com/quilldesk/brokerage-api/pkg/errors"
	"github.com/quilldesk/brokerage-api/pkg/export"
)

// ExportFormat selects the rendered document type.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var assignmentExportHeaders = []string{
	"ID", "Title", "Student", "Writer", "Status", "Deadline",
	"Price", "Paid", "Writer Price", "Writer Paid", "Sunk Costs",
}

type exportAssignmentLister interface {
	ListAll(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, error)
}

// ExportService renders assignment money-flow reports as CSV or PDF.
type ExportService struct {
	assignments exportAssignmentLister
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	logger      *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(assignments exportAssignmentLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		assignments: assignments,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		logger:      logger,
	}
}

// ExportDocument carries the rendered bytes plus HTTP metadata.
type ExportDocument struct {
	FileName    string
	ContentType string
	Body        []byte
}

// Assignments exports the filtered assignment ledger in the given format.
// The whole filtered set is rendered; pagination fields on the filter are
// ignored.
func (s *ExportService) Assignments(ctx context.Context, filter models.AssignmentFilter, format string) (*ExportDocument, error) {
	assignments, err := s.assignments.ListAll(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments for export")
	}

	dataset := export.Dataset{Headers: assignmentExportHeaders, Rows: make([]map[string]string, 0, len(assignments))}
	for _, a := range assignments {
		writer := ""
		if a.WriterID != nil {
			writer = strconv.FormatInt(*a.WriterID, 10)
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"ID":           a.ID,
			"Title":        a.Title,
			"Student":      a.StudentID,
			"Writer":       writer,
			"Status":       a.Status,
			"Deadline":     a.Deadline.Format("2006-01-02"),
			"Price":        formatMoney(a.Price),
			"Paid":         formatMoney(a.PaidAmount),
			"Writer Price": formatMoney(a.WriterPrice),
			"Writer Paid":  formatMoney(a.WriterPaidAmount),
			"Sunk Costs":   formatMoney(a.SunkCosts),
		})
	}

	stamp := time.Now().Format("20060102")

	switch format {
	case ExportFormatCSV:
		body, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportDocument{
			FileName:    fmt.Sprintf("assignments-%s.csv", stamp),
			ContentType: "text/csv",
			Body:        body,
		}, nil
	case ExportFormatPDF:
		body, err := s.pdf.Render(dataset, "Assignment Ledger Report")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportDocument{
			FileName:    fmt.Sprintf("assignments-%s.pdf", stamp),
			ContentType: "application/pdf",
			Body:        body,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format, use csv or pdf")
	}
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
