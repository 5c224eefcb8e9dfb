package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/studyflow/studyflow-api/internal/models"
	appErrors "github.com/studyflow/studyflow-api/pkg/errors"
	"github.com/studyflow/studyflow-api/pkg/export"
)

// ExportFormat enumerates supported schedule export formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportResult carries rendered bytes plus response metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

var scheduleExportHeaders = []string{"Date", "Subject", "Priority", "Duration (min)", "Completed"}

type exportSessionRepository interface {
	List(ctx context.Context, ownerID string, filter models.SessionFilter) ([]models.StudySession, error)
}

type exportSubjectRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.Subject, error)
}

// ExportService renders the owner's schedule as CSV or PDF.
type ExportService struct {
	sessions exportSessionRepository
	subjects exportSubjectRepository
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
}

// NewExportService creates an export service.
func NewExportService(sessions exportSessionRepository, subjects exportSubjectRepository, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		sessions: sessions,
		subjects: subjects,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
	}
}

// Schedule exports the owner's sessions within the window in the requested
// format. Sessions are joined with their subject for display.
func (s *ExportService) Schedule(ctx context.Context, ownerID string, filter models.SessionFilter, format ExportFormat) (*ExportResult, error) {
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	sessions, err := s.sessions.List(ctx, ownerID, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions")
	}
	subjects, err := s.subjects.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
	}

	subjectByID := make(map[string]models.Subject, len(subjects))
	for _, subject := range subjects {
		subjectByID[subject.ID] = subject
	}

	dataset := export.Dataset{Headers: scheduleExportHeaders}
	for _, session := range sessions {
		subjectName := session.SubjectID
		priority := ""
		if subject, ok := subjectByID[session.SubjectID]; ok {
			subjectName = subject.Name
			priority = string(subject.Priority)
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":           session.Date.Format("2006-01-02"),
			"Subject":        subjectName,
			"Priority":       priority,
			"Duration (min)": strconv.Itoa(session.Duration),
			"Completed":      strconv.FormatBool(session.Completed),
		})
	}

	stamp := time.Now().UTC().Format("20060102")
	switch format {
	case ExportFormatPDF:
		content, err := s.pdf.Render(dataset, "Study Schedule")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("schedule-%s.pdf", stamp),
		}, nil
	default:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("schedule-%s.csv", stamp),
		}, nil
	}
}
