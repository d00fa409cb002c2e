package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/watchlist/internal/models"
	"github.com/noah-isme/watchlist/pkg/export"
)

// ExportFormat selects the archive download encoding.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

const exportDateLayout = "2006-01-02"

var exportHeaders = []string{"title", "type", "description", "name", "submitted_on", "status", "rating", "watched_on", "updated_on"}

type archiveReader interface {
	FindMovies(ctx context.Context, query models.MovieQuery) ([]models.Movie, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult is a rendered archive download.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
	Rows        int
}

// ExportService renders the filtered archive as a downloadable file.
type ExportService struct {
	movies archiveReader
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(movies archiveReader, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		movies: movies,
		csv:    csv,
		pdf:    pdf,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ParseExportFormat maps a query value onto a format, defaulting to CSV.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ExportFormatCSV:
		return ExportFormatCSV, nil
	case ExportFormatPDF:
		return ExportFormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported format %s", raw)
	}
}

// Generate fetches the archive for query and renders it. A store failure is
// returned rather than producing an empty file.
func (s *ExportService) Generate(ctx context.Context, query models.MovieQuery, format ExportFormat) (*ExportResult, error) {
	movies, err := s.movies.FindMovies(ctx, query)
	if err != nil {
		return nil, err
	}

	dataset := buildArchiveDataset(movies)
	var (
		payload     []byte
		contentType string
	)
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv; charset=utf-8"
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, "Watchlist archive")
		contentType = "application/pdf"
	default:
		err = fmt.Errorf("unsupported format %s", format)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Debug("archive exported", zap.String("format", string(format)), zap.Int("rows", len(movies)))
	return &ExportResult{
		Filename:    fmt.Sprintf("watchlist_%s.%s", s.now().Format("20060102_150405"), format),
		ContentType: contentType,
		Payload:     payload,
		Rows:        len(movies),
	}, nil
}

func buildArchiveDataset(movies []models.Movie) export.Dataset {
	rows := make([]map[string]string, 0, len(movies))
	for _, m := range movies {
		watchedOn := ""
		if m.WatchedOn != nil && !m.WatchedOn.IsZero() {
			watchedOn = m.WatchedOn.Format(exportDateLayout)
		}
		rating := ""
		if m.Watched == models.StatusWatched {
			rating = strconv.FormatFloat(m.Rating, 'f', -1, 64)
		}
		rows = append(rows, map[string]string{
			"title":        m.Title,
			"type":         string(m.Type),
			"description":  m.Description,
			"name":         m.Name,
			"submitted_on": formatExportDate(m.SubmittedOn),
			"status":       m.Watched.Label(),
			"rating":       rating,
			"watched_on":   watchedOn,
			"updated_on":   formatExportDate(m.UpdatedOn),
		})
	}
	return export.Dataset{Headers: exportHeaders, Rows: rows}
}

func formatExportDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(exportDateLayout)
}
