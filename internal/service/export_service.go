package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/se-evidence-api/internal/models"
	appErrors "github.com/noah-isme/se-evidence-api/pkg/errors"
	"github.com/noah-isme/se-evidence-api/pkg/export"
)

// Export formats accepted by ExportAdvanced.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var exportHeaders = []string{
	"Title", "Authors", "Year", "DOI", "SE Practice", "Claim",
	"Result", "Research Type", "Participants", "Analyst",
}

type advancedSearcher interface {
	SearchAdvanced(ctx context.Context, filter models.AdvancedSearchFilter) ([]models.EvidenceDetail, bool, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered export ready to be streamed to the client.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
	Rows        int
}

// ExportService renders advanced search results as CSV or PDF.
type ExportService struct {
	search advancedSearcher
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(search advancedSearcher, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{search: search, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// ExportAdvanced runs an advanced search and renders the matches in format.
func (s *ExportService) ExportAdvanced(ctx context.Context, filter models.AdvancedSearchFilter, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "unsupported export format"),
			map[string]interface{}{"format": format})
	}

	items, _, err := s.search.SearchAdvanced(ctx, filter)
	if err != nil {
		return nil, err
	}
	dataset := evidenceDataset(items)
	stamp := s.now().UTC().Format("20060102-150405")

	file := &ExportFile{Rows: len(items), Filename: fmt.Sprintf("evidence-%s.%s", stamp, format)}
	switch format {
	case ExportFormatPDF:
		file.ContentType = "application/pdf"
		file.Data, err = s.pdf.Render(dataset, "SE Evidence Search Results")
	default:
		file.ContentType = "text/csv; charset=utf-8"
		file.Data, err = s.csv.Render(dataset)
	}
	if err != nil {
		s.logger.Error("render export", zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return file, nil
}

func evidenceDataset(items []models.EvidenceDetail) export.Dataset {
	rows := make([]map[string]string, 0, len(items))
	for _, item := range items {
		row := map[string]string{
			"SE Practice":   item.SEPractice,
			"Claim":         item.Claim,
			"Result":        string(item.EvidenceResult),
			"Research Type": string(item.ResearchType),
		}
		if item.ParticipantCount != nil {
			row["Participants"] = fmt.Sprintf("%d %s", *item.ParticipantCount, item.ParticipantType)
		} else {
			row["Participants"] = string(item.ParticipantType)
		}
		if item.Analyst != nil {
			row["Analyst"] = strings.TrimSpace(item.Analyst.FirstName + " " + item.Analyst.LastName)
		}
		if item.Article != nil {
			row["Title"] = item.Article.Title
			row["Authors"] = strings.Join(item.Article.Authors, "; ")
			row["Year"] = strconv.Itoa(item.Article.PublicationYear)
			if item.Article.DOI != nil {
				row["DOI"] = *item.Article.DOI
			}
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: exportHeaders, Rows: rows}
}
