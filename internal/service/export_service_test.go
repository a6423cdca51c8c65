package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/se-evidence-api/internal/models"
	appErrors "github.com/noah-isme/se-evidence-api/pkg/errors"
	"github.com/noah-isme/se-evidence-api/pkg/export"
)

type advancedSearchStub struct {
	items  []models.EvidenceDetail
	err    error
	filter models.AdvancedSearchFilter
}

func (s *advancedSearchStub) SearchAdvanced(ctx context.Context, filter models.AdvancedSearchFilter) ([]models.EvidenceDetail, bool, error) {
	s.filter = filter
	return s.items, false, s.err
}

func exportFixture() []models.EvidenceDetail {
	doi := "10.1000/tdd"
	count := 24
	return []models.EvidenceDetail{{
		Evidence: models.Evidence{
			ID:               "ev-1",
			ArticleID:        "a-1",
			SEPractice:       "TDD",
			Claim:            "TDD improves code quality",
			EvidenceResult:   models.EvidenceResultSupports,
			ResearchType:     models.ResearchTypeExperiment,
			ParticipantType:  models.ParticipantTypeStudents,
			ParticipantCount: &count,
		},
		Article: &models.ArticleDetail{Article: models.Article{
			ID: "a-1", Title: "On TDD", Authors: []string{"Beck", "Fowler"}, PublicationYear: 2021, DOI: &doi,
		}},
		Analyst: &models.UserSummary{ID: "u-2", FirstName: "Ada", LastName: "Analyst"},
	}}
}

func newExportService(stub *advancedSearchStub) *ExportService {
	svc := NewExportService(stub, export.NewCSVExporter(), export.NewPDFExporter(), zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestExportAdvancedCSV(t *testing.T) {
	stub := &advancedSearchStub{items: exportFixture()}
	svc := newExportService(stub)

	file, err := svc.ExportAdvanced(context.Background(), models.AdvancedSearchFilter{SEPractice: "TDD"}, "")
	require.NoError(t, err)
	assert.Equal(t, "evidence-20240501-100000.csv", file.Filename)
	assert.Equal(t, 1, file.Rows)
	assert.Equal(t, "TDD", stub.filter.SEPractice)

	lines := strings.Split(strings.TrimSpace(string(file.Data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Title,Authors,Year,DOI"))
	assert.Equal(t, "On TDD,Beck; Fowler,2021,10.1000/tdd,TDD,TDD improves code quality,supports,experiment,24 students,Ada Analyst", lines[1])
}

func TestExportAdvancedPDF(t *testing.T) {
	svc := newExportService(&advancedSearchStub{items: exportFixture()})

	file, err := svc.ExportAdvanced(context.Background(), models.AdvancedSearchFilter{}, "PDF")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF")))
}

func TestExportAdvancedRejectsUnknownFormat(t *testing.T) {
	svc := newExportService(&advancedSearchStub{})

	_, err := svc.ExportAdvanced(context.Background(), models.AdvancedSearchFilter{}, "xlsx")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestExportAdvancedPropagatesSearchError(t *testing.T) {
	svc := newExportService(&advancedSearchStub{err: appErrors.Clone(appErrors.ErrValidation, "invalid search parameters")})

	_, err := svc.ExportAdvanced(context.Background(), models.AdvancedSearchFilter{}, "csv")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
