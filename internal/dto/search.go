package dto

import "github.com/noah-isme/se-evidence-api/internal/models"

// AdvancedSearchQuery binds the query string of the advanced search and its
// export. Result and format are checked by the services.
type AdvancedSearchQuery struct {
	Query          string `form:"q"`
	SEPractice     string `form:"sePractice"`
	Claim          string `form:"claim"`
	YearFrom       *int   `form:"yearFrom"`
	YearTo         *int   `form:"yearTo"`
	EvidenceResult string `form:"evidenceResult"`
	Format         string `form:"format"`
}

// Filter converts the query into the service-level filter.
func (q AdvancedSearchQuery) Filter() models.AdvancedSearchFilter {
	return models.AdvancedSearchFilter{
		Query:          q.Query,
		SEPractice:     q.SEPractice,
		Claim:          q.Claim,
		YearFrom:       q.YearFrom,
		YearTo:         q.YearTo,
		EvidenceResult: models.EvidenceResult(q.EvidenceResult),
	}
}
