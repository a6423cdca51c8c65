package models

// AdvancedSearchFilter combines evidence-side and article-side constraints.
// Zero values impose no constraint.
type AdvancedSearchFilter struct {
	Query          string         `json:"q,omitempty"`
	SEPractice     string         `json:"sePractice,omitempty"`
	Claim          string         `json:"claim,omitempty"`
	YearFrom       *int           `json:"yearFrom,omitempty"`
	YearTo         *int           `json:"yearTo,omitempty"`
	EvidenceResult EvidenceResult `json:"evidenceResult,omitempty"`
}

// EvidenceFilter returns the evidence-side part of the filter.
func (f AdvancedSearchFilter) EvidenceFilter() EvidenceFilter {
	return EvidenceFilter{
		SEPractice:     f.SEPractice,
		ClaimContains:  f.Claim,
		EvidenceResult: f.EvidenceResult,
	}
}

// ArticleFilter returns the article-side predicate of the filter.
func (f AdvancedSearchFilter) ArticleFilter() ArticleSearchFilter {
	return ArticleSearchFilter{Query: f.Query, YearFrom: f.YearFrom, YearTo: f.YearTo}
}

// Unsatisfiable reports whether no evidence can match: the result is not a
// known value or the year range is inverted.
func (f AdvancedSearchFilter) Unsatisfiable() bool {
	if f.EvidenceResult != "" && !f.EvidenceResult.Valid() {
		return true
	}
	return f.YearFrom != nil && f.YearTo != nil && *f.YearFrom > *f.YearTo
}
