package models

import "time"

// EvidenceResult states whether the finding supports the claim.
type EvidenceResult string

const (
	EvidenceResultSupports EvidenceResult = "supports"
	EvidenceResultOpposes  EvidenceResult = "opposes"
	EvidenceResultNeutral  EvidenceResult = "neutral"
)

// ResearchType classifies the study design.
type ResearchType string

const (
	ResearchTypeCaseStudy        ResearchType = "case_study"
	ResearchTypeExperiment       ResearchType = "experiment"
	ResearchTypeSurvey           ResearchType = "survey"
	ResearchTypeSystematicReview ResearchType = "systematic_review"
	ResearchTypeMetaAnalysis     ResearchType = "meta_analysis"
	ResearchTypeOther            ResearchType = "other"
)

// ParticipantType describes who took part in the study.
type ParticipantType string

const (
	ParticipantTypeStudents      ParticipantType = "students"
	ParticipantTypeProfessionals ParticipantType = "professionals"
	ParticipantTypeMixed         ParticipantType = "mixed"
	ParticipantTypeOther         ParticipantType = "other"
)

// Evidence is the structured finding extracted from exactly one article.
type Evidence struct {
	ID               string          `db:"id" json:"id"`
	ArticleID        string          `db:"article_id" json:"articleId"`
	SEPractice       string          `db:"se_practice" json:"sePractice"`
	Claim            string          `db:"claim" json:"claim"`
	EvidenceResult   EvidenceResult  `db:"evidence_result" json:"evidenceResult"`
	ResearchType     ResearchType    `db:"research_type" json:"researchType"`
	ParticipantType  ParticipantType `db:"participant_type" json:"participantType"`
	ParticipantCount *int            `db:"participant_count" json:"participantCount,omitempty"`
	Summary          *string         `db:"summary" json:"summary,omitempty"`
	Notes            *string         `db:"notes" json:"notes,omitempty"`
	AnalyzedBy       string          `db:"analyzed_by" json:"analyzedBy"`
	IsPublished      bool            `db:"is_published" json:"isPublished"`
	CreatedAt        time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updatedAt"`
}

// EvidenceDetail is evidence with its article (and submitter) and analyst expanded.
type EvidenceDetail struct {
	Evidence
	Article *ArticleDetail `json:"article,omitempty"`
	Analyst *UserSummary   `json:"analyst,omitempty"`
}

// EvidenceFilter is the evidence-side filter shared by listing and search.
type EvidenceFilter struct {
	ArticleID  string
	SEPractice string
	// ClaimContains matches claim case-insensitively as a substring.
	ClaimContains  string
	EvidenceResult EvidenceResult
}

// ArticleAnalysis describes the article transition recorded alongside new evidence.
type ArticleAnalysis struct {
	ArticleID  string
	AnalyzedBy string
	AnalyzedAt time.Time
	From       []ArticleStatus
	To         ArticleStatus
}

// Valid reports whether r is a known result.
func (r EvidenceResult) Valid() bool {
	switch r {
	case EvidenceResultSupports, EvidenceResultOpposes, EvidenceResultNeutral:
		return true
	default:
		return false
	}
}
