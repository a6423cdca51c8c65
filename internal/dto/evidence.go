package dto

import "github.com/noah-isme/se-evidence-api/internal/models"

// CreateEvidenceRequest payload for recording the finding of an approved article.
type CreateEvidenceRequest struct {
	ArticleID        string                 `json:"articleId" validate:"required"`
	SEPractice       string                 `json:"sePractice" validate:"required,notblank"`
	Claim            string                 `json:"claim" validate:"required,notblank"`
	EvidenceResult   models.EvidenceResult  `json:"evidenceResult" validate:"required,oneof=supports opposes neutral"`
	ResearchType     models.ResearchType    `json:"researchType" validate:"required,oneof=case_study experiment survey systematic_review meta_analysis other"`
	ParticipantType  models.ParticipantType `json:"participantType" validate:"required,oneof=students professionals mixed other"`
	ParticipantCount *int                   `json:"participantCount" validate:"omitempty,min=0"`
	Summary          *string                `json:"summary"`
	Notes            *string                `json:"notes"`
}

// UpdateEvidenceRequest is a partial update. The article link cannot change.
type UpdateEvidenceRequest struct {
	SEPractice       *string                 `json:"sePractice" validate:"omitempty,notblank"`
	Claim            *string                 `json:"claim" validate:"omitempty,notblank"`
	EvidenceResult   *models.EvidenceResult  `json:"evidenceResult" validate:"omitempty,oneof=supports opposes neutral"`
	ResearchType     *models.ResearchType    `json:"researchType" validate:"omitempty,oneof=case_study experiment survey systematic_review meta_analysis other"`
	ParticipantType  *models.ParticipantType `json:"participantType" validate:"omitempty,oneof=students professionals mixed other"`
	ParticipantCount *int                    `json:"participantCount" validate:"omitempty,min=0"`
	Summary          *string                 `json:"summary"`
	Notes            *string                 `json:"notes"`
	IsPublished      *bool                   `json:"isPublished"`
}
