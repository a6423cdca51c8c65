package dto

import (
	"encoding/json"

	"github.com/noah-isme/se-evidence-api/internal/models"
)

// CreateArticleRequest payload for submitting a new article. Any status sent
// by the client is ignored.
type CreateArticleRequest struct {
	Title           string          `json:"title" validate:"required,notblank"`
	Authors         []string        `json:"authors" validate:"required,min=1,dive,notblank"`
	PublicationYear int             `json:"publicationYear" validate:"required,pubyear"`
	DOI             *string         `json:"doi" validate:"omitempty,notblank"`
	JournalName     *string         `json:"journalName"`
	Volume          *string         `json:"volume"`
	Pages           *string         `json:"pages"`
	Abstract        *string         `json:"abstract"`
	URL             *string         `json:"url" validate:"omitempty,url"`
	BibtexData      json.RawMessage `json:"bibtexData"`
}

// UpdateArticleRequest is a partial update. Nil fields are left untouched.
type UpdateArticleRequest struct {
	Title           *string         `json:"title" validate:"omitempty,notblank"`
	Authors         []string        `json:"authors" validate:"omitempty,min=1,dive,notblank"`
	PublicationYear *int            `json:"publicationYear" validate:"omitempty,pubyear"`
	DOI             *string         `json:"doi"`
	JournalName     *string         `json:"journalName"`
	Volume          *string         `json:"volume"`
	Pages           *string         `json:"pages"`
	Abstract        *string         `json:"abstract"`
	URL             *string         `json:"url" validate:"omitempty,url"`
	BibtexData      json.RawMessage `json:"bibtexData"`
}

// RejectArticleRequest carries the optional moderator note.
type RejectArticleRequest struct {
	Reason string `json:"reason"`
}

// RateArticleRequest carries a 1-5 score.
type RateArticleRequest struct {
	Value int `json:"value"`
}

// ArticleQuery mirrors supported listing filters.
type ArticleQuery struct {
	Status models.ArticleStatus
}
