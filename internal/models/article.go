package models

import (
	"math"
	"strings"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// Article is a bibliographic record submitted for inclusion in the catalog.
type Article struct {
	ID              string             `db:"id" json:"id"`
	Title           string             `db:"title" json:"title"`
	Authors         pq.StringArray     `db:"authors" json:"authors"`
	PublicationYear int                `db:"publication_year" json:"publicationYear"`
	DOI             *string            `db:"doi" json:"doi,omitempty"`
	JournalName     *string            `db:"journal_name" json:"journalName,omitempty"`
	Volume          *string            `db:"volume" json:"volume,omitempty"`
	Pages           *string            `db:"pages" json:"pages,omitempty"`
	Abstract        *string            `db:"abstract" json:"abstract,omitempty"`
	URL             *string            `db:"url" json:"url,omitempty"`
	BibtexData      types.NullJSONText `db:"bibtex_data" json:"bibtexData"`
	Status          ArticleStatus      `db:"status" json:"status"`
	SubmittedBy     string             `db:"submitted_by" json:"submittedBy"`
	ReviewedBy      *string            `db:"reviewed_by" json:"reviewedBy,omitempty"`
	ReviewedAt      *time.Time         `db:"reviewed_at" json:"reviewedAt,omitempty"`
	RejectionReason *string            `db:"rejection_reason" json:"rejectionReason,omitempty"`
	AnalyzedBy      *string            `db:"analyzed_by" json:"analyzedBy,omitempty"`
	AnalyzedAt      *time.Time         `db:"analyzed_at" json:"analyzedAt,omitempty"`
	AverageRating   float64            `db:"average_rating" json:"averageRating"`
	Ratings         []Rating           `db:"-" json:"ratings"`
	CreatedAt       time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time          `db:"updated_at" json:"updatedAt"`
}

// UserIDs returns the distinct user references held by the article.
func (a Article) UserIDs() []string {
	ids := []string{a.SubmittedBy}
	if a.ReviewedBy != nil {
		ids = append(ids, *a.ReviewedBy)
	}
	if a.AnalyzedBy != nil {
		ids = append(ids, *a.AnalyzedBy)
	}
	return ids
}

// Rating is a single user's score for an article.
type Rating struct {
	ArticleID string `db:"article_id" json:"-"`
	UserID    string `db:"user_id" json:"userId"`
	Value     int    `db:"value" json:"value"`
}

// ArticleDetail is an article with its user references expanded.
type ArticleDetail struct {
	Article
	Submitter *UserSummary `json:"submitter,omitempty"`
	Reviewer  *UserSummary `json:"reviewer,omitempty"`
	Analyst   *UserSummary `json:"analyst,omitempty"`
}

// ArticleFilter constrains article listing queries.
type ArticleFilter struct {
	Status      []ArticleStatus
	SubmittedBy string
	// Query matches title or abstract case-insensitively.
	Query string
	Limit int
}

// UpsertRating replaces the user's existing rating or appends a new one.
func UpsertRating(ratings []Rating, rating Rating) []Rating {
	out := make([]Rating, 0, len(ratings)+1)
	replaced := false
	for _, r := range ratings {
		if r.UserID == rating.UserID {
			r.Value = rating.Value
			replaced = true
		}
		out = append(out, r)
	}
	if !replaced {
		out = append(out, rating)
	}
	return out
}

// AverageRating returns the mean rating rounded to two decimals, or 0 without ratings.
func AverageRating(ratings []Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Value
	}
	return math.Round(float64(sum)/float64(len(ratings))*100) / 100
}

// ArticleSearchFilter is the article-side predicate of the advanced search.
type ArticleSearchFilter struct {
	Query    string
	YearFrom *int
	YearTo   *int
}

// Empty reports whether the filter imposes no constraint.
func (f ArticleSearchFilter) Empty() bool {
	return strings.TrimSpace(f.Query) == "" && f.YearFrom == nil && f.YearTo == nil
}

// Matches applies the predicate to a resolved article.
func (f ArticleSearchFilter) Matches(a Article) bool {
	if f.YearFrom != nil && a.PublicationYear < *f.YearFrom {
		return false
	}
	if f.YearTo != nil && a.PublicationYear > *f.YearTo {
		return false
	}
	if strings.TrimSpace(f.Query) == "" {
		return true
	}
	query := strings.ToLower(f.Query)
	if strings.Contains(strings.ToLower(a.Title), query) {
		return true
	}
	return a.Abstract != nil && strings.Contains(strings.ToLower(*a.Abstract), query)
}
