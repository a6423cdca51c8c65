package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/se-evidence-api/internal/models"
)

const articleColumns = `id, title, authors, publication_year, doi, journal_name, volume, pages, abstract, url, bibtex_data,
       status, submitted_by, reviewed_by, reviewed_at, rejection_reason, analyzed_by, analyzed_at, average_rating, created_at, updated_at`

// ArticleRepository persists articles and their ratings.
type ArticleRepository struct {
	db *sqlx.DB
}

// NewArticleRepository constructs the repository.
func NewArticleRepository(db *sqlx.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// Create inserts a new article row. A duplicate DOI yields ErrUniqueViolation.
func (r *ArticleRepository) Create(ctx context.Context, article *models.Article) error {
	if article.ID == "" {
		article.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if article.CreatedAt.IsZero() {
		article.CreatedAt = now
	}
	article.UpdatedAt = article.CreatedAt
	const query = `INSERT INTO articles
	(id, title, authors, publication_year, doi, journal_name, volume, pages, abstract, url, bibtex_data, status, submitted_by, average_rating, created_at, updated_at)
	VALUES (:id, :title, :authors, :publication_year, :doi, :journal_name, :volume, :pages, :abstract, :url, :bibtex_data, :status, :submitted_by, :average_rating, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, article); err != nil {
		if translated := translateError(err); translated == ErrUniqueViolation {
			return translated
		}
		return fmt.Errorf("create article: %w", err)
	}
	return nil
}

// FindByID fetches an article with its ratings. Missing rows yield sql.ErrNoRows.
func (r *ArticleRepository) FindByID(ctx context.Context, id string) (*models.Article, error) {
	query := fmt.Sprintf("SELECT %s FROM articles WHERE id = $1", articleColumns)
	var article models.Article
	if err := r.db.GetContext(ctx, &article, query, id); err != nil {
		if isNoRows(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find article: %w", err)
	}
	articles := []models.Article{article}
	if err := r.attachRatings(ctx, articles); err != nil {
		return nil, err
	}
	return &articles[0], nil
}

// FindByIDs batch-loads articles keyed by id. Unknown ids are absent from the result.
func (r *ArticleRepository) FindByIDs(ctx context.Context, ids []string) (map[string]models.Article, error) {
	result := make(map[string]models.Article, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	query := fmt.Sprintf("SELECT %s FROM articles WHERE id = ANY($1)", articleColumns)
	var articles []models.Article
	if err := r.db.SelectContext(ctx, &articles, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find articles by ids: %w", err)
	}
	if err := r.attachRatings(ctx, articles); err != nil {
		return nil, err
	}
	for _, article := range articles {
		result[article.ID] = article
	}
	return result, nil
}

// List returns articles matching the filter in insertion order.
func (r *ArticleRepository) List(ctx context.Context, filter models.ArticleFilter) ([]models.Article, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 3)
	builder.WriteString(fmt.Sprintf("SELECT %s FROM articles", articleColumns))

	conditions := make([]string, 0, 3)
	if len(filter.Status) > 0 {
		args = append(args, pq.Array(statusStrings(filter.Status)))
		conditions = append(conditions, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if filter.SubmittedBy != "" {
		args = append(args, filter.SubmittedBy)
		conditions = append(conditions, fmt.Sprintf("submitted_by = $%d", len(args)))
	}
	if strings.TrimSpace(filter.Query) != "" {
		args = append(args, "%"+escapeLike(filter.Query)+"%")
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR abstract ILIKE $%d)", len(args), len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at ASC, id ASC")
	if filter.Limit > 0 {
		builder.WriteString(fmt.Sprintf(" LIMIT %d", filter.Limit))
	}

	var articles []models.Article
	if err := r.db.SelectContext(ctx, &articles, builder.String(), args...); err != nil {
		if isNoRows(err) {
			return []models.Article{}, nil
		}
		return nil, fmt.Errorf("list articles: %w", err)
	}
	if err := r.attachRatings(ctx, articles); err != nil {
		return nil, err
	}
	return articles, nil
}

// ExistsByDOI reports whether another article already holds the DOI. An empty
// excludeID checks every article.
func (r *ArticleRepository) ExistsByDOI(ctx context.Context, doi, excludeID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM articles WHERE doi = $1)`
	args := []interface{}{doi}
	if excludeID != "" {
		query = `SELECT EXISTS(SELECT 1 FROM articles WHERE doi = $1 AND id::text <> $2)`
		args = append(args, excludeID)
	}
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, args...); err != nil {
		return false, fmt.Errorf("check article doi: %w", err)
	}
	return exists, nil
}

// Update persists bibliographic fields. Workflow columns are never written here.
func (r *ArticleRepository) Update(ctx context.Context, article *models.Article) error {
	article.UpdatedAt = time.Now().UTC()
	const query = `UPDATE articles SET title = :title, authors = :authors, publication_year = :publication_year, doi = :doi,
	journal_name = :journal_name, volume = :volume, pages = :pages, abstract = :abstract, url = :url, bibtex_data = :bibtex_data,
	updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, article)
	if err != nil {
		switch translated := translateError(err); translated {
		case ErrUniqueViolation, sql.ErrNoRows:
			return translated
		}
		return fmt.Errorf("update article: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update article rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ReviewParams groups the columns written by a moderation decision.
type ReviewParams struct {
	ID              string
	From            []models.ArticleStatus
	To              models.ArticleStatus
	ReviewedBy      string
	ReviewedAt      time.Time
	RejectionReason *string
}

// Review applies a moderation transition as a compare-and-set on the current
// status. ErrStateConflict is returned when the article left every source status.
func (r *ArticleRepository) Review(ctx context.Context, params ReviewParams) error {
	const query = `UPDATE articles SET status = $2, reviewed_by = $3, reviewed_at = $4, rejection_reason = $5, updated_at = $4
	WHERE id = $1 AND status = ANY($6)`
	result, err := r.db.ExecContext(ctx, query,
		params.ID, params.To, params.ReviewedBy, params.ReviewedAt, params.RejectionReason, pq.Array(statusStrings(params.From)))
	if err != nil {
		if isNoRows(err) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("review article: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("review article rows affected: %w", err)
	}
	if affected == 0 {
		return ErrStateConflict
	}
	return nil
}

// Delete permanently removes an article. Ratings cascade.
func (r *ArticleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		if isNoRows(err) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("delete article: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete article rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpsertRating records the user's rating and recomputes the average inside one
// transaction holding the article row lock.
func (r *ArticleRepository) UpsertRating(ctx context.Context, rating models.Rating) (ratings []models.Rating, average float64, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("begin rating transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var id string
	if err = tx.GetContext(ctx, &id, `SELECT id FROM articles WHERE id = $1 FOR UPDATE`, rating.ArticleID); err != nil {
		if isNoRows(err) {
			return nil, 0, sql.ErrNoRows
		}
		return nil, 0, fmt.Errorf("lock article: %w", err)
	}

	now := time.Now().UTC()
	const upsertQuery = `INSERT INTO article_ratings (article_id, user_id, value, created_at, updated_at) VALUES ($1, $2, $3, $4, $4)
	ON CONFLICT (article_id, user_id) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	if _, err = tx.ExecContext(ctx, upsertQuery, rating.ArticleID, rating.UserID, rating.Value, now); err != nil {
		return nil, 0, fmt.Errorf("upsert rating: %w", err)
	}

	const ratingsQuery = `SELECT article_id, user_id, value FROM article_ratings WHERE article_id = $1 ORDER BY created_at, user_id`
	if err = tx.SelectContext(ctx, &ratings, ratingsQuery, rating.ArticleID); err != nil {
		return nil, 0, fmt.Errorf("load ratings: %w", err)
	}
	average = models.AverageRating(ratings)

	if _, err = tx.ExecContext(ctx, `UPDATE articles SET average_rating = $2, updated_at = $3 WHERE id = $1`, rating.ArticleID, average, now); err != nil {
		return nil, 0, fmt.Errorf("update average rating: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("commit rating: %w", err)
	}
	return ratings, average, nil
}

func (r *ArticleRepository) attachRatings(ctx context.Context, articles []models.Article) error {
	if len(articles) == 0 {
		return nil
	}
	ids := make([]string, len(articles))
	for i := range articles {
		ids[i] = articles[i].ID
		articles[i].Ratings = []models.Rating{}
	}
	const query = `SELECT article_id, user_id, value FROM article_ratings WHERE article_id = ANY($1) ORDER BY created_at, user_id`
	var ratings []models.Rating
	if err := r.db.SelectContext(ctx, &ratings, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("load article ratings: %w", err)
	}
	index := make(map[string]int, len(articles))
	for i := range articles {
		index[articles[i].ID] = i
	}
	for _, rating := range ratings {
		if i, ok := index[rating.ArticleID]; ok {
			articles[i].Ratings = append(articles[i].Ratings, rating)
		}
	}
	return nil
}

func statusStrings(statuses []models.ArticleStatus) []string {
	out := make([]string, len(statuses))
	for i, status := range statuses {
		out[i] = string(status)
	}
	return out
}
