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

const evidenceColumns = `id, article_id, se_practice, claim, evidence_result, research_type, participant_type, participant_count,
       summary, notes, analyzed_by, is_published, created_at, updated_at`

// EvidenceRepository persists evidence records.
type EvidenceRepository struct {
	db *sqlx.DB
}

// NewEvidenceRepository constructs the repository.
func NewEvidenceRepository(db *sqlx.DB) *EvidenceRepository {
	return &EvidenceRepository{db: db}
}

// FindByID fetches evidence by identifier. Missing rows yield sql.ErrNoRows.
func (r *EvidenceRepository) FindByID(ctx context.Context, id string) (*models.Evidence, error) {
	query := fmt.Sprintf("SELECT %s FROM evidence WHERE id = $1", evidenceColumns)
	var evidence models.Evidence
	if err := r.db.GetContext(ctx, &evidence, query, id); err != nil {
		if isNoRows(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find evidence: %w", err)
	}
	return &evidence, nil
}

// List returns evidence matching the filter in insertion order.
func (r *EvidenceRepository) List(ctx context.Context, filter models.EvidenceFilter) ([]models.Evidence, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 4)
	builder.WriteString(fmt.Sprintf("SELECT %s FROM evidence", evidenceColumns))

	conditions := make([]string, 0, 4)
	if filter.ArticleID != "" {
		args = append(args, filter.ArticleID)
		conditions = append(conditions, fmt.Sprintf("article_id = $%d", len(args)))
	}
	if filter.SEPractice != "" {
		args = append(args, filter.SEPractice)
		conditions = append(conditions, fmt.Sprintf("se_practice = $%d", len(args)))
	}
	if strings.TrimSpace(filter.ClaimContains) != "" {
		args = append(args, "%"+escapeLike(filter.ClaimContains)+"%")
		conditions = append(conditions, fmt.Sprintf("claim ILIKE $%d", len(args)))
	}
	if filter.EvidenceResult != "" {
		args = append(args, filter.EvidenceResult)
		conditions = append(conditions, fmt.Sprintf("evidence_result = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at ASC, id ASC")

	var items []models.Evidence
	if err := r.db.SelectContext(ctx, &items, builder.String(), args...); err != nil {
		if isNoRows(err) {
			return []models.Evidence{}, nil
		}
		return nil, fmt.Errorf("list evidence: %w", err)
	}
	return items, nil
}

// ExistsForArticle reports whether the article already has evidence.
func (r *EvidenceRepository) ExistsForArticle(ctx context.Context, articleID string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM evidence WHERE article_id = $1)`, articleID); err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("check evidence for article: %w", err)
	}
	return exists, nil
}

// CreateWithAnalysis moves the article to its analyzed status and inserts the
// evidence in a single transaction. The status change is a compare-and-set on
// analysis.From; a miss yields ErrStateConflict, a second evidence row for the
// article yields ErrUniqueViolation.
func (r *EvidenceRepository) CreateWithAnalysis(ctx context.Context, evidence *models.Evidence, analysis models.ArticleAnalysis) (err error) {
	if evidence.ID == "" {
		evidence.ID = uuid.NewString()
	}
	if evidence.CreatedAt.IsZero() {
		evidence.CreatedAt = analysis.AnalyzedAt
	}
	evidence.UpdatedAt = evidence.CreatedAt

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin evidence transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const transitionQuery = `UPDATE articles SET status = $2, analyzed_by = $3, analyzed_at = $4, updated_at = $4
	WHERE id = $1 AND status = ANY($5)`
	result, err := tx.ExecContext(ctx, transitionQuery,
		analysis.ArticleID, analysis.To, analysis.AnalyzedBy, analysis.AnalyzedAt, pq.Array(statusStrings(analysis.From)))
	if err != nil {
		if isNoRows(err) {
			return ErrStateConflict
		}
		return fmt.Errorf("mark article analyzed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark article analyzed rows affected: %w", err)
	}
	if affected == 0 {
		return ErrStateConflict
	}

	const insertQuery = `INSERT INTO evidence
	(id, article_id, se_practice, claim, evidence_result, research_type, participant_type, participant_count, summary, notes, analyzed_by, is_published, created_at, updated_at)
	VALUES (:id, :article_id, :se_practice, :claim, :evidence_result, :research_type, :participant_type, :participant_count, :summary, :notes, :analyzed_by, :is_published, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insertQuery, evidence); err != nil {
		if translateError(err) == ErrUniqueViolation {
			return ErrUniqueViolation
		}
		return fmt.Errorf("create evidence: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit evidence: %w", err)
	}
	return nil
}

// Update persists the mutable evidence fields. The article link is never rewritten.
func (r *EvidenceRepository) Update(ctx context.Context, evidence *models.Evidence) error {
	evidence.UpdatedAt = time.Now().UTC()
	const query = `UPDATE evidence SET se_practice = :se_practice, claim = :claim, evidence_result = :evidence_result,
	research_type = :research_type, participant_type = :participant_type, participant_count = :participant_count,
	summary = :summary, notes = :notes, is_published = :is_published, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, evidence)
	if err != nil {
		if isNoRows(err) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("update evidence: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update evidence rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes evidence. The linked article keeps its status.
func (r *EvidenceRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM evidence WHERE id = $1`, id)
	if err != nil {
		if isNoRows(err) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("delete evidence: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete evidence rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
