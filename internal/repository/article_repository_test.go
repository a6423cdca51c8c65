package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/se-evidence-api/internal/models"
)

var articleRowColumns = []string{
	"id", "title", "authors", "publication_year", "doi", "journal_name", "volume", "pages", "abstract", "url", "bibtex_data",
	"status", "submitted_by", "reviewed_by", "reviewed_at", "rejection_reason", "analyzed_by", "analyzed_at", "average_rating", "created_at", "updated_at",
}

func articleRow(rows *sqlmock.Rows, id, title string, status models.ArticleStatus) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, title, "{Alice,Bob}", 2020, nil, nil, nil, nil, "A study on TDD", nil, nil,
		string(status), "sub-1", nil, nil, nil, nil, nil, 4.5, now, now)
}

func TestArticleRepositoryFindByIDLoadsRatings(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewArticleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + articleColumns + " FROM articles WHERE id = $1")).
		WithArgs("a-1").
		WillReturnRows(articleRow(sqlmock.NewRows(articleRowColumns), "a-1", "TDD", models.ArticleStatusPendingReview))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT article_id, user_id, value FROM article_ratings WHERE article_id = ANY($1)")).
		WithArgs(pq.Array([]string{"a-1"})).
		WillReturnRows(sqlmock.NewRows([]string{"article_id", "user_id", "value"}).
			AddRow("a-1", "u1", 5).
			AddRow("a-1", "u2", 4))

	article, err := repo.FindByID(context.Background(), "a-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Bob"}, []string(article.Authors))
	assert.False(t, article.BibtexData.Valid)
	require.Len(t, article.Ratings, 2)
	assert.Equal(t, "u2", article.Ratings[1].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewArticleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM articles WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestArticleRepositoryListFreeText(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewArticleRepository(db)

	expected := "SELECT " + articleColumns + " FROM articles WHERE status = ANY($1) AND (title ILIKE $2 OR abstract ILIKE $2) ORDER BY created_at ASC, id ASC LIMIT 50"
	mock.ExpectQuery(regexp.QuoteMeta(expected)).
		WithArgs(pq.Array([]string{"analyzed", "published"}), `% 100\%\_tdd %`).
		WillReturnRows(articleRow(sqlmock.NewRows(articleRowColumns), "a-1", "TDD", models.ArticleStatusAnalyzed))
	mock.ExpectQuery(regexp.QuoteMeta("FROM article_ratings")).
		WillReturnRows(sqlmock.NewRows([]string{"article_id", "user_id", "value"}))

	articles, err := repo.List(context.Background(), models.ArticleFilter{
		Status: []models.ArticleStatus{models.ArticleStatusAnalyzed, models.ArticleStatusPublished},
		Query:  " 100%_tdd ",
		Limit:  50,
	})
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.NotNil(t, articles[0].Ratings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleRepositoryListBlankQueryAddsNoCondition(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewArticleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + articleColumns + " FROM articles ORDER BY created_at ASC, id ASC")).
		WillReturnRows(sqlmock.NewRows(articleRowColumns))

	articles, err := repo.List(context.Background(), models.ArticleFilter{Query: "   "})
	require.NoError(t, err)
	assert.Empty(t, articles)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleRepositoryExistsByDOI(t *testing.T) {
	t.Run("create checks every article", func(t *testing.T) {
		db, mock, cleanup := newMock(t)
		defer cleanup()
		repo := NewArticleRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM articles WHERE doi = $1)")).
			WithArgs("10.1/x").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		exists, err := repo.ExistsByDOI(context.Background(), "10.1/x", "")
		require.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update excludes the edited article", func(t *testing.T) {
		db, mock, cleanup := newMock(t)
		defer cleanup()
		repo := NewArticleRepository(db)

		id := "9b2f4a1e-0c1d-4e5f-8a9b-0c1d2e3f4a5b"
		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM articles WHERE doi = $1 AND id::text <> $2)")).
			WithArgs("10.1/x", id).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		exists, err := repo.ExistsByDOI(context.Background(), "10.1/x", id)
		require.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestArticleRepositoryMalformedIDReadsAsMissing(t *testing.T) {
	invalid := &pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}

	t.Run("find", func(t *testing.T) {
		db, mock, cleanup := newMock(t)
		defer cleanup()
		repo := NewArticleRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM articles WHERE id = $1")).WithArgs("abc").WillReturnError(invalid)

		_, err := repo.FindByID(context.Background(), "abc")
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete", func(t *testing.T) {
		db, mock, cleanup := newMock(t)
		defer cleanup()
		repo := NewArticleRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM articles WHERE id = $1")).WithArgs("abc").WillReturnError(invalid)

		assert.ErrorIs(t, repo.Delete(context.Background(), "abc"), sql.ErrNoRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rate", func(t *testing.T) {
		db, mock, cleanup := newMock(t)
		defer cleanup()
		repo := NewArticleRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).WithArgs("abc").WillReturnError(invalid)
		mock.ExpectRollback()

		_, _, err := repo.UpsertRating(context.Background(), models.Rating{ArticleID: "abc", UserID: "u1", Value: 3})
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list by submitter", func(t *testing.T) {
		db, mock, cleanup := newMock(t)
		defer cleanup()
		repo := NewArticleRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE submitted_by = $1")).WithArgs("abc").WillReturnError(invalid)

		articles, err := repo.List(context.Background(), models.ArticleFilter{SubmittedBy: "abc"})
		require.NoError(t, err)
		assert.Empty(t, articles)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestArticleRepositoryCreateDuplicateDOI(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewArticleRepository(db)

	mock.ExpectExec("INSERT INTO articles").WillReturnError(&pq.Error{Code: "23505"})

	doi := "10.1/x"
	err := repo.Create(context.Background(), &models.Article{Title: "T", DOI: &doi, Status: models.ArticleStatusPendingReview})
	assert.ErrorIs(t, err, ErrUniqueViolation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleRepositoryReviewCompareAndSet(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewArticleRepository(db)

	reviewedAt := time.Now().UTC()
	params := ReviewParams{
		ID:         "a-1",
		From:       models.ArticleActionApprove.Sources(),
		To:         models.ArticleStatusPendingAnalysis,
		ReviewedBy: "mod-1",
		ReviewedAt: reviewedAt,
	}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE articles SET status = $2")).
		WithArgs("a-1", "pending_analysis", "mod-1", reviewedAt, nil, pq.Array([]string{"pending_review"})).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Review(context.Background(), params))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE articles SET status = $2")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Review(context.Background(), params), ErrStateConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewArticleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM articles WHERE id = $1")).
		WithArgs("a-9").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "a-9"), sql.ErrNoRows)
}

func TestArticleRepositoryUpsertRating(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewArticleRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM articles WHERE id = $1 FOR UPDATE")).
		WithArgs("a-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a-1"))
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (article_id, user_id) DO UPDATE")).
		WithArgs("a-1", "u1", 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT article_id, user_id, value FROM article_ratings WHERE article_id = $1")).
		WithArgs("a-1").
		WillReturnRows(sqlmock.NewRows([]string{"article_id", "user_id", "value"}).
			AddRow("a-1", "u1", 1).
			AddRow("a-1", "u2", 4).
			AddRow("a-1", "u3", 4))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE articles SET average_rating = $2")).
		WithArgs("a-1", 3.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ratings, average, err := repo.UpsertRating(context.Background(), models.Rating{ArticleID: "a-1", UserID: "u1", Value: 1})
	require.NoError(t, err)
	assert.Len(t, ratings, 3)
	assert.Equal(t, 3.0, average)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleRepositoryUpsertRatingMissingArticle(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewArticleRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, _, err := repo.UpsertRating(context.Background(), models.Rating{ArticleID: "nope", UserID: "u1", Value: 3})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
