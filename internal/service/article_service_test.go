package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/se-evidence-api/internal/dto"
	"github.com/noah-isme/se-evidence-api/internal/models"
	"github.com/noah-isme/se-evidence-api/internal/repository"
	appErrors "github.com/noah-isme/se-evidence-api/pkg/errors"
)

var (
	submitter = models.Actor{UserID: "u-sub", Roles: models.Roles{models.RoleSubmitter}}
	moderator = models.Actor{UserID: "u-mod", Roles: models.Roles{models.RoleModerator}}
	analyst   = models.Actor{UserID: "u-ana", Roles: models.Roles{models.RoleAnalyst}}
	admin     = models.Actor{UserID: "u-adm", Roles: models.Roles{models.RoleAdmin}}
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newArticleServiceForTest(t *testing.T) (*ArticleService, *memoryCatalog) {
	t.Helper()
	store := newMemoryCatalog()
	store.addUser("u-sub", "Sam", "Submitter")
	store.addUser("u-mod", "Mo", "Moderator")
	store.addUser("u-ana", "Ana", "Analyst")
	svc := NewArticleService(store, store, store, nil, zap.NewNop(), WithArticleClock(func() time.Time { return fixedNow }))
	return svc, store
}

func strPtr(s string) *string { return &s }

func validArticleRequest(doi *string) dto.CreateArticleRequest {
	return dto.CreateArticleRequest{
		Title:           "TDD in Practice",
		Authors:         []string{"Kent Beck"},
		PublicationYear: 2020,
		DOI:             doi,
		Abstract:        strPtr("An industrial study of test-driven development."),
	}
}

func TestArticleServiceCreateStartsPendingReview(t *testing.T) {
	svc, store := newArticleServiceForTest(t)

	req := validArticleRequest(strPtr(" 10.1000/tdd "))
	req.BibtexData = json.RawMessage(`{"type":"article"}`)
	article, err := svc.Create(context.Background(), req, submitter)
	require.NoError(t, err)

	assert.Equal(t, models.ArticleStatusPendingReview, article.Status)
	assert.Equal(t, "u-sub", article.SubmittedBy)
	assert.Equal(t, "10.1000/tdd", *article.DOI)
	assert.True(t, article.BibtexData.Valid)
	require.NotNil(t, article.Submitter)
	assert.Equal(t, "Sam", article.Submitter.FirstName)
	assert.Empty(t, article.Ratings)
	require.Len(t, store.audits, 1)
	assert.Equal(t, models.AuditActionArticleCreate, store.audits[0].Action)
}

func TestArticleServiceCreateRejectsDuplicateDOI(t *testing.T) {
	svc, _ := newArticleServiceForTest(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, validArticleRequest(strPtr("10.1000/dup")), submitter)
	require.NoError(t, err)

	_, err = svc.Create(ctx, validArticleRequest(strPtr("10.1000/dup")), analyst)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrDuplicateDOI))

	// articles without a DOI never collide
	_, err = svc.Create(ctx, validArticleRequest(nil), submitter)
	require.NoError(t, err)
	_, err = svc.Create(ctx, validArticleRequest(strPtr("  ")), submitter)
	require.NoError(t, err)
}

func TestArticleServiceCreateValidation(t *testing.T) {
	svc, _ := newArticleServiceForTest(t)

	req := validArticleRequest(nil)
	req.Title = "   "
	req.Authors = nil
	req.PublicationYear = 1850
	_, err := svc.Create(context.Background(), req, submitter)
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	fields, ok := appErr.Details["fields"].(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "notblank", fields["title"])
	assert.Equal(t, "required", fields["authors"])
	assert.Equal(t, "pubyear", fields["publicationYear"])
}

func TestArticleServiceApproveAndRejectAreSingleShot(t *testing.T) {
	svc, store := newArticleServiceForTest(t)
	ctx := context.Background()

	approved := store.put(models.Article{Title: "A", Status: models.ArticleStatusPendingReview, SubmittedBy: "u-sub"})
	detail, err := svc.Approve(ctx, approved.ID, moderator.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.ArticleStatusPendingAnalysis, detail.Status)
	assert.Equal(t, fixedNow, *detail.ReviewedAt)
	require.NotNil(t, detail.Reviewer)
	assert.Equal(t, "Mo", detail.Reviewer.FirstName)

	_, err = svc.Approve(ctx, approved.ID, moderator.UserID)
	assert.True(t, errors.Is(err, appErrors.ErrWrongState))
	_, err = svc.Reject(ctx, approved.ID, moderator.UserID, dto.RejectArticleRequest{})
	assert.True(t, errors.Is(err, appErrors.ErrWrongState))

	rejected := store.put(models.Article{Title: "B", Status: models.ArticleStatusPendingReview, SubmittedBy: "u-sub"})
	detail, err = svc.Reject(ctx, rejected.ID, moderator.UserID, dto.RejectArticleRequest{Reason: " off topic "})
	require.NoError(t, err)
	assert.Equal(t, models.ArticleStatusRejected, detail.Status)
	assert.Equal(t, "off topic", *detail.RejectionReason)

	_, err = svc.Reject(ctx, rejected.ID, moderator.UserID, dto.RejectArticleRequest{})
	assert.True(t, errors.Is(err, appErrors.ErrWrongState))
	_, err = svc.Approve(ctx, rejected.ID, moderator.UserID)
	assert.True(t, errors.Is(err, appErrors.ErrWrongState))
	assert.Equal(t, models.ArticleStatusRejected, store.status(rejected.ID))
}

func TestArticleServiceReviewLosesRace(t *testing.T) {
	svc, store := newArticleServiceForTest(t)
	article := store.put(models.Article{Title: "A", Status: models.ArticleStatusPendingReview, SubmittedBy: "u-sub"})
	store.reviewErr = repository.ErrStateConflict

	_, err := svc.Approve(context.Background(), article.ID, moderator.UserID)
	assert.True(t, errors.Is(err, appErrors.ErrWrongState))
}

func TestArticleServiceApproveMissing(t *testing.T) {
	svc, _ := newArticleServiceForTest(t)

	_, err := svc.Approve(context.Background(), "nope", moderator.UserID)
	assert.True(t, errors.Is(err, appErrors.ErrArticleNotFound))
}

func TestArticleServiceUpdatePermissions(t *testing.T) {
	svc, store := newArticleServiceForTest(t)
	ctx := context.Background()
	patch := dto.UpdateArticleRequest{Title: strPtr("Revised")}

	pending := store.put(models.Article{Title: "A", Status: models.ArticleStatusPendingReview, SubmittedBy: "u-sub"})
	reviewed := store.put(models.Article{Title: "B", Status: models.ArticleStatusPendingAnalysis, SubmittedBy: "u-sub"})

	cases := []struct {
		name    string
		id      string
		actor   models.Actor
		allowed bool
	}{
		{"owner while pending", pending.ID, submitter, true},
		{"owner after review", reviewed.ID, submitter, false},
		{"moderator not owner", pending.ID, moderator, false},
		{"admin after review", reviewed.ID, admin, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			detail, err := svc.Update(ctx, tc.id, patch, tc.actor)
			if !tc.allowed {
				assert.True(t, errors.Is(err, appErrors.ErrForbidden))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Revised", detail.Title)
		})
	}
	assert.Equal(t, models.ArticleStatusPendingAnalysis, store.status(reviewed.ID))
}

func TestArticleServiceUpdateDOIConflict(t *testing.T) {
	svc, store := newArticleServiceForTest(t)
	store.put(models.Article{Title: "A", DOI: strPtr("10.1/a"), Status: models.ArticleStatusPendingReview, SubmittedBy: "u-sub"})
	b := store.put(models.Article{Title: "B", DOI: strPtr("10.1/b"), Status: models.ArticleStatusPendingReview, SubmittedBy: "u-sub"})

	_, err := svc.Update(context.Background(), b.ID, dto.UpdateArticleRequest{DOI: strPtr("10.1/a")}, submitter)
	assert.True(t, errors.Is(err, appErrors.ErrDuplicateDOI))

	detail, err := svc.Update(context.Background(), b.ID, dto.UpdateArticleRequest{DOI: strPtr("10.1/b")}, submitter)
	require.NoError(t, err)
	assert.Equal(t, "10.1/b", *detail.DOI)
}

func TestArticleServiceRateReplacesEarlierScore(t *testing.T) {
	svc, store := newArticleServiceForTest(t)
	ctx := context.Background()
	article := store.put(models.Article{Title: "A", Status: models.ArticleStatusAnalyzed, SubmittedBy: "u-sub"})

	_, err := svc.Rate(ctx, article.ID, "u-1", dto.RateArticleRequest{Value: 4})
	require.NoError(t, err)
	_, err = svc.Rate(ctx, article.ID, "u-2", dto.RateArticleRequest{Value: 5})
	require.NoError(t, err)
	detail, err := svc.Rate(ctx, article.ID, "u-1", dto.RateArticleRequest{Value: 1})
	require.NoError(t, err)

	assert.Len(t, detail.Ratings, 2)
	assert.Equal(t, 3.0, detail.AverageRating)

	for _, value := range []int{0, 6} {
		_, err = svc.Rate(ctx, article.ID, "u-1", dto.RateArticleRequest{Value: value})
		assert.True(t, errors.Is(err, appErrors.ErrInvalidRating))
	}
	_, err = svc.Rate(ctx, "missing", "u-1", dto.RateArticleRequest{Value: 3})
	assert.True(t, errors.Is(err, appErrors.ErrArticleNotFound))
}

func TestArticleServiceListings(t *testing.T) {
	svc, store := newArticleServiceForTest(t)
	ctx := context.Background()
	store.put(models.Article{Title: "A", Status: models.ArticleStatusPendingReview, SubmittedBy: "u-sub"})
	store.put(models.Article{Title: "B", Status: models.ArticleStatusPendingAnalysis, SubmittedBy: "u-other"})
	store.put(models.Article{Title: "C", Status: models.ArticleStatusApproved, SubmittedBy: "u-sub"})

	pendingReview, err := svc.ListPendingReview(ctx)
	require.NoError(t, err)
	require.Len(t, pendingReview, 1)
	assert.Equal(t, "A", pendingReview[0].Title)

	pendingAnalysis, err := svc.ListPendingAnalysis(ctx)
	require.NoError(t, err)
	require.Len(t, pendingAnalysis, 1)
	assert.Equal(t, "B", pendingAnalysis[0].Title)

	mine, err := svc.ListBySubmitter(ctx, "u-sub")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := svc.List(ctx, dto.ArticleQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = svc.List(ctx, dto.ArticleQuery{Status: "bogus"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestArticleServiceDelete(t *testing.T) {
	svc, store := newArticleServiceForTest(t)
	article := store.put(models.Article{Title: "A", Status: models.ArticleStatusAnalyzed, SubmittedBy: "u-sub"})

	require.NoError(t, svc.Delete(context.Background(), article.ID, admin.UserID))
	_, err := svc.Get(context.Background(), article.ID)
	assert.True(t, errors.Is(err, appErrors.ErrArticleNotFound))

	err = svc.Delete(context.Background(), article.ID, admin.UserID)
	assert.True(t, errors.Is(err, appErrors.ErrArticleNotFound))
}
