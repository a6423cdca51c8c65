package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/se-evidence-api/internal/dto"
	"github.com/noah-isme/se-evidence-api/internal/models"
	"github.com/noah-isme/se-evidence-api/internal/repository"
	appErrors "github.com/noah-isme/se-evidence-api/pkg/errors"
)

const searchCachePattern = "search:*"

type articleStore interface {
	Create(ctx context.Context, article *models.Article) error
	FindByID(ctx context.Context, id string) (*models.Article, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]models.Article, error)
	List(ctx context.Context, filter models.ArticleFilter) ([]models.Article, error)
	ExistsByDOI(ctx context.Context, doi, excludeID string) (bool, error)
	Update(ctx context.Context, article *models.Article) error
	Review(ctx context.Context, params repository.ReviewParams) error
	Delete(ctx context.Context, id string) error
	UpsertRating(ctx context.Context, rating models.Rating) ([]models.Rating, float64, error)
}

// ArticleService drives the article lifecycle: submission, moderation, rating and removal.
type ArticleService struct {
	repo      articleStore
	expander  detailExpander
	audit     auditTrail
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// ArticleServiceOption configures the service.
type ArticleServiceOption func(*ArticleService)

// WithArticleCache invalidates cached search results after every mutation.
func WithArticleCache(cache *CacheService) ArticleServiceOption {
	return func(s *ArticleService) {
		s.cache = cache
	}
}

// WithArticleMetrics records workflow transitions.
func WithArticleMetrics(metrics *MetricsService) ArticleServiceOption {
	return func(s *ArticleService) {
		s.metrics = metrics
	}
}

// WithArticleClock overrides the time source used for review timestamps.
func WithArticleClock(now func() time.Time) ArticleServiceOption {
	return func(s *ArticleService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewArticleService constructs the service.
func NewArticleService(repo articleStore, users userDirectory, audit auditLogger, validate *validator.Validate, logger *zap.Logger, opts ...ArticleServiceOption) *ArticleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ArticleService{
		repo:      repo,
		expander:  detailExpander{users: users},
		audit:     auditTrail{store: audit, source: "article-service", logger: logger},
		validator: newValidator(validate),
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Create submits a new article in pending_review on behalf of the actor.
func (s *ArticleService) Create(ctx context.Context, req dto.CreateArticleRequest, actor models.Actor) (*models.ArticleDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid article payload")
	}

	doi := normalizeDOI(req.DOI)
	if err := s.ensureDOIAvailable(ctx, doi, ""); err != nil {
		return nil, err
	}

	article := &models.Article{
		Title:           strings.TrimSpace(req.Title),
		Authors:         trimAll(req.Authors),
		PublicationYear: req.PublicationYear,
		DOI:             doi,
		JournalName:     req.JournalName,
		Volume:          req.Volume,
		Pages:           req.Pages,
		Abstract:        req.Abstract,
		URL:             req.URL,
		BibtexData:      bibtexData(req.BibtexData),
		Status:          models.ArticleStatusPendingReview,
		SubmittedBy:     actor.UserID,
		Ratings:         []models.Rating{},
	}
	if err := s.repo.Create(ctx, article); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, duplicateDOI(doi)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create article")
	}

	s.audit.emit(ctx, actor.UserID, models.AuditActionArticleCreate, models.AuditResourceArticle, article.ID, nil, map[string]interface{}{
		"title":  article.Title,
		"status": article.Status,
	})
	s.invalidateSearch(ctx)
	return s.expander.article(ctx, *article)
}

// Get returns an article with its user references expanded.
func (s *ArticleService) Get(ctx context.Context, id string) (*models.ArticleDetail, error) {
	article, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.expander.article(ctx, *article)
}

// List returns all articles, optionally restricted to one status.
func (s *ArticleService) List(ctx context.Context, query dto.ArticleQuery) ([]models.ArticleDetail, error) {
	filter := models.ArticleFilter{}
	if query.Status != "" {
		if !query.Status.Valid() {
			return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "unknown article status"),
				map[string]interface{}{"status": query.Status})
		}
		filter.Status = []models.ArticleStatus{query.Status}
	}
	return s.list(ctx, filter)
}

// ListBySubmitter returns the articles submitted by userID.
func (s *ArticleService) ListBySubmitter(ctx context.Context, userID string) ([]models.ArticleDetail, error) {
	return s.list(ctx, models.ArticleFilter{SubmittedBy: userID})
}

// ListPendingReview returns the moderation queue.
func (s *ArticleService) ListPendingReview(ctx context.Context) ([]models.ArticleDetail, error) {
	return s.list(ctx, models.ArticleFilter{Status: []models.ArticleStatus{models.ArticleStatusPendingReview}})
}

// ListPendingAnalysis returns the analysis queue.
func (s *ArticleService) ListPendingAnalysis(ctx context.Context) ([]models.ArticleDetail, error) {
	return s.list(ctx, models.ArticleFilter{Status: []models.ArticleStatus{models.ArticleStatusPendingAnalysis}})
}

// Update applies a bibliographic patch. Only admins, or the submitter while the
// article awaits review, may edit. Status and submitter never change here.
func (s *ArticleService) Update(ctx context.Context, id string, req dto.UpdateArticleRequest, actor models.Actor) (*models.ArticleDetail, error) {
	article, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanPerform(ActionArticleUpdate, actor, ArticleResource(article)) {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrForbidden, "you do not have permission to edit this article"),
			map[string]interface{}{"articleId": id})
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid article payload")
	}

	old := map[string]interface{}{"title": article.Title, "doi": article.DOI}
	if req.DOI != nil {
		doi := normalizeDOI(req.DOI)
		if !sameDOI(doi, article.DOI) {
			if err := s.ensureDOIAvailable(ctx, doi, article.ID); err != nil {
				return nil, err
			}
		}
		article.DOI = doi
	}
	applyArticlePatch(article, req)

	if err := s.repo.Update(ctx, article); err != nil {
		switch {
		case errors.Is(err, repository.ErrUniqueViolation):
			return nil, duplicateDOI(article.DOI)
		case errors.Is(err, sql.ErrNoRows):
			return nil, articleNotFound(id)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update article")
	}

	s.audit.emit(ctx, actor.UserID, models.AuditActionArticleUpdate, models.AuditResourceArticle, article.ID, old,
		map[string]interface{}{"title": article.Title, "doi": article.DOI})
	s.invalidateSearch(ctx)
	return s.expander.article(ctx, *article)
}

// Approve moves a pending_review article to pending_analysis.
func (s *ArticleService) Approve(ctx context.Context, id, reviewerID string) (*models.ArticleDetail, error) {
	return s.review(ctx, id, reviewerID, models.ArticleActionApprove, nil)
}

// Reject moves a pending_review article to rejected, keeping the optional reason.
func (s *ArticleService) Reject(ctx context.Context, id, reviewerID string, req dto.RejectArticleRequest) (*models.ArticleDetail, error) {
	var reason *string
	if trimmed := strings.TrimSpace(req.Reason); trimmed != "" {
		reason = &trimmed
	}
	return s.review(ctx, id, reviewerID, models.ArticleActionReject, reason)
}

// Delete permanently removes an article and its ratings.
func (s *ArticleService) Delete(ctx context.Context, id, actorID string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return articleNotFound(id)
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete article")
	}
	s.audit.emit(ctx, actorID, models.AuditActionArticleDelete, models.AuditResourceArticle, id, nil, nil)
	s.invalidateSearch(ctx)
	return nil
}

// Rate records the user's 1-5 rating, replacing any earlier one, and returns the
// article with the recomputed average.
func (s *ArticleService) Rate(ctx context.Context, id, userID string, req dto.RateArticleRequest) (*models.ArticleDetail, error) {
	if req.Value < 1 || req.Value > 5 {
		return nil, appErrors.WithDetails(appErrors.ErrInvalidRating, map[string]interface{}{"value": req.Value})
	}
	if _, _, err := s.repo.UpsertRating(ctx, models.Rating{ArticleID: id, UserID: userID, Value: req.Value}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, articleNotFound(id)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rate article")
	}
	s.invalidateSearch(ctx)
	return s.Get(ctx, id)
}

func (s *ArticleService) review(ctx context.Context, id, reviewerID string, action models.ArticleAction, reason *string) (*models.ArticleDetail, error) {
	article, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := article.Status.Transition(action)
	if err != nil {
		s.metrics.RecordTransition(string(action), false)
		return nil, wrongState(article, err)
	}

	reviewedAt := s.now()
	params := repository.ReviewParams{
		ID:              article.ID,
		From:            action.Sources(),
		To:              next,
		ReviewedBy:      reviewerID,
		ReviewedAt:      reviewedAt,
		RejectionReason: reason,
	}
	if err := s.repo.Review(ctx, params); err != nil {
		if errors.Is(err, repository.ErrStateConflict) {
			s.metrics.RecordTransition(string(action), false)
			return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrWrongState, "article was reviewed concurrently"),
				map[string]interface{}{"articleId": id})
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to review article")
	}
	s.metrics.RecordTransition(string(action), true)

	previous := article.Status
	article.Status = next
	article.ReviewedBy = &reviewerID
	article.ReviewedAt = &reviewedAt
	article.RejectionReason = reason
	article.UpdatedAt = reviewedAt

	s.audit.emit(ctx, reviewerID, models.AuditActionArticleReview, models.AuditResourceArticle, article.ID,
		map[string]interface{}{"status": previous},
		map[string]interface{}{"status": next, "rejectionReason": reason})
	s.invalidateSearch(ctx)
	return s.expander.article(ctx, *article)
}

func (s *ArticleService) list(ctx context.Context, filter models.ArticleFilter) ([]models.ArticleDetail, error) {
	articles, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list articles")
	}
	return s.expander.articles(ctx, articles)
}

func (s *ArticleService) load(ctx context.Context, id string) (*models.Article, error) {
	article, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, articleNotFound(id)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load article")
	}
	return article, nil
}

func (s *ArticleService) ensureDOIAvailable(ctx context.Context, doi *string, excludeID string) error {
	if doi == nil {
		return nil
	}
	exists, err := s.repo.ExistsByDOI(ctx, *doi, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check doi")
	}
	if exists {
		return duplicateDOI(doi)
	}
	return nil
}

func (s *ArticleService) invalidateSearch(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, searchCachePattern); err != nil {
		s.logger.Warn("failed to invalidate search cache", zap.Error(err))
	}
}

func applyArticlePatch(article *models.Article, req dto.UpdateArticleRequest) {
	if req.Title != nil {
		article.Title = strings.TrimSpace(*req.Title)
	}
	if len(req.Authors) > 0 {
		article.Authors = trimAll(req.Authors)
	}
	if req.PublicationYear != nil {
		article.PublicationYear = *req.PublicationYear
	}
	if req.JournalName != nil {
		article.JournalName = req.JournalName
	}
	if req.Volume != nil {
		article.Volume = req.Volume
	}
	if req.Pages != nil {
		article.Pages = req.Pages
	}
	if req.Abstract != nil {
		article.Abstract = req.Abstract
	}
	if req.URL != nil {
		article.URL = req.URL
	}
	if len(req.BibtexData) > 0 {
		article.BibtexData = bibtexData(req.BibtexData)
	}
}

func articleNotFound(id string) *appErrors.Error {
	return appErrors.WithDetails(appErrors.ErrArticleNotFound, map[string]interface{}{"articleId": id})
}

func duplicateDOI(doi *string) *appErrors.Error {
	details := map[string]interface{}{"field": "doi"}
	if doi != nil {
		details["doi"] = *doi
	}
	return appErrors.WithDetails(appErrors.ErrDuplicateDOI, details)
}

func wrongState(article *models.Article, cause error) *appErrors.Error {
	err := appErrors.WithDetails(appErrors.Clone(appErrors.ErrWrongState, cause.Error()), map[string]interface{}{
		"articleId": article.ID,
		"status":    article.Status,
	})
	err.Err = cause
	return err
}

func normalizeDOI(doi *string) *string {
	if doi == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*doi)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func sameDOI(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func trimAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

func bibtexData(raw []byte) types.NullJSONText {
	if len(raw) == 0 || string(raw) == "null" {
		return types.NullJSONText{}
	}
	return types.NullJSONText{JSONText: types.JSONText(raw), Valid: true}
}
