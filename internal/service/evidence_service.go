package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/se-evidence-api/internal/dto"
	"github.com/noah-isme/se-evidence-api/internal/models"
	"github.com/noah-isme/se-evidence-api/internal/repository"
	appErrors "github.com/noah-isme/se-evidence-api/pkg/errors"
)

type evidenceStore interface {
	FindByID(ctx context.Context, id string) (*models.Evidence, error)
	List(ctx context.Context, filter models.EvidenceFilter) ([]models.Evidence, error)
	ExistsForArticle(ctx context.Context, articleID string) (bool, error)
	CreateWithAnalysis(ctx context.Context, evidence *models.Evidence, analysis models.ArticleAnalysis) error
	Update(ctx context.Context, evidence *models.Evidence) error
	Delete(ctx context.Context, id string) error
}

// EvidenceService links exactly one evidence record to each analyzed article.
type EvidenceService struct {
	repo      evidenceStore
	articles  articleLookup
	resolver  evidenceResolver
	audit     auditTrail
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// EvidenceServiceOption configures the service.
type EvidenceServiceOption func(*EvidenceService)

// WithEvidenceCache invalidates cached search results after every mutation.
func WithEvidenceCache(cache *CacheService) EvidenceServiceOption {
	return func(s *EvidenceService) {
		s.cache = cache
	}
}

// WithEvidenceMetrics records evidence creation and the analysis transition.
func WithEvidenceMetrics(metrics *MetricsService) EvidenceServiceOption {
	return func(s *EvidenceService) {
		s.metrics = metrics
	}
}

// WithEvidenceClock overrides the time source used for analysis timestamps.
func WithEvidenceClock(now func() time.Time) EvidenceServiceOption {
	return func(s *EvidenceService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewEvidenceService constructs the service.
func NewEvidenceService(repo evidenceStore, articles articleLookup, users userDirectory, audit auditLogger, validate *validator.Validate, logger *zap.Logger, opts ...EvidenceServiceOption) *EvidenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &EvidenceService{
		repo:      repo,
		articles:  articles,
		resolver:  evidenceResolver{articles: articles, expander: detailExpander{users: users}},
		audit:     auditTrail{store: audit, source: "evidence-service", logger: logger},
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

// Create records evidence for an approved article and marks the article analyzed.
// Both writes commit together.
func (s *EvidenceService) Create(ctx context.Context, req dto.CreateEvidenceRequest, analystID string) (*models.EvidenceDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid evidence payload")
	}

	article, err := s.articles.FindByID(ctx, req.ArticleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, articleNotFound(req.ArticleID)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load article")
	}

	exists, err := s.repo.ExistsForArticle(ctx, article.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing evidence")
	}
	if exists {
		return nil, evidenceExists(article.ID)
	}

	next, err := article.Status.Transition(models.ArticleActionRecordEvidence)
	if err != nil {
		s.metrics.RecordTransition(string(models.ArticleActionRecordEvidence), false)
		notApproved := appErrors.WithDetails(appErrors.ErrArticleNotApproved, map[string]interface{}{
			"articleId": article.ID,
			"status":    article.Status,
		})
		notApproved.Err = err
		return nil, notApproved
	}

	analyzedAt := s.now()
	evidence := &models.Evidence{
		ArticleID:        article.ID,
		SEPractice:       strings.TrimSpace(req.SEPractice),
		Claim:            strings.TrimSpace(req.Claim),
		EvidenceResult:   req.EvidenceResult,
		ResearchType:     req.ResearchType,
		ParticipantType:  req.ParticipantType,
		ParticipantCount: req.ParticipantCount,
		Summary:          req.Summary,
		Notes:            req.Notes,
		AnalyzedBy:       analystID,
		CreatedAt:        analyzedAt,
	}
	analysis := models.ArticleAnalysis{
		ArticleID:  article.ID,
		AnalyzedBy: analystID,
		AnalyzedAt: analyzedAt,
		From:       models.ArticleActionRecordEvidence.Sources(),
		To:         next,
	}
	if err := s.repo.CreateWithAnalysis(ctx, evidence, analysis); err != nil {
		return nil, s.createConflict(ctx, article, err)
	}
	s.metrics.RecordTransition(string(models.ArticleActionRecordEvidence), true)
	s.metrics.RecordEvidenceCreated()

	s.audit.emit(ctx, analystID, models.AuditActionEvidenceCreate, models.AuditResourceEvidence, evidence.ID, nil, map[string]interface{}{
		"articleId":  evidence.ArticleID,
		"sePractice": evidence.SEPractice,
	})
	s.invalidateSearch(ctx)

	article.Status = next
	article.AnalyzedBy = &analystID
	article.AnalyzedAt = &analyzedAt
	details, err := s.resolver.expander.evidence(ctx, []models.Evidence{*evidence}, map[string]models.Article{article.ID: *article})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// Get returns evidence with its article and analyst expanded.
func (s *EvidenceService) Get(ctx context.Context, id string) (*models.EvidenceDetail, error) {
	evidence, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	details, err := s.resolver.resolve(ctx, []models.Evidence{*evidence}, nil)
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// List returns every evidence record.
func (s *EvidenceService) List(ctx context.Context) ([]models.EvidenceDetail, error) {
	return s.list(ctx, models.EvidenceFilter{})
}

// ListByArticle returns the evidence linked to articleID (zero or one record).
func (s *EvidenceService) ListByArticle(ctx context.Context, articleID string) ([]models.EvidenceDetail, error) {
	return s.list(ctx, models.EvidenceFilter{ArticleID: articleID})
}

// ListByPractice returns evidence whose practice equals practice exactly.
func (s *EvidenceService) ListByPractice(ctx context.Context, practice string) ([]models.EvidenceDetail, error) {
	return s.list(ctx, models.EvidenceFilter{SEPractice: practice})
}

// Update applies a field-level patch. The article link and article status are untouched.
func (s *EvidenceService) Update(ctx context.Context, id string, req dto.UpdateEvidenceRequest, actorID string) (*models.EvidenceDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid evidence payload")
	}
	evidence, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	old := map[string]interface{}{"claim": evidence.Claim, "isPublished": evidence.IsPublished}
	applyEvidencePatch(evidence, req)

	if err := s.repo.Update(ctx, evidence); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, evidenceNotFound(id)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update evidence")
	}

	s.audit.emit(ctx, actorID, models.AuditActionEvidenceUpdate, models.AuditResourceEvidence, evidence.ID, old,
		map[string]interface{}{"claim": evidence.Claim, "isPublished": evidence.IsPublished})
	s.invalidateSearch(ctx)

	details, err := s.resolver.resolve(ctx, []models.Evidence{*evidence}, nil)
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// Delete removes evidence. The article keeps its analyzed status.
func (s *EvidenceService) Delete(ctx context.Context, id, actorID string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return evidenceNotFound(id)
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete evidence")
	}
	s.audit.emit(ctx, actorID, models.AuditActionEvidenceDelete, models.AuditResourceEvidence, id, nil, nil)
	s.invalidateSearch(ctx)
	return nil
}

func (s *EvidenceService) list(ctx context.Context, filter models.EvidenceFilter) ([]models.EvidenceDetail, error) {
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list evidence")
	}
	return s.resolver.resolve(ctx, items, nil)
}

func (s *EvidenceService) load(ctx context.Context, id string) (*models.Evidence, error) {
	evidence, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, evidenceNotFound(id)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evidence")
	}
	return evidence, nil
}

// createConflict maps a failed transactional create to the error the caller
// would have seen had it lost the race before its own checks.
func (s *EvidenceService) createConflict(ctx context.Context, article *models.Article, err error) error {
	switch {
	case errors.Is(err, repository.ErrUniqueViolation):
		return evidenceExists(article.ID)
	case errors.Is(err, repository.ErrStateConflict):
		s.metrics.RecordTransition(string(models.ArticleActionRecordEvidence), false)
		if exists, checkErr := s.repo.ExistsForArticle(ctx, article.ID); checkErr == nil && exists {
			return evidenceExists(article.ID)
		}
		return appErrors.WithDetails(appErrors.ErrArticleNotApproved, map[string]interface{}{"articleId": article.ID})
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create evidence")
}

func (s *EvidenceService) invalidateSearch(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, searchCachePattern); err != nil {
		s.logger.Warn("failed to invalidate search cache", zap.Error(err))
	}
}

func applyEvidencePatch(evidence *models.Evidence, req dto.UpdateEvidenceRequest) {
	if req.SEPractice != nil {
		evidence.SEPractice = strings.TrimSpace(*req.SEPractice)
	}
	if req.Claim != nil {
		evidence.Claim = strings.TrimSpace(*req.Claim)
	}
	if req.EvidenceResult != nil {
		evidence.EvidenceResult = *req.EvidenceResult
	}
	if req.ResearchType != nil {
		evidence.ResearchType = *req.ResearchType
	}
	if req.ParticipantType != nil {
		evidence.ParticipantType = *req.ParticipantType
	}
	if req.ParticipantCount != nil {
		evidence.ParticipantCount = req.ParticipantCount
	}
	if req.Summary != nil {
		evidence.Summary = req.Summary
	}
	if req.Notes != nil {
		evidence.Notes = req.Notes
	}
	if req.IsPublished != nil {
		evidence.IsPublished = *req.IsPublished
	}
}

func evidenceExists(articleID string) *appErrors.Error {
	return appErrors.WithDetails(appErrors.ErrEvidenceExists, map[string]interface{}{"articleId": articleID})
}

func evidenceNotFound(id string) *appErrors.Error {
	return appErrors.WithDetails(appErrors.Clone(appErrors.ErrNotFound, "evidence not found"), map[string]interface{}{"evidenceId": id})
}
