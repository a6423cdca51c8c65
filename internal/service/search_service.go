package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/se-evidence-api/internal/models"
	appErrors "github.com/noah-isme/se-evidence-api/pkg/errors"
)

// DefaultFreeTextLimit caps free-text article search results.
const DefaultFreeTextLimit = 50

type articleSearchStore interface {
	articleLookup
	List(ctx context.Context, filter models.ArticleFilter) ([]models.Article, error)
}

type evidenceSearchStore interface {
	List(ctx context.Context, filter models.EvidenceFilter) ([]models.Evidence, error)
}

// searchableStatuses are the statuses visible to free-text search.
var searchableStatuses = []models.ArticleStatus{models.ArticleStatusAnalyzed, models.ArticleStatusPublished}

// SearchService serves read-only free-text, facet and advanced queries. The
// boolean returned by each query reports whether the result came from cache.
type SearchService struct {
	articles      articleSearchStore
	evidence      evidenceSearchStore
	expander      detailExpander
	resolver      evidenceResolver
	cache         *CacheService
	metrics       *MetricsService
	logger        *zap.Logger
	freeTextLimit int
}

// NewSearchService constructs the service. A nil cache disables caching.
func NewSearchService(articles articleSearchStore, evidence evidenceSearchStore, users userDirectory, cache *CacheService, metrics *MetricsService, logger *zap.Logger, freeTextLimit int) *SearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if freeTextLimit <= 0 {
		freeTextLimit = DefaultFreeTextLimit
	}
	expander := detailExpander{users: users}
	return &SearchService{
		articles:      articles,
		evidence:      evidence,
		expander:      expander,
		resolver:      evidenceResolver{articles: articles, expander: expander},
		cache:         cache,
		metrics:       metrics,
		logger:        logger,
		freeTextLimit: freeTextLimit,
	}
}

// SearchArticles matches query against title or abstract of analyzed and
// published articles. The query is matched as given, surrounding whitespace
// included. A blank query returns no results without querying storage.
func (s *SearchService) SearchArticles(ctx context.Context, query string) ([]models.ArticleDetail, bool, error) {
	if strings.TrimSpace(query) == "" {
		return []models.ArticleDetail{}, false, nil
	}
	key := cacheKey("search:articles", query)
	return cached(ctx, s.cache, key, func() ([]models.ArticleDetail, error) {
		start := time.Now()
		articles, err := s.articles.List(ctx, models.ArticleFilter{
			Status: searchableStatuses,
			Query:  query,
			Limit:  s.freeTextLimit,
		})
		s.metrics.ObserveDBQuery("search_articles", time.Since(start))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search articles")
		}
		s.metrics.ObserveSearchResults("articles", len(articles))
		return s.expander.articles(ctx, articles)
	})
}

// SearchByPractice returns evidence whose practice equals practice exactly.
func (s *SearchService) SearchByPractice(ctx context.Context, practice string) ([]models.EvidenceDetail, bool, error) {
	if strings.TrimSpace(practice) == "" {
		return []models.EvidenceDetail{}, false, nil
	}
	filter := models.EvidenceFilter{SEPractice: practice}
	return s.searchEvidence(ctx, "practice", cacheKey("search:practice", filter), filter, nil)
}

// SearchByClaim returns evidence whose claim contains claim, ignoring case.
func (s *SearchService) SearchByClaim(ctx context.Context, claim string) ([]models.EvidenceDetail, bool, error) {
	if strings.TrimSpace(claim) == "" {
		return []models.EvidenceDetail{}, false, nil
	}
	filter := models.EvidenceFilter{ClaimContains: claim}
	return s.searchEvidence(ctx, "claim", cacheKey("search:claim", filter), filter, nil)
}

// SearchAdvanced selects evidence by its own fields, resolves the referenced
// articles in one batch and keeps only pairs whose article satisfies the
// article-side constraints. Absent or blank fields impose no constraint.
// A filter no evidence can satisfy, such as an unknown result or an inverted
// year range, yields an empty result without querying storage.
func (s *SearchService) SearchAdvanced(ctx context.Context, filter models.AdvancedSearchFilter) ([]models.EvidenceDetail, bool, error) {
	filter.Query = blankToEmpty(filter.Query)
	filter.SEPractice = blankToEmpty(filter.SEPractice)
	filter.Claim = blankToEmpty(filter.Claim)
	if filter.Unsatisfiable() {
		return []models.EvidenceDetail{}, false, nil
	}

	articleFilter := filter.ArticleFilter()
	var keep func(models.Article) bool
	if !articleFilter.Empty() {
		keep = articleFilter.Matches
	}
	return s.searchEvidence(ctx, "advanced", cacheKey("search:advanced", filter), filter.EvidenceFilter(), keep)
}

func (s *SearchService) searchEvidence(ctx context.Context, kind, key string, filter models.EvidenceFilter, keep func(models.Article) bool) ([]models.EvidenceDetail, bool, error) {
	return cached(ctx, s.cache, key, func() ([]models.EvidenceDetail, error) {
		start := time.Now()
		items, err := s.evidence.List(ctx, filter)
		s.metrics.ObserveDBQuery("search_evidence", time.Since(start))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search evidence")
		}
		start = time.Now()
		details, err := s.resolver.resolve(ctx, items, keep)
		s.metrics.ObserveDBQuery("search_resolve_articles", time.Since(start))
		if err != nil {
			return nil, err
		}
		s.metrics.ObserveSearchResults(kind, len(details))
		return details, nil
	})
}

func blankToEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}
