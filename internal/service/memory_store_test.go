package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/noah-isme/se-evidence-api/internal/models"
	"github.com/noah-isme/se-evidence-api/internal/repository"
)

// memoryCatalog backs the article, evidence, user and audit interfaces with maps
// so service tests exercise the same conflict paths as the Postgres repositories.
type memoryCatalog struct {
	mu       sync.Mutex
	seq      int
	articles map[string]models.Article
	order    []string
	evidence map[string]models.Evidence
	evOrder  []string
	users    map[string]models.UserSummary
	audits   []models.AuditLog

	listCalls   int
	reviewErr   error
	createEvErr error
}

func newMemoryCatalog() *memoryCatalog {
	return &memoryCatalog{
		articles: map[string]models.Article{},
		evidence: map[string]models.Evidence{},
		users:    map[string]models.UserSummary{},
	}
}

func (m *memoryCatalog) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memoryCatalog) addUser(id, first, last string) {
	m.users[id] = models.UserSummary{ID: id, FirstName: first, LastName: last, Email: id + "@example.test"}
}

func (m *memoryCatalog) put(article models.Article) models.Article {
	m.mu.Lock()
	defer m.mu.Unlock()
	if article.ID == "" {
		article.ID = m.nextID("article")
	}
	if _, ok := m.articles[article.ID]; !ok {
		m.order = append(m.order, article.ID)
	}
	m.articles[article.ID] = article
	return article
}

func (m *memoryCatalog) status(id string) models.ArticleStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.articles[id].Status
}

// articleStore

func (m *memoryCatalog) Create(ctx context.Context, article *models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if article.DOI != nil && m.doiTaken(*article.DOI, "") {
		return repository.ErrUniqueViolation
	}
	article.ID = m.nextID("article")
	m.articles[article.ID] = *article
	m.order = append(m.order, article.ID)
	return nil
}

func (m *memoryCatalog) FindByID(ctx context.Context, id string) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	article, ok := m.articles[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	article.Ratings = append([]models.Rating(nil), article.Ratings...)
	return &article, nil
}

func (m *memoryCatalog) FindByIDs(ctx context.Context, ids []string) (map[string]models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]models.Article, len(ids))
	for _, id := range ids {
		if article, ok := m.articles[id]; ok {
			out[id] = article
		}
	}
	return out, nil
}

func (m *memoryCatalog) List(ctx context.Context, filter models.ArticleFilter) ([]models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	query := strings.ToLower(filter.Query)
	var out []models.Article
	for _, id := range m.order {
		article, ok := m.articles[id]
		if !ok {
			continue
		}
		if len(filter.Status) > 0 && !containsStatus(filter.Status, article.Status) {
			continue
		}
		if filter.SubmittedBy != "" && article.SubmittedBy != filter.SubmittedBy {
			continue
		}
		if query != "" {
			abstract := ""
			if article.Abstract != nil {
				abstract = *article.Abstract
			}
			if !strings.Contains(strings.ToLower(article.Title), query) && !strings.Contains(strings.ToLower(abstract), query) {
				continue
			}
		}
		out = append(out, article)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (m *memoryCatalog) ExistsByDOI(ctx context.Context, doi, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doiTaken(doi, excludeID), nil
}

func (m *memoryCatalog) doiTaken(doi, excludeID string) bool {
	for id, article := range m.articles {
		if id != excludeID && article.DOI != nil && *article.DOI == doi {
			return true
		}
	}
	return false
}

func (m *memoryCatalog) Update(ctx context.Context, article *models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.articles[article.ID]
	if !ok {
		return sql.ErrNoRows
	}
	if article.DOI != nil && m.doiTaken(*article.DOI, article.ID) {
		return repository.ErrUniqueViolation
	}
	updated := *article
	updated.Status = current.Status
	updated.SubmittedBy = current.SubmittedBy
	m.articles[article.ID] = updated
	return nil
}

func (m *memoryCatalog) Review(ctx context.Context, params repository.ReviewParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reviewErr != nil {
		return m.reviewErr
	}
	article, ok := m.articles[params.ID]
	if !ok || !containsStatus(params.From, article.Status) {
		return repository.ErrStateConflict
	}
	article.Status = params.To
	article.ReviewedBy = &params.ReviewedBy
	reviewedAt := params.ReviewedAt
	article.ReviewedAt = &reviewedAt
	article.RejectionReason = params.RejectionReason
	m.articles[params.ID] = article
	return nil
}

func (m *memoryCatalog) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.articles[id]; ok {
		delete(m.articles, id)
		for evID, ev := range m.evidence {
			if ev.ArticleID == id {
				delete(m.evidence, evID)
			}
		}
		return nil
	}
	if _, ok := m.evidence[id]; ok {
		delete(m.evidence, id)
		return nil
	}
	return sql.ErrNoRows
}

func (m *memoryCatalog) UpsertRating(ctx context.Context, rating models.Rating) ([]models.Rating, float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	article, ok := m.articles[rating.ArticleID]
	if !ok {
		return nil, 0, sql.ErrNoRows
	}
	article.Ratings = models.UpsertRating(article.Ratings, rating)
	article.AverageRating = models.AverageRating(article.Ratings)
	m.articles[article.ID] = article
	return article.Ratings, article.AverageRating, nil
}

// evidence store, exposed through memoryEvidence so method names do not clash.

type memoryEvidence struct {
	*memoryCatalog
}

func (e memoryEvidence) FindByID(ctx context.Context, id string) (*models.Evidence, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ev, ok := e.evidence[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &ev, nil
}

func (e memoryEvidence) List(ctx context.Context, filter models.EvidenceFilter) ([]models.Evidence, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listCalls++
	var out []models.Evidence
	for _, id := range e.evOrder {
		ev, ok := e.evidence[id]
		if !ok {
			continue
		}
		if filter.ArticleID != "" && ev.ArticleID != filter.ArticleID {
			continue
		}
		if filter.SEPractice != "" && ev.SEPractice != filter.SEPractice {
			continue
		}
		if filter.ClaimContains != "" && !strings.Contains(strings.ToLower(ev.Claim), strings.ToLower(filter.ClaimContains)) {
			continue
		}
		if filter.EvidenceResult != "" && ev.EvidenceResult != filter.EvidenceResult {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func (e memoryEvidence) ExistsForArticle(ctx context.Context, articleID string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hasEvidence(articleID), nil
}

func (m *memoryCatalog) hasEvidence(articleID string) bool {
	for _, ev := range m.evidence {
		if ev.ArticleID == articleID {
			return true
		}
	}
	return false
}

func (e memoryEvidence) CreateWithAnalysis(ctx context.Context, evidence *models.Evidence, analysis models.ArticleAnalysis) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.createEvErr != nil {
		return e.createEvErr
	}
	article, ok := e.articles[analysis.ArticleID]
	if !ok || !containsStatus(analysis.From, article.Status) {
		return repository.ErrStateConflict
	}
	if e.hasEvidence(evidence.ArticleID) {
		return repository.ErrUniqueViolation
	}
	article.Status = analysis.To
	article.AnalyzedBy = &analysis.AnalyzedBy
	analyzedAt := analysis.AnalyzedAt
	article.AnalyzedAt = &analyzedAt
	e.articles[article.ID] = article

	evidence.ID = e.nextID("evidence")
	e.evidence[evidence.ID] = *evidence
	e.evOrder = append(e.evOrder, evidence.ID)
	return nil
}

func (e memoryEvidence) Update(ctx context.Context, evidence *models.Evidence) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	current, ok := e.evidence[evidence.ID]
	if !ok {
		return sql.ErrNoRows
	}
	updated := *evidence
	updated.ArticleID = current.ArticleID
	e.evidence[evidence.ID] = updated
	return nil
}

// userDirectory and auditLogger

func (m *memoryCatalog) FindSummaries(ctx context.Context, ids []string) (map[string]models.UserSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]models.UserSummary, len(ids))
	for _, id := range ids {
		if summary, ok := m.users[id]; ok {
			out[id] = summary
		}
	}
	return out, nil
}

func (m *memoryCatalog) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audits = append(m.audits, *log)
	return nil
}

func containsStatus(statuses []models.ArticleStatus, status models.ArticleStatus) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}
