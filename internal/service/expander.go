package service

import (
	"context"

	"github.com/noah-isme/se-evidence-api/internal/models"
	appErrors "github.com/noah-isme/se-evidence-api/pkg/errors"
)

type userDirectory interface {
	FindSummaries(ctx context.Context, ids []string) (map[string]models.UserSummary, error)
}

// detailExpander replaces user references with summaries using one batch lookup per call.
type detailExpander struct {
	users userDirectory
}

func (e detailExpander) lookup(ctx context.Context, ids []string) (map[string]models.UserSummary, error) {
	if e.users == nil {
		return map[string]models.UserSummary{}, nil
	}
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	summaries, err := e.users.FindSummaries(ctx, unique)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve users")
	}
	return summaries, nil
}

func (e detailExpander) article(ctx context.Context, article models.Article) (*models.ArticleDetail, error) {
	details, err := e.articles(ctx, []models.Article{article})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (e detailExpander) articles(ctx context.Context, articles []models.Article) ([]models.ArticleDetail, error) {
	ids := make([]string, 0, len(articles))
	for _, article := range articles {
		ids = append(ids, article.UserIDs()...)
	}
	summaries, err := e.lookup(ctx, ids)
	if err != nil {
		return nil, err
	}
	details := make([]models.ArticleDetail, len(articles))
	for i, article := range articles {
		details[i] = articleDetail(article, summaries)
	}
	return details, nil
}

func (e detailExpander) evidence(ctx context.Context, items []models.Evidence, articles map[string]models.Article) ([]models.EvidenceDetail, error) {
	ids := make([]string, 0, len(items)*2)
	for _, item := range items {
		ids = append(ids, item.AnalyzedBy)
		if article, ok := articles[item.ArticleID]; ok {
			ids = append(ids, article.UserIDs()...)
		}
	}
	summaries, err := e.lookup(ctx, ids)
	if err != nil {
		return nil, err
	}
	details := make([]models.EvidenceDetail, len(items))
	for i, item := range items {
		details[i] = models.EvidenceDetail{Evidence: item, Analyst: summaryOf(summaries, &item.AnalyzedBy)}
		if article, ok := articles[item.ArticleID]; ok {
			detail := articleDetail(article, summaries)
			details[i].Article = &detail
		}
	}
	return details, nil
}

func articleDetail(article models.Article, summaries map[string]models.UserSummary) models.ArticleDetail {
	if article.Ratings == nil {
		article.Ratings = []models.Rating{}
	}
	return models.ArticleDetail{
		Article:   article,
		Submitter: summaryOf(summaries, &article.SubmittedBy),
		Reviewer:  summaryOf(summaries, article.ReviewedBy),
		Analyst:   summaryOf(summaries, article.AnalyzedBy),
	}
}

func summaryOf(summaries map[string]models.UserSummary, id *string) *models.UserSummary {
	if id == nil {
		return nil
	}
	summary, ok := summaries[*id]
	if !ok {
		return nil
	}
	return &summary
}

type articleLookup interface {
	FindByID(ctx context.Context, id string) (*models.Article, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]models.Article, error)
}

// evidenceResolver joins evidence with its articles in process.
type evidenceResolver struct {
	articles articleLookup
	expander detailExpander
}

// resolve batch-loads the articles referenced by items and expands users. When
// keep is set, items whose article is missing or rejected by keep are dropped.
func (r evidenceResolver) resolve(ctx context.Context, items []models.Evidence, keep func(models.Article) bool) ([]models.EvidenceDetail, error) {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ArticleID]; ok {
			continue
		}
		seen[item.ArticleID] = struct{}{}
		ids = append(ids, item.ArticleID)
	}
	articles, err := r.articles.FindByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve articles")
	}

	kept := items
	if keep != nil {
		kept = make([]models.Evidence, 0, len(items))
		for _, item := range items {
			article, ok := articles[item.ArticleID]
			if !ok || !keep(article) {
				continue
			}
			kept = append(kept, item)
		}
	}
	return r.expander.evidence(ctx, kept, articles)
}
