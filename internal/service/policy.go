package service

import "github.com/noah-isme/se-evidence-api/internal/models"

// Action names a capability checked by CanPerform.
type Action string

const (
	ActionArticleCreate              Action = "article.create"
	ActionArticleUpdate              Action = "article.update"
	ActionArticleReview              Action = "article.review"
	ActionArticleDelete              Action = "article.delete"
	ActionArticleRate                Action = "article.rate"
	ActionArticleListOwn             Action = "article.list_own"
	ActionArticleListPendingReview   Action = "article.list_pending_review"
	ActionArticleListPendingAnalysis Action = "article.list_pending_analysis"
	ActionEvidenceCreate             Action = "evidence.create"
	ActionEvidenceUpdate             Action = "evidence.update"
	ActionEvidenceDelete             Action = "evidence.delete"
	ActionUserManage                 Action = "user.manage"
)

// Resource carries the ownership and status of the target of a resource-dependent action.
type Resource struct {
	OwnerID string
	Status  models.ArticleStatus
}

// ArticleResource describes an article for policy checks.
func ArticleResource(article *models.Article) *Resource {
	if article == nil {
		return nil
	}
	return &Resource{OwnerID: article.SubmittedBy, Status: article.Status}
}

var roleGrants = map[Action][]models.UserRole{
	ActionArticleCreate:              {models.RoleSubmitter, models.RoleModerator, models.RoleAnalyst},
	ActionArticleReview:              {models.RoleModerator},
	ActionArticleListPendingReview:   {models.RoleModerator},
	ActionArticleListPendingAnalysis: {models.RoleAnalyst},
	ActionEvidenceCreate:             {models.RoleAnalyst},
	ActionEvidenceUpdate:             {models.RoleAnalyst},
}

// CanPerform decides whether actor may perform action on resource. Resource is
// only consulted for ownership-scoped actions and may be nil otherwise.
func CanPerform(action Action, actor models.Actor, resource *Resource) bool {
	if actor.UserID == "" {
		return false
	}
	if actor.Roles.Has(models.RoleAdmin) {
		return true
	}
	switch action {
	case ActionArticleRate, ActionArticleListOwn:
		return true
	case ActionArticleUpdate:
		return resource != nil &&
			resource.OwnerID == actor.UserID &&
			resource.Status == models.ArticleStatusPendingReview
	}
	roles, ok := roleGrants[action]
	return ok && actor.Roles.HasAny(roles...)
}
