package main

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/se-evidence-api/internal/handler"
	"github.com/noah-isme/se-evidence-api/internal/middleware"
	"github.com/noah-isme/se-evidence-api/internal/models"
	"github.com/noah-isme/se-evidence-api/internal/service"
)

type routes struct {
	auth     *handler.AuthHandler
	articles *handler.ArticleHandler
	evidence *handler.EvidenceHandler
	search   *handler.SearchHandler
	users    *handler.UserHandler
	metrics  *handler.MetricsHandler

	tokens middleware.TokenValidator
	audit  middleware.AuditWriter
}

func (rt routes) register(r *gin.Engine, prefix string, metricsEnabled bool) {
	r.GET("/health", rt.metrics.Health)
	r.GET("/ready", rt.metrics.Ready)
	if metricsEnabled {
		r.GET("/metrics", rt.metrics.Prometheus)
	}

	api := r.Group(prefix)
	authn := middleware.JWT(rt.tokens)
	can := middleware.Authorize

	auth := api.Group("/auth")
	auth.POST("/register", rt.auth.Register)
	auth.POST("/login", rt.auth.Login)
	auth.GET("/me", authn, rt.auth.Me)

	articles := api.Group("/articles")
	articles.GET("", rt.articles.List)
	articles.POST("", authn, can(service.ActionArticleCreate), rt.articles.Create)
	articles.GET("/my-submissions", authn, can(service.ActionArticleListOwn), rt.articles.MySubmissions)
	articles.GET("/pending-review", authn, can(service.ActionArticleListPendingReview), rt.articles.PendingReview)
	articles.GET("/pending-analysis", authn, can(service.ActionArticleListPendingAnalysis), rt.articles.PendingAnalysis)
	articles.GET("/:id", rt.articles.Get)
	articles.PATCH("/:id", authn, rt.articles.Update)
	articles.DELETE("/:id", authn, can(service.ActionArticleDelete), rt.articles.Delete)
	articles.POST("/:id/approve", authn, can(service.ActionArticleReview), rt.articles.Approve)
	articles.POST("/:id/reject", authn, can(service.ActionArticleReview), rt.articles.Reject)
	articles.POST("/:id/rate", authn, can(service.ActionArticleRate), rt.articles.Rate)

	evidence := api.Group("/evidence")
	evidence.GET("", rt.evidence.List)
	evidence.GET("/article/:articleId", rt.evidence.ByArticle)
	evidence.GET("/:id", rt.evidence.Get)
	evidence.POST("", authn, can(service.ActionEvidenceCreate), rt.evidence.Create)
	evidence.PATCH("/:id", authn, can(service.ActionEvidenceUpdate), rt.evidence.Update)
	evidence.DELETE("/:id", authn, can(service.ActionEvidenceDelete), rt.evidence.Delete)

	search := api.Group("/search", middleware.WithResponseMeta())
	search.GET("/articles", rt.search.Articles)
	search.GET("/se-practice", rt.search.Practice)
	search.GET("/claim", rt.search.Claim)
	search.GET("/advanced", rt.search.Advanced)
	search.GET("/advanced/export", middleware.OptionalJWT(rt.tokens),
		middleware.Audit(rt.audit, models.AuditActionSearchExport, models.AuditResourceSearch), rt.search.Export)

	users := api.Group("/users", authn, can(service.ActionUserManage))
	users.GET("", rt.users.List)
	users.POST("", rt.users.Create)
	users.GET("/:id", rt.users.Get)
	users.PATCH("/:id", rt.users.Update)
	users.DELETE("/:id", rt.users.Delete)
}
