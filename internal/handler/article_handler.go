package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/se-evidence-api/internal/dto"
	"github.com/noah-isme/se-evidence-api/internal/models"
	"github.com/noah-isme/se-evidence-api/pkg/response"
)

type articleService interface {
	Create(ctx context.Context, req dto.CreateArticleRequest, actor models.Actor) (*models.ArticleDetail, error)
	Get(ctx context.Context, id string) (*models.ArticleDetail, error)
	List(ctx context.Context, query dto.ArticleQuery) ([]models.ArticleDetail, error)
	ListBySubmitter(ctx context.Context, userID string) ([]models.ArticleDetail, error)
	ListPendingReview(ctx context.Context) ([]models.ArticleDetail, error)
	ListPendingAnalysis(ctx context.Context) ([]models.ArticleDetail, error)
	Update(ctx context.Context, id string, req dto.UpdateArticleRequest, actor models.Actor) (*models.ArticleDetail, error)
	Approve(ctx context.Context, id, reviewerID string) (*models.ArticleDetail, error)
	Reject(ctx context.Context, id, reviewerID string, req dto.RejectArticleRequest) (*models.ArticleDetail, error)
	Delete(ctx context.Context, id, actorID string) error
	Rate(ctx context.Context, id, userID string, req dto.RateArticleRequest) (*models.ArticleDetail, error)
}

// ArticleHandler exposes the article submission, moderation and rating endpoints.
type ArticleHandler struct {
	service articleService
}

// NewArticleHandler builds a new handler.
func NewArticleHandler(service articleService) *ArticleHandler {
	return &ArticleHandler{service: service}
}

// List godoc
// @Summary List articles
// @Tags Articles
// @Produce json
// @Param status query string false "Status filter"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /articles [get]
func (h *ArticleHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), dto.ArticleQuery{Status: models.ArticleStatus(c.Query("status"))})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// MySubmissions godoc
// @Summary List the caller's submissions
// @Tags Articles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /articles/my-submissions [get]
func (h *ArticleHandler) MySubmissions(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	items, err := h.service.ListBySubmitter(c.Request.Context(), actor.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// PendingReview godoc
// @Summary List articles awaiting moderation
// @Tags Articles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /articles/pending-review [get]
func (h *ArticleHandler) PendingReview(c *gin.Context) {
	items, err := h.service.ListPendingReview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// PendingAnalysis godoc
// @Summary List approved articles awaiting evidence
// @Tags Articles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /articles/pending-analysis [get]
func (h *ArticleHandler) PendingAnalysis(c *gin.Context) {
	items, err := h.service.ListPendingAnalysis(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get article
// @Tags Articles
// @Produce json
// @Param id path string true "Article ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /articles/{id} [get]
func (h *ArticleHandler) Get(c *gin.Context) {
	article, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, article, nil)
}

// Create godoc
// @Summary Submit article
// @Description The article always starts in pending_review.
// @Tags Articles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateArticleRequest true "Article payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /articles [post]
func (h *ArticleHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateArticleRequest
	if !bindJSON(c, &req, "invalid article payload") {
		return
	}
	article, err := h.service.Create(c.Request.Context(), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, article)
}

// Update godoc
// @Summary Update article
// @Description Admins may edit any article; submitters only their own while pending review.
// @Tags Articles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Article ID"
// @Param payload body dto.UpdateArticleRequest true "Article patch"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /articles/{id} [patch]
func (h *ArticleHandler) Update(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.UpdateArticleRequest
	if !bindJSON(c, &req, "invalid article payload") {
		return
	}
	article, err := h.service.Update(c.Request.Context(), c.Param("id"), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, article, nil)
}

// Approve godoc
// @Summary Approve article
// @Tags Articles
// @Produce json
// @Security BearerAuth
// @Param id path string true "Article ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /articles/{id}/approve [post]
func (h *ArticleHandler) Approve(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	article, err := h.service.Approve(c.Request.Context(), c.Param("id"), actor.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, article, nil)
}

// Reject godoc
// @Summary Reject article
// @Tags Articles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Article ID"
// @Param payload body dto.RejectArticleRequest false "Optional reason"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /articles/{id}/reject [post]
func (h *ArticleHandler) Reject(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.RejectArticleRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req, "invalid reject payload") {
		return
	}
	article, err := h.service.Reject(c.Request.Context(), c.Param("id"), actor.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, article, nil)
}

// Rate godoc
// @Summary Rate article
// @Description Records a 1-5 rating, replacing the caller's earlier rating.
// @Tags Articles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Article ID"
// @Param payload body dto.RateArticleRequest true "Rating"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /articles/{id}/rate [post]
func (h *ArticleHandler) Rate(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.RateArticleRequest
	if !bindJSON(c, &req, "invalid rating payload") {
		return
	}
	article, err := h.service.Rate(c.Request.Context(), c.Param("id"), actor.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, article, nil)
}

// Delete godoc
// @Summary Delete article
// @Tags Articles
// @Security BearerAuth
// @Param id path string true "Article ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /articles/{id} [delete]
func (h *ArticleHandler) Delete(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), actor.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
