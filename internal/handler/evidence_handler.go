package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/se-evidence-api/internal/dto"
	"github.com/noah-isme/se-evidence-api/internal/models"
	"github.com/noah-isme/se-evidence-api/pkg/response"
)

type evidenceService interface {
	Create(ctx context.Context, req dto.CreateEvidenceRequest, analystID string) (*models.EvidenceDetail, error)
	Get(ctx context.Context, id string) (*models.EvidenceDetail, error)
	List(ctx context.Context) ([]models.EvidenceDetail, error)
	ListByArticle(ctx context.Context, articleID string) ([]models.EvidenceDetail, error)
	ListByPractice(ctx context.Context, practice string) ([]models.EvidenceDetail, error)
	Update(ctx context.Context, id string, req dto.UpdateEvidenceRequest, actorID string) (*models.EvidenceDetail, error)
	Delete(ctx context.Context, id, actorID string) error
}

// EvidenceHandler exposes evidence endpoints.
type EvidenceHandler struct {
	service evidenceService
}

// NewEvidenceHandler builds a new handler.
func NewEvidenceHandler(service evidenceService) *EvidenceHandler {
	return &EvidenceHandler{service: service}
}

// List godoc
// @Summary List evidence
// @Tags Evidence
// @Produce json
// @Param sePractice query string false "Exact practice filter"
// @Success 200 {object} response.Envelope
// @Router /evidence [get]
func (h *EvidenceHandler) List(c *gin.Context) {
	var (
		items []models.EvidenceDetail
		err   error
	)
	if practice := c.Query("sePractice"); practice != "" {
		items, err = h.service.ListByPractice(c.Request.Context(), practice)
	} else {
		items, err = h.service.List(c.Request.Context())
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get evidence
// @Tags Evidence
// @Produce json
// @Param id path string true "Evidence ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /evidence/{id} [get]
func (h *EvidenceHandler) Get(c *gin.Context) {
	evidence, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, evidence, nil)
}

// ByArticle godoc
// @Summary Evidence linked to an article
// @Tags Evidence
// @Produce json
// @Param articleId path string true "Article ID"
// @Success 200 {object} response.Envelope
// @Router /evidence/article/{articleId} [get]
func (h *EvidenceHandler) ByArticle(c *gin.Context) {
	items, err := h.service.ListByArticle(c.Request.Context(), c.Param("articleId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Record evidence
// @Description Links evidence to an approved article and marks the article analyzed.
// @Tags Evidence
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateEvidenceRequest true "Evidence payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /evidence [post]
func (h *EvidenceHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateEvidenceRequest
	if !bindJSON(c, &req, "invalid evidence payload") {
		return
	}
	evidence, err := h.service.Create(c.Request.Context(), req, actor.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, evidence)
}

// Update godoc
// @Summary Update evidence
// @Tags Evidence
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Evidence ID"
// @Param payload body dto.UpdateEvidenceRequest true "Evidence patch"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /evidence/{id} [patch]
func (h *EvidenceHandler) Update(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.UpdateEvidenceRequest
	if !bindJSON(c, &req, "invalid evidence payload") {
		return
	}
	evidence, err := h.service.Update(c.Request.Context(), c.Param("id"), req, actor.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, evidence, nil)
}

// Delete godoc
// @Summary Delete evidence
// @Tags Evidence
// @Security BearerAuth
// @Param id path string true "Evidence ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /evidence/{id} [delete]
func (h *EvidenceHandler) Delete(c *gin.Context) {
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
