package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/se-evidence-api/internal/dto"
	"github.com/noah-isme/se-evidence-api/internal/models"
	appErrors "github.com/noah-isme/se-evidence-api/pkg/errors"
	"github.com/noah-isme/se-evidence-api/pkg/response"
)

type userService interface {
	List(ctx context.Context, query dto.UserQuery) ([]models.User, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, req dto.CreateUserRequest, actorID string) (*models.User, error)
	Update(ctx context.Context, id string, req dto.UpdateUserRequest, actorID string) (*models.User, error)
	Delete(ctx context.Context, id string, actorID string) error
}

// UserHandler handles admin user management endpoints.
type UserHandler struct {
	service userService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(svc userService) *UserHandler {
	return &UserHandler{service: svc}
}

// List godoc
// @Summary List users
// @Description List users with pagination and filtering
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param role query string false "Role filter"
// @Param active query bool false "Active filter"
// @Param search query string false "Search term"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	var query dto.UserQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}

	users, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, users, pagination)
}

// Get godoc
// @Summary Get user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// Create godoc
// @Summary Create user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateUserRequest true "Create user payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateUserRequest
	if !bindJSON(c, &req, "invalid payload") {
		return
	}
	user, err := h.service.Create(c.Request.Context(), req, actor.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// Update godoc
// @Summary Update user
// @Description Change names, the role set or the active flag.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param payload body dto.UpdateUserRequest true "Update user payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{id} [patch]
func (h *UserHandler) Update(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if !bindJSON(c, &req, "invalid payload") {
		return
	}
	user, err := h.service.Update(c.Request.Context(), c.Param("id"), req, actor.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// Delete godoc
// @Summary Deactivate user
// @Tags Users
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
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
