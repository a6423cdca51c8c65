package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/se-evidence-api/internal/dto"
	"github.com/noah-isme/se-evidence-api/internal/models"
	appErrors "github.com/noah-isme/se-evidence-api/pkg/errors"
)

type userServiceMock struct {
	user      *models.User
	users     []models.User
	err       error
	lastQuery dto.UserQuery
	lastReq   dto.CreateUserRequest
	lastActor string
	lastID    string
}

func (m *userServiceMock) List(ctx context.Context, query dto.UserQuery) ([]models.User, *models.Pagination, error) {
	m.lastQuery = query
	return m.users, &models.Pagination{Page: query.Page, PageSize: query.PageSize, TotalCount: len(m.users)}, m.err
}

func (m *userServiceMock) Get(ctx context.Context, id string) (*models.User, error) {
	m.lastID = id
	return m.user, m.err
}

func (m *userServiceMock) Create(ctx context.Context, req dto.CreateUserRequest, actorID string) (*models.User, error) {
	m.lastReq, m.lastActor = req, actorID
	return m.user, m.err
}

func (m *userServiceMock) Update(ctx context.Context, id string, req dto.UpdateUserRequest, actorID string) (*models.User, error) {
	m.lastID, m.lastActor = id, actorID
	return m.user, m.err
}

func (m *userServiceMock) Delete(ctx context.Context, id string, actorID string) error {
	m.lastID, m.lastActor = id, actorID
	return m.err
}

var adminClaims = &models.JWTClaims{UserID: "u-adm", Roles: models.Roles{models.RoleAdmin}}

func TestUserHandlerListDefaultsPaging(t *testing.T) {
	mockSvc := &userServiceMock{users: []models.User{{ID: "u-1"}}}
	handler := NewUserHandler(mockSvc)

	c, w := newTestContext(http.MethodGet, "/users?role=analyst", "", adminClaims)
	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "analyst", mockSvc.lastQuery.Role)
	assert.Equal(t, 1, mockSvc.lastQuery.Page)
	assert.Equal(t, 20, mockSvc.lastQuery.PageSize)
	assert.Contains(t, string(decodeEnvelope(t, w)["pagination"]), `"total_count":1`)
}

func TestUserHandlerCreate(t *testing.T) {
	mockSvc := &userServiceMock{user: &models.User{ID: "u-new", Roles: models.Roles{models.RoleAnalyst}}}
	handler := NewUserHandler(mockSvc)

	c, w := newTestContext(http.MethodPost, "/users", `{"email":"a@b.test","password":"secret1","firstName":"A","lastName":"B","roles":["analyst"]}`, adminClaims)
	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "u-adm", mockSvc.lastActor)
	assert.Equal(t, []models.UserRole{models.RoleAnalyst}, mockSvc.lastReq.Roles)
}

func TestUserHandlerDeleteSelfForbidden(t *testing.T) {
	mockSvc := &userServiceMock{err: appErrors.Clone(appErrors.ErrForbidden, "cannot deactivate yourself")}
	handler := NewUserHandler(mockSvc)

	c, w := newTestContext(http.MethodDelete, "/users/u-adm", "", adminClaims)
	handler.Delete(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUserHandlerUpdateRequiresAuth(t *testing.T) {
	handler := NewUserHandler(&userServiceMock{})

	c, w := newTestContext(http.MethodPatch, "/users/u-1", `{"active":false}`, nil)
	handler.Update(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
