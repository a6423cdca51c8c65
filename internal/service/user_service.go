package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/se-evidence-api/internal/dto"
	"github.com/noah-isme/se-evidence-api/internal/models"
	"github.com/noah-isme/se-evidence-api/internal/repository"
	appErrors "github.com/noah-isme/se-evidence-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// UserService handles admin user management.
type UserService struct {
	repo      userRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, validator: newValidator(validate), logger: logger}
}

// List returns paginated users and pagination metadata.
func (s *UserService) List(ctx context.Context, query dto.UserQuery) ([]models.User, *models.Pagination, error) {
	filter := models.UserFilter{Active: query.Active, Search: strings.TrimSpace(query.Search), Page: query.Page, PageSize: query.PageSize}
	if query.Role != "" {
		role := models.UserRole(strings.ToLower(query.Role))
		if !role.Valid() {
			return nil, nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "unknown role"),
				map[string]interface{}{"role": query.Role})
		}
		filter.Role = &role
	}

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	if users == nil {
		users = []models.User{}
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	pagination := &models.Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	}

	return users, pagination, nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, userNotFound(id)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// Create provisions an account with an explicit role set, defaulting to submitter.
func (s *UserService) Create(ctx context.Context, req dto.CreateUserRequest, actorID string) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid create user payload")
	}

	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrConflict, "email already exists"),
			map[string]interface{}{"field": "email"})
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email uniqueness")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	roles := models.Roles(req.Roles).Normalize()
	if len(roles) == 0 {
		roles = models.Roles{models.RoleSubmitter}
	}
	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Roles:        roles,
		Active:       true,
		PasswordHash: string(passwordHash),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrConflict, "email already exists"),
				map[string]interface{}{"field": "email"})
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	newPayload, _ := json.Marshal(map[string]interface{}{"id": user.ID, "email": user.Email, "roles": user.Roles})
	s.recordAudit(ctx, actorID, models.AuditActionUserCreate, user.ID, nil, newPayload)

	return user, nil
}

// Update changes names, the role set or the active flag.
func (s *UserService) Update(ctx context.Context, id string, req dto.UpdateUserRequest, actorID string) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid update payload")
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	oldPayload, _ := json.Marshal(map[string]interface{}{"roles": user.Roles, "active": user.Active})

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if len(req.Roles) > 0 {
		user.Roles = models.Roles(req.Roles).Normalize()
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}

	newPayload, _ := json.Marshal(map[string]interface{}{"roles": user.Roles, "active": user.Active})
	s.recordAudit(ctx, actorID, models.AuditActionUserUpdate, user.ID, oldPayload, newPayload)

	return user, nil
}

// Delete deactivates a user. Accounts are never hard-deleted so article and
// evidence references stay resolvable.
func (s *UserService) Delete(ctx context.Context, id string, actorID string) error {
	if id == actorID {
		return appErrors.Clone(appErrors.ErrForbidden, "cannot deactivate your own account")
	}
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}

	oldPayload, _ := json.Marshal(map[string]interface{}{"active": user.Active})
	newPayload, _ := json.Marshal(map[string]interface{}{"active": false})
	s.recordAudit(ctx, actorID, models.AuditActionUserDelete, user.ID, oldPayload, newPayload)

	return nil
}

func (s *UserService) recordAudit(ctx context.Context, actorID, action, userID string, oldValues, newValues []byte) {
	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     action,
		Resource:   models.AuditResourceUser,
		ResourceID: &userID,
		OldValues:  oldValues,
		NewValues:  newValues,
		IPAddress:  "system",
		UserAgent:  "user-service",
	}); err != nil {
		s.logger.Warn("failed to record user audit log", zap.String("action", action), zap.Error(err))
	}
}

func userNotFound(id string) *appErrors.Error {
	return appErrors.WithDetails(appErrors.Clone(appErrors.ErrNotFound, "user not found"), map[string]interface{}{"userId": id})
}
