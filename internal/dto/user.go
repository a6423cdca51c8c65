package dto

import "github.com/noah-isme/se-evidence-api/internal/models"

// CreateUserRequest is the admin payload for provisioning an account.
type CreateUserRequest struct {
	Email     string            `json:"email" validate:"required,email"`
	Password  string            `json:"password" validate:"required,min=6"`
	FirstName string            `json:"firstName" validate:"required"`
	LastName  string            `json:"lastName" validate:"required"`
	Roles     []models.UserRole `json:"roles" validate:"omitempty,dive,oneof=submitter moderator analyst admin"`
}

// UpdateUserRequest changes the role set or active flag of an account.
type UpdateUserRequest struct {
	FirstName *string           `json:"firstName" validate:"omitempty,notblank"`
	LastName  *string           `json:"lastName" validate:"omitempty,notblank"`
	Roles     []models.UserRole `json:"roles" validate:"omitempty,min=1,dive,oneof=submitter moderator analyst admin"`
	Active    *bool             `json:"active"`
}

// UserQuery mirrors supported listing filters.
type UserQuery struct {
	Role     string `form:"role"`
	Active   *bool  `form:"active"`
	Search   string `form:"search"`
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
}
