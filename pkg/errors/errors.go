package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Status  int                    `json:"status"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors sharing the same code so cloned errors still satisfy errors.Is.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	var t *Error
	if !errors.As(target, &t) || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrInactiveAccount    = New("ACCOUNT_INACTIVE", http.StatusForbidden, "account is inactive")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")

	ErrArticleNotFound    = New("ARTICLE_NOT_FOUND", http.StatusNotFound, "article not found")
	ErrDuplicateDOI       = New("DUPLICATE_DOI", http.StatusConflict, "article with this DOI already exists")
	ErrWrongState         = New("WRONG_STATE", http.StatusConflict, "operation not allowed in current state")
	ErrArticleNotApproved = New("ARTICLE_NOT_APPROVED", http.StatusConflict, "article must be approved before evidence can be added")
	ErrEvidenceExists     = New("EVIDENCE_ALREADY_EXISTS", http.StatusConflict, "evidence already exists for this article")
	ErrInvalidRating      = New("INVALID_RATING", http.StatusBadRequest, "rating must be between 1 and 5")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	if err.Details != nil {
		clone.Details = make(map[string]interface{}, len(err.Details))
		for k, v := range err.Details {
			clone.Details[k] = v
		}
	}
	return &clone
}

// WithDetails returns a copy of err carrying the offending identifiers or fields.
func WithDetails(err *Error, details map[string]interface{}) *Error {
	clone := Clone(err, "")
	if clone == nil {
		return nil
	}
	if clone.Details == nil {
		clone.Details = make(map[string]interface{}, len(details))
	}
	for k, v := range details {
		clone.Details[k] = v
	}
	return clone
}

// HasCode reports whether err normalises to an *Error with the given code.
func HasCode(err error, code string) bool {
	var e *Error
	if !errors.As(err, &e) || e == nil {
		return false
	}
	return e.Code == code
}
