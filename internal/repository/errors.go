package repository

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrUniqueViolation is returned when an insert or update hits a unique constraint.
	ErrUniqueViolation = errors.New("unique constraint violation")
	// ErrStateConflict is returned when a status compare-and-set matched no row.
	ErrStateConflict = errors.New("status changed concurrently")
)

const (
	pqUniqueViolation = "23505"
	// Raised when an id is not a valid uuid literal.
	pqInvalidTextRepresentation = "22P02"
)

// translateError maps driver errors onto repository sentinels. A malformed id
// cannot resolve to a row, so it reads as sql.ErrNoRows.
func translateError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case pqUniqueViolation:
		return ErrUniqueViolation
	case pqInvalidTextRepresentation:
		return sql.ErrNoRows
	}
	return err
}

func isNoRows(err error) bool {
	return translateError(err) == sql.ErrNoRows
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	var b []rune
	for _, r := range s {
		switch r {
		case '\\', '%', '_':
			b = append(b, '\\')
		}
		b = append(b, r)
	}
	return string(b)
}
