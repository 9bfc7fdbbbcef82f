package xerrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

type RepoError struct {
	Entity string
	Code   string
	Msg    string
	Ref    string
}

func ParsePGErrorCode(err error) string {
	if pgErr, ok := err.(*pgconn.PgError); ok {
		return pgErr.Code // e.g. 23505 for unique_violation
	}
	return "unknown"
}

// Generic
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternalServer = errors.New("internal server error")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input provided")
)

// Override validation
var (
	ErrModeRequired        = errors.New("override mode required")
	ErrUnknownOverrideMode = errors.New("unknown override mode")
	ErrUnknownAreaCode     = errors.New("unknown area code")
	ErrGrantRevokeConflict = errors.New("area cannot be both granted and revoked")
	ErrRevokesNotAllowed   = errors.New("revokes are not allowed in custom mode")
)

// Roles
var (
	ErrRoleRequired     = errors.New("role required")
	ErrUserRoleNotFound = errors.New("user has no role assigned")
)

// Token
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)
