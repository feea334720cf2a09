package repository

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/Tomlord1122/doit-backend/internal/ordering"
)

// OwnedBy restricts a query to rows owned by userID. Every category and
// todo access goes through it so a row owned by someone else is
// indistinguishable from a missing one.
func OwnedBy(userID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return ordering.UserScope(userID).Apply
}

// IsDuplicate reports whether err is a unique constraint violation.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
