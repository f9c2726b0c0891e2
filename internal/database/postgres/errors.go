package postgres

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/kozaktomas/staff-clock/internal/database"
)

// PostgreSQL SQLSTATE codes we map to domain errors.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// classifyError maps driver errors onto the database sentinel errors,
// keeping the original error in the chain.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		code := string(pqErr.Code)
		switch {
		case code == codeUniqueViolation:
			return fmt.Errorf("%w: %w", database.ErrDuplicateKey, err)
		case code == codeForeignKeyViolation:
			return fmt.Errorf("%w: %w", database.ErrNotFound, err)
		case strings.HasPrefix(code, "08"), strings.HasPrefix(code, "57P"), strings.HasPrefix(code, "53"):
			// connection exception, operator intervention (shutdown), insufficient resources
			return fmt.Errorf("%w: %w", database.ErrStoreUnavailable, err)
		}
		return err
	}

	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", database.ErrStoreUnavailable, err)
	}
	return err
}

// isUUID reports whether id can be compared against a UUID column.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// nullableUUID converts an empty id to NULL.
func nullableUUID(id string) any {
	if id == "" || !isUUID(id) {
		return nil
	}
	return id
}
