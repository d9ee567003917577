package implementation

import (
	"errors"
	"fmt"
	"strings"

	"techfix-tracking-be/internal/entity"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueTokenConstraint = "uq_sessions_token"

// translateError folds driver-level failures into the store taxonomy.
// Anything unrecognized passes through untouched.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505" && pgErr.ConstraintName == uniqueTokenConstraint:
			return entity.ErrDuplicateToken
		case strings.HasPrefix(pgErr.Code, "23") || pgErr.Code == "22P02":
			return fmt.Errorf("%w: %s", entity.ErrConstraintViolation, pgErr.Message)
		case strings.HasPrefix(pgErr.Code, "08"):
			return fmt.Errorf("%w: %s", entity.ErrStoreUnavailable, pgErr.Message)
		}
		return err
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%w: %v", entity.ErrStoreUnavailable, connErr)
	}

	if errors.Is(err, gorm.ErrInvalidDB) {
		return entity.ErrStoreUnavailable
	}

	return err
}
