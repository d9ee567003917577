package validate

import (
	"fmt"

	"techfix-tracking-be/internal/entity"

	"github.com/go-playground/validator/v10"
)

var v = validator.New(validator.WithRequiredStructEnabled())

// Struct runs tag validation and folds failures into the store's
// constraint-violation error so callers can branch with errors.Is.
func Struct(s interface{}) error {
	if err := v.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrConstraintViolation, err)
	}
	return nil
}
