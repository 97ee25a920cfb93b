package repository

import (
	"errors"

	"github.com/joseph-ayodele/estatehub/internal/common"
)

func isNotFound(err error) bool {
	return errors.Is(err, common.ErrNotFound)
}

// isDomainError reports errors already classified for callers; those are not
// logged as database failures.
func isDomainError(err error) bool {
	return errors.Is(err, common.ErrNotFound) ||
		errors.Is(err, common.ErrValidation) ||
		errors.Is(err, common.ErrConflict) ||
		errors.Is(err, common.ErrForbidden)
}
