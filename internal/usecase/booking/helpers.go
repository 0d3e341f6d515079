package booking

import (
	"errors"

	"gorm.io/gorm"

	"github.com/fieldserve/marketplace-core/internal/httperr"
)

// notFoundAs turns a missing-row error into the caller's not_found code and
// leaves everything else untouched.
func notFoundAs(err error, code string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return httperr.ErrNotFound(code)
	}
	return err
}
