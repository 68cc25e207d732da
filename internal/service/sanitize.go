package service

import (
	"errors"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
	"nudduck.com/nudduck/pkg/apperror"
)

var sanitizer = bluemonday.UGCPolicy()

// sanitize cleans user-submitted HTML to prevent stored XSS.
func sanitize(input string) string {
	return sanitizer.Sanitize(input)
}

// mapNotFound translates the gorm sentinel into the service-level taxonomy so
// handlers can map it to a 404.
func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.ErrNotFound
	}
	return err
}
