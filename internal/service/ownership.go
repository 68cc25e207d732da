package service

import (
	"github.com/google/uuid"
	"nudduck.com/nudduck/pkg/apperror"
)

// CheckOwnership is the shared authorization gate for every mutation path:
// the acting user must be the stored owner, with no role-based override.
func CheckOwnership(actingUserID, ownerID uuid.UUID) error {
	if actingUserID != ownerID {
		return apperror.ErrForbidden
	}
	return nil
}
