package auth

import (
	"github.com/spec-kit/ticketbot/internal/domain"
	apperrors "github.com/spec-kit/ticketbot/pkg/util/errorutil"
)

// IsAuthorized reports whether actor holds requiredRole, or is a guild
// administrator when allowAdminOverride is set. A nil role set is simply empty.
func IsAuthorized(actor domain.Actor, requiredRole string, allowAdminOverride bool) bool {
	if allowAdminOverride && actor.IsAdmin {
		return true
	}
	if requiredRole == "" {
		return false
	}
	for _, role := range actor.RoleIDs {
		if role == requiredRole {
			return true
		}
	}
	return false
}

// RequireStaff ensures the actor is staff or an administrator. denial is the
// private message shown to the actor otherwise.
func RequireStaff(actor domain.Actor, staffRoleID, denial string) error {
	if !IsAuthorized(actor, staffRoleID, true) {
		return apperrors.NewForbidden(denial)
	}
	return nil
}

// RequireRole ensures the actor holds the role itself; administrator status
// does not substitute. roleName is used in the denial message.
func RequireRole(actor domain.Actor, roleID, roleName string) error {
	if !IsAuthorized(actor, roleID, false) {
		return apperrors.NewMissingRole(roleName)
	}
	return nil
}
