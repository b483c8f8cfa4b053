package auth

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"eventboard/internal/model"
)

const (
	claimsContextKey   = "claims"
	identityContextKey = "identity"
)

// Identity is the resolved caller of a request.
type Identity struct {
	UserID uuid.UUID
	Role   model.Role
}

// IsAdmin reports whether the identity holds the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == model.RoleAdmin
}

// Owns reports whether the identity is the given creator.
func (i Identity) Owns(createdBy uuid.UUID) bool {
	return i.UserID != uuid.Nil && i.UserID == createdBy
}

// IdentityFrom returns the identity attached by the Guard.
func IdentityFrom(c echo.Context) (Identity, bool) {
	id, ok := c.Get(identityContextKey).(Identity)
	return id, ok
}

// SetIdentity attaches id to the echo context.
func SetIdentity(c echo.Context, id Identity) {
	c.Set(identityContextKey, id)
}

// ClaimsFrom returns the verified token claims attached by the Guard.
func ClaimsFrom(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(claimsContextKey).(*Claims)
	return claims, ok
}
