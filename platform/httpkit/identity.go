package httpkit

import (
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Admin is the operator behind an authenticated admin request.
type Admin struct {
	ID    uuid.UUID
	Roles []string
}

// HasRole reports whether the token granted role.
func (a Admin) HasRole(role string) bool {
	return slices.Contains(a.Roles, role)
}

// CurrentAdmin returns the identity AuthRequired stored on the context.
func CurrentAdmin(c *gin.Context) (Admin, bool) {
	raw, ok := c.Get(ContextUserIDKey)
	if !ok {
		return Admin{}, false
	}
	id, ok := raw.(uuid.UUID)
	if !ok {
		return Admin{}, false
	}
	roles, _ := c.Get(ContextRolesKey)
	list, _ := roles.([]string)
	return Admin{ID: id, Roles: list}, true
}

// ActorID names who made a change for audit annotations: the admin's id, or
// "system" when the request carried no identity.
func ActorID(c *gin.Context) string {
	admin, ok := CurrentAdmin(c)
	if !ok {
		return "system"
	}
	return admin.ID.String()
}
