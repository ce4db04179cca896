package middleware

import (
	"net/http"

	goTenant "github.com/MrEthical07/goTenant"
	"github.com/MrEthical07/goTenant/permission"
	"github.com/gin-gonic/gin"
)

// Authorizer is satisfied by *goTenant.Engine.
type Authorizer interface {
	Authorize(identity *goTenant.Identity, allowed permission.RoleSet) error
}

// AllowedTo lets the request through only when the guarded identity's role is
// in allowed. It must run after [Guard]. A nil gate checks the set directly.
func AllowedTo(gate Authorizer, allowed permission.RoleSet) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, _ := IdentityFrom(c)

		var err error
		if gate != nil {
			err = gate.Authorize(identity, allowed)
		} else if identity == nil || !allowed.Contains(identity.Role) {
			err = goTenant.ErrForbidden
		}
		if err != nil {
			abort(c, http.StatusForbidden, "access denied")
			return
		}
		c.Next()
	}
}
