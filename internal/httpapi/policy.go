package httpapi

import (
	"errors"
	"fmt"

	"github.com/MrEthical07/goTenant/permission"
)

// RoleAdmin is the only role allowed to change organizations.
const RoleAdmin = "admin"

// routePolicy holds the role sets declared for gated routes. Reads are open
// to every registered role.
type routePolicy struct {
	manage permission.RoleSet
	read   permission.RoleSet
}

func newRoutePolicy(roles *permission.Registry) (routePolicy, error) {
	if roles == nil {
		return routePolicy{}, errors.New("httpapi: role registry is required")
	}
	manage, err := roles.Set(RoleAdmin)
	if err != nil {
		return routePolicy{}, fmt.Errorf("httpapi: %w", err)
	}
	return routePolicy{manage: manage, read: roles.All()}, nil
}
