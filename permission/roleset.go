package permission

import "fmt"

// RoleSet is a statically declared set of roles permitted to perform an
// operation. The zero value permits nobody.
type RoleSet struct {
	registry *Registry
	mask     Mask64
}

// Set builds a [RoleSet] from registered role names.
func (r *Registry) Set(roles ...string) (RoleSet, error) {
	set := RoleSet{registry: r}
	for _, name := range roles {
		bit, ok := r.Bit(name)
		if !ok {
			return RoleSet{}, fmt.Errorf("role not registered: %s", name)
		}
		set.mask.Set(bit)
	}
	return set, nil
}

// mustSet is Set for role names already known to be registered.
func (r *Registry) mustSet(roles ...string) RoleSet {
	set, err := r.Set(roles...)
	if err != nil {
		panic(err)
	}
	return set
}

// All returns a set containing every registered role.
func (r *Registry) All() RoleSet {
	return r.mustSet(r.Roles()...)
}

// Contains reports whether role is a member of the set.
func (s RoleSet) Contains(role string) bool {
	if s.registry == nil {
		return false
	}
	bit, ok := s.registry.Bit(role)
	if !ok {
		return false
	}
	return s.mask.Has(bit)
}

// Names returns the members in bit order.
func (s RoleSet) Names() []string {
	if s.registry == nil {
		return nil
	}
	var out []string
	for _, name := range s.registry.Roles() {
		if s.Contains(name) {
			out = append(out, name)
		}
	}
	return out
}
