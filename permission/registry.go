package permission

import (
	"errors"
	"sort"
	"sync"
)

// MaxRoles is the number of distinct roles a [Registry] can hold.
const MaxRoles = 64

// Registry maps role names to bit positions within a [Mask64].
type Registry struct {
	mu        sync.RWMutex
	nameToBit map[string]int
	bitToName map[int]string
	frozen    bool
}

// NewRegistry registers roles in order and freezes the registry.
func NewRegistry(roles ...string) (*Registry, error) {
	r := &Registry{
		nameToBit: make(map[string]int),
		bitToName: make(map[int]string),
	}
	for _, name := range roles {
		if _, err := r.Register(name); err != nil {
			return nil, err
		}
	}
	r.Freeze()
	return r, nil
}

// Register assigns the next available bit to the named role.
func (r *Registry) Register(name string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return -1, errors.New("registry frozen")
	}
	if name == "" {
		return -1, errors.New("role name cannot be empty")
	}
	if _, exists := r.nameToBit[name]; exists {
		return -1, errors.New("role already registered: " + name)
	}

	nextBit := len(r.nameToBit)
	if nextBit >= MaxRoles {
		return -1, errors.New("role limit exceeded")
	}

	r.nameToBit[name] = nextBit
	r.bitToName[nextBit] = name

	return nextBit, nil
}

// Bit returns the bit index for the named role, or false if not registered.
func (r *Registry) Bit(name string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bit, ok := r.nameToBit[name]
	return bit, ok
}

// Name returns the role name for the given bit index, or false if unassigned.
func (r *Registry) Name(bit int) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.bitToName[bit]
	return name, ok
}

// Has reports whether name is a registered role.
func (r *Registry) Has(name string) bool {
	_, ok := r.Bit(name)
	return ok
}

// Freeze prevents further registrations.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Count returns the number of registered roles.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nameToBit)
}

// Roles returns the registered role names in bit order.
func (r *Registry) Roles() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bits := make([]int, 0, len(r.bitToName))
	for bit := range r.bitToName {
		bits = append(bits, bit)
	}
	sort.Ints(bits)
	out := make([]string, 0, len(bits))
	for _, bit := range bits {
		out = append(out, r.bitToName[bit])
	}
	return out
}
