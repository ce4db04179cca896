package password

import (
	"errors"
	"strings"
)

// ErrUnsupportedHash is returned when a stored hash matches no known scheme.
var ErrUnsupportedHash = errors.New("unsupported password hash")

// Hasher hashes and verifies credentials.
//
// Verify returns false with a nil error on mismatch. An error means the stored
// hash could not be parsed.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password string, encodedHash string) (bool, error)
}

// Multi hashes with Primary and verifies bcrypt or argon2id hashes by prefix.
type Multi struct {
	Primary Hasher
	Bcrypt  *Bcrypt
	Argon2  *Argon2
}

// Hash delegates to the primary hasher.
func (m *Multi) Hash(password string) (string, error) {
	if m == nil || m.Primary == nil {
		return "", errors.New("password hasher not configured")
	}
	return m.Primary.Hash(password)
}

// Verify selects the scheme from the hash prefix.
func (m *Multi) Verify(password string, encodedHash string) (bool, error) {
	switch {
	case strings.HasPrefix(encodedHash, "$"+algorithmID+"$"):
		if m.Argon2 == nil {
			return false, ErrUnsupportedHash
		}
		return m.Argon2.Verify(password, encodedHash)
	case isBcryptHash(encodedHash):
		if m.Bcrypt == nil {
			return false, ErrUnsupportedHash
		}
		return m.Bcrypt.Verify(password, encodedHash)
	default:
		return false, ErrUnsupportedHash
	}
}

// NeedsUpgrade reports whether the hash should be recomputed with Primary.
func (m *Multi) NeedsUpgrade(encodedHash string) (bool, error) {
	switch p := m.Primary.(type) {
	case *Argon2:
		if !strings.HasPrefix(encodedHash, "$"+algorithmID+"$") {
			return true, nil
		}
		return p.NeedsUpgrade(encodedHash)
	case *Bcrypt:
		if !isBcryptHash(encodedHash) {
			return true, nil
		}
		return p.NeedsUpgrade(encodedHash)
	default:
		return false, nil
	}
}
