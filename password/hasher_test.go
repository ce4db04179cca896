package password

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newMulti(t *testing.T, primaryArgon bool) *Multi {
	t.Helper()
	b, err := NewBcrypt(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewBcrypt error: %v", err)
	}
	a, err := NewArgon2(secureConfig())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}
	m := &Multi{Primary: b, Bcrypt: b, Argon2: a}
	if primaryArgon {
		m.Primary = a
	}
	return m
}

func TestMultiVerifiesBothSchemes(t *testing.T) {
	m := newMulti(t, false)

	bcryptHash, err := m.Bcrypt.Hash("pw")
	if err != nil {
		t.Fatalf("bcrypt Hash error: %v", err)
	}
	argonHash, err := m.Argon2.Hash("pw")
	if err != nil {
		t.Fatalf("argon2 Hash error: %v", err)
	}

	for _, hash := range []string{bcryptHash, argonHash} {
		ok, err := m.Verify("pw", hash)
		if err != nil || !ok {
			t.Fatalf("Verify(%q) ok=%v err=%v", hash[:10], ok, err)
		}
	}
}

func TestMultiUnknownScheme(t *testing.T) {
	m := newMulti(t, false)
	if _, err := m.Verify("pw", "plaintext"); !errors.Is(err, ErrUnsupportedHash) {
		t.Fatalf("expected ErrUnsupportedHash, got %v", err)
	}
}

func TestMultiNeedsUpgradeAcrossSchemes(t *testing.T) {
	m := newMulti(t, true)
	bcryptHash, _ := m.Bcrypt.Hash("pw")

	upgrade, err := m.NeedsUpgrade(bcryptHash)
	if err != nil {
		t.Fatalf("NeedsUpgrade error: %v", err)
	}
	if !upgrade {
		t.Fatal("expected bcrypt hash to need upgrade when argon2id is primary")
	}
}

func TestMultiHashUsesPrimary(t *testing.T) {
	m := newMulti(t, false)
	hash, err := m.Hash("pw")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !isBcryptHash(hash) {
		t.Fatalf("expected bcrypt output, got %s", hash)
	}
}
