package password

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHashAndVerify(t *testing.T) {
	hasher, err := NewBcrypt(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewBcrypt error: %v", err)
	}

	hash, err := hasher.Hash("pw")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(hash, "$2a$04$") {
		t.Fatalf("unexpected bcrypt prefix: %s", hash)
	}

	ok, err := hasher.Verify("pw", hash)
	if err != nil || !ok {
		t.Fatalf("expected verify success, ok=%v err=%v", ok, err)
	}

	ok, err = hasher.Verify("nope", hash)
	if err != nil {
		t.Fatalf("mismatch should not be an error: %v", err)
	}
	if ok {
		t.Fatal("expected wrong password to fail")
	}
}

func TestBcryptSaltsDiffer(t *testing.T) {
	hasher, _ := NewBcrypt(bcrypt.MinCost)
	a, _ := hasher.Hash("same")
	b, _ := hasher.Hash("same")
	if a == b {
		t.Fatal("expected distinct salts per hash")
	}
}

func TestNewBcryptDefaultsAndBounds(t *testing.T) {
	hasher, err := NewBcrypt(0)
	if err != nil {
		t.Fatalf("NewBcrypt(0) error: %v", err)
	}
	if hasher.cost != DefaultBcryptCost {
		t.Fatalf("expected default cost %d, got %d", DefaultBcryptCost, hasher.cost)
	}
	if _, err := NewBcrypt(bcrypt.MaxCost + 1); err == nil {
		t.Fatal("expected out-of-range cost to be rejected")
	}
}

func TestBcryptNeedsUpgrade(t *testing.T) {
	weak, _ := NewBcrypt(bcrypt.MinCost)
	hash, _ := weak.Hash("pw")

	strong, _ := NewBcrypt(bcrypt.MinCost + 1)
	upgrade, err := strong.NeedsUpgrade(hash)
	if err != nil {
		t.Fatalf("NeedsUpgrade error: %v", err)
	}
	if !upgrade {
		t.Fatal("expected lower-cost hash to need upgrade")
	}
}

func TestBcryptVerifyMalformedHash(t *testing.T) {
	hasher, _ := NewBcrypt(bcrypt.MinCost)
	if _, err := hasher.Verify("pw", "$2a$garbage"); err == nil {
		t.Fatal("expected malformed hash to return an error")
	}
}
