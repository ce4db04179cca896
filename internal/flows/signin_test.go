package flows

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type memoryIdentities struct {
	byEmail map[string]IdentityRecord
	nextID  int
}

func (m *memoryIdentities) find(_ context.Context, email string) (IdentityRecord, bool, error) {
	rec, ok := m.byEmail[email]
	return rec, ok, nil
}

func (m *memoryIdentities) insert(_ context.Context, rec IdentityRecord) (IdentityRecord, error) {
	m.nextID++
	rec.ID = "id-" + string(rune('0'+m.nextID))
	m.byEmail[rec.Email] = rec
	return rec, nil
}

func plainVerify(password, hash string) (bool, error) {
	if hash == "corrupt" {
		return false, errors.New("bad hash")
	}
	return "hashed:"+password == hash, nil
}

func TestRunSignupDefaultsRoleAndRejectsDuplicate(t *testing.T) {
	ids := &memoryIdentities{byEmail: map[string]IdentityRecord{}}
	deps := SignupDeps{
		DefaultRole:  "member",
		ValidRole:    func(r string) bool { return r == "member" || r == "admin" },
		Now:          func() time.Time { return time.Unix(100, 0) },
		HashPassword: func(p string) (string, error) { return "hashed:" + p, nil },
		FindByEmail:  ids.find,
		Insert:       ids.insert,
	}

	res := RunSignup(context.Background(), SignupInput{Name: "A", Email: " A@X.io ", Password: "pw"}, deps)
	if res.Failure != SignupFailureNone {
		t.Fatalf("unexpected failure %v: %v", res.Failure, res.Err)
	}
	if res.Identity.Role != "member" || res.Identity.Email != "a@x.io" || res.Identity.PasswordHash != "hashed:pw" {
		t.Fatalf("unexpected identity %+v", res.Identity)
	}

	dup := RunSignup(context.Background(), SignupInput{Name: "B", Email: "a@x.io", Password: "pw2"}, deps)
	if dup.Failure != SignupFailureDuplicate {
		t.Fatalf("expected duplicate, got %v", dup.Failure)
	}
	if ids.byEmail["a@x.io"].Name != "A" {
		t.Fatal("duplicate signup must not alter the existing identity")
	}

	bad := RunSignup(context.Background(), SignupInput{Name: "C", Email: "c@x.io", Password: "pw", Role: "root"}, deps)
	if bad.Failure != SignupFailureInvalidRole {
		t.Fatalf("expected invalid role, got %v", bad.Failure)
	}

	empty := RunSignup(context.Background(), SignupInput{Email: "d@x.io", Password: "pw"}, deps)
	if empty.Failure != SignupFailureInvalidInput {
		t.Fatalf("expected invalid input, got %v", empty.Failure)
	}
}

func TestRunSignupInsertRaceIsDuplicate(t *testing.T) {
	errUnique := errors.New("unique violation")
	deps := SignupDeps{
		DefaultRole:  "member",
		Now:          time.Now,
		HashPassword: func(p string) (string, error) { return p, nil },
		FindByEmail: func(context.Context, string) (IdentityRecord, bool, error) {
			return IdentityRecord{}, false, nil
		},
		Insert: func(context.Context, IdentityRecord) (IdentityRecord, error) {
			return IdentityRecord{}, errUnique
		},
		IsDuplicate: func(err error) bool { return errors.Is(err, errUnique) },
	}

	res := RunSignup(context.Background(), SignupInput{Name: "A", Email: "a@x.io", Password: "pw"}, deps)
	if res.Failure != SignupFailureDuplicate {
		t.Fatalf("expected duplicate, got %v", res.Failure)
	}
}

func TestRunSigninPaths(t *testing.T) {
	ids := &memoryIdentities{byEmail: map[string]IdentityRecord{
		"a@x.io":       {ID: "u-1", Email: "a@x.io", PasswordHash: "hashed:pw"},
		"corrupt@x.io": {ID: "u-2", Email: "corrupt@x.io", PasswordHash: "corrupt"},
	}}
	stored := map[string]string{}
	dummyChecked := false
	deps := SigninDeps{
		FindByEmail: ids.find,
		VerifyPassword: func(p, h string) (bool, error) {
			if h == "dummy" {
				dummyChecked = true
			}
			return plainVerify(p, h)
		},
		DummyHash:    "dummy",
		IssueAccess:  func(uid string) (string, error) { return "a-" + uid, nil },
		IssueRefresh: func(uid string) (string, error) { return "r-" + uid, nil },
		PutRefresh: func(_ context.Context, uid, tok string) error {
			stored[uid] = tok
			return nil
		},
	}

	ok := RunSignin(context.Background(), "A@x.io", "pw", deps)
	if ok.Failure != SigninFailureNone || ok.AccessToken != "a-u-1" || ok.RefreshToken != "r-u-1" {
		t.Fatalf("unexpected signin result %+v", ok)
	}
	if stored["u-1"] != "r-u-1" {
		t.Fatal("expected refresh token recorded")
	}

	if res := RunSignin(context.Background(), "a@x.io", "nope", deps); res.Failure != SigninFailurePasswordMismatch {
		t.Fatalf("expected mismatch, got %v", res.Failure)
	}
	if res := RunSignin(context.Background(), "ghost@x.io", "pw", deps); res.Failure != SigninFailureUnknownEmail {
		t.Fatalf("expected unknown email, got %v", res.Failure)
	}
	if !dummyChecked {
		t.Fatal("expected dummy hash verification for unknown email")
	}
	if res := RunSignin(context.Background(), "corrupt@x.io", "pw", deps); res.Failure != SigninFailureCorruptHash {
		t.Fatalf("expected corrupt hash, got %v", res.Failure)
	}

	deps.PutRefresh = func(context.Context, string, string) error { return errors.New("down") }
	if res := RunSignin(context.Background(), "a@x.io", "pw", deps); res.Failure != SigninFailureStore {
		t.Fatalf("expected store failure, got %v", res.Failure)
	}
}

func TestRunSigninUpgradesPasswordHash(t *testing.T) {
	ids := &memoryIdentities{byEmail: map[string]IdentityRecord{
		"old@x.io": {ID: "u-old", Email: "old@x.io", PasswordHash: "legacy:pw"},
		"new@x.io": {ID: "u-new", Email: "new@x.io", PasswordHash: "hashed:pw"},
	}}
	updated := map[string]string{}
	var warnings []string
	deps := SigninDeps{
		FindByEmail: ids.find,
		VerifyPassword: func(p, h string) (bool, error) {
			return h == "legacy:"+p || h == "hashed:"+p, nil
		},
		PasswordNeedsUpgrade: func(h string) (bool, error) {
			return strings.HasPrefix(h, "legacy:"), nil
		},
		HashPassword: func(p string) (string, error) { return "hashed:" + p, nil },
		UpdatePasswordHash: func(_ context.Context, id, hash string) error {
			updated[id] = hash
			return nil
		},
		Warn:         func(msg string, _ error) { warnings = append(warnings, msg) },
		IssueAccess:  func(uid string) (string, error) { return "a-" + uid, nil },
		IssueRefresh: func(uid string) (string, error) { return "r-" + uid, nil },
		PutRefresh:   func(context.Context, string, string) error { return nil },
	}

	if res := RunSignin(context.Background(), "old@x.io", "pw", deps); res.Failure != SigninFailureNone {
		t.Fatalf("unexpected failure %v", res.Failure)
	}
	if updated["u-old"] != "hashed:pw" {
		t.Fatalf("expected legacy hash replaced, got %q", updated["u-old"])
	}

	if res := RunSignin(context.Background(), "new@x.io", "pw", deps); res.Failure != SigninFailureNone {
		t.Fatalf("unexpected failure %v", res.Failure)
	}
	if _, ok := updated["u-new"]; ok {
		t.Fatal("current hash must not be rewritten")
	}

	if res := RunSignin(context.Background(), "old@x.io", "wrong", deps); res.Failure != SigninFailurePasswordMismatch {
		t.Fatalf("expected mismatch, got %v", res.Failure)
	}

	deps.UpdatePasswordHash = func(context.Context, string, string) error { return errors.New("read only") }
	if res := RunSignin(context.Background(), "old@x.io", "pw", deps); res.Failure != SigninFailureNone {
		t.Fatalf("failed upgrade must not fail signin, got %v", res.Failure)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %v", warnings)
	}
}
