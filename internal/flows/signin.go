package flows

import "context"

// SigninFailureKind classifies signin failures for root-level mapping.
type SigninFailureKind int

const (
	SigninFailureNone SigninFailureKind = iota
	SigninFailureUnknownEmail
	SigninFailurePasswordMismatch
	SigninFailureCorruptHash
	SigninFailureLookup
	SigninFailureIssue
	SigninFailureStore
)

// SigninResult carries the issued token pair or failure metadata.
type SigninResult struct {
	Failure      SigninFailureKind
	Err          error
	UserID       string
	AccessToken  string
	RefreshToken string
}

// SigninDeps captures signin dependencies.
type SigninDeps struct {
	FindByEmail    func(context.Context, string) (IdentityRecord, bool, error)
	VerifyPassword func(password, hash string) (bool, error)
	// DummyHash is verified when the email is unknown so both failure paths
	// cost one hash comparison.
	DummyHash string
	// Rehash on signin is optional; all three must be set to enable it.
	PasswordNeedsUpgrade func(string) (bool, error)
	HashPassword         func(string) (string, error)
	UpdatePasswordHash   func(context.Context, string, string) error
	Warn                 func(string, error)
	IssueAccess          func(string) (string, error)
	IssueRefresh         func(string) (string, error)
	PutRefresh           func(context.Context, string, string) error
}

// RunSignin verifies credentials, issues a token pair and records the
// refresh token as the subject's only valid one.
func RunSignin(ctx context.Context, email, password string, deps SigninDeps) SigninResult {
	record, found, err := deps.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return SigninResult{Failure: SigninFailureLookup, Err: err}
	}
	if !found {
		if deps.DummyHash != "" {
			_, _ = deps.VerifyPassword(password, deps.DummyHash)
		}
		return SigninResult{Failure: SigninFailureUnknownEmail}
	}

	ok, err := deps.VerifyPassword(password, record.PasswordHash)
	if err != nil {
		return SigninResult{Failure: SigninFailureCorruptHash, Err: err, UserID: record.ID}
	}
	if !ok {
		return SigninResult{Failure: SigninFailurePasswordMismatch, UserID: record.ID}
	}

	upgradePasswordHash(ctx, record, password, deps)

	access, err := deps.IssueAccess(record.ID)
	if err != nil {
		return SigninResult{Failure: SigninFailureIssue, Err: err, UserID: record.ID}
	}
	refresh, err := deps.IssueRefresh(record.ID)
	if err != nil {
		return SigninResult{Failure: SigninFailureIssue, Err: err, UserID: record.ID}
	}

	if err := deps.PutRefresh(ctx, record.ID, refresh); err != nil {
		return SigninResult{Failure: SigninFailureStore, Err: err, UserID: record.ID}
	}

	return SigninResult{
		UserID:       record.ID,
		AccessToken:  access,
		RefreshToken: refresh,
	}
}

// upgradePasswordHash is best-effort: a failed rehash never blocks signin.
func upgradePasswordHash(ctx context.Context, record IdentityRecord, password string, deps SigninDeps) {
	if deps.PasswordNeedsUpgrade == nil || deps.HashPassword == nil || deps.UpdatePasswordHash == nil {
		return
	}
	needsUpgrade, err := deps.PasswordNeedsUpgrade(record.PasswordHash)
	if err != nil || !needsUpgrade {
		return
	}
	upgraded, err := deps.HashPassword(password)
	if err != nil {
		warn(deps, "password hash upgrade generation failed", err)
		return
	}
	if err := deps.UpdatePasswordHash(ctx, record.ID, upgraded); err != nil {
		warn(deps, "password hash upgrade update failed", err)
	}
}

func warn(deps SigninDeps, msg string, err error) {
	if deps.Warn != nil {
		deps.Warn(msg, err)
	}
}
