package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind distinguishes access tokens from refresh tokens.
type Kind string

const (
	// KindAccess marks short-lived bearer tokens.
	KindAccess Kind = "access"
	// KindRefresh marks long-lived tokens exchanged for new access tokens.
	KindRefresh Kind = "refresh"
)

var (
	// ErrMissingSecret is returned when the signing secret for a kind is unset.
	ErrMissingSecret = errors.New("jwt signing secret not configured")
	// ErrMalformed is returned for tokens that cannot be decoded.
	ErrMalformed = errors.New("token malformed")
	// ErrBadSignature is returned when the signature or algorithm does not match.
	ErrBadSignature = errors.New("token signature invalid")
	// ErrExpired is returned when exp <= now.
	ErrExpired = errors.New("token expired")
	// ErrWrongKind is returned when a token of the other kind is presented.
	ErrWrongKind = errors.New("token kind mismatch")
	// ErrInvalidClaims is returned for structurally valid tokens with unusable claims.
	ErrInvalidClaims = errors.New("token claims invalid")
)

// Config holds the secrets and lifetimes for both token kinds.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration

	// Now overrides the clock. Nil means time.Now.
	Now func() time.Time
}

// Claims is the payload carried by both token kinds.
type Claims struct {
	UID  string `json:"uid"`
	Kind Kind   `json:"typ"`
	jwt.RegisteredClaims
}

// Manager signs and verifies tokens. It is safe for concurrent use.
type Manager struct {
	config Config
}

// NewManager validates cfg. Both secrets are required so a misconfigured
// deployment fails at startup instead of on the first request.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, ErrMissingSecret
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	cfg.Issuer = strings.TrimSpace(cfg.Issuer)
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Manager{config: cfg}, nil
}

// HasSecret reports whether tokens of kind can be signed and verified.
func (m *Manager) HasSecret(kind Kind) bool {
	return m != nil && len(m.secret(kind)) > 0
}

// TTL returns the configured lifetime for kind.
func (m *Manager) TTL(kind Kind) time.Duration {
	if kind == KindRefresh {
		return m.config.RefreshTTL
	}
	return m.config.AccessTTL
}

// IssueAccess signs a new access token for subjectID.
func (m *Manager) IssueAccess(subjectID string) (string, error) {
	return m.issue(subjectID, KindAccess)
}

// IssueRefresh signs a new refresh token for subjectID.
func (m *Manager) IssueRefresh(subjectID string) (string, error) {
	return m.issue(subjectID, KindRefresh)
}

func (m *Manager) issue(subjectID string, kind Kind) (string, error) {
	secret := m.secret(kind)
	if len(secret) == 0 {
		return "", ErrMissingSecret
	}
	if subjectID == "" {
		return "", fmt.Errorf("%w: empty subject", ErrInvalidClaims)
	}

	now := m.config.Now()
	claims := Claims{
		UID:  subjectID,
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.TTL(kind))),
			Issuer:    m.config.Issuer,
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Verify checks algorithm, signature, kind and expiry.
func (m *Manager) Verify(tokenStr string, kind Kind) (*Claims, error) {
	return m.parse(tokenStr, kind, true)
}

// Inspect checks algorithm, signature and kind but ignores expiry. Revocation
// uses it so a signed but expired token can still clear its record.
func (m *Manager) Inspect(tokenStr string, kind Kind) (*Claims, error) {
	return m.parse(tokenStr, kind, false)
}

func (m *Manager) parse(tokenStr string, kind Kind, validateTime bool) (*Claims, error) {
	secret := m.secret(kind)
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.config.Now),
	}
	if validateTime {
		options = append(options, jwt.WithExpirationRequired())
		if m.config.Leeway > 0 {
			options = append(options, jwt.WithLeeway(m.config.Leeway))
		}
	} else {
		options = append(options, jwt.WithoutClaimsValidation())
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.Kind != kind {
		return nil, ErrWrongKind
	}
	if claims.UID == "" {
		return nil, fmt.Errorf("%w: missing uid", ErrInvalidClaims)
	}
	// WithoutClaimsValidation skips the issuer check as well.
	if !validateTime && m.config.Issuer != "" && claims.Issuer != m.config.Issuer {
		return nil, fmt.Errorf("%w: issuer", ErrInvalidClaims)
	}

	return claims, nil
}

// Expired reports whether claims carry an exp at or before now.
func (m *Manager) Expired(claims *Claims) bool {
	if claims == nil || claims.ExpiresAt == nil {
		return true
	}
	return !m.config.Now().Before(claims.ExpiresAt.Time)
}

func (m *Manager) secret(kind Kind) []byte {
	switch kind {
	case KindAccess:
		return m.config.AccessSecret
	case KindRefresh:
		return m.config.RefreshSecret
	default:
		return nil
	}
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	default:
		return fmt.Errorf("%w: %v", ErrInvalidClaims, err)
	}
}
