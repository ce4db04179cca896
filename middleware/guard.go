package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	goTenant "github.com/MrEthical07/goTenant"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	identityKey = "identity"

	// AccessTokenCookie is the cookie consulted last for an access token.
	AccessTokenCookie = "accessToken"
	// LegacyAccessTokenCookie is accepted when AccessTokenCookie is absent.
	LegacyAccessTokenCookie = "access_token"
)

// Authenticator is satisfied by *goTenant.Engine.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*goTenant.Identity, error)
}

type tokenBody struct {
	Token string `json:"token"`
}

// Guard rejects requests without a valid access token. The token is taken
// from the Authorization bearer header, then the JSON body field "token",
// then the accessToken (or legacy access_token) cookie; the first non-empty
// source wins.
func Guard(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth == nil {
			abort(c, http.StatusUnauthorized, "unauthorized")
			return
		}

		token := extractToken(c)
		if token == "" {
			abort(c, http.StatusUnauthorized, "unauthorized")
			return
		}

		identity, err := auth.Authenticate(c.Request.Context(), token)
		switch {
		case err == nil:
		case errors.Is(err, goTenant.ErrUnauthenticated):
			abort(c, http.StatusUnauthorized, "session expired, log in again")
			return
		case errors.Is(err, goTenant.ErrUnknownSubject):
			abort(c, http.StatusUnauthorized, "user not found")
			return
		default:
			abort(c, http.StatusInternalServerError, "internal server error")
			return
		}

		c.Set(identityKey, identity)
		c.Request = c.Request.WithContext(goTenant.WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

// IdentityFrom returns the identity attached by [Guard].
func IdentityFrom(c *gin.Context) (*goTenant.Identity, bool) {
	value, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	identity, ok := value.(*goTenant.Identity)
	return identity, ok && identity != nil
}

func extractToken(c *gin.Context) string {
	if token, ok := bearerToken(c.GetHeader("Authorization")); ok {
		return token
	}

	// ShouldBindBodyWith caches the raw body so handlers can bind it again.
	if c.Request.Body != nil && c.Request.ContentLength != 0 && strings.HasPrefix(c.ContentType(), binding.MIMEJSON) {
		var body tokenBody
		if err := c.ShouldBindBodyWith(&body, binding.JSON); err == nil {
			if token := strings.TrimSpace(body.Token); token != "" {
				return token
			}
		}
	}

	for _, name := range []string{AccessTokenCookie, LegacyAccessTokenCookie} {
		if cookie, err := c.Cookie(name); err == nil {
			if token := strings.TrimSpace(cookie); token != "" {
				return token
			}
		}
	}
	return ""
}

func bearerToken(value string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(value), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}
