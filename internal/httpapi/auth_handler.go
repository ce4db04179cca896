package httpapi

import (
	"errors"
	"net/http"

	goTenant "github.com/MrEthical07/goTenant"
	"github.com/MrEthical07/goTenant/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler serves /api/auth.
type AuthHandler struct {
	auth   Auth
	logger *zap.Logger
}

type signupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
	// AccessLevel is the older name for Role.
	AccessLevel string `json:"access_level"`
}

type signinRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	Message      string `json:"message"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := bindJSON(c, &req); err != nil {
		respond(c, http.StatusBadRequest, "name, email and password are required")
		return
	}

	role := req.Role
	if role == "" {
		role = req.AccessLevel
	}

	_, err := h.auth.Signup(c.Request.Context(), goTenant.SignupRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, gin.H{"message": "user created successfully"})
	case errors.Is(err, goTenant.ErrDuplicateSubject):
		respond(c, http.StatusBadRequest, "user with that email already exists")
	case errors.Is(err, goTenant.ErrInvalidRole):
		respond(c, http.StatusBadRequest, "invalid role")
	case errors.Is(err, goTenant.ErrInvalidSignup):
		respond(c, http.StatusBadRequest, "invalid signup request")
	default:
		h.internal(c, "signup", err)
	}
}

func (h *AuthHandler) Signin(c *gin.Context) {
	var req signinRequest
	if err := bindJSON(c, &req); err != nil {
		respond(c, http.StatusBadRequest, "email and password are required")
		return
	}

	pair, err := h.auth.Signin(c.Request.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, tokenResponse{
			Message:      "signin successful",
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
		})
	case errors.Is(err, goTenant.ErrInvalidCredentials):
		respond(c, http.StatusBadRequest, "invalid email or password")
	default:
		h.internal(c, "signin", err)
	}
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body")
		return
	}

	pair, err := h.auth.RefreshAccess(c.Request.Context(), req.RefreshToken)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, tokenResponse{
			Message:      "token refreshed successfully",
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
		})
	case errors.Is(err, goTenant.ErrMissingToken):
		respond(c, http.StatusNotFound, "no refresh token provided")
	case errors.Is(err, goTenant.ErrInvalidToken):
		respond(c, http.StatusUnauthorized, "invalid refresh token")
	case errors.Is(err, goTenant.ErrSessionExpired):
		respond(c, http.StatusUnauthorized, "refresh token expired, log in again")
	default:
		h.internal(c, "refresh", err)
	}
}

func (h *AuthHandler) Revoke(c *gin.Context) {
	var req refreshRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.auth.Revoke(c.Request.Context(), req.RefreshToken)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "refresh token revoked successfully"})
	case errors.Is(err, goTenant.ErrMissingToken):
		respond(c, http.StatusNotFound, "no refresh token provided")
	default:
		h.internal(c, "revoke", err)
	}
}

// Me returns the identity attached by the guard.
func (h *AuthHandler) Me(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		respond(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	c.JSON(http.StatusOK, identity)
}

func (h *AuthHandler) internal(c *gin.Context, op string, err error) {
	h.logger.Error("auth request failed", zap.String("op", op), zap.Error(err))
	respond(c, http.StatusInternalServerError, "internal server error")
}
