package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/MrEthical07/goTenant/organization"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OrganizationHandler serves /api/organization.
type OrganizationHandler struct {
	orgs   *organization.Service
	logger *zap.Logger
}

type createOrganizationRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
}

type updateOrganizationRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type inviteRequest struct {
	UserEmail string `json:"user_email" binding:"required"`
}

func (h *OrganizationHandler) Create(c *gin.Context) {
	var req createOrganizationRequest
	if err := bindJSON(c, &req); err != nil {
		respond(c, http.StatusBadRequest, "name and description are required")
		return
	}

	org, err := h.orgs.Create(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		h.fail(c, "create", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"organization_id": org.ID})
}

func (h *OrganizationHandler) List(c *gin.Context) {
	orgs, err := h.orgs.List(c.Request.Context())
	if err != nil {
		h.fail(c, "list", err)
		return
	}
	c.JSON(http.StatusOK, orgs)
}

func (h *OrganizationHandler) Get(c *gin.Context) {
	org, err := h.orgs.Get(c.Request.Context(), c.Param("organization_id"))
	if err != nil {
		h.fail(c, "get", err)
		return
	}
	c.JSON(http.StatusOK, org)
}

func (h *OrganizationHandler) Update(c *gin.Context) {
	var req updateOrganizationRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body")
		return
	}

	org, err := h.orgs.Update(c.Request.Context(), c.Param("organization_id"), organization.Patch{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.fail(c, "update", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"organization_id": org.ID,
		"name":            org.Name,
		"description":     org.Description,
	})
}

func (h *OrganizationHandler) Delete(c *gin.Context) {
	if err := h.orgs.Delete(c.Request.Context(), c.Param("organization_id")); err != nil {
		h.fail(c, "delete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "organization deleted"})
}

func (h *OrganizationHandler) Invite(c *gin.Context) {
	var req inviteRequest
	if err := bindJSON(c, &req); err != nil {
		respond(c, http.StatusBadRequest, "user_email is required")
		return
	}

	if _, err := h.orgs.Invite(c.Request.Context(), c.Param("organization_id"), req.UserEmail); err != nil {
		h.fail(c, "invite", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user has been invited to the organization"})
}

func (h *OrganizationHandler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, organization.ErrNotFound):
		respond(c, http.StatusNotFound, "organization not found")
	case errors.Is(err, organization.ErrUnknownMember):
		respond(c, http.StatusBadRequest, organization.ErrUnknownMember.Error())
	case errors.Is(err, organization.ErrNameTaken):
		respond(c, http.StatusBadRequest, organization.ErrNameTaken.Error())
	case errors.Is(err, organization.ErrInvalid):
		// Validation messages are safe to echo.
		respond(c, http.StatusBadRequest, strings.TrimPrefix(err.Error(), organization.ErrInvalid.Error()+": "))
	default:
		h.logger.Error("organization request failed", zap.String("op", op), zap.Error(err))
		respond(c, http.StatusInternalServerError, "internal server error")
	}
}
