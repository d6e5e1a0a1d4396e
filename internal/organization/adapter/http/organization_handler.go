// Package http exposes the organization module over a Fiber REST API.
package http

import (
	"strconv"

	"org-registry/internal/organization/usecase"
	"org-registry/internal/shared/errors"
	"org-registry/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// OrganizationHandler handles organization management endpoints.
type OrganizationHandler struct {
	usecase usecase.OrganizationUsecase
	log     logger.Logger
}

// NewOrganizationHandler creates a new organization handler.
func NewOrganizationHandler(uc usecase.OrganizationUsecase, log logger.Logger) *OrganizationHandler {
	return &OrganizationHandler{
		usecase: uc,
		log:     log.WithComponent("organization-handler"),
	}
}

// RegisterRoutes registers organization management routes.
func (h *OrganizationHandler) RegisterRoutes(router fiber.Router) {
	v1 := router.Group("/v1")

	// Route params are only resolved on the matched route itself, not in
	// group-level middleware, so the context middleware rides on each route.
	reqCtx := RequestContextMiddleware()
	orgs := v1.Group("/organizations")
	orgs.Post("/", reqCtx, h.CreateOrganization)                  // POST /v1/organizations
	orgs.Get("/", reqCtx, h.ListOrganizations)                    // GET /v1/organizations
	orgs.Get("/count", reqCtx, h.CountOrganizations)              // GET /v1/organizations/count
	orgs.Get("/slug/:slug", reqCtx, h.GetOrganizationBySlug)      // GET /v1/organizations/slug/{slug}
	orgs.Get("/:organizationId", reqCtx, h.GetOrganization)       // GET /v1/organizations/{organizationId}
	orgs.Put("/:organizationId", reqCtx, h.UpdateOrganization)    // PUT /v1/organizations/{organizationId}
	orgs.Delete("/:organizationId", reqCtx, h.DeleteOrganization) // DELETE /v1/organizations/{organizationId}
}

// CreateOrganization creates a new organization.
// POST /v1/organizations
func (h *OrganizationHandler) CreateOrganization(c *fiber.Ctx) error {
	var req usecase.CreateOrganizationRequest
	if err := c.BodyParser(&req); err != nil {
		h.log.WithFields(map[string]interface{}{"error": err}).Error("Failed to parse request body")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_request_body",
			"message": "Failed to parse request body",
		})
	}

	if req.Slug == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "missing_slug",
			"message": "Slug is required",
		})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "missing_name",
			"message": "Name is required",
		})
	}
	if req.Type == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "missing_organization_type",
			"message": "Organization type is required",
		})
	}

	org, err := h.usecase.CreateOrganization(c.UserContext(), req)
	if err != nil {
		return h.writeError(c, err, "create_organization_failed")
	}

	return c.Status(fiber.StatusCreated).JSON(toOrganizationResponse(org))
}

// GetOrganization retrieves an organization by ID.
// GET /v1/organizations/{organizationId}
func (h *OrganizationHandler) GetOrganization(c *fiber.Ctx) error {
	org, err := h.usecase.GetOrganization(c.UserContext(), c.Params("organizationId"))
	if err != nil {
		return h.writeError(c, err, "get_organization_failed")
	}
	return c.JSON(toOrganizationResponse(org))
}

// GetOrganizationBySlug retrieves an organization by its slug.
// GET /v1/organizations/slug/{slug}
func (h *OrganizationHandler) GetOrganizationBySlug(c *fiber.Ctx) error {
	org, err := h.usecase.GetOrganizationBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return h.writeError(c, err, "get_organization_failed")
	}
	return c.JSON(toOrganizationResponse(org))
}

// ListOrganizations lists organizations with optional type filter and paging.
// GET /v1/organizations
func (h *OrganizationHandler) ListOrganizations(c *fiber.Ctx) error {
	req := usecase.ListOrganizationsRequest{
		Type: c.Query("type"),
	}
	if ps := c.Query("pageSize"); ps != "" {
		if parsed, err := strconv.Atoi(ps); err == nil {
			req.PageSize = parsed
		}
	}
	if o := c.Query("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil {
			req.Offset = parsed
		}
	}

	orgs, err := h.usecase.ListOrganizations(c.UserContext(), req)
	if err != nil {
		return h.writeError(c, err, "list_organizations_failed")
	}

	responses := make([]OrganizationResponse, 0, len(orgs))
	for _, org := range orgs {
		responses = append(responses, toOrganizationResponse(org))
	}
	return c.JSON(ListOrganizationsResponse{Organizations: responses})
}

// CountOrganizations returns the total number of organizations.
// GET /v1/organizations/count
func (h *OrganizationHandler) CountOrganizations(c *fiber.Ctx) error {
	count, err := h.usecase.CountOrganizations(c.UserContext())
	if err != nil {
		return h.writeError(c, err, "count_organizations_failed")
	}
	return c.JSON(fiber.Map{"count": count})
}

// UpdateOrganization applies a partial update to an organization.
// PUT /v1/organizations/{organizationId}
func (h *OrganizationHandler) UpdateOrganization(c *fiber.Ctx) error {
	var req usecase.UpdateOrganizationRequest
	if err := c.BodyParser(&req); err != nil {
		h.log.WithFields(map[string]interface{}{"error": err}).Error("Failed to parse request body")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_request_body",
			"message": "Failed to parse request body",
		})
	}
	req.ID = c.Params("organizationId")

	org, err := h.usecase.UpdateOrganization(c.UserContext(), req)
	if err != nil {
		return h.writeError(c, err, "update_organization_failed")
	}
	return c.JSON(toOrganizationResponse(org))
}

// DeleteOrganization removes an organization.
// DELETE /v1/organizations/{organizationId}
func (h *OrganizationHandler) DeleteOrganization(c *fiber.Ctx) error {
	id := c.Params("organizationId")
	if err := h.usecase.DeleteOrganization(c.UserContext(), id); err != nil {
		return h.writeError(c, err, "delete_organization_failed")
	}
	return c.JSON(fiber.Map{
		"message":        "Organization deleted successfully",
		"organizationId": id,
	})
}

// writeError maps usecase errors onto HTTP responses.
func (h *OrganizationHandler) writeError(c *fiber.Ctx, err error, fallbackCode string) error {
	switch {
	case errors.IsValidation(err):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "validation_failed",
			"message": err.Error(),
		})
	case errors.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "organization_not_found",
			"message": err.Error(),
		})
	case errors.IsConflict(err):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "organization_already_exists",
			"message": err.Error(),
		})
	}

	h.log.WithContext(c.UserContext()).WithFields(map[string]interface{}{"error": err}).Error("Request failed")
	if appErr, ok := err.(*errors.AppError); ok {
		return c.Status(appErr.HTTPCode).JSON(fiber.Map{
			"error":   fallbackCode,
			"message": appErr.Message,
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   fallbackCode,
		"message": "Internal server error",
	})
}
