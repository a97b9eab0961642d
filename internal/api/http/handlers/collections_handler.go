package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/food-donation-service/internal/api/dto"
	"github.com/spec-kit/food-donation-service/internal/auth"
	"github.com/spec-kit/food-donation-service/internal/domain"
	"github.com/spec-kit/food-donation-service/internal/service"
	apperrors "github.com/spec-kit/food-donation-service/pkg/util/errorutil"
)

// CollectionsHandler exposes the agent-side collection workflow.
type CollectionsHandler struct {
	donations *service.DonationService
}

// NewCollectionsHandler returns a new handler instance.
func NewCollectionsHandler(donations *service.DonationService) *CollectionsHandler {
	return &CollectionsHandler{donations: donations}
}

// Dashboard returns the agent's own collection counts.
func (h *CollectionsHandler) Dashboard(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	dash, err := h.donations.DashboardForAgent(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": dto.AgentDashboardResponse{
			Assigned:  dash.Assigned,
			Collected: dash.Collected,
		},
	})
}

// ListPending returns the agent's assigned, not yet collected donations.
func (h *CollectionsHandler) ListPending(c *fiber.Ctx) error {
	return h.listByStatus(c, domain.DonationStatusAssigned)
}

// ListPrevious returns the agent's collected donations.
func (h *CollectionsHandler) ListPrevious(c *fiber.Ctx) error {
	return h.listByStatus(c, domain.DonationStatusCollected)
}

func (h *CollectionsHandler) listByStatus(c *fiber.Ctx, status domain.DonationStatus) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	limit, offset := pagination(c)
	donations, err := h.donations.ListForAgent(c.Context(), principal.User.ID, status, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summaries(donations)})
}

// Get returns one of the agent's own donations with participants resolved.
func (h *CollectionsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	detail, err := h.donations.GetDetail(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	if detail.Donation.AgentID == nil || *detail.Donation.AgentID != principal.User.ID {
		return apperrors.NewForbidden("collection belongs to another agent")
	}
	return c.JSON(fiber.Map{"data": donationDetail(detail)})
}

// Collect marks one of the agent's assigned donations collected.
func (h *CollectionsHandler) Collect(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	detail, err := h.donations.GetDetail(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	if detail.Donation.AgentID == nil || *detail.Donation.AgentID != principal.User.ID {
		return apperrors.NewForbidden("collection belongs to another agent")
	}

	donation, err := h.donations.Collect(c.Context(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": donationSummary(donation)})
}
