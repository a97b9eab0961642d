package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/food-donation-service/internal/api/dto"
	"github.com/spec-kit/food-donation-service/internal/auth"
	"github.com/spec-kit/food-donation-service/internal/domain"
	"github.com/spec-kit/food-donation-service/internal/service"
	apperrors "github.com/spec-kit/food-donation-service/pkg/util/errorutil"
)

const defaultPageSize = 50

// DonationsHandler exposes the admin review workflow.
type DonationsHandler struct {
	donations *service.DonationService
	validate  *validator.Validate
}

// NewDonationsHandler returns a new handler instance.
func NewDonationsHandler(donations *service.DonationService, validate *validator.Validate) *DonationsHandler {
	return &DonationsHandler{donations: donations, validate: validate}
}

// Dashboard returns role and status counts for the admin overview.
func (h *DonationsHandler) Dashboard(c *fiber.Ctx) error {
	dash, err := h.donations.Dashboard(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": dto.AdminDashboardResponse{
			Admins:    dash.Admins,
			Donors:    dash.Donors,
			Agents:    dash.Agents,
			Pending:   dash.Pending,
			Accepted:  dash.Accepted,
			Assigned:  dash.Assigned,
			Collected: dash.Collected,
		},
	})
}

// ListPending returns donations still moving through the review workflow.
func (h *DonationsHandler) ListPending(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	donations, err := h.donations.ListForReview(c.Context(), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summaries(donations)})
}

// ListPrevious returns completed donations.
func (h *DonationsHandler) ListPrevious(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	donations, err := h.donations.ListCollected(c.Context(), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summaries(donations)})
}

// Get returns a donation with donor and agent resolved.
func (h *DonationsHandler) Get(c *fiber.Ctx) error {
	detail, err := h.donations.GetDetail(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": donationDetail(detail)})
}

// Accept approves a pending donation.
func (h *DonationsHandler) Accept(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	donation, err := h.donations.Accept(c.Context(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": donationSummary(donation)})
}

// Reject declines a pending donation.
func (h *DonationsHandler) Reject(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	donation, err := h.donations.Reject(c.Context(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": donationSummary(donation)})
}

// ListAgents returns every account with the agent role.
func (h *DonationsHandler) ListAgents(c *fiber.Ctx) error {
	agents, err := h.donations.ListAgents(c.Context())
	if err != nil {
		return err
	}
	resp := make([]dto.UserResponse, 0, len(agents))
	for i := range agents {
		resp = append(resp, userResponse(&agents[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Assign binds a collection agent to a donation.
func (h *DonationsHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.AssignAgentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(err)
	}

	donation, err := h.donations.Assign(c.Context(), principal.User.ID, c.Params("id"), req.AgentID, req.Message)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": donationSummary(donation)})
}

func pagination(c *fiber.Ctx) (limit, offset int) {
	limit = c.QueryInt("limit", defaultPageSize)
	if limit <= 0 || limit > 200 {
		limit = defaultPageSize
	}
	offset = c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func summaries(donations []domain.Donation) []dto.DonationSummary {
	resp := make([]dto.DonationSummary, 0, len(donations))
	for i := range donations {
		resp = append(resp, donationSummary(&donations[i]))
	}
	return resp
}
