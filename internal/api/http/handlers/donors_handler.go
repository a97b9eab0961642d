package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/food-donation-service/internal/api/dto"
	"github.com/spec-kit/food-donation-service/internal/auth"
	"github.com/spec-kit/food-donation-service/internal/service"
	apperrors "github.com/spec-kit/food-donation-service/pkg/util/errorutil"
)

// DonorsHandler exposes the donor-facing donation endpoints.
type DonorsHandler struct {
	donations *service.DonationService
	validate  *validator.Validate
}

// NewDonorsHandler returns a new handler instance.
func NewDonorsHandler(donations *service.DonationService, validate *validator.Validate) *DonorsHandler {
	return &DonorsHandler{donations: donations, validate: validate}
}

// Create records a new donation for the calling donor.
func (h *DonorsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateDonationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(err)
	}

	donation, err := h.donations.CreateForDonor(c.Context(), principal.User.ID, service.DonationCreateInput{
		ItemName:    req.ItemName,
		Description: req.Description,
		Quantity:    req.Quantity,
		Address:     req.Address,
		Phone:       req.Phone,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": donationSummary(donation)})
}

// List returns the calling donor's own donations.
func (h *DonorsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	limit, offset := pagination(c)
	donations, err := h.donations.ListForDonor(c.Context(), principal.User.ID, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summaries(donations)})
}

// Get returns one of the calling donor's own donations.
func (h *DonorsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	detail, err := h.donations.GetDetail(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	if detail.Donation.DonorID != principal.User.ID {
		return apperrors.NewForbidden("donation belongs to another donor")
	}
	return c.JSON(fiber.Map{"data": donationDetail(detail)})
}
