package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/food-donation-service/internal/api/dto"
	"github.com/spec-kit/food-donation-service/internal/domain"
	"github.com/spec-kit/food-donation-service/internal/service"
	apperrors "github.com/spec-kit/food-donation-service/pkg/util/errorutil"
)

// SignupHandler exposes the OTP-gated registration endpoints.
type SignupHandler struct {
	signup   *service.SignupService
	validate *validator.Validate
}

// NewSignupHandler returns a new handler instance.
func NewSignupHandler(signup *service.SignupService, validate *validator.Validate) *SignupHandler {
	return &SignupHandler{signup: signup, validate: validate}
}

// Signup stages a registration and issues a one-time code.
func (h *SignupHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(err)
	}

	pending, err := h.signup.StartSignup(c.Context(), service.SignupInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Phone:           req.Phone,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Role:            domain.UserRole(req.Role),
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"data": dto.SignupPendingResponse{
			Ticket: pending.TicketToken,
			Email:  pending.Email,
		},
	})
}

// Verify promotes a staged registration when the submitted code matches.
func (h *SignupHandler) Verify(c *fiber.Ctx) error {
	var req dto.VerifyOtpRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(err)
	}

	user, err := h.signup.VerifyOtp(c.Context(), req.Ticket, req.Code)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data": userResponse(user),
	})
}

// Resend issues a fresh code for the given email.
func (h *SignupHandler) Resend(c *fiber.Ctx) error {
	var req dto.ResendOtpRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}

	if err := h.signup.ResendOtp(c.Context(), req.Email); err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"data": fiber.Map{"message": "a new OTP has been sent"},
	})
}
