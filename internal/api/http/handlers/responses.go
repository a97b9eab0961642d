package handlers

import (
	"github.com/go-playground/validator/v10"

	"github.com/spec-kit/food-donation-service/internal/api/dto"
	"github.com/spec-kit/food-donation-service/internal/domain"
	"github.com/spec-kit/food-donation-service/internal/service"
	apperrors "github.com/spec-kit/food-donation-service/pkg/util/errorutil"
)

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Phone:     user.Phone,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

func donationSummary(donation *domain.Donation) dto.DonationSummary {
	return dto.DonationSummary{
		ID:             donation.ID,
		DonorID:        donation.DonorID,
		ItemName:       donation.ItemName,
		Quantity:       donation.Quantity,
		Address:        donation.Address,
		Phone:          donation.Phone,
		Status:         donation.Status,
		AgentID:        donation.AgentID,
		CollectionTime: donation.CollectionTime,
		CreatedAt:      donation.CreatedAt,
		UpdatedAt:      donation.UpdatedAt,
	}
}

func donationDetail(detail *service.DonationDetail) dto.DonationDetailResponse {
	resp := dto.DonationDetailResponse{
		ID:              detail.Donation.ID,
		ItemName:        detail.Donation.ItemName,
		Description:     detail.Donation.Description,
		Quantity:        detail.Donation.Quantity,
		Address:         detail.Donation.Address,
		Phone:           detail.Donation.Phone,
		Status:          detail.Donation.Status,
		AdminToAgentMsg: detail.Donation.AdminToAgentMsg,
		CollectionTime:  detail.Donation.CollectionTime,
		CreatedAt:       detail.Donation.CreatedAt,
	}
	if detail.Donor != nil {
		donor := userResponse(detail.Donor)
		resp.Donor = &donor
	}
	if detail.Agent != nil {
		agent := userResponse(detail.Agent)
		resp.Agent = &agent
	}
	return resp
}

// validationError folds every field violation from the validator into a
// single aggregated ValidationError.
func validationError(err error) error {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	violations := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, fe.Field()+" failed rule "+fe.Tag())
	}
	return apperrors.NewValidationError("invalid payload", map[string]any{"errors": violations})
}
