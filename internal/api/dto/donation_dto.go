package dto

import (
	"time"

	"github.com/spec-kit/food-donation-service/internal/domain"
)

// CreateDonationRequest payload.
type CreateDonationRequest struct {
	ItemName    string `json:"item_name" validate:"required"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Address     string `json:"address" validate:"required"`
	Phone       string `json:"phone" validate:"required"`
}

// AssignAgentRequest payload.
type AssignAgentRequest struct {
	AgentID string  `json:"agent_id" validate:"required"`
	Message *string `json:"message"`
}

// DonationSummary response.
type DonationSummary struct {
	ID             string                `json:"id"`
	DonorID        string                `json:"donor_id"`
	ItemName       string                `json:"item_name"`
	Quantity       string                `json:"quantity"`
	Address        string                `json:"address"`
	Phone          string                `json:"phone"`
	Status         domain.DonationStatus `json:"status"`
	AgentID        *string               `json:"agent_id,omitempty"`
	CollectionTime *time.Time            `json:"collection_time,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// DonationDetailResponse provides full donation info with participants.
type DonationDetailResponse struct {
	ID              string                `json:"id"`
	ItemName        string                `json:"item_name"`
	Description     string                `json:"description"`
	Quantity        string                `json:"quantity"`
	Address         string                `json:"address"`
	Phone           string                `json:"phone"`
	Status          domain.DonationStatus `json:"status"`
	AdminToAgentMsg *string               `json:"admin_to_agent_msg,omitempty"`
	CollectionTime  *time.Time            `json:"collection_time,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	Donor           *UserResponse         `json:"donor,omitempty"`
	Agent           *UserResponse         `json:"agent,omitempty"`
}

// AdminDashboardResponse aggregates admin overview counts.
type AdminDashboardResponse struct {
	Admins    int64 `json:"admins"`
	Donors    int64 `json:"donors"`
	Agents    int64 `json:"agents"`
	Pending   int64 `json:"pending_donations"`
	Accepted  int64 `json:"accepted_donations"`
	Assigned  int64 `json:"assigned_donations"`
	Collected int64 `json:"collected_donations"`
}

// AgentDashboardResponse aggregates an agent's counts.
type AgentDashboardResponse struct {
	Assigned  int64 `json:"assigned_collections"`
	Collected int64 `json:"collected_collections"`
}
