package events

import (
	"time"

	"github.com/spec-kit/food-donation-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventDonationAccepted  EventType = "donation_accepted"
	EventDonationRejected  EventType = "donation_rejected"
	EventDonationAssigned  EventType = "donation_assigned"
	EventDonationCollected EventType = "donation_collected"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Role   domain.UserRole `json:"role"`
	UserID string          `json:"user_id"`
}

// Event represents a domain event emitted after a durable transition.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	DonationID string      `json:"donation_id"`
	Actor      Actor       `json:"actor"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// DonationReviewedPayload carries everything the donor notification needs
// after an accept or reject decision.
type DonationReviewedPayload struct {
	Status         domain.DonationStatus `json:"status"`
	ItemName       string                `json:"item_name"`
	DonorEmail     string                `json:"donor_email"`
	DonorFirstName string                `json:"donor_first_name"`
}

// DonationAssignedPayload carries the fields for both the donor and agent
// notifications fired by an assignment.
type DonationAssignedPayload struct {
	ItemName        string  `json:"item_name"`
	PickupAddress   string  `json:"pickup_address"`
	ContactPhone    string  `json:"contact_phone"`
	OperatorMessage *string `json:"operator_message,omitempty"`
	DonorEmail      string  `json:"donor_email"`
	DonorFirstName  string  `json:"donor_first_name"`
	AgentEmail      string  `json:"agent_email"`
	AgentFirstName  string  `json:"agent_first_name"`
}

// DonationCollectedPayload carries the fields for the donor and oversight
// notifications fired by a collection.
type DonationCollectedPayload struct {
	ItemName       string    `json:"item_name"`
	DonorEmail     string    `json:"donor_email"`
	DonorFirstName string    `json:"donor_first_name"`
	AgentFirstName string    `json:"agent_first_name"`
	CollectedAt    time.Time `json:"collected_at"`
}
