package domain

import "time"

// DonationStatus enumerates lifecycle states for donations.
type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "pending"
	DonationStatusAccepted  DonationStatus = "accepted"
	DonationStatusAssigned  DonationStatus = "assigned"
	DonationStatusRejected  DonationStatus = "rejected"
	DonationStatusCollected DonationStatus = "collected"
)

// IsTerminal reports whether no further transitions leave the status.
func (s DonationStatus) IsTerminal() bool {
	return s == DonationStatusRejected || s == DonationStatusCollected
}

// Donation is the aggregate for donated goods awaiting review and collection.
//
// AgentID is set iff status is assigned or collected; CollectionTime is set
// iff status is collected. DonorID never changes after creation.
type Donation struct {
	ID              string
	DonorID         string
	ItemName        string
	Description     string
	Quantity        string
	Address         string
	Phone           string
	Status          DonationStatus
	AgentID         *string
	AdminToAgentMsg *string
	CollectionTime  *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
