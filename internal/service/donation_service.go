package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/food-donation-service/internal/domain"
	"github.com/spec-kit/food-donation-service/internal/events"
	"github.com/spec-kit/food-donation-service/internal/repository"
	apperrors "github.com/spec-kit/food-donation-service/pkg/util/errorutil"
)

// DonationService owns the donation lifecycle state machine. Every transition
// is persisted first; notification side effects are published as events after
// the write commits and never affect the outcome of the transition.
type DonationService struct {
	donations  repository.DonationRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// DonationDependencies bundles repositories for the donation service.
type DonationDependencies struct {
	DonationRepo repository.DonationRepository
	UserRepo     repository.UserRepository
	Dispatcher   events.Dispatcher
}

// DonationCreateInput describes donation creation payload.
type DonationCreateInput struct {
	ItemName    string
	Description string
	Quantity    string
	Address     string
	Phone       string
}

// DonationDetail pairs a donation with its resolved participants.
type DonationDetail struct {
	Donation *domain.Donation
	Donor    *domain.User
	Agent    *domain.User
}

// AdminDashboard aggregates role and status counts for the admin overview.
type AdminDashboard struct {
	Admins    int64
	Donors    int64
	Agents    int64
	Pending   int64
	Accepted  int64
	Assigned  int64
	Collected int64
}

// AgentDashboard aggregates per-agent collection counts.
type AgentDashboard struct {
	Assigned  int64
	Collected int64
}

// NewDonationService constructs the service.
func NewDonationService(deps DonationDependencies) *DonationService {
	return &DonationService{
		donations:  deps.DonationRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CreateForDonor records a new donation in status pending.
func (s *DonationService) CreateForDonor(ctx context.Context, donorID string, input DonationCreateInput) (*domain.Donation, error) {
	violations := []string{}
	if strings.TrimSpace(input.ItemName) == "" {
		violations = append(violations, "item name is required")
	}
	if strings.TrimSpace(input.Address) == "" {
		violations = append(violations, "pickup address is required")
	}
	if strings.TrimSpace(input.Phone) == "" {
		violations = append(violations, "contact phone is required")
	}
	if len(violations) > 0 {
		return nil, apperrors.NewValidationError("invalid donation", map[string]any{"errors": violations})
	}

	donation := &domain.Donation{
		DonorID:     donorID,
		ItemName:    strings.TrimSpace(input.ItemName),
		Description: strings.TrimSpace(input.Description),
		Quantity:    strings.TrimSpace(input.Quantity),
		Address:     strings.TrimSpace(input.Address),
		Phone:       strings.TrimSpace(input.Phone),
		Status:      domain.DonationStatusPending,
	}
	if err := s.donations.Create(ctx, donation); err != nil {
		return nil, apperrors.MapError(err)
	}
	return donation, nil
}

// Accept marks a donation accepted and notifies the donor.
func (s *DonationService) Accept(ctx context.Context, actorID, donationID string) (*domain.Donation, error) {
	return s.review(ctx, actorID, donationID, domain.DonationStatusAccepted)
}

// Reject marks a donation rejected and notifies the donor.
func (s *DonationService) Reject(ctx context.Context, actorID, donationID string) (*domain.Donation, error) {
	return s.review(ctx, actorID, donationID, domain.DonationStatusRejected)
}

func (s *DonationService) review(ctx context.Context, actorID, donationID string, status domain.DonationStatus) (*domain.Donation, error) {
	donation, err := s.getDonation(ctx, donationID)
	if err != nil {
		return nil, err
	}
	// once an agent is bound or a terminal decision made, only re-invoking the
	// same decision is allowed; anything else would leave agent or collection
	// fields inconsistent with the new status
	if donation.Status == domain.DonationStatusAssigned ||
		(donation.Status.IsTerminal() && donation.Status != status) {
		return nil, apperrors.NewConflict("donation is no longer reviewable", map[string]any{"donation_id": donationID})
	}

	donation.Status = status
	if err := s.donations.Update(ctx, donation); err != nil {
		return nil, apperrors.MapError(err)
	}

	donor, err := s.users.GetByID(ctx, donation.DonorID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	eventType := events.EventDonationAccepted
	if status == domain.DonationStatusRejected {
		eventType = events.EventDonationRejected
	}
	s.publishEvent(ctx, events.Event{
		Type:       eventType,
		DonationID: donation.ID,
		Actor:      events.Actor{Role: domain.RoleAdmin, UserID: actorID},
		Payload: events.DonationReviewedPayload{
			Status:         status,
			ItemName:       donation.ItemName,
			DonorEmail:     donor.Email,
			DonorFirstName: donor.FirstName,
		},
	})
	return donation, nil
}

// Assign binds a collection agent to a donation and notifies donor and agent.
// The operator message is stored as given; an empty message is rendered with
// a default at notification time, not persisted as such.
func (s *DonationService) Assign(ctx context.Context, actorID, donationID, agentID string, operatorMessage *string) (*domain.Donation, error) {
	agent, err := s.users.GetByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("agent", map[string]any{"agent_id": agentID})
		}
		return nil, apperrors.MapError(err)
	}
	if agent.Role != domain.RoleAgent {
		return nil, apperrors.NewConflict("assignee is not an agent", map[string]any{"agent_id": agentID})
	}

	donation, err := s.getDonation(ctx, donationID)
	if err != nil {
		return nil, err
	}
	if donation.Status.IsTerminal() {
		return nil, apperrors.NewConflict("donation is no longer assignable", map[string]any{"donation_id": donationID})
	}

	donation.Status = domain.DonationStatusAssigned
	donation.AgentID = &agent.ID
	donation.AdminToAgentMsg = normalizeMessage(operatorMessage)
	if err := s.donations.Update(ctx, donation); err != nil {
		return nil, apperrors.MapError(err)
	}

	donor, err := s.users.GetByID(ctx, donation.DonorID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventDonationAssigned,
		DonationID: donation.ID,
		Actor:      events.Actor{Role: domain.RoleAdmin, UserID: actorID},
		Payload: events.DonationAssignedPayload{
			ItemName:        donation.ItemName,
			PickupAddress:   donation.Address,
			ContactPhone:    donation.Phone,
			OperatorMessage: donation.AdminToAgentMsg,
			DonorEmail:      donor.Email,
			DonorFirstName:  donor.FirstName,
			AgentEmail:      agent.Email,
			AgentFirstName:  agent.FirstName,
		},
	})
	return donation, nil
}

// Collect marks an assigned donation collected, stamps the collection time
// and notifies the donor plus the oversight recipient. Re-collecting an
// already collected donation re-writes the status and re-sends notifications.
func (s *DonationService) Collect(ctx context.Context, actorID, donationID string) (*domain.Donation, error) {
	donation, err := s.getDonation(ctx, donationID)
	if err != nil {
		return nil, err
	}
	if donation.AgentID == nil ||
		(donation.Status != domain.DonationStatusAssigned && donation.Status != domain.DonationStatusCollected) {
		return nil, apperrors.NewConflict("donation is not assigned for collection", map[string]any{"donation_id": donationID})
	}

	now := time.Now()
	donation.Status = domain.DonationStatusCollected
	donation.CollectionTime = &now
	if err := s.donations.Update(ctx, donation); err != nil {
		return nil, apperrors.MapError(err)
	}

	donor, err := s.users.GetByID(ctx, donation.DonorID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	agent, err := s.users.GetByID(ctx, *donation.AgentID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventDonationCollected,
		DonationID: donation.ID,
		Actor:      events.Actor{Role: domain.RoleAgent, UserID: actorID},
		Payload: events.DonationCollectedPayload{
			ItemName:       donation.ItemName,
			DonorEmail:     donor.Email,
			DonorFirstName: donor.FirstName,
			AgentFirstName: agent.FirstName,
			CollectedAt:    now,
		},
	})
	return donation, nil
}

// GetDetail fetches a donation with donor and agent resolved.
func (s *DonationService) GetDetail(ctx context.Context, donationID string) (*DonationDetail, error) {
	donation, err := s.getDonation(ctx, donationID)
	if err != nil {
		return nil, err
	}
	detail := &DonationDetail{Donation: donation}

	donor, err := s.users.GetByID(ctx, donation.DonorID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	detail.Donor = donor

	if donation.AgentID != nil {
		agent, err := s.users.GetByID(ctx, *donation.AgentID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		detail.Agent = agent
	}
	return detail, nil
}

// ListForReview returns donations still moving through the admin workflow.
func (s *DonationService) ListForReview(ctx context.Context, limit, offset int) ([]domain.Donation, error) {
	donations, err := s.donations.ListWithFilter(ctx, repository.DonationFilter{
		Statuses: []domain.DonationStatus{
			domain.DonationStatusPending,
			domain.DonationStatusAccepted,
			domain.DonationStatusAssigned,
		},
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return donations, nil
}

// ListCollected returns completed donations.
func (s *DonationService) ListCollected(ctx context.Context, limit, offset int) ([]domain.Donation, error) {
	donations, err := s.donations.ListWithFilter(ctx, repository.DonationFilter{
		Statuses: []domain.DonationStatus{domain.DonationStatusCollected},
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return donations, nil
}

// ListForAgent returns an agent's donations in the given status.
func (s *DonationService) ListForAgent(ctx context.Context, agentID string, status domain.DonationStatus, limit, offset int) ([]domain.Donation, error) {
	donations, err := s.donations.ListWithFilter(ctx, repository.DonationFilter{
		AgentID:  &agentID,
		Statuses: []domain.DonationStatus{status},
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return donations, nil
}

// ListForDonor returns a donor's own donations.
func (s *DonationService) ListForDonor(ctx context.Context, donorID string, limit, offset int) ([]domain.Donation, error) {
	donations, err := s.donations.ListWithFilter(ctx, repository.DonationFilter{
		DonorID: &donorID,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return donations, nil
}

// ListAgents returns every account with the agent role.
func (s *DonationService) ListAgents(ctx context.Context) ([]domain.User, error) {
	agents, err := s.users.ListByRole(ctx, domain.RoleAgent)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return agents, nil
}

// Dashboard aggregates counts for the admin overview.
func (s *DonationService) Dashboard(ctx context.Context) (*AdminDashboard, error) {
	dash := &AdminDashboard{}

	roleCounts := []struct {
		role domain.UserRole
		dest *int64
	}{
		{domain.RoleAdmin, &dash.Admins},
		{domain.RoleDonor, &dash.Donors},
		{domain.RoleAgent, &dash.Agents},
	}
	for _, rc := range roleCounts {
		count, err := s.users.CountByRole(ctx, rc.role)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		*rc.dest = count
	}

	statusCounts := []struct {
		status domain.DonationStatus
		dest   *int64
	}{
		{domain.DonationStatusPending, &dash.Pending},
		{domain.DonationStatusAccepted, &dash.Accepted},
		{domain.DonationStatusAssigned, &dash.Assigned},
		{domain.DonationStatusCollected, &dash.Collected},
	}
	for _, sc := range statusCounts {
		count, err := s.donations.CountWithFilter(ctx, repository.DonationFilter{
			Statuses: []domain.DonationStatus{sc.status},
		})
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		*sc.dest = count
	}
	return dash, nil
}

// DashboardForAgent aggregates an agent's own counts.
func (s *DonationService) DashboardForAgent(ctx context.Context, agentID string) (*AgentDashboard, error) {
	dash := &AgentDashboard{}

	assigned, err := s.donations.CountWithFilter(ctx, repository.DonationFilter{
		AgentID:  &agentID,
		Statuses: []domain.DonationStatus{domain.DonationStatusAssigned},
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	dash.Assigned = assigned

	collected, err := s.donations.CountWithFilter(ctx, repository.DonationFilter{
		AgentID:  &agentID,
		Statuses: []domain.DonationStatus{domain.DonationStatusCollected},
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	dash.Collected = collected
	return dash, nil
}

func (s *DonationService) getDonation(ctx context.Context, donationID string) (*domain.Donation, error) {
	donation, err := s.donations.GetByID(ctx, donationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("donation", map[string]any{"donation_id": donationID})
		}
		return nil, apperrors.MapError(err)
	}
	return donation, nil
}

func (s *DonationService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func normalizeMessage(msg *string) *string {
	if msg == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*msg)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
