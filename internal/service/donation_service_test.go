package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/food-donation-service/internal/config"
	"github.com/spec-kit/food-donation-service/internal/domain"
	"github.com/spec-kit/food-donation-service/internal/events"
	apperrors "github.com/spec-kit/food-donation-service/pkg/util/errorutil"
)

type donationFixture struct {
	svc       *DonationService
	users     *fakeUserRepo
	donations *fakeDonationRepo
	mail      *fakeMailer
	donor     *domain.User
	admin     *domain.User
	agent     *domain.User
}

const oversightEmail = "oversight@example.org"

func newDonationFixture(t *testing.T) *donationFixture {
	t.Helper()

	users := newFakeUserRepo()
	donations := newFakeDonationRepo()
	mail := &fakeMailer{}

	dispatcher := events.NewInMemoryDispatcher()
	notifications := NewNotificationService(dispatcher, mail, zap.NewNop(), config.NotificationConfig{
		OversightEmail: oversightEmail,
	})
	notifications.RegisterHandlers()

	svc := NewDonationService(DonationDependencies{
		DonationRepo: donations,
		UserRepo:     users,
		Dispatcher:   dispatcher,
	})

	return &donationFixture{
		svc:       svc,
		users:     users,
		donations: donations,
		mail:      mail,
		donor:     users.seed(&domain.User{FirstName: "Dana", LastName: "Miller", Email: "dana@example.org", Role: domain.RoleDonor}),
		admin:     users.seed(&domain.User{FirstName: "Olive", LastName: "Reed", Email: "olive@example.org", Role: domain.RoleAdmin}),
		agent:     users.seed(&domain.User{FirstName: "Avery", LastName: "Cole", Email: "avery@example.org", Role: domain.RoleAgent}),
	}
}

func (f *donationFixture) seedDonation(status domain.DonationStatus) *domain.Donation {
	donation := &domain.Donation{
		DonorID:  f.donor.ID,
		ItemName: "canned soup",
		Quantity: "12 cans",
		Address:  "14 Oak Street",
		Phone:    "555-0101",
		Status:   status,
	}
	if status == domain.DonationStatusAssigned || status == domain.DonationStatusCollected {
		donation.AgentID = &f.agent.ID
	}
	return f.donations.seed(donation)
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	return domainErr.Code
}

func TestCreateForDonorAggregatesViolations(t *testing.T) {
	f := newDonationFixture(t)

	_, err := f.svc.CreateForDonor(context.Background(), f.donor.ID, DonationCreateInput{})
	if code := domainCode(t, err); code != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED, got %s", code)
	}

	var domainErr *apperrors.DomainError
	errors.As(err, &domainErr)
	violations, ok := domainErr.Details["errors"].([]string)
	if !ok || len(violations) != 3 {
		t.Fatalf("expected 3 violations, got %v", domainErr.Details)
	}
}

func TestCreateForDonorStartsPending(t *testing.T) {
	f := newDonationFixture(t)

	donation, err := f.svc.CreateForDonor(context.Background(), f.donor.ID, DonationCreateInput{
		ItemName: "  rice  ",
		Address:  "14 Oak Street",
		Phone:    "555-0101",
	})
	if err != nil {
		t.Fatalf("CreateForDonor: %v", err)
	}
	if donation.Status != domain.DonationStatusPending {
		t.Fatalf("expected pending, got %s", donation.Status)
	}
	if donation.ItemName != "rice" {
		t.Fatalf("expected trimmed item name, got %q", donation.ItemName)
	}
	if donation.AgentID != nil || donation.CollectionTime != nil {
		t.Fatal("new donation must have no agent or collection time")
	}
}

func TestAcceptNotifiesDonor(t *testing.T) {
	f := newDonationFixture(t)
	donation := f.seedDonation(domain.DonationStatusPending)

	updated, err := f.svc.Accept(context.Background(), f.admin.ID, donation.ID)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if updated.Status != domain.DonationStatusAccepted {
		t.Fatalf("expected accepted, got %s", updated.Status)
	}

	sent := f.mail.messages()
	if len(sent) != 1 {
		t.Fatalf("expected exactly 1 email, got %d", len(sent))
	}
	if sent[0].To != f.donor.Email {
		t.Fatalf("expected email to donor, got %s", sent[0].To)
	}
	if sent[0].Subject != "Your Donation Has Been Accepted" {
		t.Fatalf("unexpected subject %q", sent[0].Subject)
	}
}

func TestRejectNotifiesDonor(t *testing.T) {
	f := newDonationFixture(t)
	donation := f.seedDonation(domain.DonationStatusPending)

	updated, err := f.svc.Reject(context.Background(), f.admin.ID, donation.ID)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if updated.Status != domain.DonationStatusRejected {
		t.Fatalf("expected rejected, got %s", updated.Status)
	}

	sent := f.mail.messages()
	if len(sent) != 1 {
		t.Fatalf("expected exactly 1 email, got %d", len(sent))
	}
	if sent[0].Subject != "Your Donation Has Been Rejected" {
		t.Fatalf("unexpected subject %q", sent[0].Subject)
	}
}

func TestAcceptUnknownDonation(t *testing.T) {
	f := newDonationFixture(t)

	_, err := f.svc.Accept(context.Background(), f.admin.ID, "missing")
	if code := domainCode(t, err); code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %s", code)
	}
}

func TestAssignNotifiesDonorAndAgent(t *testing.T) {
	f := newDonationFixture(t)
	donation := f.seedDonation(domain.DonationStatusAccepted)
	msg := "ring the back doorbell"

	updated, err := f.svc.Assign(context.Background(), f.admin.ID, donation.ID, f.agent.ID, &msg)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if updated.Status != domain.DonationStatusAssigned {
		t.Fatalf("expected assigned, got %s", updated.Status)
	}
	if updated.AgentID == nil || *updated.AgentID != f.agent.ID {
		t.Fatal("agent not bound to donation")
	}

	if got := len(f.mail.messages()); got != 2 {
		t.Fatalf("expected 2 emails, got %d", got)
	}
	donorMail := f.mail.to(f.donor.Email)
	if len(donorMail) != 1 || donorMail[0].Subject != "Agent Assigned to Your Donation" {
		t.Fatalf("unexpected donor mail %+v", donorMail)
	}
	agentMail := f.mail.to(f.agent.Email)
	if len(agentMail) != 1 || agentMail[0].Subject != "New Donation Assigned to You" {
		t.Fatalf("unexpected agent mail %+v", agentMail)
	}
	if !strings.Contains(agentMail[0].Text, msg) {
		t.Fatalf("agent mail missing operator message: %q", agentMail[0].Text)
	}
}

func TestAssignWithoutMessageUsesDefault(t *testing.T) {
	f := newDonationFixture(t)
	donation := f.seedDonation(domain.DonationStatusPending)

	if _, err := f.svc.Assign(context.Background(), f.admin.ID, donation.ID, f.agent.ID, nil); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	agentMail := f.mail.to(f.agent.Email)
	if len(agentMail) != 1 {
		t.Fatalf("expected 1 agent email, got %d", len(agentMail))
	}
	if !strings.Contains(agentMail[0].Text, "No message provided.") {
		t.Fatalf("expected default message, got %q", agentMail[0].Text)
	}
}

func TestAssignRejectsNonAgent(t *testing.T) {
	f := newDonationFixture(t)
	donation := f.seedDonation(domain.DonationStatusAccepted)

	_, err := f.svc.Assign(context.Background(), f.admin.ID, donation.ID, f.donor.ID, nil)
	if code := domainCode(t, err); code != "CONFLICT" {
		t.Fatalf("expected CONFLICT, got %s", code)
	}
	if len(f.mail.messages()) != 0 {
		t.Fatal("no email may be sent for a refused assignment")
	}
}

func TestAssignRejectsTerminalDonation(t *testing.T) {
	f := newDonationFixture(t)

	for _, status := range []domain.DonationStatus{domain.DonationStatusRejected, domain.DonationStatusCollected} {
		donation := f.seedDonation(status)
		_, err := f.svc.Assign(context.Background(), f.admin.ID, donation.ID, f.agent.ID, nil)
		if code := domainCode(t, err); code != "CONFLICT" {
			t.Fatalf("status %s: expected CONFLICT, got %s", status, code)
		}
	}
}

func TestReviewRejectsDonationWithAgentBound(t *testing.T) {
	f := newDonationFixture(t)

	assigned := f.seedDonation(domain.DonationStatusAssigned)
	_, err := f.svc.Reject(context.Background(), f.admin.ID, assigned.ID)
	if code := domainCode(t, err); code != "CONFLICT" {
		t.Fatalf("expected CONFLICT rejecting an assigned donation, got %s", code)
	}
	stored, _ := f.donations.GetByID(context.Background(), assigned.ID)
	if stored.Status != domain.DonationStatusAssigned || stored.AgentID == nil {
		t.Fatalf("refused review must not touch the donation, got %+v", stored)
	}

	collected := f.seedDonation(domain.DonationStatusCollected)
	now := time.Now()
	collected.CollectionTime = &now
	f.donations.seed(collected)

	_, err = f.svc.Accept(context.Background(), f.admin.ID, collected.ID)
	if code := domainCode(t, err); code != "CONFLICT" {
		t.Fatalf("expected CONFLICT accepting a collected donation, got %s", code)
	}
	stored, _ = f.donations.GetByID(context.Background(), collected.ID)
	if stored.Status != domain.DonationStatusCollected || stored.AgentID == nil || stored.CollectionTime == nil {
		t.Fatalf("refused review must not touch the donation, got %+v", stored)
	}

	if len(f.mail.messages()) != 0 {
		t.Fatal("no email may be sent for a refused review")
	}
}

func TestReviewRejectsReversedDecision(t *testing.T) {
	f := newDonationFixture(t)
	donation := f.seedDonation(domain.DonationStatusRejected)

	_, err := f.svc.Accept(context.Background(), f.admin.ID, donation.ID)
	if code := domainCode(t, err); code != "CONFLICT" {
		t.Fatalf("expected CONFLICT accepting a rejected donation, got %s", code)
	}
}

func TestReviewIsIdempotent(t *testing.T) {
	f := newDonationFixture(t)
	donation := f.seedDonation(domain.DonationStatusPending)

	if _, err := f.svc.Reject(context.Background(), f.admin.ID, donation.ID); err != nil {
		t.Fatalf("first Reject: %v", err)
	}
	updated, err := f.svc.Reject(context.Background(), f.admin.ID, donation.ID)
	if err != nil {
		t.Fatalf("second Reject: %v", err)
	}
	if updated.Status != domain.DonationStatusRejected {
		t.Fatalf("expected rejected, got %s", updated.Status)
	}
}

func TestCollectStampsTimeAndNotifies(t *testing.T) {
	f := newDonationFixture(t)
	donation := f.seedDonation(domain.DonationStatusAssigned)

	updated, err := f.svc.Collect(context.Background(), f.agent.ID, donation.ID)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if updated.Status != domain.DonationStatusCollected {
		t.Fatalf("expected collected, got %s", updated.Status)
	}
	if updated.CollectionTime == nil {
		t.Fatal("collection time not stamped")
	}

	if got := len(f.mail.messages()); got != 2 {
		t.Fatalf("expected 2 emails, got %d", got)
	}
	if len(f.mail.to(f.donor.Email)) != 1 {
		t.Fatal("donor not notified of collection")
	}
	oversight := f.mail.to(oversightEmail)
	if len(oversight) != 1 || oversight[0].Subject != "Donation Collected Notification" {
		t.Fatalf("unexpected oversight mail %+v", oversight)
	}
}

func TestCollectRequiresAssignment(t *testing.T) {
	f := newDonationFixture(t)
	donation := f.seedDonation(domain.DonationStatusPending)

	_, err := f.svc.Collect(context.Background(), f.agent.ID, donation.ID)
	if code := domainCode(t, err); code != "CONFLICT" {
		t.Fatalf("expected CONFLICT, got %s", code)
	}
}

func TestCollectIsIdempotent(t *testing.T) {
	f := newDonationFixture(t)
	donation := f.seedDonation(domain.DonationStatusAssigned)

	if _, err := f.svc.Collect(context.Background(), f.agent.ID, donation.ID); err != nil {
		t.Fatalf("first Collect: %v", err)
	}
	updated, err := f.svc.Collect(context.Background(), f.agent.ID, donation.ID)
	if err != nil {
		t.Fatalf("second Collect: %v", err)
	}
	if updated.Status != domain.DonationStatusCollected {
		t.Fatalf("expected collected, got %s", updated.Status)
	}
	// each collect fans out to donor and oversight
	if got := len(f.mail.messages()); got != 4 {
		t.Fatalf("expected 4 emails after two collects, got %d", got)
	}
}

func TestDeliveryFailureDoesNotBlockTransition(t *testing.T) {
	f := newDonationFixture(t)
	f.mail.fail = true
	donation := f.seedDonation(domain.DonationStatusPending)

	updated, err := f.svc.Accept(context.Background(), f.admin.ID, donation.ID)
	if err != nil {
		t.Fatalf("Accept must succeed despite delivery failure: %v", err)
	}
	if updated.Status != domain.DonationStatusAccepted {
		t.Fatalf("expected accepted, got %s", updated.Status)
	}

	stored, err := f.donations.GetByID(context.Background(), donation.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != domain.DonationStatusAccepted {
		t.Fatalf("transition not persisted, got %s", stored.Status)
	}
}

func TestDashboardCounts(t *testing.T) {
	f := newDonationFixture(t)
	f.seedDonation(domain.DonationStatusPending)
	f.seedDonation(domain.DonationStatusPending)
	f.seedDonation(domain.DonationStatusAssigned)
	f.seedDonation(domain.DonationStatusCollected)

	dash, err := f.svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if dash.Pending != 2 || dash.Assigned != 1 || dash.Collected != 1 {
		t.Fatalf("unexpected status counts %+v", dash)
	}
	if dash.Donors != 1 || dash.Admins != 1 || dash.Agents != 1 {
		t.Fatalf("unexpected role counts %+v", dash)
	}
}

func TestDashboardForAgent(t *testing.T) {
	f := newDonationFixture(t)
	f.seedDonation(domain.DonationStatusAssigned)
	f.seedDonation(domain.DonationStatusCollected)
	f.seedDonation(domain.DonationStatusPending)

	dash, err := f.svc.DashboardForAgent(context.Background(), f.agent.ID)
	if err != nil {
		t.Fatalf("DashboardForAgent: %v", err)
	}
	if dash.Assigned != 1 || dash.Collected != 1 {
		t.Fatalf("unexpected counts %+v", dash)
	}
}
