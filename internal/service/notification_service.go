package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/food-donation-service/internal/config"
	"github.com/spec-kit/food-donation-service/internal/domain"
	"github.com/spec-kit/food-donation-service/internal/events"
	"github.com/spec-kit/food-donation-service/internal/mailer"
)

const noMessageProvided = "No message provided."

// NotificationService consumes lifecycle events and delivers the email
// obligations of each transition. Delivery failures are logged and swallowed:
// the donation record is the durable source of truth and email is best-effort.
type NotificationService struct {
	dispatcher events.Dispatcher
	mail       mailer.Mailer
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, mail mailer.Mailer, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		mail:       mail,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to lifecycle events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventDonationAccepted, n.handleDonationReviewed)
	n.dispatcher.Subscribe(events.EventDonationRejected, n.handleDonationReviewed)
	n.dispatcher.Subscribe(events.EventDonationAssigned, n.handleDonationAssigned)
	n.dispatcher.Subscribe(events.EventDonationCollected, n.handleDonationCollected)
}

func (n *NotificationService) handleDonationReviewed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.DonationReviewedPayload)
	if !ok {
		return nil
	}

	var subject, text string
	if payload.Status == domain.DonationStatusAccepted {
		subject = "Your Donation Has Been Accepted"
		text = fmt.Sprintf("Hello %s,\n\nYour donation %q has been accepted by the admin.\n\nThank you for contributing!",
			payload.DonorFirstName, payload.ItemName)
	} else {
		subject = "Your Donation Has Been Rejected"
		text = fmt.Sprintf("Hello %s,\n\nWe're sorry to inform you that your donation %q has been rejected.\n\nThank you for your effort.",
			payload.DonorFirstName, payload.ItemName)
	}

	n.send(ctx, event, mailer.Message{To: payload.DonorEmail, Subject: subject, Text: text})
	return nil
}

func (n *NotificationService) handleDonationAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.DonationAssignedPayload)
	if !ok {
		return nil
	}

	// both sends are attempted even if the first one fails
	n.send(ctx, event, mailer.Message{
		To:      payload.DonorEmail,
		Subject: "Agent Assigned to Your Donation",
		Text: fmt.Sprintf("Hello %s,\n\nAn agent named %s has been assigned to collect your donation %q.\n\nThey may contact you at %s.\n\nThank you for your generous contribution!\n\n- Food Donation Team",
			payload.DonorFirstName, payload.AgentFirstName, payload.ItemName, payload.ContactPhone),
	})

	operatorMessage := noMessageProvided
	if payload.OperatorMessage != nil && *payload.OperatorMessage != "" {
		operatorMessage = *payload.OperatorMessage
	}
	n.send(ctx, event, mailer.Message{
		To:      payload.AgentEmail,
		Subject: "New Donation Assigned to You",
		Text: fmt.Sprintf("Hello %s,\n\nYou have been assigned to collect the donation %q from %s.\n\nPickup Address: %s\nContact Number: %s\n\nMessage from Admin: %s\n\nPlease log in to your dashboard and proceed with the collection.\n\n- Food Donation Team",
			payload.AgentFirstName, payload.ItemName, payload.DonorFirstName, payload.PickupAddress, payload.ContactPhone, operatorMessage),
	})
	return nil
}

func (n *NotificationService) handleDonationCollected(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.DonationCollectedPayload)
	if !ok {
		return nil
	}
	collectedAt := formatCollectionTime(payload.CollectedAt)

	n.send(ctx, event, mailer.Message{
		To:      payload.DonorEmail,
		Subject: "Your Donation Has Been Collected",
		Text: fmt.Sprintf("Hello %s,\n\nYour donation %q has been successfully collected by our agent %s on %s.\n\nThank you for your kind support!\n\nRegards,\nTeam Food Donation",
			payload.DonorFirstName, payload.ItemName, payload.AgentFirstName, collectedAt),
	})
	n.send(ctx, event, mailer.Message{
		To:      n.cfg.OversightEmail,
		Subject: "Donation Collected Notification",
		Text: fmt.Sprintf("Hello Admin,\n\nAgent %s has collected the donation %q from donor %s on %s.\n\nBest Regards,\nSystem",
			payload.AgentFirstName, payload.ItemName, payload.DonorFirstName, collectedAt),
	})
	return nil
}

func (n *NotificationService) send(ctx context.Context, event events.Event, msg mailer.Message) {
	if err := n.mail.Send(ctx, msg); err != nil {
		n.logger.Error("failed to send notification",
			zap.String("donation_id", event.DonationID),
			zap.String("event_type", string(event.Type)),
			zap.String("to", msg.To),
			zap.Error(err))
		return
	}
	n.logger.Info("notification sent",
		zap.String("donation_id", event.DonationID),
		zap.String("event_type", string(event.Type)),
		zap.String("to", msg.To))
}

func formatCollectionTime(t time.Time) string {
	return t.Local().Format("2/1/2006, 3:04:05 pm")
}
