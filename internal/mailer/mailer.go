package mailer

import "context"

// Message is a plain-text outbound email.
type Message struct {
	To      string
	Subject string
	Text    string
}

// Mailer sends a single message. Implementations attempt delivery at least
// once and surface the failure to the caller; they never retry.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
