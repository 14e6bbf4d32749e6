// internal/notify/notify.go
// Delivery boundary for match lifecycle notifications.
// Engine logic never depends on delivery succeeding.

package notify

import (
	"context"
	"log"
)

// Event identifies a match lifecycle notification
type Event string

const (
	EventWindowOpened     Event = "WINDOW_OPENED"
	EventPartnerConfirmed Event = "PARTNER_CONFIRMED"
	EventMatchConfirmed   Event = "MATCH_CONFIRMED"
	EventWindowExtended   Event = "WINDOW_EXTENDED"
	EventExpiringSoon     Event = "EXPIRING_SOON"
	EventWindowExpired    Event = "WINDOW_EXPIRED"
)

// Notification is a message destined for one user
type Notification struct {
	UserID  int64
	Event   Event
	Subject string
	Body    string
}

// Service delivers notifications to users
type Service interface {
	Notify(ctx context.Context, n *Notification) error
}

// Recipient resolves a user ID to delivery addresses. Empty fields mean
// the channel is unavailable for that user.
type Recipient struct {
	Email string
	Phone string
}

// RecipientResolver looks up delivery addresses for a user
type RecipientResolver interface {
	ResolveRecipient(ctx context.Context, userID int64) (*Recipient, error)
}

// ProviderService fans a notification out to email and SMS providers
type ProviderService struct {
	email    EmailProvider
	sms      SMSProvider
	resolver RecipientResolver
}

// NewProviderService creates a notification service backed by concrete providers
func NewProviderService(email EmailProvider, sms SMSProvider, resolver RecipientResolver) *ProviderService {
	return &ProviderService{
		email:    email,
		sms:      sms,
		resolver: resolver,
	}
}

// Notify sends the notification on every channel the recipient has.
// Channel failures are logged, not returned: delivery is best-effort.
func (s *ProviderService) Notify(ctx context.Context, n *Notification) error {
	recipient, err := s.resolver.ResolveRecipient(ctx, n.UserID)
	if err != nil {
		return err
	}

	if recipient.Email != "" && s.email != nil {
		if err := s.email.SendEmail(ctx, &EmailMessage{
			To:      recipient.Email,
			Subject: n.Subject,
			Body:    n.Body,
		}); err != nil {
			log.Printf("notify: email to user %d failed: %v", n.UserID, err)
		}
	}

	if recipient.Phone != "" && s.sms != nil {
		if err := s.sms.SendSMS(ctx, &SMSMessage{
			To:      recipient.Phone,
			Message: n.Body,
		}); err != nil {
			log.Printf("notify: SMS to user %d failed: %v", n.UserID, err)
		}
	}

	return nil
}

// MockService records notifications for tests
type MockService struct {
	Sent []Notification
}

// NewMockService creates a recording notification service
func NewMockService() *MockService {
	return &MockService{Sent: make([]Notification, 0)}
}

func (s *MockService) Notify(ctx context.Context, n *Notification) error {
	s.Sent = append(s.Sent, *n)
	return nil
}
