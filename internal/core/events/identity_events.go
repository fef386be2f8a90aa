package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeUserRegistered    = "user.registered"
	EventTypeUserEmailVerified = "user.email_verified"
	EventTypeUserPasswordReset = "user.password_reset"
	EventTypeUserUpgraded      = "user.upgraded"
)

// AuditedEventTypes are the events the server wires to the audit log.
var AuditedEventTypes = []string{
	EventTypeUserRegistered,
	EventTypeUserEmailVerified,
	EventTypeUserPasswordReset,
	EventTypeUserUpgraded,
}

func newEvent(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

func NewUserRegisteredEvent(userID, email, organizationID string) BaseEvent {
	return newEvent(EventTypeUserRegistered, map[string]interface{}{
		"user_id":         userID,
		"email":           email,
		"organization_id": organizationID,
	})
}

func NewUserEmailVerifiedEvent(userID, verificationID string) BaseEvent {
	return newEvent(EventTypeUserEmailVerified, map[string]interface{}{
		"user_id":         userID,
		"verification_id": verificationID,
	})
}

func NewUserPasswordResetEvent(userID, resetTokenID string) BaseEvent {
	return newEvent(EventTypeUserPasswordReset, map[string]interface{}{
		"user_id":        userID,
		"reset_token_id": resetTokenID,
	})
}

func NewUserUpgradedEvent(userID, organizationID, roleName string) BaseEvent {
	return newEvent(EventTypeUserUpgraded, map[string]interface{}{
		"user_id":         userID,
		"organization_id": organizationID,
		"role":            roleName,
	})
}
