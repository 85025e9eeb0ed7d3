package models

import "time"

// Subscription plan values accepted by the service.
const (
	SubscriptionStarter  = "starter"
	SubscriptionPro      = "pro"
	SubscriptionBusiness = "business"
)

// ValidSubscription reports whether s is one of the known plan values.
func ValidSubscription(s string) bool {
	switch s {
	case SubscriptionStarter, SubscriptionPro, SubscriptionBusiness:
		return true
	}
	return false
}

// User represents a registered account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	Subscription string    `json:"subscription"`
	AvatarURL    string    `json:"avatarURL"`
	ActiveToken  string    `json:"-"` // Session state, never serialized
	CreatedAt    time.Time `json:"createdAt"`
}
