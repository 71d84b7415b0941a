// Package user defines the account entity used by authentication,
// the avatar pipeline and email verification.
package user

// Subscription tiers. New accounts start on SubscriptionStarter.
const (
	SubscriptionStarter  = "starter"
	SubscriptionPro      = "pro"
	SubscriptionBusiness = "business"
)

// User represents a registered account.
//
// Token holds the only bearer token currently accepted for the account;
// an empty value means the user is logged out. VerificationToken is empty
// once the email address has been confirmed.
type User struct {
	ID                string
	Email             string
	PasswordHash      string
	Subscription      string
	AvatarURL         string
	Token             string
	Verify            bool
	VerificationToken string
}
