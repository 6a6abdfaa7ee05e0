package user

import (
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultRole is assigned to every account created through registration.
	DefaultRole = "BUSINESS_OWNER"

	// DefaultAvatarURL is the placeholder avatar assigned at registration.
	DefaultAvatarURL = "https://res.cloudinary.com/ddvlwqjuy/image/upload/v1732556502/j4boyhwiw55fz9be8ihe.jpg"
)

// User represents an account holder.
//
// ResetPasswordToken holds only the SHA-256 hash of an outstanding reset
// token; the plaintext is never stored. Token and expiry are always both set
// or both nil.
type User struct {
	ID                       uuid.UUID  `json:"id"`
	Name                     string     `json:"name"`
	Email                    string     `json:"email" gorm:"uniqueIndex"`
	PasswordHashed           string     `json:"-"`
	Role                     string     `json:"role"`
	AvatarID                 string     `json:"avatar_id"`
	AvatarURL                string     `json:"avatar_url"`
	ResetPasswordToken       *string    `json:"-"`
	ResetPasswordTokenExpiry *time.Time `json:"-"`
	CreatedAt                time.Time  `json:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at"`
}

// HasPendingReset reports whether an unexpired reset token is outstanding.
func (u *User) HasPendingReset(now time.Time) bool {
	return u.ResetPasswordToken != nil &&
		u.ResetPasswordTokenExpiry != nil &&
		now.Before(*u.ResetPasswordTokenExpiry)
}
