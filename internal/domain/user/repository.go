package user

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for user persistence operations
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*User, error)

	// SetResetPasswordToken stores the hashed reset token and its expiry on
	// the user row. Last write wins on concurrent requests.
	SetResetPasswordToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error

	// ClearResetPasswordToken removes both reset-token fields.
	ClearResetPasswordToken(ctx context.Context, userID uuid.UUID) error

	// GetByResetPasswordToken returns the user whose stored token hash
	// matches and whose expiry is after now. Expired and non-matching tokens
	// are indistinguishable to callers.
	GetByResetPasswordToken(ctx context.Context, tokenHash string, now time.Time) (*User, error)

	// UpdatePassword stores a new password hash and clears both reset-token
	// fields in a single write.
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
}
