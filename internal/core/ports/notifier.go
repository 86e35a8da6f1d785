package ports

import (
	"context"
	"time"

	"github.com/infield/user-service/internal/core/domain"
)

// PhoneNotifier delivers phone verification codes. sent is false when delivery
// was skipped on purpose (test mode).
type PhoneNotifier interface {
	SendPhoneVerification(ctx context.Context, user *domain.User) (sent bool, err error)
}

// VerificationThrottle limits how often a user may request a new code.
type VerificationThrottle interface {
	// Acquire reports false when a code was already sent within window.
	Acquire(ctx context.Context, userID string, window time.Duration) (bool, error)
	Release(ctx context.Context, userID string) error
}
