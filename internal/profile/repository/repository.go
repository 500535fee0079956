package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sitecraft/sitecraft/backend/go-services/internal/profile"
)

var (
	ErrNotFound = errors.New("profile not found")
	// ErrCodeMismatch means no pending code equal to the submitted one exists.
	ErrCodeMismatch = errors.New("verification code mismatch")
)

// ProfileRepository persists user profiles.
type ProfileRepository interface {
	Get(ctx context.Context, uid string) (*profile.UserProfile, error)
	// SetMobileCode upserts the profile with mobile and a fresh pending code.
	// The new number is unverified, so both verification flags are reset.
	SetMobileCode(ctx context.Context, uid, mobile, code string, issuedAt time.Time) error
	// ConfirmMobile marks the mobile verified and clears the code in one write,
	// but only while the stored code still equals code.
	ConfirmMobile(ctx context.Context, uid, code string, at time.Time) (*profile.UserProfile, error)
}
