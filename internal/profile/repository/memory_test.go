package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryRepo_CodeLifecycle(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()
	t0 := time.Now().UTC()

	_, err := r.Get(ctx, "u")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, r.SetMobileCode(ctx, "u", "+1", "111111", t0))
	require.NoError(t, r.SetMobileCode(ctx, "u", "+2", "222222", t0.Add(time.Minute)))

	p, err := r.Get(ctx, "u")
	require.NoError(t, err)
	require.Equal(t, "+2", p.Mobile)
	require.Equal(t, t0, p.CreatedAt)

	_, err = r.ConfirmMobile(ctx, "u", "111111", t0)
	require.ErrorIs(t, err, ErrCodeMismatch, "replaced code no longer confirms")

	p, err = r.ConfirmMobile(ctx, "u", "222222", t0.Add(2*time.Minute))
	require.NoError(t, err)
	require.True(t, p.MobileVerified)
	require.True(t, p.Verification.Mobile.Verified)
	require.Empty(t, p.Verification.Mobile.Code)
}
