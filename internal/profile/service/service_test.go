package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sitecraft/sitecraft/backend/go-services/internal/apperr"
	"github.com/sitecraft/sitecraft/backend/go-services/internal/profile/repository"
	"github.com/sitecraft/sitecraft/backend/go-services/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mobile, code string
	err          error
}

func (r *recordingSender) Send(_ context.Context, mobile, code string) error {
	r.mobile, r.code = mobile, code
	return r.err
}

func TestGenerateCode_Range(t *testing.T) {
	for i := 0; i < 200; i++ {
		c, err := GenerateCode()
		require.NoError(t, err)
		require.Len(t, c, 6)
		n, err := strconv.Atoi(c)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 100000)
		require.LessOrEqual(t, n, 999999)
	}
}

func TestIssueMobileCode(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	sender := &recordingSender{}
	svc := NewService(repo, sender)
	issued := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }
	before := testutil.ToFloat64(metrics.VerificationCodesIssued)

	require.NoError(t, svc.IssueMobileCode(ctx, "alice", " +15551234567 "))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.VerificationCodesIssued))
	assert.Equal(t, "+15551234567", sender.mobile)

	p, err := repo.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "+15551234567", p.Mobile)
	assert.Equal(t, sender.code, p.Verification.Mobile.Code)
	require.NotNil(t, p.Verification.Mobile.ExpiresAt)
	assert.Equal(t, issued, *p.Verification.Mobile.ExpiresAt)
	assert.False(t, p.Verification.Mobile.Verified)
	assert.False(t, p.MobileVerified)
}

func TestIssueMobileCode_Validation(t *testing.T) {
	svc := NewService(repository.NewMemoryRepo(), &recordingSender{})
	err := svc.IssueMobileCode(context.Background(), "alice", "")
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	err = svc.IssueMobileCode(context.Background(), "", "+1555")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestIssueMobileCode_SenderFailure(t *testing.T) {
	svc := NewService(repository.NewMemoryRepo(), &recordingSender{err: errors.New("gateway down")})
	err := svc.IssueMobileCode(context.Background(), "alice", "+1555")
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestConfirmMobile(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	sender := &recordingSender{}
	svc := NewService(repo, sender)
	require.NoError(t, svc.IssueMobileCode(ctx, "alice", "+15551234567"))

	_, err := svc.ConfirmMobile(ctx, "alice", "000000")
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	assert.Equal(t, "invalid verification code", apperr.Message(err))

	confirmedAt := time.Date(2026, 3, 1, 9, 5, 0, 123000000, time.UTC)
	svc.now = func() time.Time { return confirmedAt }
	resp, err := svc.ConfirmMobile(ctx, "alice", sender.code)
	require.NoError(t, err)
	assert.True(t, resp.MobileVerified)
	assert.True(t, resp.Verification.Mobile.Verified)
	assert.Nil(t, resp.Verification.Mobile.ExpiresAt)
	assert.Equal(t, confirmedAt.Unix(), resp.UpdatedAt.Seconds)
	assert.Equal(t, 123000000, resp.UpdatedAt.Nanoseconds)

	p, err := repo.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, p.Verification.Mobile.Code)
	assert.Nil(t, p.Verification.Mobile.ExpiresAt)

	// the code is consumed
	_, err = svc.ConfirmMobile(ctx, "alice", sender.code)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
}

func TestConfirmMobile_NoPendingCode(t *testing.T) {
	svc := NewService(repository.NewMemoryRepo(), nil)
	_, err := svc.ConfirmMobile(context.Background(), "alice", "123456")
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	_, err = svc.ConfirmMobile(context.Background(), "alice", "")
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	assert.Equal(t, "code is required", apperr.Message(err))
}

func TestConfirmMobile_ConcurrentConfirmsOneWins(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	sender := &recordingSender{}
	svc := NewService(repo, sender)
	require.NoError(t, svc.IssueMobileCode(ctx, "alice", "+1555"))

	results := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := svc.ConfirmMobile(ctx, "alice", sender.code)
			results <- err
		}()
	}
	ok := 0
	for i := 0; i < 8; i++ {
		if <-results == nil {
			ok++
		}
	}
	assert.Equal(t, 1, ok)
}

func TestIssueMobileCode_NewNumberResetsVerification(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	sender := &recordingSender{}
	svc := NewService(repo, sender)

	require.NoError(t, svc.IssueMobileCode(ctx, "alice", "+15550000001"))
	resp, err := svc.ConfirmMobile(ctx, "alice", sender.code)
	require.NoError(t, err)
	require.True(t, resp.MobileVerified)

	require.NoError(t, svc.IssueMobileCode(ctx, "alice", "+15550000002"))
	got, err := svc.Profile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "+15550000002", got.Mobile)
	assert.False(t, got.MobileVerified)
	assert.False(t, got.Verification.Mobile.Verified)

	resp, err = svc.ConfirmMobile(ctx, "alice", sender.code)
	require.NoError(t, err)
	assert.True(t, resp.MobileVerified)
	assert.True(t, resp.Verification.Mobile.Verified)
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	svc := NewService(repository.NewMemoryRepo(), &recordingSender{})

	_, err := svc.Profile(ctx, "alice")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = svc.Profile(ctx, "")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	require.NoError(t, svc.IssueMobileCode(ctx, "alice", "+1555"))
	got, err := svc.Profile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.UID)
	assert.Equal(t, "+1555", got.Mobile)
}

func TestNewSender(t *testing.T) {
	s, err := NewSender("log")
	require.NoError(t, err)
	assert.IsType(t, LogSender{}, s)

	s, err = NewSender("")
	require.NoError(t, err)
	assert.IsType(t, LogSender{}, s)

	_, err = NewSender("twilio")
	assert.Error(t, err)
}
