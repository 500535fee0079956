package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/sitecraft/sitecraft/backend/go-services/internal/apperr"
	"github.com/sitecraft/sitecraft/backend/go-services/internal/profile"
	"github.com/sitecraft/sitecraft/backend/go-services/internal/profile/repository"
	"github.com/sitecraft/sitecraft/backend/go-services/pkg/metrics"
)

const (
	codeMin   = 100000
	codeRange = 900000
)

// GenerateCode returns a six digit code drawn uniformly from [100000, 999999].
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeRange))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", codeMin+n.Int64()), nil
}

type Service struct {
	repo    repository.ProfileRepository
	sender  CodeSender
	newCode func() (string, error)
	now     func() time.Time
}

func NewService(repo repository.ProfileRepository, sender CodeSender) *Service {
	if sender == nil {
		sender = LogSender{}
	}
	return &Service{
		repo:    repo,
		sender:  sender,
		newCode: GenerateCode,
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// IssueMobileCode stores mobile together with a fresh pending code and hands
// the code to the sender. Any earlier pending code is replaced.
func (s *Service) IssueMobileCode(ctx context.Context, uid, mobile string) error {
	if uid == "" {
		return apperr.Unauthorized("unauthorized")
	}
	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		return apperr.BadRequest("mobile is required")
	}
	code, err := s.newCode()
	if err != nil {
		return apperr.Internal(err)
	}
	if err := s.repo.SetMobileCode(ctx, uid, mobile, code, s.now()); err != nil {
		return apperr.Internal(err)
	}
	metrics.VerificationCodesIssued.Inc()
	if err := s.sender.Send(ctx, mobile, code); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// ConfirmMobile consumes the pending code. A code can be used once.
func (s *Service) ConfirmMobile(ctx context.Context, uid, code string) (*profile.Response, error) {
	if uid == "" {
		return nil, apperr.Unauthorized("unauthorized")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperr.BadRequest("code is required")
	}
	p, err := s.repo.ConfirmMobile(ctx, uid, code, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrCodeMismatch) {
			return nil, apperr.BadRequest("invalid verification code")
		}
		return nil, apperr.Internal(err)
	}
	resp := p.Response()
	return &resp, nil
}

// Profile returns the caller's profile without any pending code.
func (s *Service) Profile(ctx context.Context, uid string) (*profile.Response, error) {
	if uid == "" {
		return nil, apperr.Unauthorized("unauthorized")
	}
	p, err := s.repo.Get(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("profile not found")
		}
		return nil, apperr.Internal(err)
	}
	resp := p.Response()
	return &resp, nil
}
