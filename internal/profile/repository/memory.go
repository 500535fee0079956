package repository

import (
	"context"
	"sync"
	"time"

	"github.com/sitecraft/sitecraft/backend/go-services/internal/profile"
)

type MemoryRepo struct {
	mu    sync.Mutex
	store map[string]*profile.UserProfile
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*profile.UserProfile)}
}

func clone(p *profile.UserProfile) *profile.UserProfile {
	cp := *p
	if p.Verification.Mobile.ExpiresAt != nil {
		t := *p.Verification.Mobile.ExpiresAt
		cp.Verification.Mobile.ExpiresAt = &t
	}
	return &cp
}

func (m *MemoryRepo) Get(_ context.Context, uid string) (*profile.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[uid]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(p), nil
}

func (m *MemoryRepo) SetMobileCode(_ context.Context, uid, mobile, code string, issuedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[uid]
	if !ok {
		p = &profile.UserProfile{UID: uid, CreatedAt: issuedAt}
		m.store[uid] = p
	}
	p.Mobile = mobile
	p.MobileVerified = false
	p.Verification.Mobile = profile.MobileVerification{Code: code, ExpiresAt: &issuedAt, Verified: false}
	p.UpdatedAt = issuedAt
	return nil
}

func (m *MemoryRepo) ConfirmMobile(_ context.Context, uid, code string, at time.Time) (*profile.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[uid]
	if !ok || p.Verification.Mobile.Code == "" || p.Verification.Mobile.Code != code {
		return nil, ErrCodeMismatch
	}
	p.Verification.Mobile = profile.MobileVerification{Verified: true}
	p.MobileVerified = true
	p.UpdatedAt = at
	return clone(p), nil
}
