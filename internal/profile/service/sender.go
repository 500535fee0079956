package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sitecraft/sitecraft/backend/go-services/pkg/logger"
)

// CodeSender delivers a verification code to a mobile number.
type CodeSender interface {
	Send(ctx context.Context, mobile, code string) error
}

// LogSender is the mock SMS gateway: it writes the code to the log.
type LogSender struct{}

func (LogSender) Send(_ context.Context, mobile, code string) error {
	logger.Infow("mock sms sent", "mobile", maskMobile(mobile), "code", code)
	return nil
}

// NewSender returns the CodeSender configured by SMS_SENDER.
func NewSender(name string) (CodeSender, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "log":
		return LogSender{}, nil
	default:
		return nil, fmt.Errorf("unsupported SMS_SENDER %q", name)
	}
}

func maskMobile(m string) string {
	if len(m) <= 4 {
		return m
	}
	return "***" + m[len(m)-4:]
}
