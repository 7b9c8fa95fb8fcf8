package mailer

import (
	"context"

	"reservehub/internal/pkg/logger"
)

// ConsoleSender logs messages instead of delivering them. Development only.
type ConsoleSender struct{}

func NewConsoleSender() *ConsoleSender {
	return &ConsoleSender{}
}

func (ConsoleSender) Send(ctx context.Context, toEmail, subject, text, _ string) error {
	logger.InfoContext(ctx, "[DEV-EMAIL]", "to", toEmail, "subject", subject, "text", text)
	return nil
}
