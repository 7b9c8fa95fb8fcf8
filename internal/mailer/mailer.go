package mailer

import (
	"context"
	"fmt"
	"html"
	"net/url"

	"reservehub/internal/config"
)

// Sender delivers one message.
type Sender interface {
	Send(ctx context.Context, toEmail, subject, text, html string) error
}

// Service renders the account emails and hands them to a Sender.
type Service struct {
	sender      Sender
	frontendURL string
}

func NewService(sender Sender, frontendURL string) *Service {
	return &Service{sender: sender, frontendURL: frontendURL}
}

// New picks the sender configured by MAIL_PROVIDER.
func New(cfg config.MailConfig) *Service {
	var sender Sender
	switch cfg.Provider {
	case "mailersend":
		sender = NewMailerSend(cfg.MailerSendAPIKey, cfg.FromName, cfg.From)
	default:
		sender = NewConsoleSender()
	}
	return NewService(sender, cfg.FrontendURL)
}

func (s *Service) SendActivation(ctx context.Context, to, token string) error {
	link := s.link("/activate", token)
	return s.send(ctx, to, "Activate your account",
		"Welcome! Activate your account here: "+link,
		"Welcome! Activate your account here:", link)
}

func (s *Service) SendPasswordReset(ctx context.Context, to, token string) error {
	link := s.link("/password-reset/confirm", token)
	return s.send(ctx, to, "Reset your password",
		"Use this link to set a new password: "+link,
		"Use this link to set a new password:", link)
}

func (s *Service) SendEmailChange(ctx context.Context, to, token string) error {
	link := s.link("/email-change/confirm", token)
	return s.send(ctx, to, "Confirm your new email address",
		"Confirm your new email address: "+link,
		"Confirm your new email address:", link)
}

func (s *Service) link(path, token string) string {
	return s.frontendURL + path + "?token=" + url.QueryEscape(token)
}

func (s *Service) send(ctx context.Context, to, subject, text, lead, link string) error {
	body := fmt.Sprintf(`<p>%s</p><p><a href="%s">%s</a></p>`, html.EscapeString(lead), html.EscapeString(link), html.EscapeString(link))
	if err := s.sender.Send(ctx, to, subject, text, body); err != nil {
		return fmt.Errorf("send %q: %w", subject, err)
	}
	return nil
}
