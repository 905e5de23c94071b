package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/REGENCY-14/Finalyear/internal/config"
)

// Service sends transactional mail. Only password resets exist today.
type Service interface {
	SendPasswordReset(to, token string) error
}

type smtpService struct {
	cfg    config.SMTPConfig
	dialer *gomail.Dialer
}

func NewService(cfg config.SMTPConfig) Service {
	return &smtpService{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *smtpService) SendPasswordReset(to, token string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Password reset request")
	m.SetBody("text/plain", fmt.Sprintf(
		"A password reset was requested for your account.\n\n"+
			"Open the link below to choose a new password. The link expires in 1 hour.\n\n%s?token=%s\n\n"+
			"If you did not request this, ignore this message.",
		s.cfg.ResetURL, token,
	))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send reset mail: %w", err)
	}
	return nil
}
