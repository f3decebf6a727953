package mailer

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/taskhive-dev/taskhive/internal/models"
	"gopkg.in/gomail.v2"
	"gorm.io/gorm"
)

// Sender delivers a single email. Implementations must not be relied on for
// anything: every send in this package is best-effort.
type Sender interface {
	Send(to, subject, body string) error
}

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}

	return nil
}

// Mailer dispatches outbound email on its own goroutines and records every
// attempt as an EmailNotification row. Failures are logged, never returned:
// no caller's operation depends on delivery.
type Mailer struct {
	conn   *gorm.DB
	sender Sender // nil when outbound mail is not configured
	wg     sync.WaitGroup
}

func New(conn *gorm.DB, sender Sender) *Mailer {
	return &Mailer{conn: conn, sender: sender}
}

// Wait blocks until all in-flight sends have finished. Used on shutdown and
// in tests.
func (m *Mailer) Wait() {
	m.wg.Wait()
}

func (m *Mailer) SendWelcome(user models.User) {
	body := fmt.Sprintf("Hi %s,\n\nYour TaskHive account is ready. Log in to create your first workspace.\n", displayName(user))
	m.dispatch(user, models.EmailKindWelcome, "Welcome to TaskHive", body, nil)
}

func (m *Mailer) SendInvite(user models.User, workspaceName, role string) {
	body := fmt.Sprintf("Hi %s,\n\nYou have been added to the workspace %q as %s.\n", displayName(user), workspaceName, role)
	m.dispatch(user, models.EmailKindInvite, fmt.Sprintf("You were added to %s", workspaceName), body, map[string]string{
		"workspace": workspaceName,
		"role":      role,
	})
}

func (m *Mailer) SendPasswordReset(user models.User, token string) {
	body := fmt.Sprintf("Hi %s,\n\nUse the token below to reset your password. It expires in one hour.\n\n%s\n\nIf you did not request this, you can safely ignore this email.\n", displayName(user), token)
	m.dispatch(user, models.EmailKindPasswordReset, "Reset your TaskHive password", body, nil)
}

func (m *Mailer) dispatch(user models.User, kind, subject, body string, payload map[string]string) {
	m.wg.Add(1)

	go func() {
		defer m.wg.Done()

		record := models.EmailNotification{
			UserID:    user.ID,
			Kind:      kind,
			Recipient: user.Email,
		}

		if payload != nil {
			if raw, err := json.Marshal(payload); err == nil {
				record.Payload = raw
			}
		}

		if m.sender == nil {
			record.Status = models.EmailStatusSkipped
			log.Printf("Mail not configured, skipping %s email to %s", kind, user.Email)
		} else if err := m.sender.Send(user.Email, subject, body); err != nil {
			record.Status = models.EmailStatusFailed
			record.Error = err.Error()
			log.Printf("Failed to send %s email to %s: %v", kind, user.Email, err)
		} else {
			now := time.Now()
			record.Status = models.EmailStatusSent
			record.SentAt = &now
		}

		if err := m.conn.Create(&record).Error; err != nil {
			log.Printf("Failed to record %s email to %s: %v", kind, user.Email, err)
		}
	}()
}

func displayName(user models.User) string {
	if user.Name != "" {
		return user.Name
	}
	return user.Email
}
