package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
	"github.com/sirupsen/logrus"

	"builderops-notify/internal/config"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender sends notifications through an SMTP relay
type SMTPSender struct {
	addr     string
	auth     smtp.Auth
	from     *mail.Address
	timeout  time.Duration
	archiver Archiver
	sendMail sendMailFunc
	now      func() time.Time
}

// Archiver stores a copy of each sent message
type Archiver interface {
	Archive(msg []byte, date time.Time) error
}

// NewSMTPSender creates a sender for the configured relay. When IMAP
// settings are present every sent message is also appended to the sent mailbox.
func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	s := &SMTPSender{
		addr:     cfg.SMTP.Host + ":" + strconv.Itoa(cfg.SMTP.Port),
		from:     fromAddress(cfg),
		timeout:  cfg.SendTimeout,
		sendMail: smtp.SendMail,
		now:      time.Now,
	}
	if cfg.SMTP.User != "" {
		s.auth = smtp.PlainAuth("", cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.Host)
	}
	if cfg.SMTP.IMAPHost != "" {
		s.archiver = NewIMAPArchiver(cfg.SMTP)
	}
	return s
}

// SendNotification sends one HTML email
func (s *SMTPSender) SendNotification(ctx context.Context, to, subject, htmlBody string) error {
	date := s.now()
	msg, err := BuildMessage(s.from, to, subject, htmlBody, date)
	if err != nil {
		return err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	// net/smtp has no context support
	done := make(chan error, 1)
	go func() {
		done <- s.sendMail(s.addr, s.auth, s.from.Address, []string{to}, msg)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("failed to send email to %s: %w", to, ctx.Err())
	case err := <-done:
		if err != nil {
			var protoErr *textproto.Error
			if errors.As(err, &protoErr) && (protoErr.Code == 535 || protoErr.Code == 534) {
				return authError(err)
			}
			return fmt.Errorf("failed to send email to %s: %w", to, err)
		}
	}

	if s.archiver != nil {
		if err := s.archiver.Archive(msg, date); err != nil {
			logrus.WithError(err).WithField("to", to).Warn("Failed to archive sent notification")
		}
	}
	return nil
}

// IMAPArchiver appends sent messages to an IMAP mailbox
type IMAPArchiver struct {
	addr     string
	user     string
	password string
	mailbox  string
}

// NewIMAPArchiver creates an archiver for the configured sent mailbox
func NewIMAPArchiver(cfg config.SMTPConfig) *IMAPArchiver {
	user, password := cfg.IMAPUser, cfg.IMAPPassword
	if user == "" {
		user, password = cfg.User, cfg.Password
	}
	return &IMAPArchiver{
		addr:     fmt.Sprintf("%s:%d", cfg.IMAPHost, cfg.IMAPPort),
		user:     user,
		password: password,
		mailbox:  cfg.SentMailbox,
	}
}

// Archive stores msg in the sent mailbox flagged as seen
func (a *IMAPArchiver) Archive(msg []byte, date time.Time) error {
	c, err := client.DialTLS(a.addr, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to IMAP server: %w", err)
	}
	defer c.Logout()

	if err := c.Login(a.user, a.password); err != nil {
		return fmt.Errorf("failed to login to IMAP server: %w", err)
	}

	if err := c.Append(a.mailbox, []string{imap.SeenFlag}, date, bytes.NewBuffer(msg)); err != nil {
		return fmt.Errorf("failed to append to %s: %w", a.mailbox, err)
	}
	return nil
}
