package email

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"builderops-notify/internal/config"
)

// GmailSender sends notifications through the Gmail API
type GmailSender struct {
	service     *gmail.Service
	userEmail   string
	from        *mail.Address
	timeout     time.Duration
	maxAttempts int
	backoff     func(attempt int) time.Duration
	now         func() time.Time
}

// NewGmailService creates a Gmail client authorized with the configured refresh token
func NewGmailService(ctx context.Context, cfg config.GmailConfig) (*gmail.Service, error) {
	oauth2Config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       []string{gmail.GmailSendScope, gmail.GmailReadonlyScope},
		Endpoint:     google.Endpoint,
	}

	token := &oauth2.Token{
		RefreshToken: cfg.RefreshToken,
	}

	service, err := gmail.NewService(ctx, option.WithTokenSource(oauth2Config.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return service, nil
}

// NewGmailSender creates a sender for the configured Gmail account
func NewGmailSender(ctx context.Context, cfg config.EmailConfig) (*GmailSender, error) {
	service, err := NewGmailService(ctx, cfg.Gmail)
	if err != nil {
		return nil, err
	}
	return newGmailSender(service, cfg), nil
}

func newGmailSender(service *gmail.Service, cfg config.EmailConfig) *GmailSender {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	userEmail := cfg.Gmail.UserEmail
	if userEmail == "" {
		userEmail = "me"
	}
	return &GmailSender{
		service:     service,
		userEmail:   userEmail,
		from:        fromAddress(cfg),
		timeout:     cfg.SendTimeout,
		maxAttempts: attempts,
		backoff: func(attempt int) time.Duration {
			return time.Duration(attempt*attempt) * time.Second
		},
		now: time.Now,
	}
}

// SendNotification sends one HTML email, retrying while Gmail reports quota
// or rate limiting
func (s *GmailSender) SendNotification(ctx context.Context, to, subject, htmlBody string) error {
	raw, err := BuildMessage(s.from, to, subject, htmlBody, s.now())
	if err != nil {
		return err
	}
	message := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		lastErr = s.send(ctx, message)
		if lastErr == nil {
			logrus.WithField("to", to).Debug("Notification sent via Gmail")
			return nil
		}

		if isAuthFailure(lastErr) {
			return authError(lastErr)
		}
		if !isRateLimited(lastErr) || attempt == s.maxAttempts {
			break
		}

		wait := s.backoff(attempt)
		logrus.WithFields(logrus.Fields{
			"attempt": attempt,
			"wait":    wait,
		}).Warn("Gmail rate limited, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return fmt.Errorf("failed to send email to %s: %w", to, lastErr)
}

func (s *GmailSender) send(ctx context.Context, message *gmail.Message) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	_, err := s.service.Users.Messages.Send(s.userEmail, message).Context(ctx).Do()
	return err
}

// isAuthFailure detects refresh-token rejection and unauthorized API responses
func isAuthFailure(err error) bool {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return true
	}
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusUnauthorized
}

func isRateLimited(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests {
			return true
		}
		for _, item := range apiErr.Errors {
			switch item.Reason {
			case "rateLimitExceeded", "userRateLimitExceeded", "quotaExceeded":
				return true
			}
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "quota") || strings.Contains(msg, "rate limit")
}

// GmailWatcher keeps the Gmail push-notification watch on the sender mailbox alive
type GmailWatcher struct {
	service   *gmail.Service
	userEmail string
	topic     string
}

// NewGmailWatcher creates a watcher publishing to topic
func NewGmailWatcher(service *gmail.Service, userEmail, topic string) *GmailWatcher {
	if userEmail == "" {
		userEmail = "me"
	}
	return &GmailWatcher{service: service, userEmail: userEmail, topic: topic}
}

// RenewWatch stops the current watch and starts a new one
func (w *GmailWatcher) RenewWatch(ctx context.Context) error {
	// A missing watch makes stop fail; the new watch replaces it either way
	if err := w.service.Users.Stop(w.userEmail).Context(ctx).Do(); err != nil {
		logrus.WithError(err).Debug("Gmail watch stop failed")
	}

	resp, err := w.service.Users.Watch(w.userEmail, &gmail.WatchRequest{
		TopicName:         w.topic,
		LabelIds:          []string{"INBOX"},
		LabelFilterAction: "include",
	}).Context(ctx).Do()
	if err != nil {
		if isAuthFailure(err) {
			return authError(err)
		}
		return fmt.Errorf("failed to renew Gmail watch: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"history_id": resp.HistoryId,
		"expiration": time.UnixMilli(resp.Expiration).UTC(),
	}).Info("Gmail watch renewed")
	return nil
}
