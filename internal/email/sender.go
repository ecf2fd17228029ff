package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"builderops-notify/internal/config"
)

// ErrAuthentication marks failures caused by rejected or expired sender
// credentials. Retrying does not help until an operator re-authorizes.
var ErrAuthentication = errors.New("email authentication failed")

// Sender delivers one HTML notification
type Sender interface {
	SendNotification(ctx context.Context, to, subject, htmlBody string) error
}

// Watcher renews the mailbox push-notification watch
type Watcher interface {
	RenewWatch(ctx context.Context) error
}

// IsAuthError reports whether err is a credential failure. Besides the
// sentinel, messages mentioning OAuth or re-authorization count.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAuthentication) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "OAuth") || strings.Contains(msg, "re-authorize")
}

func authError(err error) error {
	return fmt.Errorf("%w: OAuth credentials rejected, re-authorize the sender account: %v", ErrAuthentication, err)
}

// NewSender builds the transport selected in cfg
func NewSender(ctx context.Context, cfg config.EmailConfig) (Sender, error) {
	switch cfg.Provider {
	case config.ProviderGmail:
		return NewGmailSender(ctx, cfg)
	case config.ProviderSMTP:
		return NewSMTPSender(cfg), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}
