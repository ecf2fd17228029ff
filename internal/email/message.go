package email

import (
	"bytes"
	"fmt"
	"time"

	"github.com/emersion/go-message/mail"

	"builderops-notify/internal/config"
)

// BuildMessage renders an RFC 5322 message with a single quoted-printable
// HTML body
func BuildMessage(from *mail.Address, to, subject, htmlBody string, date time.Time) ([]byte, error) {
	var h mail.Header
	h.SetDate(date)
	h.SetAddressList("From", []*mail.Address{from})
	h.SetAddressList("To", []*mail.Address{{Address: to}})
	h.SetSubject(subject)
	h.Set("MIME-Version", "1.0")
	h.SetContentType("text/html", map[string]string{"charset": "utf-8"})
	h.Set("Content-Transfer-Encoding", "quoted-printable")

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("failed to create message writer: %w", err)
	}
	if _, err := w.Write([]byte(htmlBody)); err != nil {
		return nil, fmt.Errorf("failed to write message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close message writer: %w", err)
	}
	return buf.Bytes(), nil
}

func fromAddress(cfg config.EmailConfig) *mail.Address {
	return &mail.Address{Name: cfg.FromName, Address: cfg.SenderAddress()}
}
