// Package mailrepo is the outbound mail collaborator. Only activation mail
// goes through it; the activation URL is additionally returned in the API
// response so environments without a working relay stay usable.
package mailrepo

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

type Activation struct {
	To            string
	Username      string
	ActivationURL string
	PlatformName  string
}

type Sender interface {
	SendActivation(ctx context.Context, m Activation) error
}

type smtpSender struct {
	host, port, user, pass, from string
}

func NewSMTP(host, port, user, pass, from string) Sender {
	return &smtpSender{host: host, port: port, user: user, pass: pass, from: from}
}

func (s *smtpSender) SendActivation(_ context.Context, m Activation) error {
	subject := fmt.Sprintf("Welcome to %s, %s", m.PlatformName, m.Username)
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nPlease activate your %s account by opening the link below:\r\n\r\n%s\r\n",
		m.Username, m.PlatformName, m.ActivationURL)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.from)
	fmt.Fprintf(&msg, "To: %s\r\n", m.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n\r\n", subject)
	msg.WriteString(body)

	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.pass, s.host)
	}
	return smtp.SendMail(s.host+":"+s.port, auth, s.from, []string{m.To}, []byte(msg.String()))
}

type logSender struct{ log *slog.Logger }

// NewLog returns a sender that only logs, used when no SMTP host is
// configured.
func NewLog(log *slog.Logger) Sender { return &logSender{log: log} }

func (s *logSender) SendActivation(_ context.Context, m Activation) error {
	s.log.Info("activation mail (not sent, no SMTP configured)",
		"to", m.To, "activation_url", m.ActivationURL)
	return nil
}
