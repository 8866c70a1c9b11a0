package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	models "github.com/Schera-ole/agentmon/internal/model"
)

// EmailSink sends alert events as plain-text mail over SMTP.
type EmailSink struct {
	addr string
	from string
	to   []string
	auth smtp.Auth
}

// NewEmailSink creates a sink sending through the SMTP server at addr.
// auth may be nil for unauthenticated relays.
func NewEmailSink(addr, from string, to []string, auth smtp.Auth) *EmailSink {
	return &EmailSink{addr: addr, from: from, to: to, auth: auth}
}

// Name identifies the sink in logs.
func (es *EmailSink) Name() string {
	return "email"
}

// Send delivers one event as a mail message.
func (es *EmailSink) Send(ctx context.Context, event models.AlertEvent) error {
	subject := fmt.Sprintf("[%s] %s %s", event.Severity, event.MetricName, event.Kind)
	body := fmt.Sprintf(
		"Rule:        %s\r\nMetric:      %s\r\nKind:        %s\r\nValue:       %.2f\r\nThreshold:   %.2f\r\nFired at:    %s\r\n",
		event.RuleID, event.MetricName, event.Kind, event.Value, event.Threshold,
		event.Timestamp.Format("2006-01-02 15:04:05"))

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		es.from, strings.Join(es.to, ", "), subject, body)

	if err := smtp.SendMail(es.addr, es.auth, es.from, es.to, []byte(msg)); err != nil {
		return fmt.Errorf("error sending mail: %w", err)
	}
	return nil
}
