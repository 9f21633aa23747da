package notifier

import (
	"context"
	"fmt"
	"net/smtp"

	"storefront/internal/observability"
	"storefront/internal/observability/logctx"
)

// SMTPNotifier delivers order confirmations over plain SMTP. Failures are
// logged and reported as false; the caller decides what a failed delivery
// means for the transaction.
type SMTPNotifier struct {
	addr string
	from string
	log  observability.Logger
}

func NewSMTP(addr, from string, logger observability.Logger) *SMTPNotifier {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &SMTPNotifier{
		addr: addr,
		from: from,
		log:  logger.With(observability.F("component", "notifier")),
	}
}

func (n *SMTPNotifier) Send(ctx context.Context, recipient, subject, body string) bool {
	logger := logctx.FromOr(ctx, n.log)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		n.from, recipient, subject, body)

	if err := smtp.SendMail(n.addr, nil, n.from, []string{recipient}, []byte(msg)); err != nil {
		logger.Error("notify_send_failed",
			observability.F("recipient", recipient),
			observability.F("error", err.Error()),
		)
		return false
	}

	logger.Info("notify_sent",
		observability.F("recipient", recipient),
	)
	return true
}

// LogNotifier records the notification instead of delivering it. Used when no
// SMTP endpoint is configured (dev environments) and in tests.
type LogNotifier struct {
	log observability.Logger
}

func NewLog(logger observability.Logger) *LogNotifier {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &LogNotifier{log: logger.With(observability.F("component", "notifier"))}
}

func (n *LogNotifier) Send(ctx context.Context, recipient, subject, _ string) bool {
	logctx.FromOr(ctx, n.log).Info("notify_logged",
		observability.F("recipient", recipient),
		observability.F("subject", subject),
	)
	return true
}
