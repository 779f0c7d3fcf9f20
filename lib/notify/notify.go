// Package notify emails a summary of failed scrapers after a run.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"city-scrapers-det/lib/runner"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("cityscrapers.lib.notify")

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
	// Recipients receive the failure summary after each run.
	Recipients []string `json:"recipients"`
}

func (c SmtpConfig) Enabled() bool {
	return c.Server != "" && len(c.Recipients) > 0
}

type Notifier struct {
	config SmtpConfig
}

func NewNotifier(config SmtpConfig) Notifier {
	return Notifier{config: config}
}

// SendFailureSummary emails one line per failed scraper. It is a
// no-op when nothing failed or when smtp is not configured.
func (n Notifier) SendFailureSummary(ctx context.Context, outcomes []runner.Outcome) error {
	_, span := tracer.Start(ctx, "SendFailureSummary")
	defer span.End()

	if !n.config.Enabled() {
		return nil
	}

	var lines []string
	for _, outcome := range outcomes {
		if outcome.Err == nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %v", outcome.Scraper, outcome.Err))
	}
	if len(lines) == 0 {
		return nil
	}

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("City Scrapers <%s>", n.config.EmailAddress)
	mail.To = n.config.Recipients
	mail.Subject = fmt.Sprintf("%d scraper(s) failed", len(lines))
	mail.Text = []byte(strings.Join(lines, "\n"))

	err := mail.Send(
		fmt.Sprintf("%s:%d", n.config.Server, n.config.Port),
		smtp.PlainAuth("", n.config.EmailAddress, n.config.Password, n.config.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(fmt.Sprintf("%s:%d", n.config.Server, n.config.Port), nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return err
	}
	return nil
}
