package notify

import (
	"context"
	"errors"
	"testing"

	"city-scrapers-det/lib/runner"

	"github.com/stretchr/testify/require"
)

func TestSendFailureSummaryDisabled(t *testing.T) {
	n := NewNotifier(SmtpConfig{})
	err := n.SendFailureSummary(context.Background(), []runner.Outcome{
		{Scraper: "broken", Err: errors.New("boom")},
	})
	require.NoError(t, err)
}

func TestSendFailureSummaryNothingFailed(t *testing.T) {
	// enabled config, but no failures means no smtp traffic at all
	n := NewNotifier(SmtpConfig{
		Server:     "smtp.example.com",
		Port:       587,
		Recipients: []string{"oncall@example.com"},
	})
	err := n.SendFailureSummary(context.Background(), []runner.Outcome{
		{Scraper: "fine"},
	})
	require.NoError(t, err)
}

func TestEnabled(t *testing.T) {
	require.False(t, SmtpConfig{Server: "smtp.example.com"}.Enabled())
	require.False(t, SmtpConfig{Recipients: []string{"a@b.c"}}.Enabled())
	require.True(t, SmtpConfig{
		Server:     "smtp.example.com",
		Recipients: []string{"a@b.c"},
	}.Enabled())
}
