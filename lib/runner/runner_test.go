package runner

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"city-scrapers-det/lib/meeting"
	"city-scrapers-det/lib/scraper"

	"github.com/stretchr/testify/require"
)

type stubScraper struct {
	name     string
	meetings []meeting.Meeting
	err      error
	delay    time.Duration
	calls    *atomic.Int64
}

func (s stubScraper) Name() string   { return s.name }
func (s stubScraper) Agency() string { return "Stub Agency" }
func (s stubScraper) Scrape(ctx context.Context) ([]meeting.Meeting, error) {
	if s.calls != nil {
		s.calls.Add(1)
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.meetings, s.err
}

func TestRunAllSpawnsEveryScraperOnce(t *testing.T) {
	var calls atomic.Int64
	scrapers := []scraper.Scraper{}
	for _, name := range []string{"det_a", "det_b", "det_c"} {
		scrapers = append(scrapers, stubScraper{name: name, calls: &calls})
	}

	outcomes := RunAll(context.Background(), scrapers)

	require.Len(t, outcomes, 3)
	require.EqualValues(t, 3, calls.Load())
	// outcomes keep input order
	require.Equal(t, "det_a", outcomes[0].Scraper)
	require.Equal(t, "det_c", outcomes[2].Scraper)
}

func TestRunAllFailuresDoNotPropagate(t *testing.T) {
	boom := errors.New("boom")
	scrapers := []scraper.Scraper{
		stubScraper{name: "det_ok", meetings: []meeting.Meeting{{Title: "A"}}},
		stubScraper{name: "det_broken", err: boom},
		stubScraper{name: "det_slow_ok", delay: 20 * time.Millisecond},
	}

	outcomes := RunAll(context.Background(), scrapers)

	require.Len(t, outcomes, 3)
	require.NoError(t, outcomes[0].Err)
	require.Len(t, outcomes[0].Meetings, 1)
	require.ErrorIs(t, outcomes[1].Err, boom)
	// the slow sibling still ran to completion
	require.NoError(t, outcomes[2].Err)
}

func TestRunAllZeroScrapers(t *testing.T) {
	outcomes := RunAll(context.Background(), nil)
	require.Empty(t, outcomes)
}
