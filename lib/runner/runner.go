// Package runner reimplements the launcher contract: start every
// scraper at once, no concurrency cap, no retry, join-all, and never
// let an individual failure affect the overall outcome.
package runner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"city-scrapers-det/lib/meeting"
	"city-scrapers-det/lib/scraper"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("cityscrapers.lib.runner")

type Outcome struct {
	Scraper  string
	Agency   string
	Meetings []meeting.Meeting
	Err      error
	Duration time.Duration
}

// RunAll runs every scraper concurrently and blocks until all of them
// have finished. It never returns an error: failures are reported in
// the outcomes, which are ordered like the input.
func RunAll(ctx context.Context, scrapers []scraper.Scraper) []Outcome {
	ctx, span := tracer.Start(ctx, "RunAll")
	defer span.End()
	span.SetAttributes(attribute.Int("scraper_count", len(scrapers)))

	outcomes := make([]Outcome, len(scrapers))
	wg := sync.WaitGroup{}

	for i, s := range scrapers {
		i, s := i, s
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[i] = RunOne(ctx, s)
		}()
	}

	wg.Wait()

	slog.InfoContext(ctx, "all scrapers completed", "count", len(scrapers))
	return outcomes
}

func RunOne(ctx context.Context, s scraper.Scraper) Outcome {
	ctx, span := tracer.Start(ctx, "RunOne")
	defer span.End()
	span.SetAttributes(attribute.String("scraper", s.Name()))

	start := time.Now()
	meetings, err := s.Scrape(ctx)
	outcome := Outcome{
		Scraper:  s.Name(),
		Agency:   s.Agency(),
		Meetings: meetings,
		Err:      err,
		Duration: time.Since(start),
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "scrape failed")
		slog.ErrorContext(
			ctx, "scraper failed",
			"scraper", s.Name(),
			"err", err,
			"seconds", outcome.Duration.Seconds(),
		)
		return outcome
	}

	slog.InfoContext(
		ctx, "scraper finished",
		"scraper", s.Name(),
		"meetings", len(meetings),
		"seconds", outcome.Duration.Seconds(),
	)
	return outcome
}
