// Package harvest ties a scrape run together: it fans out the
// registered scrapers, writes each scraper's feed file, and archives
// meetings and run outcomes in sqlite.
package harvest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"city-scrapers-det/lib/feeds"
	"city-scrapers-det/lib/meeting"
	"city-scrapers-det/lib/runner"
	"city-scrapers-det/lib/scraper"
	"city-scrapers-det/lib/timezone"
	"city-scrapers-det/services/harvest/db"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/harvest")

type Service struct {
	db       *sql.DB
	qry      *db.Queries
	store    feeds.Store
	registry *scraper.Registry
	// Archive keeps meetings older than a year instead of dropping
	// them before the feed is written.
	Archive bool

	now func() time.Time
}

func NewService(database *sql.DB, store feeds.Store, registry *scraper.Registry) Service {
	return Service{
		db:       database,
		qry:      db.New(database),
		store:    store,
		registry: registry,
		now:      timezone.Now,
	}
}

// Harvest runs every registered scraper except the excluded ones and
// persists the results. Scraper failures never abort the run; they
// are recorded alongside the successes. The returned error covers
// persistence problems only.
func (s Service) Harvest(ctx context.Context, exclude ...string) ([]runner.Outcome, error) {
	ctx, span := tracer.Start(ctx, "Harvest")
	defer span.End()

	outcomes := runner.RunAll(ctx, s.registry.All(exclude...))
	now := s.now()

	var errs []error
	for _, outcome := range outcomes {
		feedPath, err := s.persistOutcome(ctx, outcome, now)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to persist outcome")
			slog.ErrorContext(ctx, "failed to persist scrape outcome",
				"scraper", outcome.Scraper, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", outcome.Scraper, err))
			continue
		}
		if feedPath != "" {
			slog.InfoContext(ctx, "wrote feed",
				"scraper", outcome.Scraper, "path", feedPath)
		}
	}
	span.SetAttributes(attribute.Int("scraper_count", len(outcomes)))
	return outcomes, errors.Join(errs...)
}

func (s Service) persistOutcome(ctx context.Context, outcome runner.Outcome, now time.Time) (string, error) {
	run := db.Run{
		Scraper:      outcome.Scraper,
		StartedAt:    now.Unix(),
		DurationMs:   outcome.Duration.Milliseconds(),
		MeetingCount: int64(len(outcome.Meetings)),
	}
	if outcome.Err != nil {
		run.Error = outcome.Err.Error()
		return "", s.qry.CreateRun(ctx, run)
	}

	kept := scraper.FilterArchived(outcome.Meetings, now, s.Archive)
	events := make([]meeting.Event, 0, len(kept))
	for _, m := range kept {
		events = append(events, meeting.ToEvent(m, outcome.Agency, timezone.Location))
	}

	feedPath, err := feeds.Write(ctx, s.store, outcome.Scraper, events, now)
	if err != nil {
		// The feed store may be remote; archive the meetings locally
		// regardless and surface the error through the run record.
		run.Error = err.Error()
	}
	run.FeedPath = feedPath

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	for _, m := range kept {
		err := txqry.UpsertMeeting(ctx, meetingRow(outcome, m, now))
		if err != nil {
			return "", err
		}
	}
	err = txqry.CreateRun(ctx, run)
	if err != nil {
		return "", err
	}
	return feedPath, tx.Commit()
}

func meetingRow(outcome runner.Outcome, m meeting.Meeting, now time.Time) db.Meeting {
	row := db.Meeting{
		ID:              m.ID,
		Scraper:         outcome.Scraper,
		Agency:          outcome.Agency,
		Title:           m.Title,
		Classification:  string(m.Classification),
		Status:          string(m.Status),
		StartTime:       m.Start.Unix(),
		AllDay:          m.AllDay,
		LocationName:    m.Location.Name,
		LocationAddress: m.Location.Address,
		Source:          m.Source,
		UpdatedAt:       now.Unix(),
	}
	if m.End != nil {
		row.EndTime = sql.NullInt64{Int64: m.End.Unix(), Valid: true}
	}
	return row
}

// UpcomingMeetings lists archived meetings that start at or after now.
func (s Service) UpcomingMeetings(ctx context.Context) ([]db.Meeting, error) {
	ctx, span := tracer.Start(ctx, "UpcomingMeetings")
	defer span.End()
	return s.qry.ListUpcomingMeetings(ctx, s.now().Unix())
}

// RecentRuns lists the most recent run records, newest first.
func (s Service) RecentRuns(ctx context.Context, limit int64) ([]db.Run, error) {
	ctx, span := tracer.Start(ctx, "RecentRuns")
	defer span.End()
	return s.qry.ListRecentRuns(ctx, limit)
}
