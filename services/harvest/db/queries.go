package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Meeting struct {
	ID              string
	Scraper         string
	Agency          string
	Title           string
	Classification  string
	Status          string
	StartTime       int64
	EndTime         sql.NullInt64
	AllDay          bool
	LocationName    string
	LocationAddress string
	Source          string
	UpdatedAt       int64
}

const upsertMeeting = `
INSERT INTO meetings (
    id, scraper, agency, title, classification, status,
    start_time, end_time, all_day, location_name, location_address,
    source, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    title = excluded.title,
    classification = excluded.classification,
    status = excluded.status,
    start_time = excluded.start_time,
    end_time = excluded.end_time,
    all_day = excluded.all_day,
    location_name = excluded.location_name,
    location_address = excluded.location_address,
    source = excluded.source,
    updated_at = excluded.updated_at
`

func (q *Queries) UpsertMeeting(ctx context.Context, arg Meeting) error {
	_, err := q.db.ExecContext(ctx, upsertMeeting,
		arg.ID, arg.Scraper, arg.Agency, arg.Title,
		arg.Classification, arg.Status, arg.StartTime, arg.EndTime,
		arg.AllDay, arg.LocationName, arg.LocationAddress,
		arg.Source, arg.UpdatedAt,
	)
	return err
}

const getMeeting = `
SELECT id, scraper, agency, title, classification, status,
    start_time, end_time, all_day, location_name, location_address,
    source, updated_at
FROM meetings WHERE id = ?
`

func (q *Queries) GetMeeting(ctx context.Context, id string) (Meeting, error) {
	row := q.db.QueryRowContext(ctx, getMeeting, id)
	var m Meeting
	err := row.Scan(
		&m.ID, &m.Scraper, &m.Agency, &m.Title,
		&m.Classification, &m.Status, &m.StartTime, &m.EndTime,
		&m.AllDay, &m.LocationName, &m.LocationAddress,
		&m.Source, &m.UpdatedAt,
	)
	return m, err
}

const listUpcomingMeetings = `
SELECT id, scraper, agency, title, classification, status,
    start_time, end_time, all_day, location_name, location_address,
    source, updated_at
FROM meetings
WHERE start_time >= ?
ORDER BY start_time ASC
`

func (q *Queries) ListUpcomingMeetings(ctx context.Context, after int64) ([]Meeting, error) {
	rows, err := q.db.QueryContext(ctx, listUpcomingMeetings, after)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var meetings []Meeting
	for rows.Next() {
		var m Meeting
		err := rows.Scan(
			&m.ID, &m.Scraper, &m.Agency, &m.Title,
			&m.Classification, &m.Status, &m.StartTime, &m.EndTime,
			&m.AllDay, &m.LocationName, &m.LocationAddress,
			&m.Source, &m.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

type Run struct {
	ID           int64
	Scraper      string
	StartedAt    int64
	DurationMs   int64
	MeetingCount int64
	Error        string
	FeedPath     string
}

const createRun = `
INSERT INTO runs (scraper, started_at, duration_ms, meeting_count, error, feed_path)
VALUES (?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateRun(ctx context.Context, arg Run) error {
	_, err := q.db.ExecContext(ctx, createRun,
		arg.Scraper, arg.StartedAt, arg.DurationMs,
		arg.MeetingCount, arg.Error, arg.FeedPath,
	)
	return err
}

const listRecentRuns = `
SELECT id, scraper, started_at, duration_ms, meeting_count, error, feed_path
FROM runs
ORDER BY started_at DESC, id DESC
LIMIT ?
`

func (q *Queries) ListRecentRuns(ctx context.Context, limit int64) ([]Run, error) {
	rows, err := q.db.QueryContext(ctx, listRecentRuns, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var runs []Run
	for rows.Next() {
		var r Run
		err := rows.Scan(
			&r.ID, &r.Scraper, &r.StartedAt, &r.DurationMs,
			&r.MeetingCount, &r.Error, &r.FeedPath,
		)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
