package meeting

import (
	"encoding/json"
	"io"
	"time"
)

// Event is the Open Civic Data shape the feed files are written in.
// It mirrors the records the legacy pipeline uploaded, so downstream
// consumers don't have to care which scraper produced a meeting.
type Event struct {
	ID             string            `json:"_id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Classification string            `json:"classification"`
	Status         string            `json:"status"`
	StartTime      string            `json:"start_time"`
	EndTime        string            `json:"end_time,omitempty"`
	AllDay         bool              `json:"all_day"`
	Location       Location          `json:"location"`
	Links          []Link            `json:"links"`
	Source         string            `json:"sources"`
	Extras         map[string]string `json:"extras"`
}

const AgencyExtraKey = "cityscrapers.org/agency"

// ocd uses the single-l spelling
func ocdStatus(s Status) string {
	if s == Cancelled {
		return "canceled"
	}
	return string(s)
}

// ToEvent converts a finalized meeting into its feed representation.
// Times are rendered in `tz` since Meeting carries naive wall-clock
// values.
func ToEvent(m Meeting, agency string, tz *time.Location) Event {
	start := time.Date(
		m.Start.Year(), m.Start.Month(), m.Start.Day(),
		m.Start.Hour(), m.Start.Minute(), m.Start.Second(), 0, tz,
	)
	event := Event{
		ID:             m.ID,
		Name:           m.Title,
		Description:    m.Description,
		Classification: string(m.Classification),
		Status:         ocdStatus(m.Status),
		StartTime:      start.Format(time.RFC3339),
		AllDay:         m.AllDay,
		Location:       m.Location,
		Links:          m.Links,
		Source:         m.Source,
		Extras: map[string]string{
			AgencyExtraKey: agency,
		},
	}
	if m.End != nil {
		end := time.Date(
			m.End.Year(), m.End.Month(), m.End.Day(),
			m.End.Hour(), m.End.Minute(), m.End.Second(), 0, tz,
		)
		event.EndTime = end.Format(time.RFC3339)
	}
	return event
}

// WriteEvents writes events in the jsonlines format the legacy
// pipeline used for its feed blobs.
func WriteEvents(w io.Writer, events []Event) error {
	enc := json.NewEncoder(w)
	for _, event := range events {
		err := enc.Encode(event)
		if err != nil {
			return err
		}
	}
	return nil
}
