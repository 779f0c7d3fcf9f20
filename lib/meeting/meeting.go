package meeting

import (
	"fmt"
	"strings"
	"time"

	"city-scrapers-det/lib/textutil"
)

// Classification follows the categories used across the City Scrapers
// project.
type Classification string

const (
	Advisory      Classification = "Advisory Committee"
	Board         Classification = "Board"
	CityCouncil   Classification = "City Council"
	Commission    Classification = "Commission"
	Committee     Classification = "Committee"
	Forum         Classification = "Forum"
	PoliceBeat    Classification = "Police Beat"
	NotClassified Classification = "Not classified"
)

type Status string

const (
	Cancelled Status = "cancelled"
	Tentative Status = "tentative"
	Confirmed Status = "confirmed"
	Passed    Status = "passed"
)

type Location struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type Link struct {
	Href  string `json:"href"`
	Title string `json:"title"`
}

// Meeting is one public meeting of a single agency. Start is a wall
// clock value in the agency's timezone.
type Meeting struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Classification Classification `json:"classification"`
	Status         Status         `json:"status"`
	Start          time.Time      `json:"start"`
	End            *time.Time     `json:"end"`
	AllDay         bool           `json:"all_day"`
	TimeNotes      string         `json:"time_notes"`
	Location       Location       `json:"location"`
	Links          []Link         `json:"links"`
	Source         string         `json:"source"`
}

var cancelledWords = []string{"cancel", "postpon", "reschedul"}

// DeriveStatus applies the shared status rules: an explicit
// cancellation marker anywhere in the meeting text wins, then meetings
// in the past have passed, meetings within the next week are
// confirmed, and anything further out is only tentative. `extra` is
// page text outside the meeting record itself (link titles, table
// cells) that may carry a cancellation notice.
func DeriveStatus(m Meeting, extra string, now time.Time) Status {
	text := strings.ToLower(strings.Join(
		[]string{m.Title, m.Description, extra},
		" ",
	))
	for _, word := range cancelledWords {
		if strings.Contains(text, word) {
			return Cancelled
		}
	}
	if m.Start.Before(now) {
		return Passed
	}
	if m.Start.Before(now.AddDate(0, 0, 7)) {
		return Confirmed
	}
	return Tentative
}

// DeriveID builds the canonical meeting id:
// <scraper>/<start as YYYYMMDDHHmm>/x/<slugified title>
func DeriveID(scraperName string, m Meeting) string {
	return fmt.Sprintf(
		"%s/%s/x/%s",
		scraperName,
		m.Start.Format("200601021504"),
		textutil.Slug(m.Title),
	)
}

// Finalize fills in the derived Status and ID fields of a meeting in
// place. Spiders call this last, after all parsed fields are set.
func Finalize(scraperName string, m *Meeting, statusText string, now time.Time) {
	m.Status = DeriveStatus(*m, statusText, now)
	m.ID = DeriveID(scraperName, *m)
}
