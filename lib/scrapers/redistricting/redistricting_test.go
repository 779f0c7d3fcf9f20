package redistricting

import (
	"strings"
	"testing"
	"time"

	"city-scrapers-det/lib/meeting"
	"city-scrapers-det/lib/scraper"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

var frozenNow = time.Date(2021, 3, 24, 0, 0, 0, 0, time.UTC)

func newTestScraper() *Scraper {
	s := New()
	s.now = func() time.Time { return frozenNow }
	return s
}

const documentsFixture = `
<html><body><div class="fullContent">
<p>April 1, 2021</p>
<div><a href="/documents/agenda_040121.pdf">Meeting Agenda</a></div>
<div><a href="/documents/notice_040121.pdf">Public  Notice</a></div>
<p>Materials from 3/18/21 <a href="/documents/minutes_031821.pdf">Minutes</a></p>
<p>General information without a date</p>
</div></body></html>`

func TestParseDocuments(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(documentsFixture))
	require.NoError(t, err)

	docMap, err := parseDocuments(doc, documentsURL)
	require.NoError(t, err)
	require.Len(t, docMap, 2)

	require.Equal(t, []meeting.Link{
		{Href: "https://www.michigan.gov/documents/agenda_040121.pdf", Title: "Meeting Agenda"},
		{Href: "https://www.michigan.gov/documents/notice_040121.pdf", Title: "Public Notice"},
	}, docMap["2021-04-01"])

	// a line with its own date files its link under that date
	require.Equal(t, []meeting.Link{
		{Href: "https://www.michigan.gov/documents/minutes_031821.pdf", Title: "Minutes"},
	}, docMap["2021-03-18"])
}

const meetingsFixture = `
<html><body><div class="fullContent">
<p>Thursday, April 1, 2021 (tentative)<br>
Full Commission Meeting 10:00 am - 12:00 pm - Budget review<br>
Advisory Commitee 2:00 pm</p>
<p>Thursday, March 18, 2021<br>
Full Commission Meeting</p>
<p>Informational paragraph with no schedule</p>
</div></body></html>`

func TestParseMeetings(t *testing.T) {
	s := newTestScraper()
	docsDoc, err := goquery.NewDocumentFromReader(strings.NewReader(documentsFixture))
	require.NoError(t, err)
	docMap, err := parseDocuments(docsDoc, documentsURL)
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(meetingsFixture))
	require.NoError(t, err)

	meetings := s.parseMeetings(doc, docMap)
	require.Len(t, meetings, 3)

	full := meetings[0]
	require.Equal(t, "Full Commission", full.Title)
	require.Equal(t, meeting.Commission, full.Classification)
	require.Equal(t, time.Date(2021, 4, 1, 10, 0, 0, 0, time.UTC), full.Start)
	require.NotNil(t, full.End)
	require.Equal(t, time.Date(2021, 4, 1, 12, 0, 0, 0, time.UTC), *full.End)
	// everything after the first " - " separator, times included
	require.Equal(t, "12:00 pm Budget review", full.Description)
	require.Equal(t, remoteLocation, full.Location)
	require.Len(t, full.Links, 2)
	require.Equal(t, meeting.Tentative, full.Status)
	require.Equal(t, "mi_redistricting_commission/202104011000/x/full_commission", full.ID)

	advisory := meetings[1]
	require.Equal(t, "Advisory Committee", advisory.Title)
	require.Equal(t, time.Date(2021, 4, 1, 14, 0, 0, 0, time.UTC), advisory.Start)
	require.Nil(t, advisory.End)
	require.Empty(t, advisory.Description)

	past := meetings[2]
	require.Equal(t, time.Date(2021, 3, 18, 0, 0, 0, 0, time.UTC), past.Start)
	require.Nil(t, past.End)
	require.Len(t, past.Links, 1)
	require.Equal(t, meeting.Passed, past.Status)
}

func TestParseStartEndNoTimes(t *testing.T) {
	date := time.Date(2021, 4, 1, 0, 0, 0, 0, time.UTC)
	start, end := parseStartEnd(date, "Commission Meeting")
	require.Equal(t, date, start)
	require.Nil(t, end)
}

func TestRegistered(t *testing.T) {
	_, ok := scraper.Default.Get("mi_redistricting_commission")
	require.True(t, ok)
}
