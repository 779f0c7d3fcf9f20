package degc

import (
	"context"
	"strings"
	"testing"
	"time"

	"city-scrapers-det/lib/meeting"
	"city-scrapers-det/lib/scraper"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

var frozenNow = time.Date(2021, 3, 24, 0, 0, 0, 0, time.UTC)

func newTestScraper(t *testing.T, name string) *Scraper {
	t.Helper()
	for _, authority := range authorities {
		if authority.Name == name {
			s := New(authority)
			s.now = func() time.Time { return frozenNow }
			return s
		}
	}
	t.Fatalf("no authority named %s", name)
	return nil
}

const listingFixture = `
<html><body>
<div class="et_pb_text_inner">
	Meetings are held at the DEGC offices in the Guardian Building,
	500 Griswold St, Suite 2200.
</div>
<script type="application/ld+json">[
	{"@type":"Event","name":"DDA Board of Directors Meeting",
	 "url":"https://www.degc.org/event/dda-board-meeting/",
	 "startDate":"2021-04-14T15:00:00-04:00",
	 "description":"Join online at https://us02web.zoom.us/j/123456 Passcode 1",
	 "location":{"url":"https://www.degc.org/dda/"}},
	{"@type":"Event","name":"EDC Board of Directors Meeting (Cancelled)",
	 "url":"https://www.degc.org/event/edc-board-meeting/",
	 "startDate":"2021-04-20T09:00:00-04:00",
	 "description":"",
	 "location":{"url":""}}
]</script>
</body></html>`

func TestParseUpcoming(t *testing.T) {
	s := newTestScraper(t, "det_downtown_development_authority")
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(listingFixture))
	require.NoError(t, err)

	meetings, err := s.parseUpcoming(context.Background(), doc)
	require.NoError(t, err)
	// the EDC event belongs to a different tab
	require.Len(t, meetings, 1)

	m := meetings[0]
	require.Equal(t, "Board of Directors", m.Title)
	require.Equal(t, meeting.Board, m.Classification)
	require.Equal(t, time.Date(2021, 4, 14, 15, 0, 0, 0, time.UTC), m.Start)
	require.Equal(t, meeting.Tentative, m.Status)
	require.Equal(
		t,
		"det_downtown_development_authority/202104141500/x/board_of_directors",
		m.ID,
	)
	require.Equal(t, []meeting.Link{
		{Href: "https://www.degc.org/event/dda-board-meeting/", Title: ""},
		{Href: "https://us02web.zoom.us/j/123456", Title: "Zoom Meeting"},
		{Href: "https://www.degc.org/dda/", Title: ""},
	}, m.Links)
	require.Equal(t, "DEGC, Guardian Building", m.Location.Name)
}

func TestParseUpcomingCancelled(t *testing.T) {
	s := newTestScraper(t, "det_economic_development_corporation")
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(listingFixture))
	require.NoError(t, err)

	meetings, err := s.parseUpcoming(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, meetings, 1)
	// the cancellation marker lives in the event name, not the record
	require.Equal(t, meeting.Cancelled, meetings[0].Status)
}

func TestParseUpcomingLocationChanged(t *testing.T) {
	s := newTestScraper(t, "det_downtown_development_authority")
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<html><body>
		<div class="et_pb_text_inner">meetings now happen elsewhere</div>
		<script>[{"@type":"Event"}]</script>
		</body></html>`,
	))
	require.NoError(t, err)

	_, err = s.parseUpcoming(context.Background(), doc)
	require.ErrorIs(t, err, scraper.ErrLocationChanged)
}

const agencyPageFixture = `
<html><body>
<div class="et_pb_tab_content">
	<a href="/wp-content/uploads/dda-agenda.pdf">DDA Board Meeting Agenda March 4, 2021</a>
	<a href="/wp-content/uploads/dda-minutes.pdf">DDA Board Meeting Minutes March 4, 2021</a>
	<a href="/wp-content/uploads/dda-committee.pdf">DDA Finance Committee Agenda February 9, 2021</a>
	<a href="/wp-content/uploads/dda-docs.pdf">Board Documents</a>
</div>
</body></html>`

func TestParsePrevious(t *testing.T) {
	s := newTestScraper(t, "det_downtown_development_authority")
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(agencyPageFixture))
	require.NoError(t, err)

	meetings, err := s.parsePrevious(context.Background(), doc)
	require.NoError(t, err)
	// undated links are dropped, dated ones group into two meetings
	require.Len(t, meetings, 2)

	byStart := map[time.Time]meeting.Meeting{}
	for _, m := range meetings {
		byStart[m.Start] = m
	}

	board, ok := byStart[time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC)]
	require.True(t, ok)
	require.Equal(t, "Board of Directors", board.Title)
	require.Len(t, board.Links, 2)
	require.Equal(t, "DDA Board Meeting Agenda", board.Links[0].Title)
	require.Equal(
		t,
		"https://www.degc.org/wp-content/uploads/dda-agenda.pdf",
		board.Links[0].Href,
	)
	require.Equal(t, meeting.Passed, board.Status)

	committee, ok := byStart[time.Date(2021, 2, 9, 0, 0, 0, 0, time.UTC)]
	require.True(t, ok)
	require.Equal(t, "FINANCE Committee", committee.Title)
}

func TestAuthoritiesRegistered(t *testing.T) {
	for _, authority := range authorities {
		_, ok := scraper.Default.Get(authority.Name)
		require.True(t, ok, authority.Name)
	}
}
