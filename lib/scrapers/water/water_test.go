package water

import (
	"testing"
	"time"

	"city-scrapers-det/lib/htmlutil"
	"city-scrapers-det/lib/legistar"
	"city-scrapers-det/lib/meeting"
	"city-scrapers-det/lib/scraper"

	"github.com/stretchr/testify/require"
)

var frozenNow = time.Date(2021, 3, 24, 0, 0, 0, 0, time.UTC)

func newTestScraper(t *testing.T) *Scraper {
	t.Helper()
	s, err := New()
	require.NoError(t, err)
	s.now = func() time.Time { return frozenNow }
	return s
}

func TestConvert(t *testing.T) {
	s := newTestScraper(t)
	m := s.convert(legistar.Event{
		Name:     "Board of Water Commissioners",
		Start:    time.Date(2021, 4, 7, 14, 0, 0, 0, time.UTC),
		Location: "Water Board Building, Room 1600, 735 Randolph",
		Links: []htmlutil.Anchor{
			{Name: "Agenda", Href: "https://dwsd.legistar.com/View.ashx?M=A&ID=1"},
		},
		Source: "https://dwsd.legistar.com/MeetingDetail.aspx?ID=1",
	})

	require.Equal(t, "Board of Water Commissioners", m.Title)
	require.Equal(t, meeting.Board, m.Classification)
	require.Equal(t, meeting.Location{
		Name:    "Water Board Building",
		Address: "735 Randolph St Detroit, MI 48226",
	}, m.Location)
	require.Equal(t, []meeting.Link{
		{Href: "https://dwsd.legistar.com/View.ashx?M=A&ID=1", Title: "Agenda"},
	}, m.Links)
	require.Equal(t, meeting.Tentative, m.Status)
	require.Equal(t,
		"det_water_sewage_department/202104071400/x/board_of_water_commissioners",
		m.ID)
}

func TestParseLocation(t *testing.T) {
	cases := []struct {
		address string
		want    meeting.Location
	}{
		{
			"Water Board Building, 735 Randolph",
			meeting.Location{Name: "Water Board Building", Address: "735 Randolph St Detroit, MI 48226"},
		},
		{
			"Room 1600 Water Board Building, 735 Randolph",
			meeting.Location{
				Name:    "Water Board Building",
				Address: "Room 1600 Water Board Building 735 Randolph St Detroit, MI 48226",
			},
		},
		{
			"Online via Zoom",
			meeting.Location{Address: "Virtual Meeting"},
		},
		{
			"5425 W Jefferson Ave, Detroit",
			meeting.Location{Address: "5425 W Jefferson Ave, Detroit"},
		},
	}
	for _, c := range cases {
		require.Equal(t, c.want, parseLocation(c.address), c.address)
	}
}

func TestRegistered(t *testing.T) {
	_, ok := scraper.Default.Get("det_water_sewage_department")
	require.True(t, ok)
}
