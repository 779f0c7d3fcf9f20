package meeting

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"city-scrapers-det/lib/timezone"

	"github.com/stretchr/testify/require"
)

var frozenNow = time.Date(2021, 3, 24, 0, 0, 0, 0, time.UTC)

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		name     string
		meeting  Meeting
		extra    string
		expected Status
	}{
		{
			name: "future meeting beyond a week is tentative",
			meeting: Meeting{
				Title: "Board of Ethics",
				Start: time.Date(2021, 4, 21, 14, 0, 0, 0, time.UTC),
			},
			expected: Tentative,
		},
		{
			name: "meeting in the next week is confirmed",
			meeting: Meeting{
				Title: "Board of Directors",
				Start: time.Date(2021, 3, 26, 9, 0, 0, 0, time.UTC),
			},
			expected: Confirmed,
		},
		{
			name: "past meeting has passed",
			meeting: Meeting{
				Title: "Election Commission",
				Start: time.Date(2020, 11, 2, 10, 0, 0, 0, time.UTC),
			},
			expected: Passed,
		},
		{
			name: "cancellation marker in link text wins",
			meeting: Meeting{
				Title: "Full Commission",
				Start: time.Date(2021, 4, 21, 14, 0, 0, 0, time.UTC),
			},
			extra:    "CANCELLED - Full Commission Agenda",
			expected: Cancelled,
		},
		{
			name: "postponed title wins over passed",
			meeting: Meeting{
				Title: "Board of Directors (Postponed)",
				Start: time.Date(2020, 11, 2, 10, 0, 0, 0, time.UTC),
			},
			expected: Cancelled,
		},
	}
	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			got := DeriveStatus(test.meeting, test.extra, frozenNow)
			require.Equal(t, test.expected, got)
		})
	}
}

func TestDeriveID(t *testing.T) {
	m := Meeting{
		Title: "Board of Ethics",
		Start: time.Date(2021, 4, 21, 14, 0, 0, 0, time.UTC),
	}
	require.Equal(
		t,
		"det_board_ethics/202104211400/x/board_of_ethics",
		DeriveID("det_board_ethics", m),
	)
}

func TestToEvent(t *testing.T) {
	end := time.Date(2024, 9, 5, 12, 0, 0, 0, time.UTC)
	m := Meeting{
		ID:             "wayne_commission/202409051000/x/ways__means_committee",
		Title:          "Ways & Means Committee",
		Description:    "Regular committee meeting",
		Classification: Committee,
		Status:         Cancelled,
		Start:          time.Date(2024, 9, 5, 10, 0, 0, 0, time.UTC),
		End:            &end,
		Location: Location{
			Name:    "Guardian Building",
			Address: "500 Griswold St, Detroit, MI 48226",
		},
		Links:  []Link{{Href: "https://example.com/agenda.pdf", Title: "Agenda"}},
		Source: "https://www.waynecountymi.gov/",
	}

	event := ToEvent(m, "Wayne County Commission", timezone.Location)

	require.Equal(t, "canceled", event.Status)
	require.Equal(t, "Ways & Means Committee", event.Name)
	require.Equal(t, "2024-09-05T10:00:00-04:00", event.StartTime)
	require.Equal(t, "2024-09-05T12:00:00-04:00", event.EndTime)
	require.Equal(t, "Wayne County Commission", event.Extras[AgencyExtraKey])
}

func TestWriteEvents(t *testing.T) {
	events := []Event{
		{ID: "a/202101010000/x/a", Name: "A"},
		{ID: "b/202101010000/x/b", Name: "B"},
	}

	var buf bytes.Buffer
	err := WriteEvents(&buf, events)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], `"_id":"a/202101010000/x/a"`)
	require.Contains(t, lines[1], `"name":"B"`)
}
