package legistar

import (
	"context"
	"strings"
	"testing"
	"time"

	"city-scrapers-det/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const calendarFixture = `
<html><body>
<table class="rgMasterTable">
<thead><tr>
	<th>Name</th><th>Meeting Date</th><th>ics</th><th>Meeting Time</th>
	<th>Meeting Location</th><th>Meeting Details</th><th>Agenda</th><th>Minutes</th>
</tr></thead>
<tbody>
<tr>
	<td><a href="/DepartmentDetail.aspx?ID=1">Board of Water Commissioners</a></td>
	<td>10/16/2024</td>
	<td><a href="javascript:void(0)">ics</a></td>
	<td>2:00 PM</td>
	<td>Water Board Building, Board Room, 5th floor</td>
	<td><a href="/MeetingDetail.aspx?ID=100">Meeting details</a></td>
	<td><a href="/View.ashx?M=A&amp;ID=100">Agenda</a></td>
	<td>Not&nbsp;available</td>
</tr>
<tr>
	<td><a href="/DepartmentDetail.aspx?ID=1">Board of Water Commissioners</a></td>
	<td>11/20/2024</td>
	<td><a href="javascript:void(0)">ics</a></td>
	<td>2:00 PM</td>
	<td>Online meeting</td>
	<td><a href="/MeetingDetail.aspx?ID=101">Meeting details</a></td>
	<td>Not&nbsp;available</td>
	<td>Not&nbsp;available</td>
</tr>
<tr><td colspan="8">No records to display.</td></tr>
</tbody>
</table>
</body></html>`

func TestParseCalendar(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(calendarFixture))
	require.NoError(t, err)

	client, err := NewClient("https://dwsd.legistar.com")
	require.NoError(t, err)

	events, err := client.parseCalendar(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, events, 2)

	expected := Event{
		Name:     "Board of Water Commissioners",
		Start:    time.Date(2024, 10, 16, 14, 0, 0, 0, time.UTC),
		Location: "Water Board Building, Board Room, 5th floor",
		Links: []htmlutil.Anchor{
			{Name: "Agenda", Href: "https://dwsd.legistar.com/View.ashx?M=A&ID=100"},
		},
		Source: "https://dwsd.legistar.com/MeetingDetail.aspx?ID=100",
	}
	if diff := cmp.Diff(expected, events[0]); diff != "" {
		t.Fatal(diff)
	}

	second := events[1]
	require.Equal(t, "Online meeting", second.Location)
	require.Empty(t, second.Links)
}

func TestParseCalendarNoGrid(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body></body></html>"))
	require.NoError(t, err)

	client, err := NewClient("https://dwsd.legistar.com")
	require.NoError(t, err)

	_, err = client.parseCalendar(context.Background(), doc)
	require.Error(t, err)
}
