package textutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"Board of Ethics", "board_of_ethics"},
		{"  Ways & Means Committee ", "ways__means_committee"},
		{"Community Advisory Committee", "community_advisory_committee"},
		{"DBRA-CAC", "dbra-cac"},
	}
	for _, test := range cases {
		require.Equal(t, test.expected, Slug(test.in))
	}
}

func TestCleanWhitespace(t *testing.T) {
	require.Equal(
		t,
		"Board of Directors March 4, 2021",
		CleanWhitespace("  Board of\n\tDirectors   March 4, 2021\n"),
	)
}

func TestFindDate(t *testing.T) {
	cases := []struct {
		text     string
		expected time.Time
		ok       bool
	}{
		{
			text:     "DDA Board Meeting Agenda March 4, 2021 (amended)",
			expected: time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC),
			ok:       true,
		},
		{
			text:     "Minutes Sep. 13 2022",
			expected: time.Date(2022, 9, 13, 0, 0, 0, 0, time.UTC),
			ok:       true,
		},
		{
			text:     "Public Notice 10-18-21",
			expected: time.Date(2021, 10, 18, 0, 0, 0, 0, time.UTC),
			ok:       true,
		},
		{
			text:     "Agenda 1/6/2022",
			expected: time.Date(2022, 1, 6, 0, 0, 0, 0, time.UTC),
			ok:       true,
		},
		{text: "Board Meeting Agenda", ok: false},
	}
	for _, test := range cases {
		got, ok := FindDate(test.text)
		require.Equal(t, test.ok, ok, test.text)
		if ok {
			require.Equal(t, test.expected, got, test.text)
		}
	}
}

func TestFindClockTime(t *testing.T) {
	cases := []struct {
		text         string
		hour, minute int
		ok           bool
	}{
		{"meets at 2:00 p.m. in room 700A", 14, 0, true},
		{"10:30AM", 10, 30, true},
		{"starts 12:15 pm", 12, 15, true},
		{"noon-ish 12 a.m.", 0, 0, true},
		{"5 p. m.", 17, 0, true},
		{"no time here", 0, 0, false},
	}
	for _, test := range cases {
		hour, minute, ok := FindClockTime(test.text)
		require.Equal(t, test.ok, ok, test.text)
		if ok {
			require.Equal(t, test.hour, hour, test.text)
			require.Equal(t, test.minute, minute, test.text)
		}
	}
}
