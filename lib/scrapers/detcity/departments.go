package detcity

import (
	"regexp"
	"strings"

	"city-scrapers-det/lib/meeting"
	"city-scrapers-det/lib/scraper"
)

var districtTitleRegex = regexp.MustCompile(`(?i)Coffee|Recess|District \d{1,2}`)

var departments = []Department{
	{
		Name:       "det_city_council",
		AgencyName: "Detroit City Council",
		CalendarID: "296",
		Classify: func(title string) meeting.Classification {
			if strings.Contains(title, "Committee") {
				return meeting.Committee
			}
			if strings.Contains(strings.ToLower(title), "forum") {
				return meeting.Forum
			}
			return meeting.CityCouncil
		},
		Keep: func(m meeting.Meeting, tags []string) bool {
			// budget priorities meetings are kept even when tagged by
			// district
			if strings.Contains(strings.ToLower(m.Title), "budget") {
				return true
			}
			for _, tag := range tags {
				if strings.Contains(tag, "District") {
					return false
				}
			}
			return !districtTitleRegex.MatchString(m.Title)
		},
	},
	{
		Name:       "det_board_ethics",
		AgencyName: "Detroit Board of Ethics",
		CalendarID: "1356",
		Classify: func(string) meeting.Classification {
			return meeting.Board
		},
		RewriteTitle: func(title string) string {
			if strings.Contains(strings.ToLower(title), "board") {
				return "Board of Ethics"
			}
			return title
		},
	},
	{
		Name:       "det_entertainment_commission",
		AgencyName: "Detroit Entertainment Commission",
		CalendarID: "1616",
		Classify: func(string) meeting.Classification {
			return meeting.Commission
		},
		RewriteTitle: func(title string) string {
			if strings.Contains(strings.ToLower(title), "commission") {
				return "Entertainment Commission"
			}
			return title
		},
	},
	{
		Name:       "det_emergency_planning",
		AgencyName: "Detroit Local Emergency Planning Committee",
		CalendarID: "116",
		Classify: func(string) meeting.Classification {
			return meeting.Advisory
		},
		RewriteTitle: func(title string) string {
			if strings.Contains(strings.ToLower(title), "committee") {
				return "Local Emergency Planning Committee"
			}
			return title
		},
	},
}

func init() {
	for _, dept := range departments {
		scraper.Default.Register(New(dept))
	}
}
