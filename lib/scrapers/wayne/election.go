package wayne

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"city-scrapers-det/lib/meeting"
	"city-scrapers-det/lib/restyutil"
	"city-scrapers-det/lib/textutil"
	"city-scrapers-det/lib/timezone"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

const electionURL = "https://www.waynecounty.com/elected/clerk/election-commission.aspx"

var electionLocation = meeting.Location{
	Name:    "Coleman A. Young Municipal Center, Conference Room 700A",
	Address: "2 Woodward Ave, Detroit, MI 48226",
}

// Election scrapes the county clerk's election commission schedule, a
// set of per-year tables with one row per meeting and document links
// in the trailing cells.
type Election struct {
	http *resty.Client
	now  func() time.Time
}

func NewElection() *Election {
	return &Election{
		http: restyutil.NewScraperClient(),
		now:  timezone.Now,
	}
}

func (e *Election) Name() string   { return "wayne_election_commission" }
func (e *Election) Agency() string { return "Wayne County Election Commission" }

func (e *Election) Scrape(ctx context.Context) ([]meeting.Meeting, error) {
	ctx, span := tracer.Start(ctx, "wayne:Election.Scrape")
	defer span.End()

	res, err := e.http.R().
		SetContext(ctx).
		Get(electionURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch schedule")
		return nil, fmt.Errorf("wayne_election_commission: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("wayne_election_commission: %w", err)
	}
	return e.parseSchedule(doc)
}

var yearRegex = regexp.MustCompile(`\d{4}`)
var electionDateRegex = regexp.MustCompile(`[A-Z][a-z]{2,9} \d\d?`)

func (e *Election) parseSchedule(doc *goquery.Document) ([]meeting.Meeting, error) {
	base, err := url.Parse(electionURL)
	if err != nil {
		return nil, err
	}

	meetings := []meeting.Meeting{}
	var yearStr string
	doc.Find("article table").Each(func(_ int, table *goquery.Selection) {
		// Tables without a year header inherit the previous one.
		if match := yearRegex.FindString(table.Find("th").Text()); match != "" {
			yearStr = match
		}
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() == 0 {
				return
			}
			start, ok := parseElectionStart(cells.First().Text(), yearStr)
			if !ok {
				return
			}
			m := meeting.Meeting{
				Title:          "Election Commission",
				Classification: meeting.Commission,
				Start:          start,
				Location:       electionLocation,
				Links:          parseElectionLinks(cells, base),
				Source:         electionURL,
			}
			meeting.Finalize(e.Name(), &m, cells.Text(), e.now())
			meetings = append(meetings, m)
		})
	})
	return meetings, nil
}

// parseElectionStart reads "Tuesday, June 11 at 10:00 a.m." style
// cells against the table's year header.
func parseElectionStart(cell, yearStr string) (time.Time, bool) {
	if yearStr == "" {
		return time.Time{}, false
	}
	dateMatch := electionDateRegex.FindString(cell)
	if dateMatch == "" {
		return time.Time{}, false
	}
	day, err := time.Parse("January 2 2006", dateMatch+" "+yearStr)
	if err != nil {
		if day, err = time.Parse("Jan 2 2006", dateMatch+" "+yearStr); err != nil {
			return time.Time{}, false
		}
	}
	if hour, minute, ok := textutil.FindClockTime(cell); ok {
		day = day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
	}
	return day, true
}

// parseElectionLinks builds documents from every cell after the date
// that carries a hyperlink.
func parseElectionLinks(cells *goquery.Selection, base *url.URL) []meeting.Link {
	var links []meeting.Link
	cells.Slice(1, cells.Length()).Each(func(_ int, cell *goquery.Selection) {
		href, ok := cell.Find("a").First().Attr("href")
		if !ok {
			return
		}
		resolved := href
		if ref, err := url.Parse(href); err == nil {
			resolved = base.ResolveReference(ref).String()
		}
		links = append(links, meeting.Link{
			Href:  resolved,
			Title: strings.TrimSpace(cell.Text()),
		})
	})
	return links
}
