// Package degc scrapes the boards hosted by the Detroit Economic
// Growth Corporation. All of them share the degc.org public
// authorities page for upcoming meetings (embedded JSON-LD events,
// filtered by which site tab the event belongs to) and a per-authority
// page whose tabs hold dated agenda/minutes links for past meetings.
package degc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"city-scrapers-det/lib/htmlutil"
	"city-scrapers-det/lib/meeting"
	"city-scrapers-det/lib/restyutil"
	"city-scrapers-det/lib/scraper"
	"city-scrapers-det/lib/textutil"
	"city-scrapers-det/lib/timezone"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("cityscrapers.lib.scrapers.degc")

const listingURL = "https://www.degc.org/public-authorities/"
const locationMarker = "500 Griswold"

var defaultLocation = meeting.Location{
	Name:    "DEGC, Guardian Building",
	Address: "500 Griswold St, Suite 2200, Detroit, MI 48226",
}

// Authority configures one DEGC board scraper.
type Authority struct {
	Name       string
	AgencyName string
	// AgencyURL is the per-authority page with past meeting tabs.
	AgencyURL string
	// TabTitle identifies the authority's events in the event urls on
	// the shared listing page, e.g. "DDA".
	TabTitle string
	// TitleFromLinks derives a meeting title from the joined titles of
	// its document links. Nil means every meeting is "Board of
	// Directors".
	TitleFromLinks func(linkText string) string
	// SkipLocationCheck disables the Guardian Building guard for
	// authorities that meet elsewhere.
	SkipLocationCheck bool
	// CleanLinkTitle post-processes document link titles.
	CleanLinkTitle func(title string) string
}

const defaultTitle = "Board of Directors"

type Scraper struct {
	authority Authority
	http      *resty.Client
	now       func() time.Time
}

func New(authority Authority) *Scraper {
	return &Scraper{
		authority: authority,
		http:      restyutil.NewScraperClient(),
		now:       timezone.Now,
	}
}

func (s *Scraper) Name() string   { return s.authority.Name }
func (s *Scraper) Agency() string { return s.authority.AgencyName }

func (s *Scraper) Scrape(ctx context.Context) ([]meeting.Meeting, error) {
	ctx, span := tracer.Start(ctx, "degc:Scrape")
	defer span.End()

	upcoming, err := s.scrapeUpcoming(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to scrape upcoming meetings")
		return nil, fmt.Errorf("%s: upcoming: %w", s.authority.Name, err)
	}

	previous, err := s.scrapePrevious(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to scrape previous meetings")
		return nil, fmt.Errorf("%s: previous: %w", s.authority.Name, err)
	}

	return append(upcoming, previous...), nil
}

func (s *Scraper) fetchDocument(ctx context.Context, link string) (*goquery.Document, error) {
	res, err := s.http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
}

func (s *Scraper) scrapeUpcoming(ctx context.Context) ([]meeting.Meeting, error) {
	doc, err := s.fetchDocument(ctx, listingURL)
	if err != nil {
		return nil, err
	}
	return s.parseUpcoming(ctx, doc)
}

func (s *Scraper) parseUpcoming(ctx context.Context, doc *goquery.Document) ([]meeting.Meeting, error) {
	if !s.authority.SkipLocationCheck {
		pageText := htmlutil.CleanText(doc.Find(".et_pb_text_inner"))
		err := scraper.ValidateLocation(pageText, locationMarker)
		if err != nil {
			return nil, err
		}
	}

	events, err := parseEventScript(doc)
	if err != nil {
		return nil, err
	}

	meetings := []meeting.Meeting{}
	for _, event := range events {
		if !strings.Contains(strings.ToLower(event.URL), strings.ToLower(s.authority.TabTitle)) {
			continue
		}
		start, err := parseEventStart(event.StartDate)
		if err != nil {
			continue
		}

		m := s.defaults(listingURL)
		m.Start = start
		m.Links = eventLinks(event)
		meeting.Finalize(s.authority.Name, &m, event.Name, s.now())
		meetings = append(meetings, m)
	}
	return meetings, nil
}

func (s *Scraper) scrapePrevious(ctx context.Context) ([]meeting.Meeting, error) {
	doc, err := s.fetchDocument(ctx, s.authority.AgencyURL)
	if err != nil {
		return nil, err
	}
	return s.parsePrevious(ctx, doc)
}

func (s *Scraper) parsePrevious(ctx context.Context, doc *goquery.Document) ([]meeting.Meeting, error) {
	base, err := url.Parse(s.authority.AgencyURL)
	if err != nil {
		return nil, err
	}

	linkMap := s.parseDatedLinks(ctx, base, doc.Find(".et_pb_tab_content a"))

	meetings := []meeting.Meeting{}
	for start, links := range linkMap {
		linkText := []string{}
		for _, link := range links {
			linkText = append(linkText, link.Title)
		}
		joined := strings.Join(linkText, " ")

		m := s.defaults(s.authority.AgencyURL)
		m.Start = start
		m.Links = links
		m.Title = s.titleFor(joined)
		meeting.Finalize(s.authority.Name, &m, joined, s.now())
		meetings = append(meetings, m)
	}
	return meetings, nil
}

var linkDateRegex = regexp.MustCompile(`(?i)[a-z]{3,10}\.?\s+\d{1,2},?\s+\d{4}`)

// parseDatedLinks groups document anchors by the date found in their
// text, stripping the date out of the kept link title.
func (s *Scraper) parseDatedLinks(ctx context.Context, base *url.URL, sel *goquery.Selection) map[time.Time][]meeting.Link {
	linkMap := map[time.Time][]meeting.Link{}
	for _, anchor := range htmlutil.GetAnchors(ctx, base, sel) {
		date, ok := textutil.FindLongDate(anchor.Name)
		if !ok {
			continue
		}
		title := textutil.CleanWhitespace(linkDateRegex.ReplaceAllString(anchor.Name, ""))
		if s.authority.CleanLinkTitle != nil {
			title = s.authority.CleanLinkTitle(title)
		}
		linkMap[date] = append(linkMap[date], meeting.Link{
			Href:  anchor.Href,
			Title: title,
		})
	}
	return linkMap
}

func (s *Scraper) titleFor(linkText string) string {
	if s.authority.TitleFromLinks != nil {
		return s.authority.TitleFromLinks(linkText)
	}
	return defaultTitle
}

func (s *Scraper) defaults(source string) meeting.Meeting {
	return meeting.Meeting{
		Title:          defaultTitle,
		Description:    "",
		Classification: meeting.Board,
		TimeNotes:      "See source to confirm meeting time",
		AllDay:         false,
		Location:       defaultLocation,
		Links:          []meeting.Link{},
		Source:         source,
	}
}

type ldEvent struct {
	Type        string `json:"@type"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	StartDate   string `json:"startDate"`
	Description string `json:"description"`
	Location    struct {
		URL string `json:"url"`
	} `json:"location"`
}

// parseEventScript pulls the JSON-LD event array out of the listing
// page's script tags.
func parseEventScript(doc *goquery.Document) ([]ldEvent, error) {
	var raw string
	doc.Find("script").EachWithBreak(func(_ int, script *goquery.Selection) bool {
		text := script.Text()
		if strings.Contains(text, `"@type":"Event"`) {
			raw = text
			return false
		}
		return true
	})
	if raw == "" {
		return nil, fmt.Errorf("no event script found on listing page")
	}

	var events []ldEvent
	err := json.Unmarshal([]byte(raw), &events)
	if err != nil {
		return nil, fmt.Errorf("decode event script: %w", err)
	}
	return events, nil
}

// parseEventStart parses the JSON-LD startDate, dropping any zone
// offset: meeting times are wall clock values in Detroit.
func parseEventStart(s string) (time.Time, error) {
	for _, layout := range []string{
		"2006-01-02T15:04:05-07:00",
		"2006-01-02T15:04:05",
		"2006-01-02",
	} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Date(
				t.Year(), t.Month(), t.Day(),
				t.Hour(), t.Minute(), 0, 0, time.UTC,
			), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized start date: %q", s)
}

// eventLinks collects the event page link, a zoom link when the
// description carries one, and the location url.
func eventLinks(event ldEvent) []meeting.Link {
	links := []meeting.Link{{Href: event.URL, Title: ""}}
	if event.Description != "" {
		words := strings.Fields(event.Description)
		if len(words) > 3 && strings.HasPrefix(words[3], "http") {
			links = append(links, meeting.Link{Href: words[3], Title: "Zoom Meeting"})
		}
	}
	if event.Location.URL != "" {
		links = append(links, meeting.Link{Href: event.Location.URL, Title: ""})
	}
	return links
}
