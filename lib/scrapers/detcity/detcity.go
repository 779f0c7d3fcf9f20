// Package detcity scrapes meetings published on detroitmi.gov, which
// hosts the calendars for most City of Detroit departments and boards.
// Each agency is a filter over the same shared events calendar, so one
// scraper type covers all of them: a listing request per agency
// discovers event page urls, and every event page is parsed the same
// way.
package detcity

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"city-scrapers-det/lib/htmlutil"
	"city-scrapers-det/lib/meeting"
	"city-scrapers-det/lib/restyutil"
	"city-scrapers-det/lib/textutil"
	"city-scrapers-det/lib/timezone"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("cityscrapers.lib.scrapers.detcity")

const baseURL = "https://detroitmi.gov"

// Department configures one detroitmi.gov agency scraper.
type Department struct {
	Name       string
	AgencyName string
	// CalendarID filters the shared events calendar down to this
	// agency.
	CalendarID string
	Classify   func(title string) meeting.Classification
	// RewriteTitle normalizes the noisy event page titles, e.g.
	// "Board of Ethics General Meeting" -> "Board of Ethics".
	RewriteTitle func(title string) string
	// Keep decides whether a parsed meeting should be emitted at all.
	// Nil keeps everything.
	Keep func(m meeting.Meeting, tags []string) bool
}

type Scraper struct {
	dept Department
	http *resty.Client
	now  func() time.Time
}

func New(dept Department) *Scraper {
	client := restyutil.NewScraperClient()
	client.SetBaseURL(baseURL)
	return &Scraper{
		dept: dept,
		http: client,
		now:  timezone.Now,
	}
}

func (s *Scraper) Name() string   { return s.dept.Name }
func (s *Scraper) Agency() string { return s.dept.AgencyName }

func (s *Scraper) Scrape(ctx context.Context) ([]meeting.Meeting, error) {
	ctx, span := tracer.Start(ctx, "detcity:Scrape")
	defer span.End()

	pages, err := s.eventPages(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch event listing")
		return nil, fmt.Errorf("%s: listing: %w", s.dept.Name, err)
	}

	meetings := []meeting.Meeting{}
	for _, page := range pages {
		m, tags, err := s.scrapeEventPage(ctx, page)
		if err != nil {
			span.RecordError(err)
			continue
		}
		if s.dept.Keep != nil && !s.dept.Keep(*m, tags) {
			continue
		}
		meetings = append(meetings, *m)
	}
	return meetings, nil
}

func (s *Scraper) eventPages(ctx context.Context) ([]string, error) {
	res, err := s.http.R().
		SetContext(ctx).
		SetQueryParam("field_department_target_id", s.dept.CalendarID).
		Get("/events")
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, err
	}
	return parseEventListing(ctx, doc)
}

func parseEventListing(ctx context.Context, doc *goquery.Document) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	pages := []string{}
	for _, anchor := range htmlutil.GetAnchors(ctx, base, doc.Find(".view-events a, .views-row a")) {
		if !strings.Contains(anchor.Href, "/events/") {
			continue
		}
		if seen[anchor.Href] {
			continue
		}
		seen[anchor.Href] = true
		pages = append(pages, anchor.Href)
	}
	return pages, nil
}

func (s *Scraper) scrapeEventPage(ctx context.Context, link string) (*meeting.Meeting, []string, error) {
	res, err := s.http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		return nil, nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, nil, err
	}
	return s.parseEventPage(ctx, doc, link)
}

var titleDateSuffix = regexp.MustCompile(`(?i)\s*[-–]\s*[a-z]{3,10}\.?\s+\d{1,2},?\s+\d{4}$`)

func (s *Scraper) parseEventPage(ctx context.Context, doc *goquery.Document, source string) (*meeting.Meeting, []string, error) {
	title := textutil.CleanWhitespace(doc.Find("h1").First().Text())
	title = titleDateSuffix.ReplaceAllString(title, "")
	if title == "" {
		return nil, nil, fmt.Errorf("event page has no title: %s", source)
	}
	if s.dept.RewriteTitle != nil {
		title = s.dept.RewriteTitle(title)
	}

	start, end, err := parseEventTimes(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", source, err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, nil, err
	}
	links := []meeting.Link{}
	for _, anchor := range htmlutil.GetAnchors(ctx, base, doc.Find(".file a, .field--name-field-documents a")) {
		links = append(links, meeting.Link{Href: anchor.Href, Title: anchor.Name})
	}

	tags := []string{}
	doc.Find("article.tags a").Each(func(_ int, a *goquery.Selection) {
		tags = append(tags, textutil.CleanWhitespace(a.Text()))
	})

	m := meeting.Meeting{
		Title:          title,
		Description:    "",
		Classification: meeting.NotClassified,
		Start:          start,
		End:            end,
		AllDay:         false,
		TimeNotes:      "",
		Location:       parseEventLocation(doc),
		Links:          links,
		Source:         source,
	}
	if s.dept.Classify != nil {
		m.Classification = s.dept.Classify(title)
	}

	statusText := htmlutil.CleanText(doc.Find(".event-status, h1"))
	meeting.Finalize(s.dept.Name, &m, statusText, s.now())
	return &m, tags, nil
}

// parseEventTimes reads the <time datetime="..."> elements of the
// event page. The first one is the start, a second one (when present)
// is the end. Values carry the site's zone offset but meetings are
// kept as wall clock values.
func parseEventTimes(doc *goquery.Document) (time.Time, *time.Time, error) {
	stamps := []time.Time{}
	doc.Find("time[datetime]").Each(func(_ int, node *goquery.Selection) {
		raw := node.AttrOr("datetime", "")
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return
		}
		stamps = append(stamps, time.Date(
			t.Year(), t.Month(), t.Day(),
			t.Hour(), t.Minute(), 0, 0, time.UTC,
		))
	})
	if len(stamps) == 0 {
		return time.Time{}, nil, fmt.Errorf("event page has no start time")
	}
	if len(stamps) > 1 && stamps[1].After(stamps[0]) {
		return stamps[0], &stamps[1], nil
	}
	return stamps[0], nil, nil
}

func parseEventLocation(doc *goquery.Document) meeting.Location {
	name := textutil.CleanWhitespace(doc.Find(".event-location .organization, .address .organization").First().Text())
	address := textutil.CleanWhitespace(doc.Find(".event-location .address-line1, .address .address-line1").First().Text())
	rest := textutil.CleanWhitespace(doc.Find(".event-location .locality, .address .locality").First().Text())
	state := textutil.CleanWhitespace(doc.Find(".event-location .administrative-area, .address .administrative-area").First().Text())
	zip := textutil.CleanWhitespace(doc.Find(".event-location .postal-code, .address .postal-code").First().Text())

	full := address
	if rest != "" {
		full = textutil.CleanWhitespace(fmt.Sprintf("%s, %s %s %s", address, rest, state, zip))
	}
	return meeting.Location{Name: name, Address: full}
}
