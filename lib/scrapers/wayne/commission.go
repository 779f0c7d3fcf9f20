// Package wayne scrapes Wayne County government bodies. The county
// commission and its committees publish through an Oracle CX calendar
// API on waynecountymi.gov, while the election commission keeps a
// plain schedule table on the older waynecounty.com clerk site.
package wayne

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"city-scrapers-det/lib/meeting"
	"city-scrapers-det/lib/restyutil"
	"city-scrapers-det/lib/scraper"
	"city-scrapers-det/lib/timezone"

	"github.com/PuerkitoBio/goquery"
	"github.com/antzucaro/matchr"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("cityscrapers.lib.scrapers.wayne")

const (
	countyBase       = "https://www.waynecountymi.gov"
	calendarPageURL  = countyBase + "/Government/County-Calendar"
	calendarItemsURL = countyBase + "/ocapi/calendars/getcalendaritems"
	contentInfoURL   = countyBase + "/ocapi/get/contentinfo"
)

// committeeNames are the calendar filter labels for the bodies the
// commission scraper tracks.
var committeeNames = []string{
	"Ways & Means",
	"Audit",
	"Building Authority",
	"Committee of the Whole",
	"Full Commission",
	"Economic Development",
	"Government Operations",
	"Health and Human Services",
	"Public Safety",
	"Public Services",
	"Election Commission",
	"Local Emergency Planning",
	"Ethics Board",
}

type Commission struct {
	http *resty.Client
	now  func() time.Time
}

func NewCommission() *Commission {
	return &Commission{
		http: restyutil.NewScraperClient(),
		now:  timezone.Now,
	}
}

func (c *Commission) Name() string   { return "wayne_commission" }
func (c *Commission) Agency() string { return "Wayne County Commission" }

func (c *Commission) Scrape(ctx context.Context) ([]meeting.Meeting, error) {
	ctx, span := tracer.Start(ctx, "wayne:Commission.Scrape")
	defer span.End()

	ids, err := c.filterIDs(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to discover calendar filters")
		return nil, fmt.Errorf("wayne_commission: filters: %w", err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("wayne_commission: no calendar filters matched")
	}

	items, err := c.calendarItems(ctx, ids)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list calendar items")
		return nil, fmt.Errorf("wayne_commission: calendar items: %w", err)
	}

	meetings := []meeting.Meeting{}
	for _, item := range items {
		m, err := c.scrapeItem(ctx, item)
		if err != nil {
			// Individual detail pages disappear or change shape; one
			// bad page should not sink the whole run.
			slog.WarnContext(ctx, "skipping wayne commission item",
				"date", item.DateTime, "err", err)
			continue
		}
		if m != nil {
			meetings = append(meetings, *m)
		}
	}
	return meetings, nil
}

// filterIDs loads the county calendar page and returns the filter
// option ids whose labels match one of the tracked bodies. Labels are
// compared loosely since the site occasionally renames filters with
// small typos.
func (c *Commission) filterIDs(ctx context.Context) ([]string, error) {
	doc, err := c.fetchDocument(ctx, calendarPageURL)
	if err != nil {
		return nil, err
	}
	return parseFilterIDs(doc), nil
}

func parseFilterIDs(doc *goquery.Document) []string {
	var ids []string
	doc.Find(".calendar-filter-list-item").Each(func(_ int, sel *goquery.Selection) {
		label := strings.TrimSpace(sel.Find("label .calendar-filter-list-item-text").Text())
		id, ok := sel.Attr("data-filter-option-id")
		if !ok || label == "" {
			return
		}
		if matchesCommittee(label) {
			ids = append(ids, id)
		}
	})
	return ids
}

func matchesCommittee(label string) bool {
	for _, name := range committeeNames {
		if strings.Contains(label, name) {
			return true
		}
		if matchr.DamerauLevenshtein(strings.ToLower(label), strings.ToLower(name)) <= 2 {
			return true
		}
	}
	return false
}

type calendarItemsRequest struct {
	LanguageCode string   `json:"LanguageCode"`
	Ids          []string `json:"Ids"`
	StartDate    string   `json:"StartDate"`
	EndDate      string   `json:"EndDate"`
}

type calendarItem struct {
	ID            int64  `json:"Id"`
	CalendarID    int64  `json:"CalendarId"`
	MainContentID int64  `json:"MainContentId"`
	DateTime      string `json:"DateTime"`
}

type calendarItemsResponse struct {
	Data []struct {
		Items []calendarItem `json:"Items"`
	} `json:"data"`
}

// calendarItems asks the calendar API for everything matching the
// filter ids across last year and this year.
func (c *Commission) calendarItems(ctx context.Context, ids []string) ([]calendarItem, error) {
	year := c.now().Year()
	var items []calendarItem
	for y := year - 1; y <= year; y++ {
		var body calendarItemsResponse
		res, err := c.http.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json; charset=UTF-8").
			SetHeader("X-Requested-With", "XMLHttpRequest").
			SetBody(calendarItemsRequest{
				LanguageCode: "en-US",
				Ids:          ids,
				StartDate:    fmt.Sprintf("%d-01-01", y),
				EndDate:      fmt.Sprintf("%d-12-31", y),
			}).
			SetResult(&body).
			Post(calendarItemsURL)
		if err != nil {
			return nil, err
		}
		if res.StatusCode() != 200 {
			return nil, fmt.Errorf("calendar items for %d: status %d", y, res.StatusCode())
		}
		for _, group := range body.Data {
			items = append(items, group.Items...)
		}
	}
	return items, nil
}

type contentInfoResponse struct {
	Data struct {
		Link        string `json:"Link"`
		IsCancelled bool   `json:"IsCancelled"`
	} `json:"data"`
}

func (c *Commission) scrapeItem(ctx context.Context, item calendarItem) (*meeting.Meeting, error) {
	var info contentInfoResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Requested-With", "XMLHttpRequest").
		SetQueryParams(map[string]string{
			"calendarId":      fmt.Sprint(item.CalendarID),
			"contentId":       fmt.Sprint(item.ID),
			"language":        "en-US",
			"currentDateTime": c.now().Format("01/02/2006 03:04:05 PM"),
			"mainContentId":   fmt.Sprint(item.MainContentID),
		}).
		SetResult(&info).
		Get(contentInfoURL)
	if err != nil {
		return nil, err
	}
	if res.StatusCode() != 200 {
		return nil, fmt.Errorf("content info: status %d", res.StatusCode())
	}
	if info.Data.Link == "" {
		return nil, nil
	}

	link := info.Data.Link
	if !strings.HasPrefix(link, "http") {
		link = countyBase + link
	}
	doc, err := c.fetchDocument(ctx, link)
	if err != nil {
		return nil, err
	}
	return c.parseDetail(doc, link, info.Data.IsCancelled)
}

func (c *Commission) fetchDocument(ctx context.Context, link string) (*goquery.Document, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
}

var smallTextDateRegex = regexp.MustCompile(`\b\w+ \d{1,2}, \d{4}, \d{1,2}:\d{2} [AP]M\b`)

// parseDetail handles the two detail page layouts the county uses:
// structured meeting pages with a minutes-details-list, and plain
// calendar event pages where the date only shows up in a .small-text
// blurb.
func (c *Commission) parseDetail(doc *goquery.Document, source string, cancelled bool) (*meeting.Meeting, error) {
	title := strings.TrimSpace(doc.Find("h1.oc-page-title").First().Text())

	m := meeting.Meeting{
		Title:    title,
		Source:   source,
		Location: meeting.Location{},
	}

	dateText := strings.TrimSpace(
		doc.Find("ul.content-details-list.minutes-details-list span.minutes-date").First().Text())
	if dateText != "" {
		meetingType := strings.TrimSpace(doc.Find(
			"ul.content-details-list.minutes-details-list li:nth-child(2) span.field-value").First().Text())
		m.Description = strings.TrimSpace(doc.Find("div.meeting-container > p").First().Text())
		m.Classification = classify(meetingType)

		start, end, err := parseMeetingTime(dateText, doc.Find("div.meeting-time").First().Text())
		if err != nil {
			return nil, err
		}
		m.Start = start
		m.End = end

		locText := strings.TrimSpace(doc.Find("div.meeting-address > p:last-of-type").First().Text())
		m.Location = splitLocation(locText, ",")
		m.Links = parseDetailLinks(doc)
	} else {
		smallText := doc.Find(".small-text").First().Text()
		dateMatch := smallTextDateRegex.FindString(smallText)
		if dateMatch == "" {
			return nil, fmt.Errorf("no meeting date on %s", source)
		}
		start, err := time.Parse("January 2, 2006, 3:04 PM", dateMatch)
		if err != nil {
			return nil, err
		}
		m.Start = start
		m.Description = strings.TrimSpace(doc.Find(".col-m-8 .body-content").First().Text())
		m.Location = splitLocation(doc.Find(".side-box-section p:nth-child(5)").First().Text(), "\n")
		m.Links = parseDetailLinks(doc)
		m.Classification = classify(title)
	}

	if m.End != nil && m.End.Sub(m.Start) >= 24*time.Hour {
		m.AllDay = true
	}

	statusText := ""
	if cancelled {
		statusText = "cancelled"
	}
	meeting.Finalize(c.Name(), &m, statusText, c.now())
	return &m, nil
}

// parseMeetingTime combines the page's date line with its
// "start - end" time widget.
func parseMeetingTime(date, timeWidget string) (time.Time, *time.Time, error) {
	timeText := strings.NewReplacer(
		"Time", "",
		"Add to Calendar", "",
		"\n", "",
	).Replace(timeWidget)
	parts := strings.SplitN(strings.TrimSpace(timeText), " - ", 2)
	if len(parts) != 2 {
		return time.Time{}, nil, fmt.Errorf("unexpected meeting time %q", timeText)
	}
	start, err := time.Parse("January 2, 2006 3:04 PM", date+" "+strings.TrimSpace(parts[0]))
	if err != nil {
		return time.Time{}, nil, err
	}
	end, err := time.Parse("January 2, 2006 3:04 PM", date+" "+strings.TrimSpace(parts[1]))
	if err != nil {
		return time.Time{}, nil, err
	}
	return start, &end, nil
}

func splitLocation(text, sep string) meeting.Location {
	parts := strings.SplitN(strings.TrimSpace(text), sep, 2)
	loc := meeting.Location{Name: strings.TrimSpace(parts[0])}
	if len(parts) > 1 {
		addr := strings.TrimSpace(parts[1])
		if sep == "\n" {
			addr = strings.Join(strings.Fields(addr), " ")
		}
		loc.Address = addr
	}
	return loc
}

// parseDetailLinks collects agenda and minutes documents plus related
// information links, skipping the YouTube stream.
func parseDetailLinks(doc *goquery.Document) []meeting.Link {
	var links []meeting.Link
	add := func(title, href string) {
		if href == "" || strings.Contains(href, "youtu") {
			return
		}
		if !strings.Contains(href, "http") {
			href = countyBase + href
		}
		links = append(links, meeting.Link{Href: href, Title: strings.TrimSpace(title)})
	}
	doc.Find(".meeting-document").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Find("a").First().Attr("href")
		if !ok {
			return
		}
		add(sel.Find(".meeting-document-title").First().Text(), href)
	})
	doc.Find(".related-information-section a, .related-information-list a").Each(
		func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			add(sel.Text(), href)
		})
	return links
}

// classificationRules maps meeting type keywords to classifications,
// checked in order so "committee of the whole" never falls through to
// the council bucket.
var classificationRules = []struct {
	keyword string
	class   meeting.Classification
}{
	{"committee", meeting.Committee},
	{"board", meeting.Board},
	{"commission", meeting.Commission},
	{"public meeting", meeting.Forum},
	{"community", meeting.Forum},
	{"advisory", meeting.Advisory},
	{"council", meeting.CityCouncil},
}

func classify(text string) meeting.Classification {
	lowered := strings.ToLower(text)
	for _, rule := range classificationRules {
		if strings.Contains(lowered, rule.keyword) {
			return rule.class
		}
	}
	return meeting.NotClassified
}

func init() {
	scraper.Default.Register(NewCommission())
	scraper.Default.Register(NewElection())
}
