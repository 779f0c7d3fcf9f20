// Package retirement scrapes the Retirement Systems of the City of
// Detroit boards hosted on rscd.org. Each body keeps two plain pages:
// a past meetings page whose table maps dates to agenda and minutes
// documents, and an upcoming meetings page with one table row per
// scheduled meeting. The two are joined on the meeting date.
package retirement

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
	"city-scrapers-det/lib/scraper"
	"city-scrapers-det/lib/textutil"
	"city-scrapers-det/lib/timezone"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("cityscrapers.lib.scrapers.retirement")

const locationMarker = "500 woodward ave"

var defaultLocation = meeting.Location{
	Name:    "Retirement Systems",
	Address: "500 Woodward Ave. Suite 300 Detroit, MI 48226",
}

// System configures one retirement body.
type System struct {
	Name       string
	AgencyName string
	// PastURL is the past meeting documents page. The upcoming
	// meetings page lives next to it as upcoming_meetings.php.
	PastURL string
}

type Scraper struct {
	system System
	http   *resty.Client
	now    func() time.Time
}

func New(system System) *Scraper {
	return &Scraper{
		system: system,
		http:   restyutil.NewScraperClient(),
		now:    timezone.Now,
	}
}

func (s *Scraper) Name() string   { return s.system.Name }
func (s *Scraper) Agency() string { return s.system.AgencyName }

var phpPageRegex = regexp.MustCompile(`[^./]*\.php$`)

func (s *Scraper) Scrape(ctx context.Context) ([]meeting.Meeting, error) {
	ctx, span := tracer.Start(ctx, "retirement:Scrape")
	defer span.End()

	pastDoc, err := s.fetchDocument(ctx, s.system.PastURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch past documents")
		return nil, fmt.Errorf("%s: past documents: %w", s.system.Name, err)
	}
	docMap, err := parsePastDocuments(pastDoc, s.system.PastURL)
	if err != nil {
		return nil, fmt.Errorf("%s: past documents: %w", s.system.Name, err)
	}

	upcomingURL := phpPageRegex.ReplaceAllString(s.system.PastURL, "upcoming_meetings.php")
	upcomingDoc, err := s.fetchDocument(ctx, upcomingURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch upcoming meetings")
		return nil, fmt.Errorf("%s: upcoming meetings: %w", s.system.Name, err)
	}
	meetings, err := s.parseMeetings(upcomingDoc, upcomingURL, docMap)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.system.Name, err)
	}
	return meetings, nil
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

// parsePastDocuments builds the date to document links map from the
// past meetings table.
func parsePastDocuments(doc *goquery.Document, pageURL string) (map[time.Time][]meeting.Link, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}
	docMap := map[time.Time][]meeting.Link{}
	doc.Find("#post tr").Each(func(_ int, row *goquery.Selection) {
		dateStr := strings.Fields(strings.TrimSpace(row.Find("td").First().Text()))
		if len(dateStr) == 0 {
			return
		}
		date, err := time.Parse("1/2/06", dateStr[0])
		if err != nil {
			return
		}
		var links []meeting.Link
		row.Find(`a[href]:not([aria-hidden="true"])`).Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			if ref, err := url.Parse(href); err == nil {
				href = base.ResolveReference(ref).String()
			}
			links = append(links, meeting.Link{
				Href:  href,
				Title: strings.TrimSpace(a.Text()),
			})
		})
		docMap[date] = links
	})
	return docMap, nil
}

func (s *Scraper) parseMeetings(doc *goquery.Document, pageURL string, docMap map[time.Time][]meeting.Link) ([]meeting.Meeting, error) {
	description := textutil.CleanWhitespace(doc.Find("#post p").First().Text())
	if err := scraper.ValidateLocation(description, locationMarker); err != nil {
		return nil, err
	}

	baseTitle, classification := bodyFromURL(pageURL)

	var meetings []meeting.Meeting
	var defaultClock time.Duration
	haveClock := false
	doc.Find("#post table tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		start, ok := parseRowStart(row)
		if !ok {
			return
		}
		if !haveClock {
			defaultClock = clockOf(start)
			haveClock = true
		}

		title := baseTitle
		firstCell := strings.ToLower(row.Find("td").First().Text())
		if strings.Contains(firstCell, "special") {
			title += ": Special Meeting"
		}

		m := meeting.Meeting{
			Title:          title,
			Classification: classification,
			Start:          start,
			Location:       parseRowLocation(row),
			Links:          docMap[dateOf(start)],
			Source:         pageURL,
		}
		delete(docMap, dateOf(start))
		meeting.Finalize(s.system.Name, &m, textutil.CleanWhitespace(row.Text()), s.now())
		meetings = append(meetings, m)
	})

	// Leftover document rows are past meetings that fell off the
	// upcoming table. They inherit the schedule's usual start time.
	for docDate, links := range docMap {
		m := meeting.Meeting{
			Title:          baseTitle,
			Classification: classification,
			Start:          docDate.Add(defaultClock),
			Location:       defaultLocation,
			Links:          links,
			Source:         pageURL,
		}
		meeting.Finalize(s.system.Name, &m, "", s.now())
		meetings = append(meetings, m)
	}
	return meetings, nil
}

func bodyFromURL(pageURL string) (string, meeting.Classification) {
	if strings.Contains(pageURL, "board_of_trustees") {
		return "Board of Trustees", meeting.Board
	}
	return "Investment Committee", meeting.Committee
}

var parentheticalRegex = regexp.MustCompile(`\(.+\)`)
var cancelWordRegex = regexp.MustCompile(`(?i)cancel[a-z]+`)

// parseRowStart reads the date from the row's first cell and the time
// from its second. A cancelled meeting keeps its date with a midnight
// placeholder time.
func parseRowStart(row *goquery.Selection) (time.Time, bool) {
	dateText := parentheticalRegex.ReplaceAllString(row.Find("td").First().Text(), "")
	dateText = cancelWordRegex.ReplaceAllString(dateText, "")
	date, ok := textutil.FindLongDate(dateText)
	if !ok {
		return time.Time{}, false
	}

	timeText := strings.ReplaceAll(row.Find("td:nth-child(2)").Text(), "Noon", "12:00 PM")
	if cancelWordRegex.MatchString(timeText) {
		return date, true
	}
	hour, minute, ok := textutil.FindClockTime(timeText)
	if !ok {
		return date, true
	}
	return date.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute), true
}

// parseRowLocation appends the room from the row's last cell to the
// shared office location.
func parseRowLocation(row *goquery.Selection) meeting.Location {
	location := defaultLocation
	room := textutil.CleanWhitespace(row.Find("td").Last().Text())
	if room != "" && !strings.EqualFold(room, location.Name) {
		location.Name = location.Name + " " + titleWords(room)
	}
	return location
}

func titleWords(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func clockOf(t time.Time) time.Duration {
	return t.Sub(dateOf(t))
}

var systems = []System{
	{
		Name:       "det_police_fire_retirement",
		AgencyName: "Detroit Police & Fire Retirement System",
		PastURL:    "https://www.rscd.org/member_resources/board_of_trustees/past_meeting_documents.php",
	},
	{
		Name:       "det_general_retirement",
		AgencyName: "Detroit General Retirement System",
		PastURL:    "https://www.rscd.org/member_resources/general_retirement_system/board_of_trustees/past_meeting_documents.php",
	},
}

func init() {
	for _, system := range systems {
		scraper.Default.Register(New(system))
	}
}
