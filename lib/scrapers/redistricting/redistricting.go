// Package redistricting scrapes the Michigan Independent Citizens
// Redistricting Commission pages on michigan.gov. The commission
// publishes a documents page grouped by meeting date and a schedule
// page where each paragraph starts with a date line followed by one
// detail line per session that day.
package redistricting

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

var tracer = otel.Tracer("cityscrapers.lib.scrapers.redistricting")

const (
	documentsURL = "https://www.michigan.gov/sos/0,4670,7-127-1633_91141-540204--,00.html"
	meetingsURL  = "https://www.michigan.gov/sos/0,4670,7-127-1633_91141-540541--,00.html"
)

// The commission met remotely through its first cycle.
var remoteLocation = meeting.Location{Name: "Remote"}

type Scraper struct {
	http *resty.Client
	now  func() time.Time
}

func New() *Scraper {
	return &Scraper{
		http: restyutil.NewScraperClient(),
		now:  timezone.Now,
	}
}

func (s *Scraper) Name() string { return "mi_redistricting_commission" }
func (s *Scraper) Agency() string {
	return "Michigan Independent Citizens Redistricting Commission"
}

func (s *Scraper) Scrape(ctx context.Context) ([]meeting.Meeting, error) {
	ctx, span := tracer.Start(ctx, "redistricting:Scrape")
	defer span.End()

	docsDoc, err := s.fetchDocument(ctx, documentsURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch documents page")
		return nil, fmt.Errorf("mi_redistricting_commission: documents: %w", err)
	}
	docMap, err := parseDocuments(docsDoc, documentsURL)
	if err != nil {
		return nil, fmt.Errorf("mi_redistricting_commission: documents: %w", err)
	}

	meetingsDoc, err := s.fetchDocument(ctx, meetingsURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch schedule page")
		return nil, fmt.Errorf("mi_redistricting_commission: schedule: %w", err)
	}
	return s.parseMeetings(meetingsDoc, docMap), nil
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

// parseDocuments walks the documents page line by line. A line with
// links files them under its own date, or under the last date-only
// heading above it.
func parseDocuments(doc *goquery.Document, pageURL string) (map[string][]meeting.Link, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}
	docMap := map[string][]meeting.Link{}
	var lastDate time.Time
	var haveLast bool
	doc.Find(".fullContent > p, .fullContent > div").Each(func(_ int, line *goquery.Selection) {
		lineDate, hasDate := textutil.FindDate(line.Text())

		anchors := line.Find("a")
		if anchors.Length() == 0 {
			if hasDate {
				lastDate = lineDate
				haveLast = true
			}
			return
		}

		linkDate := lineDate
		if !hasDate {
			if !haveLast {
				return
			}
			linkDate = lastDate
		}
		first := anchors.First()
		href, _ := first.Attr("href")
		if ref, err := url.Parse(href); err == nil {
			href = base.ResolveReference(ref).String()
		}
		key := linkDate.Format("2006-01-02")
		docMap[key] = append(docMap[key], meeting.Link{
			Href:  href,
			Title: textutil.CleanWhitespace(first.Text()),
		})
	})
	return docMap, nil
}

var parentheticalRegex = regexp.MustCompile(`\(.*\)`)

func (s *Scraper) parseMeetings(doc *goquery.Document, docMap map[string][]meeting.Link) []meeting.Meeting {
	meetings := []meeting.Meeting{}
	doc.Find(".fullContent > p").Each(func(_ int, group *goquery.Selection) {
		lines := splitLines(group)
		if len(lines) == 0 {
			return
		}
		dateStr := lines[0]
		date, ok := textutil.FindDate(parentheticalRegex.ReplaceAllString(dateStr, ""))
		if !ok {
			return
		}
		for _, detail := range lines[1:] {
			start, end := parseStartEnd(date, detail)
			m := meeting.Meeting{
				Title:          parseTitle(detail),
				Description:    parseDescription(detail),
				Classification: meeting.Commission,
				Start:          start,
				End:            end,
				Location:       remoteLocation,
				Links:          docMap[start.Format("2006-01-02")],
				Source:         meetingsURL,
			}
			meeting.Finalize(s.Name(), &m, dateStr+" "+detail, s.now())
			meetings = append(meetings, m)
		}
	})
	return meetings
}

// splitLines returns the paragraph's non-empty text nodes: the date
// heading first, then one entry per session.
func splitLines(group *goquery.Selection) []string {
	var lines []string
	for _, node := range group.Contents().Nodes {
		sel := goquery.NewDocumentFromNode(node).Selection
		text := textutil.CleanWhitespace(sel.Text())
		if text != "" {
			lines = append(lines, text)
		}
	}
	return lines
}

func parseTitle(detail string) string {
	if strings.Contains(detail, "Advisory Commitee") {
		return "Advisory Committee"
	}
	if strings.Contains(detail, "Full Commission") {
		return "Full Commission"
	}
	return "Commission"
}

func parseDescription(detail string) string {
	parts := strings.Split(detail, " - ")
	if len(parts) < 2 {
		return ""
	}
	return textutil.CleanWhitespace(strings.Join(parts[1:], " "))
}

var sessionTimeRegex = regexp.MustCompile(`\d\d?(?::\d\d)?\s?[apmAPM\.]{2,4}`)

// parseStartEnd combines the group's date with up to two clock times
// from the detail line. No time at all means a midnight placeholder.
func parseStartEnd(date time.Time, detail string) (time.Time, *time.Time) {
	matches := sessionTimeRegex.FindAllString(detail, 2)
	if len(matches) == 0 {
		return date, nil
	}
	start := date
	if hour, minute, ok := textutil.FindClockTime(matches[0]); ok {
		start = date.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
	}
	if len(matches) < 2 {
		return start, nil
	}
	if hour, minute, ok := textutil.FindClockTime(matches[1]); ok {
		end := date.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
		return start, &end
	}
	return start, nil
}

func init() {
	scraper.Default.Register(New())
}
