// Package legistar scrapes the calendar grid of Granicus Legistar
// sites (<agency>.legistar.com/Calendar.aspx). A handful of Detroit
// agencies publish their meetings there instead of on their own sites.
package legistar

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"city-scrapers-det/lib/htmlutil"
	"city-scrapers-det/lib/restyutil"
	"city-scrapers-det/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("cityscrapers.lib.legistar")

type Event struct {
	Name     string
	Start    time.Time
	Location string
	// Links holds the meeting detail/agenda/minutes documents.
	Links []htmlutil.Anchor
	// Source is the meeting details page when one exists, otherwise
	// the calendar url.
	Source string
}

type Client struct {
	base *url.URL
	http *resty.Client
}

func NewClient(baseUrl string) (*Client, error) {
	base, err := url.Parse(baseUrl)
	if err != nil {
		return nil, err
	}
	client := restyutil.NewScraperClient()
	client.SetBaseURL(baseUrl)
	return &Client{base: base, http: client}, nil
}

func (c *Client) Events(ctx context.Context) ([]Event, error) {
	ctx, span := tracer.Start(ctx, "legistar:Events")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		Get("/Calendar.aspx")
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch calendar")
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse html")
		return nil, err
	}

	return c.parseCalendar(ctx, doc)
}

func (c *Client) parseCalendar(ctx context.Context, doc *goquery.Document) ([]Event, error) {
	table := doc.Find("table.rgMasterTable").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("no calendar grid found")
	}

	columns := map[string]int{}
	table.Find("thead th").Each(func(i int, th *goquery.Selection) {
		columns[textutil.CleanWhitespace(th.Text())] = i
	})

	nameCol, ok := columns["Name"]
	if !ok {
		return nil, fmt.Errorf("calendar grid has no Name column")
	}
	dateCol, ok := columns["Meeting Date"]
	if !ok {
		return nil, fmt.Errorf("calendar grid has no Meeting Date column")
	}

	var events []Event
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() <= dateCol {
			return
		}

		name := textutil.CleanWhitespace(cells.Eq(nameCol).Text())
		if name == "" {
			return
		}

		date, ok := textutil.FindDate(cells.Eq(dateCol).Text())
		if !ok {
			return
		}
		start := date
		if timeCol, ok := columns["Meeting Time"]; ok && cells.Length() > timeCol {
			hour, minute, ok := textutil.FindClockTime(cells.Eq(timeCol).Text())
			if ok {
				start = time.Date(
					date.Year(), date.Month(), date.Day(),
					hour, minute, 0, 0, date.Location(),
				)
			}
		}

		location := ""
		if locationCol, ok := columns["Meeting Location"]; ok && cells.Length() > locationCol {
			location = textutil.CleanWhitespace(cells.Eq(locationCol).Text())
		}

		links := []htmlutil.Anchor{}
		source := c.base.String() + "/Calendar.aspx"
		for _, anchor := range htmlutil.GetAnchors(ctx, c.base, row.Find("a")) {
			switch {
			case anchor.Name == name:
				// the name column links to the body, not the meeting
				continue
			case strings.Contains(anchor.Name, "Meeting details"):
				source = anchor.Href
			case anchor.Href == "" || strings.HasPrefix(anchor.Href, "javascript"):
				continue
			default:
				links = append(links, anchor)
			}
		}

		events = append(events, Event{
			Name:     name,
			Start:    start,
			Location: location,
			Links:    links,
			Source:   source,
		})
	})

	return events, nil
}
