// Package water scrapes the Detroit Water and Sewerage Department
// board, which publishes through a Legistar calendar.
package water

import (
	"context"
	"fmt"
	"strings"
	"time"

	"city-scrapers-det/lib/legistar"
	"city-scrapers-det/lib/meeting"
	"city-scrapers-det/lib/scraper"
	"city-scrapers-det/lib/timezone"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("cityscrapers.lib.scrapers.water")

const waterBoardAddress = "735 Randolph St Detroit, MI 48226"

type Scraper struct {
	calendar *legistar.Client
	now      func() time.Time
}

func New() (*Scraper, error) {
	calendar, err := legistar.NewClient("https://dwsd.legistar.com")
	if err != nil {
		return nil, err
	}
	return &Scraper{calendar: calendar, now: timezone.Now}, nil
}

func (s *Scraper) Name() string   { return "det_water_sewage_department" }
func (s *Scraper) Agency() string { return "Detroit Water and Sewage Department" }

func (s *Scraper) Scrape(ctx context.Context) ([]meeting.Meeting, error) {
	ctx, span := tracer.Start(ctx, "water:Scrape")
	defer span.End()

	events, err := s.calendar.Events(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list calendar events")
		return nil, fmt.Errorf("det_water_sewage_department: %w", err)
	}

	meetings := make([]meeting.Meeting, 0, len(events))
	for _, event := range events {
		m := s.convert(event)
		meetings = append(meetings, m)
	}
	return meetings, nil
}

func (s *Scraper) convert(event legistar.Event) meeting.Meeting {
	location := parseLocation(event.Location)
	links := make([]meeting.Link, 0, len(event.Links))
	for _, anchor := range event.Links {
		links = append(links, meeting.Link{Href: anchor.Href, Title: anchor.Name})
	}

	m := meeting.Meeting{
		Title:          event.Name,
		Classification: meeting.Board,
		Start:          event.Start,
		Location:       location,
		Links:          links,
		Source:         event.Source,
	}
	meeting.Finalize(s.Name(), &m, location.Name+" "+location.Address, s.now())
	return m
}

// parseLocation normalizes the free-text Legistar location. Water
// Board Building meetings get the canonical street address, with the
// room kept when the calendar names one, and online meetings collapse
// to a virtual placeholder.
func parseLocation(address string) meeting.Location {
	if strings.Contains(strings.ToLower(address), "online") {
		address = "Virtual Meeting"
	}
	if strings.Contains(strings.ToLower(address), "water board") {
		head := strings.SplitN(address, ", ", 2)[0]
		if strings.Contains(strings.ToLower(head), "room") {
			address = head + " " + waterBoardAddress
		} else {
			address = waterBoardAddress
		}
		return meeting.Location{Name: "Water Board Building", Address: address}
	}
	return meeting.Location{Address: address}
}

func init() {
	s, err := New()
	if err != nil {
		panic(err)
	}
	scraper.Default.Register(s)
}
