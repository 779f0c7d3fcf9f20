// Package scraper holds the contract every agency scraper implements
// and the registry the launcher discovers them through.
//
// scrapers are mostly stateless, the output is dependent solely on
// whatever the agency site serves at the time of the call. each one
// generally has this structure:
// 1. fetch one or more listing pages (or the JSON api behind them).
// 2. transform rows/events into meeting records.
// 3. derive status + id last, once all parsed fields are set.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"city-scrapers-det/lib/meeting"
)

type Scraper interface {
	// Name is the stable snake_case identifier used in meeting ids
	// and feed file names, e.g. "det_board_ethics".
	Name() string
	// Agency is the human readable agency name.
	Agency() string
	Scrape(ctx context.Context) ([]meeting.Meeting, error)
}

// ErrLocationChanged signals that a hardcoded meeting location no
// longer appears on the page, which means the parsed records can't be
// trusted until someone looks at the site.
var ErrLocationChanged = errors.New("meeting location has changed")

func ValidateLocation(pageText, marker string) error {
	if !strings.Contains(strings.ToLower(pageText), strings.ToLower(marker)) {
		return fmt.Errorf("%w: %q not found in page", ErrLocationChanged, marker)
	}
	return nil
}

// FilterArchived drops meetings more than a year in the past, matching
// the ARCHIVE setting of the legacy pipeline. With archive=true
// everything is kept.
func FilterArchived(meetings []meeting.Meeting, now time.Time, archive bool) []meeting.Meeting {
	if archive {
		return meetings
	}
	cutoff := now.AddDate(-1, 0, 0)
	kept := []meeting.Meeting{}
	for _, m := range meetings {
		if m.Start.Before(cutoff) {
			continue
		}
		kept = append(kept, m)
	}
	return kept
}

type Registry struct {
	mu       sync.Mutex
	scrapers map[string]Scraper
}

func NewRegistry() *Registry {
	return &Registry{scrapers: map[string]Scraper{}}
}

func (r *Registry) Register(s Scraper) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.scrapers[s.Name()]
	if exists {
		panic(fmt.Sprintf("scraper registered twice: %s", s.Name()))
	}
	r.scrapers[s.Name()] = s
}

func (r *Registry) Get(name string) (Scraper, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.scrapers[name]
	return s, ok
}

// All returns every registered scraper except the excluded names,
// sorted by name.
func (r *Registry) All(exclude ...string) []Scraper {
	r.mu.Lock()
	defer r.mu.Unlock()

	excluded := map[string]bool{}
	for _, name := range exclude {
		excluded[name] = true
	}

	out := []Scraper{}
	for name, s := range r.scrapers {
		if excluded[name] {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name() < out[j].Name()
	})
	return out
}

func (r *Registry) Names() []string {
	all := r.All()
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.Name()
	}
	return names
}

// Default is the registry the scraper packages register into from
// their init functions.
var Default = NewRegistry()
