package scraper

import (
	"context"
	"testing"
	"time"

	"city-scrapers-det/lib/meeting"

	"github.com/stretchr/testify/require"
)

type fakeScraper struct {
	name string
}

func (f fakeScraper) Name() string   { return f.name }
func (f fakeScraper) Agency() string { return "Fake Agency" }
func (f fakeScraper) Scrape(ctx context.Context) ([]meeting.Meeting, error) {
	return nil, nil
}

func TestRegistryExclusions(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"det_a", "det_b", "det_c", "det_d"} {
		r.Register(fakeScraper{name: name})
	}

	all := r.All("det_b", "det_d")
	require.Len(t, all, 2)
	require.Equal(t, "det_a", all[0].Name())
	require.Equal(t, "det_c", all[1].Name())

	// excluding names that were never registered is not an error
	require.Len(t, r.All("nonexistent"), 4)
}

func TestRegistryDuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(fakeScraper{name: "det_a"})
	require.Panics(t, func() {
		r.Register(fakeScraper{name: "det_a"})
	})
}

func TestFilterArchived(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	meetings := []meeting.Meeting{
		{Title: "old", Start: time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)},
		{Title: "recent", Start: time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)},
		{Title: "future", Start: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)},
	}

	kept := FilterArchived(meetings, now, false)
	require.Len(t, kept, 2)
	require.Equal(t, "recent", kept[0].Title)

	require.Len(t, FilterArchived(meetings, now, true), 3)
}

func TestValidateLocation(t *testing.T) {
	err := ValidateLocation("DEGC, Guardian Building, 500 Griswold St", "500 Griswold")
	require.NoError(t, err)

	err = ValidateLocation("somewhere else entirely", "500 Griswold")
	require.ErrorIs(t, err, ErrLocationChanged)
}
