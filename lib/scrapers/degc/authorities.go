package degc

import (
	"regexp"
	"strings"

	"city-scrapers-det/lib/scraper"
)

// committeeTitle reproduces the historical title cleanup: the link
// text is uppercased, everything after " COMMITTEE" is dropped, and
// the authority's own acronym prefix is removed.
func committeeTitle(linkText, acronym string) string {
	title := strings.Split(strings.ToUpper(linkText), " COMMITTEE")[0] + " Committee"
	return strings.ReplaceAll(title, acronym+" ", "")
}

var dbraCACRegex = regexp.MustCompile(`DBRA[\- ]CAC`)

var authorities = []Authority{
	{
		Name:       "det_downtown_development_authority",
		AgencyName: "Detroit Downtown Development Authority",
		AgencyURL:  "https://www.degc.org/dda/",
		TabTitle:   "DDA",
		TitleFromLinks: func(linkText string) string {
			if strings.Contains(strings.ToLower(linkText), "committee") {
				return committeeTitle(linkText, "DDA")
			}
			return defaultTitle
		},
	},
	{
		Name:       "det_brownfield_redevelopment_authority",
		AgencyName: "Detroit Brownfield Redevelopment Authority",
		AgencyURL:  "https://www.degc.org/dbra/",
		TabTitle:   "DBRA",
		TitleFromLinks: func(linkText string) string {
			lower := strings.ToLower(linkText)
			switch {
			case strings.Contains(lower, "committee"):
				return committeeTitle(linkText, "DBRA")
			case strings.Contains(lower, "public hearing"):
				return strings.Split(strings.ToUpper(linkText), " PUBLIC HEARING")[0] + " Public Hearing"
			case dbraCACRegex.MatchString(linkText):
				return "Community Advisory Committee"
			}
			return defaultTitle
		},
		CleanLinkTitle: func(title string) string {
			return strings.TrimSpace(strings.Trim(title, "–"))
		},
	},
	{
		Name:       "det_economic_development_corporation",
		AgencyName: "Detroit Economic Development Corporation",
		AgencyURL:  "https://www.degc.org/edc/",
		TabTitle:   "EDC",
		// the EDC tab currently renders without the Guardian Building
		// blurb, so the guard is off for now
		SkipLocationCheck: true,
		TitleFromLinks: func(linkText string) string {
			lower := strings.ToLower(linkText)
			switch {
			case strings.Contains(lower, "committee"):
				return committeeTitle(linkText, "EDC")
			case strings.Contains(lower, "special"):
				return "Special Board Meeting"
			}
			return defaultTitle
		},
	},
	{
		Name:       "det_eight_mile_woodward_corridor_improvement_authority",
		AgencyName: "Detroit Eight Mile Woodward Corridor Improvement Authority",
		AgencyURL:  "https://www.degc.org/emwcia/",
		TabTitle:   "EMWCIA",
		TitleFromLinks: func(linkText string) string {
			if strings.Contains(strings.ToUpper(linkText), "PUBLIC INFORMATION") {
				return "Public Information Meeting"
			}
			return defaultTitle
		},
	},
	{
		Name:       "det_local_development_finance_authority",
		AgencyName: "Detroit Local Development Finance Authority",
		AgencyURL:  "https://www.degc.org/ldfa/",
		TabTitle:   "LDFA",
		TitleFromLinks: func(linkText string) string {
			if strings.Contains(strings.ToUpper(linkText), "PUBLIC INFORMATION") {
				return "Public Information Meeting"
			}
			return defaultTitle
		},
	},
	{
		Name:       "det_next_michigan_development_corporation",
		AgencyName: "Detroit Next Michigan Development Corporation",
		AgencyURL:  "https://www.degc.org/d-nmdc/",
		TabTitle:   "D-NMDC",
		TitleFromLinks: func(linkText string) string {
			if strings.Contains(strings.ToLower(linkText), "special") {
				return "Special Board Meeting"
			}
			return defaultTitle
		},
	},
	{
		Name:       "det_neighborhood_development_corporation",
		AgencyName: "Detroit Neighborhood Development Corporation",
		AgencyURL:  "https://www.degc.org/ndc/",
		TabTitle:   "NDC",
	},
}

func init() {
	for _, authority := range authorities {
		scraper.Default.Register(New(authority))
	}
}
