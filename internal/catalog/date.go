package catalog

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ReleaseDate is a parsed release_date cell. Only one of Year, Month and Day
// is set, naming the most precise component present in the source string.
type ReleaseDate struct {
	Date  time.Time
	Year  bool
	Month bool
	Day   bool
}

// Valid reports whether the date was parsed.
func (d ReleaseDate) Valid() bool {
	return d.Year || d.Month || d.Day
}

func (d ReleaseDate) String() string {
	switch {
	case d.Day:
		return d.Date.Format("2006-01-02")
	case d.Month:
		return d.Date.Format("2006-01")
	case d.Year:
		return d.Date.Format("2006")
	}
	return ""
}

// Long renders the date the way the album card shows it, e.g. "April 19, 1994".
func (d ReleaseDate) Long() string {
	switch {
	case d.Day:
		return d.Date.Format("January 2, 2006")
	case d.Month:
		return d.Date.Format("January 2006")
	case d.Year:
		return d.Date.Format("2006")
	}
	return ""
}

type dateFormat struct {
	pattern *regexp.Regexp
	layouts []string
	set     func(*ReleaseDate)
}

var dateFormats = []dateFormat{
	{regexp.MustCompile(`^\d{4}$`), []string{"2006"}, func(d *ReleaseDate) { d.Year = true }},
	{regexp.MustCompile(`^\d{4}-\d{2}$`), []string{"2006-01"}, func(d *ReleaseDate) { d.Month = true }},
	{regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`), []string{"2006-01-02"}, func(d *ReleaseDate) { d.Day = true }},
	{regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T`), []string{time.RFC3339, "2006-01-02T15:04:05"}, func(d *ReleaseDate) { d.Day = true }},
	{regexp.MustCompile(`^\d{1,2} [A-Za-z]+ \d{4}$`), []string{"2 January 2006", "2 Jan 2006"}, func(d *ReleaseDate) { d.Day = true }},
	{regexp.MustCompile(`^[A-Za-z]+ \d{1,2}, \d{4}$`), []string{"January 2, 2006", "Jan 2, 2006"}, func(d *ReleaseDate) { d.Day = true }},
	{regexp.MustCompile(`^[A-Za-z]+ \d{4}$`), []string{"January 2006", "Jan 2006"}, func(d *ReleaseDate) { d.Month = true }},
}

// ParseReleaseDate parses the release_date formats found in album exports.
func ParseReleaseDate(ds string) (date ReleaseDate, err error) {
	ds = strings.TrimSpace(ds)
	for _, f := range dateFormats {
		if !f.pattern.MatchString(ds) {
			continue
		}
		for _, layout := range f.layouts {
			t, perr := time.Parse(layout, ds)
			if perr != nil {
				err = perr
				continue
			}
			date.Date = t
			f.set(&date)
			return date, nil
		}
		return ReleaseDate{}, fmt.Errorf("parsing release date %q: %w", ds, err)
	}
	return ReleaseDate{}, fmt.Errorf("Invalid format: %q", ds)
}
