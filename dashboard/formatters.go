package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
)

// AppName is the product name appended to page titles.
const AppName = "LaunchBay"

// ErrInvalidDate rejects dates the dashboard cannot parse.
var ErrInvalidDate = errors.New("invalid date string", errors.CategoryBadInput).
	WithTextCode("INVALID_DATE")

// dateLayouts are tried in order when parsing user-supplied dates.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"1/2/2006",
}

// CreateTitle appends the app name to a page title. An empty title yields
// just the app name, and addSuffix false passes the title through.
func CreateTitle(title string, addSuffix bool) string {
	if !addSuffix {
		return title
	}
	if title == "" {
		return AppName
	}
	return title + " | " + AppName
}

// Capitalize upper-cases the first character of a string.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
	return string(runes)
}

// Initials derives up to two upper-cased initials from a name.
func Initials(name string) string {
	fields := strings.Fields(name)
	if len(fields) > 2 {
		fields = fields[:2]
	}

	var b strings.Builder
	for _, f := range fields {
		b.WriteString(strings.ToUpper(string([]rune(f)[0])))
	}
	return b.String()
}

// TimeSlot builds a zero-date time carrying only the hour and minute, for
// schedule pickers that care about time of day alone.
func TimeSlot(hours, minutes int) time.Time {
	return time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC).
		Add(time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute)
}

// FormatDate renders a date string as M/D/YY.
func FormatDate(dateString string) (string, error) {
	if strings.TrimSpace(dateString) == "" {
		return "", ErrInvalidDate
	}

	date, err := parseDate(dateString)
	if err != nil {
		return "", err
	}

	year := date.Year() % 100
	return fmt.Sprintf("%d/%d/%02d", int(date.Month()), date.Day(), year), nil
}

// ToISO converts a parseable date string to RFC 3339 in UTC.
func ToISO(dateString string) (string, error) {
	date, err := parseDate(dateString)
	if err != nil {
		return "", err
	}
	return date.UTC().Format(time.RFC3339), nil
}

func parseDate(dateString string) (time.Time, error) {
	trimmed := strings.TrimSpace(dateString)
	for _, layout := range dateLayouts {
		if date, err := time.Parse(layout, trimmed); err == nil {
			return date, nil
		}
	}
	return time.Time{}, errors.Wrap(ErrInvalidDate, errors.CategoryBadInput, "unparseable date: "+trimmed)
}

// TemplateHelpers returns the formatter set for template rendering.
//
// In templates:
//
//	{{ "settings"|capitalize }}
//	{{ user.name|initials }}
func TemplateHelpers() map[string]any {
	return map[string]any{
		"app_name":     AppName,
		"create_title": CreateTitle,
		"capitalize":   Capitalize,
		"initials":     Initials,
		"format_date":  FormatDate,
	}
}
