package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/massalia/crawler/internal/model"
)

// Default start time for events whose listing carries no time (evening
// events are the common case for the configured venues)
const (
	DefaultHour   = 20
	DefaultMinute = 0
)

// French month names to month numbers, accented and plain variants
var frenchMonths = map[string]time.Month{
	"janvier":   time.January,
	"février":   time.February,
	"fevrier":   time.February,
	"mars":      time.March,
	"avril":     time.April,
	"mai":       time.May,
	"juin":      time.June,
	"juillet":   time.July,
	"août":      time.August,
	"aout":      time.August,
	"septembre": time.September,
	"octobre":   time.October,
	"novembre":  time.November,
	"décembre":  time.December,
	"decembre":  time.December,
}

var (
	frenchTimeRe = regexp.MustCompile(`(\d{1,2})\s?[hH](\d{2})?`)
	colonTimeRe  = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)

	dateRangeStartRe = regexp.MustCompile(`du\s+(\d{1,2})\s+(\p{L}+)(?:\s+au\s+\d{1,2}\s+\p{L}+)?\s+(\d{4})`)
	dateWithYearRe   = regexp.MustCompile(`(\d{1,2})\s+(\p{L}+)\s+(\d{4})`)
	dateNoYearRe     = regexp.MustCompile(`(\d{1,2})\s+(\p{L}+)`)
	numericDateRe    = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?\b`)

	fullRangeRe = regexp.MustCompile(`du\s+(\d{1,2})\s+(?:\p{L}+\s+)?au\s+(\d{1,2})\s+(\p{L}+)(?:\s+(\d{4}))?`)
	dayListRe   = regexp.MustCompile(`((?:\d{1,2}\s*,\s*)*\d{1,2})\s+et\s+(\d{1,2})\s+(\p{L}+)(?:\s+(\d{4}))?`)
	untilRe     = regexp.MustCompile(`jusqu['’]?\s*au\s+(\d{1,2})\s+(\p{L}+)(?:\s+(\d{4}))?`)
	upcomingRe  = regexp.MustCompile(`^[àa]\s+venir\s*`)
	dayDigitsRe = regexp.MustCompile(`\d{1,2}`)
)

// ParseFrenchDate parses a French date string into a Paris-timezone
// timestamp. Handles "27 janvier 2026", "mardi 27 janvier", range
// prefixes like "du 29 janvier au 7 février 2026" (start date wins),
// slash-numeric dates with 2- or 4-digit years, and an embedded time.
// Without a year the year is inferred relative to now; without a time
// the supplied defaults apply.
func ParseFrenchDate(text string, now time.Time, defaultHour, defaultMinute int) (time.Time, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return time.Time{}, false
	}

	hour, minute := defaultHour, defaultMinute
	if h, m, ok := ParseFrenchTime(lower); ok {
		hour, minute = h, m
	}

	if m := dateRangeStartRe.FindStringSubmatch(lower); m != nil {
		if d, ok := makeDate(atoi(m[3]), m[2], atoi(m[1]), hour, minute); ok {
			return d, true
		}
	}

	if m := dateWithYearRe.FindStringSubmatch(lower); m != nil {
		if d, ok := makeDate(atoi(m[3]), m[2], atoi(m[1]), hour, minute); ok {
			return d, true
		}
	}

	if m := numericDateRe.FindStringSubmatch(lower); m != nil {
		day, monthNum := atoi(m[1]), atoi(m[2])
		if monthNum >= 1 && monthNum <= 12 {
			month := time.Month(monthNum)
			year := 0
			switch len(m[3]) {
			case 4:
				year = atoi(m[3])
			case 2:
				year = 2000 + atoi(m[3])
			default:
				year = InferYear(month, day, now)
			}
			if d, ok := calendarDate(year, month, day, hour, minute); ok {
				return d, true
			}
		}
	}

	if m := dateNoYearRe.FindStringSubmatch(lower); m != nil {
		if month, ok := frenchMonths[m[2]]; ok {
			day := atoi(m[1])
			if d, ok := calendarDate(InferYear(month, day, now), month, day, hour, minute); ok {
				return d, true
			}
		}
	}

	return time.Time{}, false
}

// ParseFrenchTime extracts the first time pattern from text. Supports
// "19h", "19h30", "19 h", "19H30" and "19:30" with arbitrary
// surrounding text.
func ParseFrenchTime(text string) (int, int, bool) {
	if text == "" {
		return 0, 0, false
	}

	if m := frenchTimeRe.FindStringSubmatch(text); m != nil {
		hour := atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute = atoi(m[2])
		}
		if hour <= 23 && minute <= 59 {
			return hour, minute, true
		}
	}

	if m := colonTimeRe.FindStringSubmatch(text); m != nil {
		hour, minute := atoi(m[1]), atoi(m[2])
		if hour <= 23 && minute <= 59 {
			return hour, minute, true
		}
	}

	return 0, 0, false
}

// ParseAllFrenchDates parses date text that may describe several dates:
// "Du 3 au 5 février" expands to each day of the range, "2, 3 et 5
// février" to the listed days, "Jusqu'au 31 janvier" to the final day.
// Falls back to a single ParseFrenchDate result; an empty slice means
// nothing parseable.
func ParseAllFrenchDates(text string, now time.Time, defaultHour, defaultMinute int) []time.Time {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return nil
	}
	lower = strings.TrimSpace(upcomingRe.ReplaceAllString(lower, ""))

	if m := fullRangeRe.FindStringSubmatch(lower); m != nil {
		if month, ok := frenchMonths[m[3]]; ok {
			startDay, endDay := atoi(m[1]), atoi(m[2])
			year := yearOrInferred(m[4], month, startDay, now)
			var dates []time.Time
			for day := startDay; day <= endDay; day++ {
				if d, ok := calendarDate(year, month, day, defaultHour, defaultMinute); ok {
					dates = append(dates, d)
				}
			}
			if len(dates) > 0 {
				return dates
			}
		}
	}

	if m := dayListRe.FindStringSubmatch(lower); m != nil {
		if month, ok := frenchMonths[m[3]]; ok {
			days := dayDigitsRe.FindAllString(m[1], -1)
			year := yearOrInferred(m[4], month, atoi(days[0]), now)
			var dates []time.Time
			for _, dayStr := range days {
				if d, ok := calendarDate(year, month, atoi(dayStr), defaultHour, defaultMinute); ok {
					dates = append(dates, d)
				}
			}
			if d, ok := calendarDate(year, month, atoi(m[2]), defaultHour, defaultMinute); ok {
				dates = append(dates, d)
			}
			if len(dates) > 0 {
				return dates
			}
		}
	}

	if m := untilRe.FindStringSubmatch(lower); m != nil {
		if month, ok := frenchMonths[m[2]]; ok {
			day := atoi(m[1])
			year := yearOrInferred(m[3], month, day, now)
			if d, ok := calendarDate(year, month, day, defaultHour, defaultMinute); ok {
				return []time.Time{d}
			}
		}
	}

	if d, ok := ParseFrenchDate(text, now, defaultHour, defaultMinute); ok {
		return []time.Time{d}
	}

	return nil
}

// InferYear picks the year for a day/month seen without one. A
// candidate more than two days in the past rolls over to next year;
// an impossible calendar date keeps the current year.
func InferYear(month time.Month, day int, now time.Time) int {
	candidate := time.Date(now.Year(), month, day, 0, 0, 0, 0, model.ParisTZ)
	if candidate.Month() != month || candidate.Day() != day {
		return now.Year()
	}
	if now.Sub(candidate) > 48*time.Hour {
		return now.Year() + 1
	}
	return now.Year()
}

func makeDate(year int, monthName string, day, hour, minute int) (time.Time, bool) {
	month, ok := frenchMonths[monthName]
	if !ok {
		return time.Time{}, false
	}
	return calendarDate(year, month, day, hour, minute)
}

// calendarDate rejects day/month combinations that time.Date would
// silently normalize, like February 30th
func calendarDate(year int, month time.Month, day, hour, minute int) (time.Time, bool) {
	d := time.Date(year, month, day, hour, minute, 0, 0, model.ParisTZ)
	if d.Month() != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

func yearOrInferred(yearStr string, month time.Month, day int, now time.Time) int {
	if yearStr != "" {
		return atoi(yearStr)
	}
	return InferYear(month, day, now)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
