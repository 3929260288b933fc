package dateformat

import (
	"strconv"
	"strings"
	"time"
)

// DefaultLayout is used when a definition does not name a date format.
const DefaultLayout = "dd/mm/yyyy"

// Locale selects month names.
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleThai    Locale = "th"
)

const buddhistEraOffset = 543

var parseLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006/01/02",
}

var monthNames = map[Locale][12]string{
	LocaleEnglish: {
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	},
	LocaleThai: {
		"มกราคม", "กุมภาพันธ์", "มีนาคม", "เมษายน", "พฤษภาคม", "มิถุนายน",
		"กรกฎาคม", "สิงหาคม", "กันยายน", "ตุลาคม", "พฤศจิกายน", "ธันวาคม",
	},
}

var monthAbbreviations = map[Locale][12]string{
	LocaleEnglish: {
		"Jan", "Feb", "Mar", "Apr", "May", "Jun",
		"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
	},
	LocaleThai: {
		"ม.ค.", "ก.พ.", "มี.ค.", "เม.ย.", "พ.ค.", "มิ.ย.",
		"ก.ค.", "ส.ค.", "ก.ย.", "ต.ค.", "พ.ย.", "ธ.ค.",
	},
}

// ParseLocale maps a configuration string onto a supported Locale, defaulting
// to English.
func ParseLocale(raw string) Locale {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "th", "th-th", "thai":
		return LocaleThai
	default:
		return LocaleEnglish
	}
}

// Parse reads a canonical date value.
func Parse(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Format renders raw with layout using English month names. See FormatLocale.
func Format(raw, layout string) string {
	return FormatLocale(raw, layout, LocaleEnglish)
}

// FormatLocale renders raw with layout. Unparseable values are returned
// unchanged and an empty layout uses DefaultLayout.
func FormatLocale(raw, layout string, locale Locale) string {
	t, ok := Parse(raw)
	if !ok {
		return raw
	}
	return FormatTime(t, layout, locale)
}

// FormatTime renders t with layout.
func FormatTime(t time.Time, layout string, locale Locale) string {
	if strings.TrimSpace(layout) == "" {
		layout = DefaultLayout
	}
	if _, ok := monthNames[locale]; !ok {
		locale = LocaleEnglish
	}

	var b strings.Builder
	runes := []rune(layout)
	for i := 0; i < len(runes); {
		r := lower(runes[i])
		n := 1
		for i+n < len(runes) && lower(runes[i+n]) == r {
			n++
		}

		switch r {
		case 'd':
			writeNumber(&b, t.Day(), n)
		case 'm':
			switch {
			case n >= 4:
				b.WriteString(monthNames[locale][t.Month()-1])
			case n == 3:
				b.WriteString(monthAbbreviations[locale][t.Month()-1])
			default:
				writeNumber(&b, int(t.Month()), n)
			}
		case 'y':
			writeYear(&b, t.Year(), n)
		case 'b':
			writeYear(&b, t.Year()+buddhistEraOffset, n)
		default:
			b.WriteString(string(runes[i : i+n]))
		}
		i += n
	}
	return b.String()
}

func writeNumber(b *strings.Builder, v, width int) {
	s := strconv.Itoa(v)
	if width >= 2 && len(s) < 2 {
		s = "0" + s
	}
	b.WriteString(s)
}

func writeYear(b *strings.Builder, year, width int) {
	s := strconv.Itoa(year)
	if width <= 2 && len(s) > 2 {
		s = s[len(s)-2:]
	}
	b.WriteString(s)
}

func lower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
