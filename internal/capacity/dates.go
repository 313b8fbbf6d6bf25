package capacity

import (
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/campusshop/storefront/internal/domain"
)

// ConsumptionDay mines the calendar day ("2006-01-02") an order consumes
// capacity on from its free-form answers.
//
// Keys are scanned in stored order. Only keys whose label mentions delivery
// or pickup are considered. For a repeater answer only the first row is
// used, and the first cell that looks like a date (has a date separator and
// parses) wins. A scalar answer is parsed directly, but only when its label
// also mentions a date. The first day found ends the scan. ok is false when
// nothing parses; such orders do not count against any day.
func ConsumptionDay(answers domain.Answers) (day string, ok bool) {
	for _, e := range answers {
		if e.Key == domain.EventNameKey {
			continue
		}
		label := normalizeLabel(e.Key)
		if !strings.Contains(label, "delivery") && !strings.Contains(label, "pickup") {
			continue
		}
		switch e.Value.Kind {
		case domain.ValueRows:
			if len(e.Value.Rows) == 0 {
				continue
			}
			for _, cell := range e.Value.Rows[0] {
				if !hasDateSeparator(cell.Value) {
					continue
				}
				if d, ok := parseDay(cell.Value); ok {
					return d, true
				}
			}
		case domain.ValueString, domain.ValueNumber:
			if !strings.Contains(label, "date") {
				continue
			}
			if d, ok := parseDay(e.Value.Str); ok {
				return d, true
			}
		}
	}
	return "", false
}

// normalizeLabel lowercases a label and drops spaces, hyphens and
// underscores so "Pick-up Date" and "pickup_date" match alike.
func normalizeLabel(label string) string {
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(label))
}

func hasDateSeparator(s string) bool {
	return strings.ContainsAny(s, "-/.")
}

// parseDay accepts s only when it carries an explicit four-digit year and
// parses to that year. dateparse reads yearless input such as a "10.30"
// time cell as year 0000, and "3.14.15" as 2015.
func parseDay(s string) (string, bool) {
	s = strings.TrimSpace(s)
	year, ok := fourDigitYear(s)
	if !ok {
		return "", false
	}
	t, err := dateparse.ParseAny(s)
	if err != nil || t.Year() != year {
		return "", false
	}
	return t.Format(domain.DayLayout), true
}

// fourDigitYear returns the first run of exactly four digits in s that
// falls in 1000-9999.
func fourDigitYear(s string) (int, bool) {
	for i := 0; i < len(s); {
		if !isDigit(s[i]) {
			i++
			continue
		}
		j := i
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j-i == 4 && s[i] != '0' {
			y, _ := strconv.Atoi(s[i:j])
			return y, true
		}
		i = j
	}
	return 0, false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// Days lists every calendar day from from to to inclusive.
func Days(from, to time.Time) []string {
	from = truncateDay(from)
	to = truncateDay(to)
	var out []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(domain.DayLayout))
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
