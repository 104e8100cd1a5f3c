// Package dates resolves colloquial Spanish (and some English) date
// expressions heard during collection calls into calendar dates, and formats
// calendar dates back into Spanish prose.
package dates

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ISO is the wire format used for the payment_date slot.
const ISO = "2006-01-02"

// Vocabulary shared with the keyword classifiers. Accented and unaccented
// spellings are both listed because telephony transcripts carry either.
var (
	TomorrowWords   = []string{"mañana", "tomorrow", "mañ"}
	NextQualifiers  = []string{"próximo", "proximo", "que viene"}
	EndOfMonthWords = []string{"fin de mes", "final de mes", "end of month"}
	NextMonthWords  = []string{"próximo mes", "proximo mes", "next month"}
)

type weekdayEntry struct {
	name string
	day  time.Weekday
}

// weekdayNames is an ordered rule table: scanning stops at the first name
// contained in the text.
var weekdayNames = []weekdayEntry{
	{"lunes", time.Monday},
	{"monday", time.Monday},
	{"martes", time.Tuesday},
	{"tuesday", time.Tuesday},
	{"miércoles", time.Wednesday},
	{"miercoles", time.Wednesday},
	{"wednesday", time.Wednesday},
	{"jueves", time.Thursday},
	{"thursday", time.Thursday},
	{"viernes", time.Friday},
	{"friday", time.Friday},
	{"sábado", time.Saturday},
	{"sabado", time.Saturday},
	{"saturday", time.Saturday},
	{"domingo", time.Sunday},
	{"sunday", time.Sunday},
}

var spanishMonths = [13]string{
	"", "enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

var spanishDays = map[time.Weekday]string{
	time.Monday:    "lunes",
	time.Tuesday:   "martes",
	time.Wednesday: "miércoles",
	time.Thursday:  "jueves",
	time.Friday:    "viernes",
	time.Saturday:  "sábado",
	time.Sunday:    "domingo",
}

var numericDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{1,2})/(\d{1,2})`), // DD/MM
	regexp.MustCompile(`(\d{1,2})-(\d{1,2})`), // DD-MM
}

// Resolve converts a free-text date expression into a calendar date relative
// to ref. The second return value is false when no rule matches.
//
// Rules are tried in a fixed order because several tokens are substrings of
// others ("próximo" vs "próximo mes"). A bare weekday name always resolves to
// the next occurrence strictly after ref: mentioning today's own weekday gives
// the following week, never today. That is inherited behavior the rest of the
// flow depends on; keep it.
func Resolve(text string, ref time.Time) (time.Time, bool) {
	text = strings.ToLower(strings.TrimSpace(text))

	if containsAny(text, TomorrowWords) {
		return ref.AddDate(0, 0, 1), true
	}

	// "el próximo viernes" style. Only returns when a weekday name is also
	// present; a qualifier on its own falls through.
	if containsAny(text, NextQualifiers) {
		if d, ok := nextWeekday(text, ref); ok {
			return d, true
		}
	}

	if d, ok := nextWeekday(text, ref); ok {
		return d, true
	}

	if containsAny(text, EndOfMonthWords) {
		return endOfMonth(ref), true
	}

	if containsAny(text, NextMonthWords) {
		return nextMonth(ref), true
	}

	for _, re := range numericDatePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		day, month := atoi(m[1]), atoi(m[2])
		d := time.Date(ref.Year(), time.Month(month), day, 0, 0, 0, 0, ref.Location())
		// time.Date normalizes 31/02 into March; treat that as an invalid
		// calendar date and keep looking.
		if d.Day() != day || int(d.Month()) != month {
			continue
		}
		return d, true
	}

	return time.Time{}, false
}

func nextWeekday(text string, ref time.Time) (time.Time, bool) {
	for _, e := range weekdayNames {
		if !strings.Contains(text, e.name) {
			continue
		}
		ahead := int(e.day) - int(ref.Weekday())
		if ahead <= 0 {
			ahead += 7
		}
		return ref.AddDate(0, 0, ahead), true
	}
	return time.Time{}, false
}

func endOfMonth(ref time.Time) time.Time {
	return time.Date(ref.Year(), ref.Month()+1, 0, 0, 0, 0, 0, ref.Location())
}

// nextMonth keeps the day of month one month forward, rolling December into
// January. When the target month is shorter (Jan 31 → Feb) the result is
// clamped to the last day of the target month.
func nextMonth(ref time.Time) time.Time {
	year, month := ref.Year(), ref.Month()+1
	if ref.Month() == time.December {
		year, month = year+1, time.January
	}
	day := ref.Day()
	if last := time.Date(year, month+1, 0, 0, 0, 0, 0, ref.Location()).Day(); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, ref.Location())
}

// FormatProse renders a date the way the agent says it back to the customer:
// "viernes 8 de agosto".
func FormatProse(t time.Time) string {
	return fmt.Sprintf("%s %d de %s", spanishDays[t.Weekday()], t.Day(), spanishMonths[t.Month()])
}

// FormatLong renders invoice dates: "8 de agosto de 2025".
func FormatLong(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), spanishMonths[t.Month()], t.Year())
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}
