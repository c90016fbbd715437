package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/labreport-import/internal/core/ocr"
)

var (
	reDMY = regexp.MustCompile(`\b(\d{2})[./](\d{2})[./](\d{4})\b`)
	reISO = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
)

var (
	// collection, issue and registration phrases; a bare "date" also labels the birth date
	dateKeywords = []string{"дата взятия", "взят", "выдач", "регистрац", "получен", "collected", "collection", "reported", "report date", "sample date"}
	// lines carrying the patient's birth date are never a report date
	birthMarkers = []string{"рожд", "birth"}
)

// ParseDate finds the first dd.mm.yyyy, dd/mm/yyyy or yyyy-mm-dd date in s.
func ParseDate(s string) (time.Time, bool) {
	type hit struct {
		at      int
		y, m, d string
	}
	var hits []hit
	if loc := reDMY.FindStringSubmatchIndex(s); loc != nil {
		hits = append(hits, hit{loc[0], s[loc[6]:loc[7]], s[loc[4]:loc[5]], s[loc[2]:loc[3]]})
	}
	if loc := reISO.FindStringSubmatchIndex(s); loc != nil {
		hits = append(hits, hit{loc[0], s[loc[2]:loc[3]], s[loc[4]:loc[5]], s[loc[6]:loc[7]]})
	}
	if len(hits) == 2 && hits[1].at < hits[0].at {
		hits[0], hits[1] = hits[1], hits[0]
	}
	for _, h := range hits {
		if t, ok := makeDate(h.y, h.m, h.d); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func makeDate(ys, ms, ds string) (time.Time, bool) {
	y, _ := strconv.Atoi(ys)
	m, _ := strconv.Atoi(ms)
	d, _ := strconv.Atoi(ds)
	if y < 1900 || m < 1 || m > 12 || d < 1 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	// reject rollovers such as 31.02
	if t.Day() != d || int(t.Month()) != m {
		return time.Time{}, false
	}
	return t, true
}

// DetectReportDate prefers a date on a line that names a collection, issue or
// registration date and otherwise takes the first date in the text. Birth
// date lines are skipped.
func DetectReportDate(lines []string) (time.Time, bool) {
	var fallback time.Time
	var found bool
	for _, l := range lines {
		t, ok := ParseDate(l)
		if !ok {
			continue
		}
		norm := ocr.NormalizeLabel(l)
		if containsAny(norm, birthMarkers) {
			continue
		}
		if containsAny(norm, dateKeywords) {
			return t, true
		}
		if !found {
			fallback, found = t, true
		}
	}
	return fallback, found
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
