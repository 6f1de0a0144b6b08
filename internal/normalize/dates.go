package normalize

import (
	"strings"
	"time"

	"immodash/internal/domain"
)

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Day-first layouts as typed in the legacy sheets. A bare date means 10:00.
var dayFirstLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2/1/2006 15:04",
	"02/01/2006",
	"2/1/2006",
}

// ParseVisitDate returns nil for anything that is not a recognizable date.
func ParseVisitDate(v any) *time.Time {
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		if t.IsZero() {
			return nil
		}
		return &t
	case *time.Time:
		if t == nil || t.IsZero() {
			return nil
		}
		c := *t
		return &c
	}
	s := strings.TrimSpace(stringify(v))
	if s == "" {
		return nil
	}
	for _, l := range isoLayouts {
		if d, err := time.ParseInLocation(l, s, time.Local); err == nil {
			return &d
		}
	}
	for _, l := range dayFirstLayouts {
		if d, err := time.ParseInLocation(l, s, time.Local); err == nil {
			if !strings.Contains(l, "15") {
				d = d.Add(10 * time.Hour)
			}
			return &d
		}
	}
	return nil
}

// VisitStatus derives the display status from the scheduling flag and the
// calendar day of the visit relative to now.
func VisitStatus(scheduled bool, d *time.Time, now time.Time) string {
	if !scheduled {
		return domain.VisitUnconfirmed
	}
	if d == nil {
		return domain.VisitPending
	}
	today := dayOf(now, now.Location())
	day := dayOf(*d, now.Location())
	switch {
	case day.Before(today):
		return domain.VisitDone
	case day.Equal(today):
		return domain.VisitToday
	}
	return domain.VisitScheduled
}

func dayOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// ShortDate renders a date as dd/mm/yyyy hh:mm, or returns raw when it does not parse.
func ShortDate(raw any) string {
	if d := ParseVisitDate(raw); d != nil {
		return d.Format("02/01/2006 15:04")
	}
	return strings.TrimSpace(stringify(raw))
}
