package tools

import (
	"fmt"
	"strings"
	"time"
)

// CalendarEvent is one meal slot to export.
type CalendarEvent struct {
	Title       string `json:"title"`
	Date        string `json:"date"` // ISO date: YYYY-MM-DD
	Time        string `json:"time,omitempty"`
	Description string `json:"description,omitempty"`
}

// CalendarExport wraps the rendered iCalendar document.
type CalendarExport struct {
	ICS        string `json:"ics"`
	EventCount int    `json:"event_count"`
}

// ExportCalendarICS renders meal events as an iCalendar (ICS) document.
// Events without a time default to 18:00; events missing a title or date
// are counted but skipped in the output.
func ExportCalendarICS(events []CalendarEvent) CalendarExport {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//EcoFood//MealPlanner//EN",
	}

	now := time.Now().UTC().Format("20060102T150405Z")

	for idx, ev := range events {
		title := strings.TrimSpace(ev.Title)
		date := strings.TrimSpace(ev.Date)
		if title == "" || date == "" {
			continue
		}

		start, err := formatEventStart(date, ev.Time)
		if err != nil {
			continue
		}

		uid := fmt.Sprintf("ecofood-%d-%s@local", idx+1, start)
		lines = append(lines,
			"BEGIN:VEVENT",
			"UID:"+uid,
			"DTSTAMP:"+now,
			"DTSTART:"+start,
			"SUMMARY:"+title,
		)
		if desc := strings.TrimSpace(ev.Description); desc != "" {
			// Newlines must be escaped per the ICS spec.
			lines = append(lines, "DESCRIPTION:"+strings.ReplaceAll(desc, "\n", "\\n"))
		}
		lines = append(lines, "END:VEVENT")
	}

	lines = append(lines, "END:VCALENDAR")

	return CalendarExport{
		ICS:        strings.Join(lines, "\r\n") + "\r\n",
		EventCount: len(events),
	}
}

func formatEventStart(date, clock string) (string, error) {
	if clock == "" {
		clock = "18:00"
	}
	dt, err := time.Parse("2006-01-02T15:04", date+"T"+clock)
	if err != nil {
		return "", err
	}
	return dt.Format("20060102T150405"), nil
}
