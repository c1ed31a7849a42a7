package tools

import (
	"strings"
	"testing"
)

func TestExportCalendarICS(t *testing.T) {
	export := ExportCalendarICS([]CalendarEvent{
		{Title: "Dinner: Salmon bowl", Date: "2026-01-05", Time: "19:30", Description: "Line one\nLine two"},
		{Title: "Lunch: Bento", Date: "2026-01-06"},
	})

	if export.EventCount != 2 {
		t.Errorf("Expected event count 2, got %d", export.EventCount)
	}
	ics := export.ICS
	if !strings.HasPrefix(ics, "BEGIN:VCALENDAR\r\n") || !strings.HasSuffix(ics, "END:VCALENDAR\r\n") {
		t.Error("Expected a CRLF-delimited VCALENDAR document")
	}
	if !strings.Contains(ics, "DTSTART:20260105T193000") {
		t.Error("Expected explicit event time to be used")
	}
	if !strings.Contains(ics, "DTSTART:20260106T180000") {
		t.Error("Expected missing time to default to 18:00")
	}
	if !strings.Contains(ics, "DESCRIPTION:Line one\\nLine two") {
		t.Error("Expected newlines in descriptions to be escaped")
	}
	if strings.Count(ics, "BEGIN:VEVENT") != 2 {
		t.Errorf("Expected 2 VEVENT blocks, got %d", strings.Count(ics, "BEGIN:VEVENT"))
	}
}

func TestExportCalendarICSSkipsInvalid(t *testing.T) {
	export := ExportCalendarICS([]CalendarEvent{
		{Title: "", Date: "2026-01-05"},
		{Title: "Dinner", Date: "not-a-date"},
	})
	if export.EventCount != 2 {
		t.Errorf("Expected invalid events still counted, got %d", export.EventCount)
	}
	if strings.Contains(export.ICS, "BEGIN:VEVENT") {
		t.Error("Expected no VEVENT blocks for invalid events")
	}
}
