package htmlreport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bannerwatch/snapshot"
)

func scheduleRow(crn, days, timeStr, classroom string) snapshot.Row {
	return snapshot.Row{
		"CRN": crn, "Subject": "CS", "Course Number": "5200",
		"Title": "Artificial Intelligence", "Section": "01",
		"Instructor": "Doe, Jane", "Days": days, "Time": timeStr,
		"Classroom": classroom,
	}
}

func TestParseTimeRange(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		start, end string
		minutes    int
		ok         bool
	}{
		{name: "morning", in: "0930 - 1045", start: "09:30", end: "10:45", minutes: 570, ok: true},
		{name: "no spaces", in: "1400-1550", start: "14:00", end: "15:50", minutes: 840, ok: true},
		{name: "tba", in: "TBA", ok: false},
		{name: "single time", in: "0930", ok: false},
		{name: "empty", in: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, minutes, ok := parseTimeRange(tt.in)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if start != tt.start || end != tt.end || minutes != tt.minutes {
				t.Fatalf("parseTimeRange(%q) = %q/%q/%d, want %q/%q/%d",
					tt.in, start, end, minutes, tt.start, tt.end, tt.minutes)
			}
		})
	}
}

func TestParseDays(t *testing.T) {
	tests := []struct {
		in       string
		expected []string
	}{
		{in: "MWF", expected: []string{"Monday", "Wednesday", "Friday"}},
		{in: "TR", expected: []string{"Tuesday", "Thursday"}},
		{in: "SU", expected: []string{"Saturday", "Sunday"}},
		{in: "TBA", expected: nil},
		{in: "HYB", expected: nil},
	}

	for _, tt := range tests {
		got := parseDays(tt.in)
		if len(got) != len(tt.expected) {
			t.Fatalf("parseDays(%q) = %v, want %v", tt.in, got, tt.expected)
		}
		for i := range got {
			if got[i] != tt.expected[i] {
				t.Fatalf("parseDays(%q) = %v, want %v", tt.in, got, tt.expected)
			}
		}
	}
}

func TestSubjectColorStable(t *testing.T) {
	if subjectColor("CS") != subjectColor("CS") {
		t.Fatalf("color should be deterministic per subject")
	}
}

func TestEntriesByDaySortsAndSeparatesUnscheduled(t *testing.T) {
	rows := []snapshot.Row{
		scheduleRow("10002", "M", "1400 - 1550", "Ryder Hall 210"),
		scheduleRow("10001", "MW", "0900 - 1015", "Ryder Hall 210"),
		scheduleRow("10003", "TBA", "TBA", "TBA"),
	}

	byDay, unscheduled := entriesByDay(rows)

	monday := byDay["Monday"]
	if len(monday) != 2 {
		t.Fatalf("monday entries = %d, want 2", len(monday))
	}
	if monday[0].CRN != "10001" || monday[1].CRN != "10002" {
		t.Fatalf("monday order = %s, %s; want earliest start first", monday[0].CRN, monday[1].CRN)
	}
	if len(byDay["Wednesday"]) != 1 {
		t.Fatalf("wednesday entries = %d, want 1", len(byDay["Wednesday"]))
	}
	if len(unscheduled) != 1 || unscheduled[0].CRN != "10003" {
		t.Fatalf("unscheduled = %v, want the TBA row", unscheduled)
	}
}

func TestWriteCalendar(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calendar.html")

	rows := []snapshot.Row{
		scheduleRow("10001", "MR", "0930 - 1045", "Ryder Hall 210"),
		scheduleRow("10002", "TBA", "TBA", "TBA"),
	}
	if err := WriteCalendar(path, rows); err != nil {
		t.Fatalf("write calendar: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read calendar: %v", err)
	}
	out := string(data)
	for _, want := range []string{"Monday", "Thursday", "CS 5200", "09:30", "10:45", "No scheduled meeting time"} {
		if !strings.Contains(out, want) {
			t.Fatalf("calendar output missing %q", want)
		}
	}
}

func TestWriteClassroomSchedules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "classrooms.html")

	rows := []snapshot.Row{
		scheduleRow("10001", "MW", "0900 - 1015", "Ryder Hall 210"),
		scheduleRow("10002", "F", "1300 - 1450", "Shillman Hall 105"),
		scheduleRow("10003", "TBA", "TBA", "TBA"),
	}
	if err := WriteClassroomSchedules(path, rows); err != nil {
		t.Fatalf("write classroom schedules: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read classrooms: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "Ryder Hall 210") || !strings.Contains(out, "Shillman Hall 105") {
		t.Fatalf("classroom output missing room sections")
	}
	if strings.Contains(out, ">TBA</a>") {
		t.Fatalf("TBA classroom should be excluded")
	}
}

func TestAnchorID(t *testing.T) {
	if got := anchorID("Ryder Hall 210"); got != "Ryder-Hall-210" {
		t.Fatalf("anchorID = %q, want Ryder-Hall-210", got)
	}
}
