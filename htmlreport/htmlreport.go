// Package htmlreport renders static, browsable HTML views of a CSV
// snapshot: a weekly calendar and per-classroom schedule grids.
package htmlreport

import (
	"fmt"
	"html/template"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"bannerwatch/snapshot"
)

var dayOrder = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

var dayLetters = map[rune]string{
	'M': "Monday",
	'T': "Tuesday",
	'W': "Wednesday",
	'R': "Thursday",
	'F': "Friday",
	'S': "Saturday",
	'U': "Sunday",
}

var subjectColors = []string{
	"#3498db", "#e74c3c", "#2ecc71", "#f39c12", "#9b59b6",
	"#1abc9c", "#e67e22", "#34495e", "#16a085", "#c0392b",
	"#27ae60", "#d35400", "#8e44ad", "#2980b9", "#f1c40f",
}

var timeRangeRe = regexp.MustCompile(`(\d{4})\s*-\s*(\d{4})`)

// Entry is one scheduled block of a course section on one day.
type Entry struct {
	CRN        string
	Course     string
	Title      string
	Section    string
	Instructor string
	Classroom  string
	Start      string
	End        string
	Color      string

	startMinutes int
}

// parseTimeRange parses a "HHMM - HHMM" display time into clock strings
// and a sortable start offset. TBA or single times yield no entry.
func parseTimeRange(timeStr string) (start, end string, startMinutes int, ok bool) {
	m := timeRangeRe.FindStringSubmatch(timeStr)
	if m == nil {
		return "", "", 0, false
	}
	format := func(hhmm string) (string, int) {
		hour, _ := strconv.Atoi(hhmm[:2])
		min, _ := strconv.Atoi(hhmm[2:])
		return fmt.Sprintf("%02d:%02d", hour, min), hour*60 + min
	}
	var startMin int
	start, startMin = format(m[1])
	end, _ = format(m[2])
	return start, end, startMin, true
}

// parseDays expands day letter codes into full day names, skipping
// anything that is not a known letter (TBA, meeting-type fallbacks).
func parseDays(days string) []string {
	if days == "TBA" {
		return nil
	}
	var names []string
	for _, letter := range days {
		if name, ok := dayLetters[letter]; ok {
			names = append(names, name)
		}
	}
	return names
}

// subjectColor assigns a stable color per subject code.
func subjectColor(subject string) string {
	sum := 0
	for _, c := range subject {
		sum += int(c)
	}
	return subjectColors[sum%len(subjectColors)]
}

// entriesByDay distributes snapshot rows over weekdays. Rows without a
// parseable time range or day letters are collected as unscheduled.
func entriesByDay(rows []snapshot.Row) (map[string][]Entry, []Entry) {
	byDay := make(map[string][]Entry)
	var unscheduled []Entry

	for _, row := range rows {
		entry := Entry{
			CRN:        row.CRN(),
			Course:     row.Get("Subject") + " " + row.Get("Course Number"),
			Title:      row.Get("Title"),
			Section:    row.Get("Section"),
			Instructor: row.Get("Instructor"),
			Classroom:  row.Get("Classroom"),
			Color:      subjectColor(row.Get("Subject")),
		}

		start, end, startMinutes, ok := parseTimeRange(row.Get("Time"))
		days := parseDays(row.Get("Days"))
		if !ok || len(days) == 0 {
			unscheduled = append(unscheduled, entry)
			continue
		}
		entry.Start = start
		entry.End = end
		entry.startMinutes = startMinutes

		for _, day := range days {
			byDay[day] = append(byDay[day], entry)
		}
	}

	for day := range byDay {
		entries := byDay[day]
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].startMinutes != entries[j].startMinutes {
				return entries[i].startMinutes < entries[j].startMinutes
			}
			return entries[i].CRN < entries[j].CRN
		})
	}
	return byDay, unscheduled
}

// Day pairs a weekday name with its sorted schedule entries.
type Day struct {
	Name    string
	Entries []Entry
}

func orderedDays(byDay map[string][]Entry) []Day {
	days := make([]Day, 0, len(dayOrder))
	for _, name := range dayOrder {
		days = append(days, Day{Name: name, Entries: byDay[name]})
	}
	return days
}

func writeTemplate(path string, tmpl *template.Template, data any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create html file: %w", err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// anchorID turns a classroom name into a fragment-safe identifier.
func anchorID(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, name)
	return strings.Trim(cleaned, "-")
}
