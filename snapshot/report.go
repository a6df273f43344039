package snapshot

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
)

// WriteReport renders the change report as a sequence of tables, one per
// change class, followed by a summary.
func WriteReport(w io.Writer, report ChangeReport) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "COURSE SCHEDULE COMPARISON REPORT")

	writeRowTable(w, fmt.Sprintf("Added Courses (%d)", len(report.Added)), report.Added, true)
	writeRowTable(w, fmt.Sprintf("Removed Courses (%d)", len(report.Removed)), report.Removed, false)
	writeChangeTable(w, fmt.Sprintf("Time/Location Changes (%d)", len(report.TimeLocationChanged)), report.TimeLocationChanged)
	writeChangeTable(w, fmt.Sprintf("Enrollment Changes (%d)", len(report.EnrollmentChanged)), report.EnrollmentChanged)

	summary := table.NewWriter()
	summary.SetOutputMirror(w)
	summary.SetTitle("Summary")
	summary.AppendRows([]table.Row{
		{"Total changes detected", report.Total()},
		{"Added courses", len(report.Added)},
		{"Removed courses", len(report.Removed)},
		{"Time/location changes", len(report.TimeLocationChanged)},
		{"Enrollment changes", len(report.EnrollmentChanged)},
	})
	summary.Render()
}

func writeRowTable(w io.Writer, title string, rows []Row, withSchedule bool) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)

	if len(rows) == 0 {
		t.AppendRow(table.Row{"none"})
		t.Render()
		return
	}

	if withSchedule {
		t.AppendHeader(table.Row{"CRN", "Course", "Section", "Title", "Days", "Time", "Classroom"})
	} else {
		t.AppendHeader(table.Row{"CRN", "Course", "Section", "Title"})
	}

	sorted := append([]Row(nil), rows...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].CRN() < sorted[j].CRN() })

	for _, row := range sorted {
		course := row.Get("Subject") + " " + row.Get("Course Number")
		if withSchedule {
			t.AppendRow(table.Row{
				row.CRN(), course, row.Get("Section"), row.Get("Title"),
				row.Get("Days"), row.Get("Time"), row.Get("Classroom"),
			})
		} else {
			t.AppendRow(table.Row{row.CRN(), course, row.Get("Section"), row.Get("Title")})
		}
	}
	t.Render()
}

func writeChangeTable(w io.Writer, title string, records []ChangeRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)

	if len(records) == 0 {
		t.AppendRow(table.Row{"none"})
		t.Render()
		return
	}

	t.AppendHeader(table.Row{"CRN", "Course", "Section", "Field", "Old", "New"})
	for _, record := range records {
		course := record.Subject + " " + record.CourseNumber

		fields := make([]string, 0, len(record.Changes))
		for field := range record.Changes {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		for _, field := range fields {
			change := record.Changes[field]
			t.AppendRow(table.Row{record.CRN, course, record.Section, field, change.Old, change.New})
		}
	}
	t.Render()
}
