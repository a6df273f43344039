package snapshot

import (
	"log/slog"
	"os"
	"sort"
	"strings"

	"bannerwatch/models"
)

// Field sets compared by the differ.
var (
	timeLocationFields = []string{"Days", "Time", "Campus", "Classroom"}
	enrollmentFields   = []string{"Enrollment Actual", "Enrollment Maximum"}
)

// FieldChange is one field-level difference between two snapshots.
type FieldChange struct {
	Old string
	New string
}

// ChangeRecord identifies a changed section and the fields that differ.
type ChangeRecord struct {
	CRN          string
	Subject      string
	CourseNumber string
	Title        string
	Section      string
	Changes      map[string]FieldChange
}

// ChangeReport classifies the differences between two snapshots keyed
// by CRN. It is derived and transient; nothing persists it.
type ChangeReport struct {
	Added               []Row
	Removed             []Row
	TimeLocationChanged []ChangeRecord
	EnrollmentChanged   []ChangeRecord
}

// Total counts all detected changes.
func (r ChangeReport) Total() int {
	return len(r.Added) + len(r.Removed) + len(r.TimeLocationChanged) + len(r.EnrollmentChanged)
}

// Diff compares two snapshots. Added holds rows present only in new,
// Removed rows present only in old. For common CRNs the time/location
// fields are compared as trimmed strings; the enrollment fields likewise
// but a field comparison is skipped when either side is "N/A".
func Diff(oldRows, newRows []Row) ChangeReport {
	oldByCRN := keyByCRN(oldRows)
	newByCRN := keyByCRN(newRows)

	var report ChangeReport
	var common []string

	for _, row := range newRows {
		if _, ok := oldByCRN[row.CRN()]; !ok {
			report.Added = append(report.Added, row)
		}
	}
	for _, row := range oldRows {
		if _, ok := newByCRN[row.CRN()]; !ok {
			report.Removed = append(report.Removed, row)
		} else {
			common = append(common, row.CRN())
		}
	}
	sort.Strings(common)

	for _, crn := range common {
		oldRow := oldByCRN[crn]
		newRow := newByCRN[crn]

		if changes := compareFields(oldRow, newRow, timeLocationFields, false); len(changes) > 0 {
			report.TimeLocationChanged = append(report.TimeLocationChanged, changeRecord(crn, newRow, changes))
		}
		if changes := compareFields(oldRow, newRow, enrollmentFields, true); len(changes) > 0 {
			report.EnrollmentChanged = append(report.EnrollmentChanged, changeRecord(crn, newRow, changes))
		}
	}

	return report
}

// CompareFiles diffs two snapshot files. A missing old file is a
// legitimate empty baseline, not an error.
func CompareFiles(oldPath, newPath string) (ChangeReport, error) {
	if _, err := os.Stat(oldPath); os.IsNotExist(err) {
		slog.Warn("old snapshot does not exist, nothing to compare",
			slog.String("file", oldPath))
		return ChangeReport{}, nil
	}

	oldRows, err := LoadRows(oldPath)
	if err != nil {
		return ChangeReport{}, err
	}
	newRows, err := LoadRows(newPath)
	if err != nil {
		return ChangeReport{}, err
	}
	return Diff(oldRows, newRows), nil
}

func keyByCRN(rows []Row) map[string]Row {
	byCRN := make(map[string]Row, len(rows))
	for _, row := range rows {
		byCRN[row.CRN()] = row
	}
	return byCRN
}

func compareFields(oldRow, newRow Row, fields []string, skipNA bool) map[string]FieldChange {
	changes := make(map[string]FieldChange)
	for _, field := range fields {
		oldVal := strings.TrimSpace(oldRow.Get(field))
		newVal := strings.TrimSpace(newRow.Get(field))
		if skipNA && (oldVal == models.NotAvailable || newVal == models.NotAvailable) {
			continue
		}
		if oldVal != newVal {
			changes[field] = FieldChange{Old: oldVal, New: newVal}
		}
	}
	if len(changes) == 0 {
		return nil
	}
	return changes
}

func changeRecord(crn string, newRow Row, changes map[string]FieldChange) ChangeRecord {
	return ChangeRecord{
		CRN:          crn,
		Subject:      newRow.Get("Subject"),
		CourseNumber: newRow.Get("Course Number"),
		Title:        newRow.Get("Title"),
		Section:      newRow.Get("Section"),
		Changes:      changes,
	}
}
