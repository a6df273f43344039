package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bannerwatch/models"
)

func row(crn string, overrides map[string]string) Row {
	r := Row{
		"Term": "Spring 2026", "Term Code": "202630",
		"CRN": crn, "Subject": "CS", "Course Number": "5200",
		"Title": "Artificial Intelligence", "Section": "01",
		"Instructor": "Doe, Jane", "Days": "MR", "Time": "0930 - 1045",
		"Campus": "Oakland", "Classroom": "Ryder Hall 210",
		"Instructional Method": "Traditional", "Credits": "4",
		"Enrollment Actual": "25", "Enrollment Maximum": "30",
	}
	for k, v := range overrides {
		r[k] = v
	}
	return r
}

func TestDiffNoChanges(t *testing.T) {
	rows := []Row{row("10001", nil), row("10002", nil)}
	report := Diff(rows, rows)
	if report.Total() != 0 {
		t.Fatalf("total = %d, want 0", report.Total())
	}
}

func TestDiffAddedAndRemoved(t *testing.T) {
	oldRows := []Row{row("10001", nil), row("10002", nil)}
	newRows := []Row{row("10002", nil), row("10003", nil)}

	report := Diff(oldRows, newRows)
	if len(report.Added) != 1 || report.Added[0].CRN() != "10003" {
		t.Fatalf("added = %v, want CRN 10003", report.Added)
	}
	if len(report.Removed) != 1 || report.Removed[0].CRN() != "10001" {
		t.Fatalf("removed = %v, want CRN 10001", report.Removed)
	}
	if len(report.TimeLocationChanged) != 0 || len(report.EnrollmentChanged) != 0 {
		t.Fatalf("common unchanged CRN should produce no field changes")
	}
}

func TestDiffSymmetry(t *testing.T) {
	oldRows := []Row{row("10001", nil), row("10003", map[string]string{"Days": "MW"})}
	newRows := []Row{row("10002", nil), row("10003", map[string]string{"Days": "TR"})}

	forward := Diff(oldRows, newRows)
	backward := Diff(newRows, oldRows)
	if len(forward.Added) != len(backward.Removed) || len(forward.Removed) != len(backward.Added) {
		t.Fatalf("swapping inputs should swap added and removed")
	}

	fwd := forward.TimeLocationChanged[0].Changes["Days"]
	bwd := backward.TimeLocationChanged[0].Changes["Days"]
	if fwd.Old != bwd.New || fwd.New != bwd.Old {
		t.Fatalf("swapped inputs should swap old/new: %+v vs %+v", fwd, bwd)
	}
}

func TestDiffTimeLocationChange(t *testing.T) {
	oldRows := []Row{row("10001", map[string]string{"Days": "MW", "Time": "0900 - 1015"})}
	newRows := []Row{row("10001", map[string]string{"Days": "TR", "Time": "0900 - 1015"})}

	report := Diff(oldRows, newRows)
	if len(report.TimeLocationChanged) != 1 {
		t.Fatalf("time/location changes = %d, want 1", len(report.TimeLocationChanged))
	}
	record := report.TimeLocationChanged[0]
	if record.CRN != "10001" || record.Title != "Artificial Intelligence" {
		t.Fatalf("record = %+v", record)
	}
	change, ok := record.Changes["Days"]
	if !ok {
		t.Fatalf("expected Days change, got %v", record.Changes)
	}
	if change.Old != "MW" || change.New != "TR" {
		t.Fatalf("Days change = %+v, want MW to TR", change)
	}
	if _, ok := record.Changes["Time"]; ok {
		t.Fatalf("unchanged Time should not be reported")
	}
}

func TestDiffEnrollmentChange(t *testing.T) {
	oldRows := []Row{row("10001", map[string]string{"Enrollment Actual": "25"})}
	newRows := []Row{row("10001", map[string]string{"Enrollment Actual": "27"})}

	report := Diff(oldRows, newRows)
	if len(report.EnrollmentChanged) != 1 {
		t.Fatalf("enrollment changes = %d, want 1", len(report.EnrollmentChanged))
	}
	change := report.EnrollmentChanged[0].Changes["Enrollment Actual"]
	if change.Old != "25" || change.New != "27" {
		t.Fatalf("change = %+v, want 25 to 27", change)
	}
}

func TestDiffSkipsEnrollmentNA(t *testing.T) {
	// A failed enrichment writes "N/A"; that must not read as a drop to
	// zero on the next successful run.
	oldRows := []Row{row("10001", map[string]string{"Enrollment Actual": models.NotAvailable})}
	newRows := []Row{row("10001", map[string]string{"Enrollment Actual": "27"})}

	report := Diff(oldRows, newRows)
	if len(report.EnrollmentChanged) != 0 {
		t.Fatalf("N/A enrollment comparison should be skipped, got %v", report.EnrollmentChanged)
	}
}

func TestDiffDoesNotSkipTimeLocationNA(t *testing.T) {
	oldRows := []Row{row("10001", map[string]string{"Classroom": models.NotAvailable})}
	newRows := []Row{row("10001", map[string]string{"Classroom": "Ryder Hall 210"})}

	report := Diff(oldRows, newRows)
	if len(report.TimeLocationChanged) != 1 {
		t.Fatalf("time/location N/A transition should be reported")
	}
}

func TestDiffTrimsWhitespace(t *testing.T) {
	oldRows := []Row{row("10001", map[string]string{"Days": " MR "})}
	newRows := []Row{row("10001", map[string]string{"Days": "MR"})}

	if report := Diff(oldRows, newRows); report.Total() != 0 {
		t.Fatalf("whitespace-only difference should not be reported")
	}
}

func TestDiffPartitionsEveryCRN(t *testing.T) {
	oldRows := []Row{row("10001", nil), row("10002", nil), row("10003", nil)}
	newRows := []Row{row("10002", nil), row("10003", map[string]string{"Days": "F"}), row("10004", nil)}

	report := Diff(oldRows, newRows)
	accounted := len(report.Added) + len(report.Removed)
	common := 0
	oldSet := map[string]bool{}
	for _, r := range oldRows {
		oldSet[r.CRN()] = true
	}
	for _, r := range newRows {
		if oldSet[r.CRN()] {
			common++
		}
	}
	if accounted+common*2 != len(oldRows)+len(newRows) {
		t.Fatalf("added/removed/common do not partition the CRN sets")
	}
}

func TestCompareFilesMissingBaseline(t *testing.T) {
	dir := t.TempDir()
	newPath := filepath.Join(dir, "courses.csv")
	if err := os.WriteFile(newPath, []byte("CRN\n10001\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	report, err := CompareFiles(filepath.Join(dir, "missing.csv"), newPath)
	if err != nil {
		t.Fatalf("missing baseline should not error: %v", err)
	}
	if report.Total() != 0 {
		t.Fatalf("total = %d, want empty report", report.Total())
	}
}

func TestWriteReportRendersSections(t *testing.T) {
	report := Diff(
		[]Row{row("10001", nil), row("10002", map[string]string{"Enrollment Actual": "20"})},
		[]Row{row("10002", map[string]string{"Enrollment Actual": "25"}), row("10003", nil)},
	)

	var sb strings.Builder
	WriteReport(&sb, report)
	out := sb.String()

	for _, want := range []string{"10001", "10003", "Enrollment Actual", "20", "25"} {
		if !strings.Contains(out, want) {
			t.Fatalf("report output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteReportNoChanges(t *testing.T) {
	var sb strings.Builder
	WriteReport(&sb, ChangeReport{})
	out := sb.String()
	if !strings.Contains(out, "none") {
		t.Fatalf("empty report should render placeholder rows, got:\n%s", out)
	}
	if !strings.Contains(out, "Total changes detected") {
		t.Fatalf("summary table missing:\n%s", out)
	}
}
