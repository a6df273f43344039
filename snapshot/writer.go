// Package snapshot persists normalized course-section records as CSV/JSON
// snapshot files and detects changes between successive snapshots.
package snapshot

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"bannerwatch/models"
)

// Header is the fixed CSV column order of a snapshot file. CRN is the
// diff primary key.
var Header = []string{
	"Term", "Term Code", "CRN", "Subject", "Course Number", "Title",
	"Section", "Instructor", "Days", "Time", "Campus", "Classroom",
	"Instructional Method", "Credits", "Enrollment Actual", "Enrollment Maximum",
}

// OutputWriter defines the interface for snapshot output.
type OutputWriter interface {
	WriteTerm(term models.Term, sections []*models.CourseSection) error
	Close() error
	Validate() error
}

// BackupExisting renames an existing snapshot file by inserting an _OLD
// suffix before its extension, overwriting any previous backup. It
// reports whether a backup was created. The rename pair is not atomic;
// a crash in between can leave a stale backup.
func BackupExisting(filename string) (bool, error) {
	if _, err := os.Stat(filename); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat %q: %w", filename, err)
	}

	backup := BackupName(filename)
	if _, err := os.Stat(backup); err == nil {
		if err := os.Remove(backup); err != nil {
			return false, fmt.Errorf("remove old backup: %w", err)
		}
		slog.Info("removed existing backup", slog.String("file", backup))
	}

	if err := os.Rename(filename, backup); err != nil {
		return false, fmt.Errorf("backup %q: %w", filename, err)
	}
	slog.Info("backed up existing file",
		slog.String("from", filename),
		slog.String("to", backup),
	)
	return true, nil
}

// BackupName derives the _OLD backup path for a snapshot file.
func BackupName(filename string) string {
	ext := filepath.Ext(filename)
	return strings.TrimSuffix(filename, ext) + "_OLD" + ext
}

// CSVWriter writes course sections to a CSV snapshot file.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter initialises a CSV writer and writes the header row.
func NewCSVWriter(filename string) (*CSVWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create csv file: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(Header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("flush csv header: %w", err)
	}

	return &CSVWriter{file: f, writer: writer}, nil
}

// WriteTerm appends one term's sections, tagging each row with the term
// description and code.
func (cw *CSVWriter) WriteTerm(term models.Term, sections []*models.CourseSection) error {
	for _, section := range sections {
		record := []string{
			orNA(term.Description),
			orNA(term.Code),
			section.CRN,
			section.Subject,
			section.CourseNumber,
			section.Title,
			section.Section,
			section.Instructor,
			section.Days,
			section.Time,
			section.Campus,
			section.Classroom,
			section.InstructionalMethod,
			section.Credits,
			section.Enrollment.Actual,
			section.Enrollment.Maximum,
		}
		if err := cw.writer.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return nil
}

// Close flushes and closes the file handle.
func (cw *CSVWriter) Close() error {
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv writer: %w", err)
	}
	return cw.file.Close()
}

// Validate ensures the file has content besides the header.
func (cw *CSVWriter) Validate() error {
	info, err := cw.file.Stat()
	if err != nil {
		return fmt.Errorf("stat csv file: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("csv file is empty")
	}
	return nil
}

// jsonRecord is one exported JSONL row: the normalized record plus its
// term tags.
type jsonRecord struct {
	Term     string `json:"term"`
	TermCode string `json:"term_code"`
	*models.CourseSection
}

// JSONWriter writes newline-delimited JSON records.
type JSONWriter struct {
	file    *os.File
	writer  *bufio.Writer
	encoder *json.Encoder
}

// NewJSONWriter initialises the JSON writer.
func NewJSONWriter(filename string) (*JSONWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create json file: %w", err)
	}

	buffer := bufio.NewWriter(f)
	return &JSONWriter{
		file:    f,
		writer:  buffer,
		encoder: json.NewEncoder(buffer),
	}, nil
}

// WriteTerm appends one term's sections in JSONL format.
func (jw *JSONWriter) WriteTerm(term models.Term, sections []*models.CourseSection) error {
	for _, section := range sections {
		record := jsonRecord{
			Term:          term.Description,
			TermCode:      term.Code,
			CourseSection: section,
		}
		if err := jw.encoder.Encode(record); err != nil {
			return fmt.Errorf("encode json record: %w", err)
		}
	}
	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return nil
}

// Close flushes buffers and closes the underlying file.
func (jw *JSONWriter) Close() error {
	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return jw.file.Close()
}

// Validate ensures the JSON file has data.
func (jw *JSONWriter) Validate() error {
	info, err := jw.file.Stat()
	if err != nil {
		return fmt.Errorf("stat json file: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("json file is empty")
	}
	return nil
}

// DualWriter outputs to both CSV and JSON formats simultaneously.
type DualWriter struct {
	csvWriter  *CSVWriter
	jsonWriter *JSONWriter
}

// NewDualWriter creates writers for both CSV and JSON output.
func NewDualWriter(csvFilename, jsonFilename string) (*DualWriter, error) {
	csvWriter, err := NewCSVWriter(csvFilename)
	if err != nil {
		return nil, fmt.Errorf("create csv writer: %w", err)
	}
	jsonWriter, err := NewJSONWriter(jsonFilename)
	if err != nil {
		csvWriter.Close()
		return nil, fmt.Errorf("create json writer: %w", err)
	}
	return &DualWriter{csvWriter: csvWriter, jsonWriter: jsonWriter}, nil
}

// WriteTerm writes one term's sections to both outputs.
func (dw *DualWriter) WriteTerm(term models.Term, sections []*models.CourseSection) error {
	if err := dw.csvWriter.WriteTerm(term, sections); err != nil {
		return fmt.Errorf("csv write: %w", err)
	}
	if err := dw.jsonWriter.WriteTerm(term, sections); err != nil {
		return fmt.Errorf("json write: %w", err)
	}
	return nil
}

// Close closes both writers.
func (dw *DualWriter) Close() error {
	var errs []error
	if err := dw.csvWriter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("csv close: %w", err))
	}
	if err := dw.jsonWriter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("json close: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors: %v", errs)
	}
	return nil
}

// Validate validates both output files.
func (dw *DualWriter) Validate() error {
	var errs []error
	if err := dw.csvWriter.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("csv validation: %w", err))
	}
	if err := dw.jsonWriter.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("json validation: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("validation errors: %v", errs)
	}
	return nil
}

func orNA(s string) string {
	if s == "" {
		return models.NotAvailable
	}
	return s
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
