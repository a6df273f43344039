// Package models defines data structures for the course scraper.
package models

import (
	"encoding/json"
	"time"
)

// NotAvailable is the placeholder used for any field the remote service
// did not provide.
const NotAvailable = "N/A"

// Term identifies an academic term as listed by the registration service.
type Term struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Enrollment holds the six enrollment/waitlist counters for a section.
// Every field defaults to "N/A"; fields are filled independently so a
// partially parsed response keeps whatever it could extract.
type Enrollment struct {
	Actual             string `json:"enrollment_actual"`
	Maximum            string `json:"enrollment_maximum"`
	SeatsAvailable     string `json:"enrollment_seats_available"`
	WaitlistCapacity   string `json:"waitlist_capacity"`
	WaitlistActual     string `json:"waitlist_actual"`
	WaitlistsAvailable string `json:"waitlist_seats_available"`
}

// NewEnrollment returns an Enrollment with every field set to "N/A".
func NewEnrollment() Enrollment {
	return Enrollment{
		Actual:             NotAvailable,
		Maximum:            NotAvailable,
		SeatsAvailable:     NotAvailable,
		WaitlistCapacity:   NotAvailable,
		WaitlistActual:     NotAvailable,
		WaitlistsAvailable: NotAvailable,
	}
}

// Summary renders a compact "actual/maximum (+waitlist)" string for logs.
func (e Enrollment) Summary() string {
	if e.Actual == NotAvailable || e.Maximum == NotAvailable {
		return NotAvailable
	}
	s := e.Actual + "/" + e.Maximum
	if e.WaitlistActual != NotAvailable && e.WaitlistActual != "0" {
		s += " (+" + e.WaitlistActual + " waitlist)"
	}
	return s
}

// CourseSection is the normalized unit record produced by one scrape run.
// CRN is the stable primary key within a term.
type CourseSection struct {
	CRN                 string     `csv:"crn" json:"course_reference_number"`
	Subject             string     `csv:"subject" json:"subject"`
	CourseNumber        string     `csv:"course_number" json:"course_number"`
	Title               string     `csv:"title" json:"title"`
	Section             string     `csv:"section" json:"section"`
	Instructor          string     `csv:"instructor" json:"instructor"`
	MeetingsRaw         string     `csv:"-" json:"meeting_times"`
	Days                string     `csv:"days" json:"days"`
	Time                string     `csv:"time" json:"time"`
	Campus              string     `csv:"campus" json:"campus"`
	Classroom           string     `csv:"classroom" json:"classroom"`
	InstructionalMethod string     `csv:"instructional_method" json:"instructional_method"`
	CreditLow           string     `csv:"-" json:"credit_hour_low"`
	CreditHigh          string     `csv:"-" json:"credit_hour_high"`
	Credits             string     `csv:"credits" json:"credits_formatted"`
	Enrollment          Enrollment `csv:"-" json:"enrollment_info"`
}

// RawCourse is one row of the paginated search response, decoded with the
// service's own field names.
type RawCourse struct {
	CourseReferenceNumber          string      `json:"courseReferenceNumber"`
	Subject                        string      `json:"subject"`
	CourseNumber                   string      `json:"courseNumber"`
	CourseTitle                    string      `json:"courseTitle"`
	SequenceNumber                 string      `json:"sequenceNumber"`
	InstructionalMethodDescription string      `json:"instructionalMethodDescription"`
	CreditHourLow                  json.Number `json:"creditHourLow"`
	CreditHourHigh                 json.Number `json:"creditHourHigh"`
}

// SearchPage is the envelope of one search results page.
type SearchPage struct {
	Success    bool        `json:"success"`
	TotalCount int         `json:"totalCount"`
	Data       []RawCourse `json:"data"`
}

// MeetingTime carries one scheduled day/time/location block. The seven
// day booleans come straight from the service.
type MeetingTime struct {
	BeginTime           string `json:"beginTime"`
	EndTime             string `json:"endTime"`
	Monday              bool   `json:"monday"`
	Tuesday             bool   `json:"tuesday"`
	Wednesday           bool   `json:"wednesday"`
	Thursday            bool   `json:"thursday"`
	Friday              bool   `json:"friday"`
	Saturday            bool   `json:"saturday"`
	Sunday              bool   `json:"sunday"`
	Campus              string `json:"campus"`
	Building            string `json:"building"`
	BuildingDescription string `json:"buildingDescription"`
	Room                string `json:"room"`
	MeetingTimeType     string `json:"meetingTimeType"`
}

// Faculty is one instructor entry attached to a meeting.
type Faculty struct {
	DisplayName string `json:"displayName"`
}

// FacultyMeeting pairs a meeting pattern with its instructor list.
type FacultyMeeting struct {
	Faculty     []Faculty   `json:"faculty"`
	MeetingTime MeetingTime `json:"meetingTime"`
}

// MeetingTimesResponse is the meeting-time/faculty detail for one CRN.
type MeetingTimesResponse struct {
	Fmt []FacultyMeeting `json:"fmt"`
}

// ScrapeResult holds the overall result of one term's scrape.
type ScrapeResult struct {
	Sections     []*CourseSection
	StartTime    time.Time
	EndTime      time.Time
	RequestCount int
	PageCount    int
	ErrorCount   int
	RetryCount   int
	ErrorsByType map[string]int
}
