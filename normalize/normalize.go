// Package normalize converts raw meeting-time structures from the
// registration service into the fixed-shape display fields of a course
// section record.
package normalize

import (
	"strings"

	"bannerwatch/models"
)

// TBA is the placeholder for any display field the service left blank.
const TBA = "TBA"

// Components holds the per-field aggregation of all meeting patterns of
// one section.
type Components struct {
	Days      string
	Time      string
	Campus    string
	Classroom string
}

// DaysOfWeek renders the day flags of one meeting pattern as
// single-letter codes in fixed order. Thursday is R and Sunday is U to
// avoid ambiguity with Tuesday and Saturday. With no flags set it falls
// back to the meetingTimeType field, then to TBA.
func DaysOfWeek(mt models.MeetingTime) string {
	var b strings.Builder
	flags := []struct {
		set  bool
		code string
	}{
		{mt.Monday, "M"},
		{mt.Tuesday, "T"},
		{mt.Wednesday, "W"},
		{mt.Thursday, "R"},
		{mt.Friday, "F"},
		{mt.Saturday, "S"},
		{mt.Sunday, "U"},
	}
	for _, f := range flags {
		if f.set {
			b.WriteString(f.code)
		}
	}
	if b.Len() > 0 {
		return b.String()
	}
	if mt.MeetingTimeType != "" {
		return mt.MeetingTimeType
	}
	return TBA
}

// TimeRange renders the begin/end time of one meeting pattern. A
// missing begin time means the meeting is TBA regardless of end time.
func TimeRange(mt models.MeetingTime) string {
	if mt.BeginTime == "" {
		return TBA
	}
	if mt.EndTime == "" {
		return mt.BeginTime
	}
	return mt.BeginTime + " - " + mt.EndTime
}

// Campus renders the campus of one meeting pattern.
func Campus(mt models.MeetingTime) string {
	if mt.Campus == "" {
		return TBA
	}
	return mt.Campus
}

// Classroom renders building and room of one meeting pattern, preferring
// the building description over the building code.
func Classroom(mt models.MeetingTime) string {
	building := mt.BuildingDescription
	if building == "" {
		building = mt.Building
	}

	switch {
	case building != "" && mt.Room != "":
		return building + " " + mt.Room
	case building != "":
		return building
	case mt.Room != "":
		return mt.Room
	}
	return TBA
}

// joinMeetings joins per-meeting values with "; ", filtering TBA entries
// unless every value is TBA.
func joinMeetings(values []string) string {
	var kept []string
	for _, v := range values {
		if v != TBA {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return TBA
	}
	return strings.Join(kept, "; ")
}

// Meetings aggregates all meeting patterns of a section into the four
// display fields. A section with no meeting data is TBA across the
// board.
func Meetings(detail models.MeetingTimesResponse) Components {
	if len(detail.Fmt) == 0 {
		return Components{Days: TBA, Time: TBA, Campus: TBA, Classroom: TBA}
	}

	var days, times, campuses, classrooms []string
	for _, meeting := range detail.Fmt {
		mt := meeting.MeetingTime
		days = append(days, DaysOfWeek(mt))
		times = append(times, TimeRange(mt))
		campuses = append(campuses, Campus(mt))
		classrooms = append(classrooms, Classroom(mt))
	}

	return Components{
		Days:      joinMeetings(days),
		Time:      joinMeetings(times),
		Campus:    joinMeetings(campuses),
		Classroom: joinMeetings(classrooms),
	}
}

// Instructor collects faculty display names across all meetings,
// preserving first-seen order and deduplicating by exact match.
func Instructor(detail models.MeetingTimesResponse) string {
	var names []string
	seen := make(map[string]struct{})
	for _, meeting := range detail.Fmt {
		for _, faculty := range meeting.Faculty {
			name := faculty.DisplayName
			if name == "" {
				name = TBA
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return TBA
	}
	return strings.Join(names, "; ")
}

// FormatCredits derives the formatted credit-hour string: a single
// value when low and high agree, a "low-high" range when they differ,
// the one present value otherwise, TBA when neither is present.
func FormatCredits(low, high string) (string, string, string) {
	switch {
	case low != "" && high != "":
		if low == high {
			return low, high, low
		}
		return low, high, low + "-" + high
	case low != "":
		return low, high, low
	case high != "":
		return low, high, high
	}
	return low, high, TBA
}

// MeetingsRaw renders the human-readable composite of all meeting
// patterns, kept for archival export.
func MeetingsRaw(detail models.MeetingTimesResponse) string {
	if len(detail.Fmt) == 0 {
		return TBA
	}

	var meetings []string
	for _, meeting := range detail.Fmt {
		mt := meeting.MeetingTime

		days := DaysOfWeek(mt)
		timeStr := ""
		if mt.BeginTime != "" {
			timeStr = mt.BeginTime
			if mt.EndTime != "" {
				timeStr += " - " + mt.EndTime
			}
		}

		var locationParts []string
		if mt.Campus != "" {
			locationParts = append(locationParts, mt.Campus+" |")
		}
		building := mt.BuildingDescription
		if building == "" {
			building = mt.Building
		}
		switch {
		case building != "" && mt.Room != "":
			locationParts = append(locationParts, building+" "+mt.Room)
		case building != "":
			locationParts = append(locationParts, building)
		case mt.Room != "":
			locationParts = append(locationParts, mt.Room)
		}
		location := TBA
		if len(locationParts) > 0 {
			location = strings.Join(locationParts, ", ")
		}

		var parts []string
		if days != "" {
			parts = append(parts, days)
		}
		if timeStr != "" {
			parts = append(parts, timeStr)
		}
		if location != TBA {
			parts = append(parts, location)
		}

		if len(parts) == 0 {
			meetings = append(meetings, TBA)
			continue
		}
		meetings = append(meetings, strings.Join(parts, " | "))
	}

	return strings.Join(meetings, "; ")
}
