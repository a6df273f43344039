package banner

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	"bannerwatch/models"

	"github.com/PuerkitoBio/goquery"
)

// FetchMeetingTimes fetches the meeting-time/faculty detail for one CRN.
// Responses are cached per run so a CRN seen again is not refetched. A
// failure yields an empty response; the caller still emits the record
// with defaulted fields.
func (c *Client) FetchMeetingTimes(ctx context.Context, termCode, crn string) models.MeetingTimesResponse {
	cacheKey := termCode + "/" + crn
	if cached, ok := c.meetingTimes.Get(cacheKey); ok {
		return cached
	}

	c.Metrics.IncRequest("meeting_times")
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"term":                  termCode,
			"courseReferenceNumber": crn,
		}).
		Get("/searchResults/getFacultyMeetingTimes")
	if err != nil {
		c.recordError(ErrTransport{Err: err})
		slog.Error("error fetching meeting times", slog.String("crn", crn), slog.Any("error", err))
		return models.MeetingTimesResponse{}
	}
	if res.IsError() {
		c.recordError(ErrTransport{Err: errStatus(res.StatusCode())})
		slog.Error("error fetching meeting times", slog.String("crn", crn), slog.Int("status", res.StatusCode()))
		return models.MeetingTimesResponse{}
	}

	var detail models.MeetingTimesResponse
	if err := json.Unmarshal(res.Body(), &detail); err != nil {
		c.recordError(ErrParse{Err: err})
		slog.Error("malformed meeting times response", slog.String("crn", crn), slog.Any("error", err))
		return models.MeetingTimesResponse{}
	}

	c.meetingTimes.Add(cacheKey, detail)
	return detail
}

// FetchEnrollment fetches the enrollment/waitlist counters for one CRN.
// The service answers with structured JSON, JSON wrapping an HTML
// fragment, or a bare HTML fragment; each shape is handled and every
// field defaults to "N/A" independently.
func (c *Client) FetchEnrollment(ctx context.Context, termCode, crn string) models.Enrollment {
	c.Metrics.IncRequest("enrollment")
	res, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"term":                  termCode,
			"courseReferenceNumber": crn,
		}).
		Post("/searchResults/getEnrollmentInfo")
	if err != nil {
		c.recordError(ErrTransport{Err: err})
		slog.Error("error fetching enrollment info", slog.String("crn", crn), slog.Any("error", err))
		return models.NewEnrollment()
	}
	if res.IsError() {
		c.recordError(ErrTransport{Err: errStatus(res.StatusCode())})
		slog.Error("error fetching enrollment info", slog.String("crn", crn), slog.Int("status", res.StatusCode()))
		return models.NewEnrollment()
	}

	return c.decodeEnrollment(res.Body())
}

// decodeEnrollment resolves the three response shapes the enrollment
// endpoint is known to produce.
func (c *Client) decodeEnrollment(body []byte) models.Enrollment {
	var generic map[string]json.RawMessage
	if err := json.Unmarshal(body, &generic); err != nil {
		// Not JSON: treat the body as an HTML fragment.
		return c.parseEnrollmentHTML(string(body))
	}

	// JSON object: an HTML fragment may hide inside any string field.
	for _, raw := range generic {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		if strings.Contains(s, "<span") {
			return c.parseEnrollmentHTML(s)
		}
	}

	// No HTML found: try the structured shape.
	var structured struct {
		Actual             *string `json:"enrollment_actual"`
		Maximum            *string `json:"enrollment_maximum"`
		SeatsAvailable     *string `json:"enrollment_seats_available"`
		WaitlistCapacity   *string `json:"waitlist_capacity"`
		WaitlistActual     *string `json:"waitlist_actual"`
		WaitlistsAvailable *string `json:"waitlist_seats_available"`
	}
	info := models.NewEnrollment()
	if err := json.Unmarshal(body, &structured); err != nil {
		c.recordError(ErrParse{Err: err})
		return info
	}
	assign := func(dst *string, src *string) {
		if src != nil && *src != "" {
			*dst = *src
		}
	}
	assign(&info.Actual, structured.Actual)
	assign(&info.Maximum, structured.Maximum)
	assign(&info.SeatsAvailable, structured.SeatsAvailable)
	assign(&info.WaitlistCapacity, structured.WaitlistCapacity)
	assign(&info.WaitlistActual, structured.WaitlistActual)
	assign(&info.WaitlistsAvailable, structured.WaitlistsAvailable)
	return info
}

// parseEnrollmentHTML extracts the six labeled counters from an HTML
// fragment by locating label/value span pairs. When the structural pass
// decodes none of the fields, the regex fallback runs over the same
// fragment.
func (c *Client) parseEnrollmentHTML(html string) models.Enrollment {
	info := models.NewEnrollment()
	if html == "" {
		return info
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(html)))
	if err != nil {
		c.recordError(ErrParse{Err: err})
		return c.parseEnrollmentRegex(html)
	}

	matched := 0
	doc.Find("span.status-bold").Each(func(_ int, span *goquery.Selection) {
		label := strings.ToLower(strings.TrimSpace(span.Text()))
		value := strings.TrimSpace(span.NextAllFiltered(`span[dir="ltr"]`).First().Text())
		if value == "" {
			return
		}
		if setEnrollmentField(&info, label, value) {
			matched++
		}
	})

	if matched == 0 {
		return c.parseEnrollmentRegex(html)
	}
	return info
}

func setEnrollmentField(info *models.Enrollment, label, value string) bool {
	switch {
	case strings.Contains(label, "enrollment actual"):
		info.Actual = value
	case strings.Contains(label, "enrollment maximum"):
		info.Maximum = value
	case strings.Contains(label, "enrollment seats available"):
		info.SeatsAvailable = value
	case strings.Contains(label, "waitlist capacity"):
		info.WaitlistCapacity = value
	case strings.Contains(label, "waitlist actual"):
		info.WaitlistActual = value
	case strings.Contains(label, "waitlist seats available"):
		info.WaitlistsAvailable = value
	default:
		return false
	}
	return true
}

var enrollmentPatterns = []struct {
	field func(*models.Enrollment) *string
	re    *regexp.Regexp
}{
	{func(e *models.Enrollment) *string { return &e.Actual },
		regexp.MustCompile(`(?is)Enrollment Actual:.*?<span dir="ltr">\s*(\d+)\s*</span>`)},
	{func(e *models.Enrollment) *string { return &e.Maximum },
		regexp.MustCompile(`(?is)Enrollment Maximum:.*?<span dir="ltr">\s*(\d+)\s*</span>`)},
	{func(e *models.Enrollment) *string { return &e.SeatsAvailable },
		regexp.MustCompile(`(?is)Enrollment Seats Available:.*?<span dir="ltr">\s*(\d+)\s*</span>`)},
	{func(e *models.Enrollment) *string { return &e.WaitlistCapacity },
		regexp.MustCompile(`(?is)Waitlist Capacity:.*?<span dir="ltr">\s*(\d+)\s*</span>`)},
	{func(e *models.Enrollment) *string { return &e.WaitlistActual },
		regexp.MustCompile(`(?is)Waitlist Actual:.*?<span dir="ltr">\s*(\d+)\s*</span>`)},
	{func(e *models.Enrollment) *string { return &e.WaitlistsAvailable },
		regexp.MustCompile(`(?is)Waitlist Seats Available:.*?<span dir="ltr">\s*(\d+)\s*</span>`)},
}

// parseEnrollmentRegex is the fallback extraction over the six expected
// labels. Fields that fail to match keep their "N/A" default.
func (c *Client) parseEnrollmentRegex(html string) models.Enrollment {
	info := models.NewEnrollment()
	if html == "" {
		return info
	}
	for _, p := range enrollmentPatterns {
		if m := p.re.FindStringSubmatch(html); m != nil {
			*p.field(&info) = m[1]
		}
	}
	return info
}
