package banner

import (
	"context"
	"log/slog"
	"time"

	"bannerwatch/models"
	"bannerwatch/normalize"
)

// ScrapeTerm runs the full pipeline for one term: authorization,
// paginated search, then per-course enrichment and normalization.
// Authorization failure aborts with an empty section list; individual
// enrichment failures degrade that record's fields instead of dropping
// the record.
func (c *Client) ScrapeTerm(ctx context.Context, termCode string) (*models.ScrapeResult, error) {
	result := &models.ScrapeResult{StartTime: time.Now()}

	if err := c.Authorize(ctx, termCode); err != nil {
		result.EndTime = time.Now()
		result.RequestCount = c.requestCount
		result.ErrorCount = c.errorCount
		result.RetryCount = c.retryCount
		result.ErrorsByType = c.snapshotErrors()
		return result, err
	}

	raws := c.SearchCourses(ctx, termCode)
	slog.Info("starting data enrichment", slog.Int("courses", len(raws)))

	for i, raw := range raws {
		crn := raw.CourseReferenceNumber

		if (i+1)%10 == 0 || i+1 == len(raws) {
			slog.Info("processing course",
				slog.Int("index", i+1),
				slog.Int("total", len(raws)),
				slog.String("subject", raw.Subject),
				slog.String("course_number", raw.CourseNumber),
			)
		}

		meetings := c.FetchMeetingTimes(ctx, termCode, crn)
		components := normalize.Meetings(meetings)
		enrollment := c.FetchEnrollment(ctx, termCode, crn)
		creditLow, creditHigh, credits := normalize.FormatCredits(
			raw.CreditHourLow.String(), raw.CreditHourHigh.String())

		section := &models.CourseSection{
			CRN:                 crn,
			Subject:             raw.Subject,
			CourseNumber:        raw.CourseNumber,
			Title:               orTBA(raw.CourseTitle),
			Section:             orTBA(raw.SequenceNumber),
			Instructor:          normalize.Instructor(meetings),
			MeetingsRaw:         normalize.MeetingsRaw(meetings),
			Days:                components.Days,
			Time:                components.Time,
			Campus:              components.Campus,
			Classroom:           components.Classroom,
			InstructionalMethod: orTBA(raw.InstructionalMethodDescription),
			CreditLow:           creditLow,
			CreditHigh:          creditHigh,
			Credits:             credits,
			Enrollment:          enrollment,
		}

		result.Sections = append(result.Sections, section)
		c.Metrics.IncSections()

		sleep(ctx, c.cfg.CourseDelay)
		if ctx.Err() != nil {
			slog.Warn("scrape interrupted", slog.Int("processed", len(result.Sections)))
			break
		}
	}

	result.EndTime = time.Now()
	result.PageCount = (len(raws) + c.cfg.PageMaxSize - 1) / c.cfg.PageMaxSize
	result.RequestCount = c.requestCount
	result.ErrorCount = c.errorCount
	result.RetryCount = c.retryCount
	result.ErrorsByType = c.snapshotErrors()

	slog.Info("data enrichment complete", slog.Int("sections", len(result.Sections)))
	return result, nil
}

func orTBA(s string) string {
	if s == "" {
		return "TBA"
	}
	return s
}
