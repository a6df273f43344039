package banner

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"bannerwatch/models"
)

// SearchCourses retrieves all course rows for a term/campus filter,
// paging until the result set is exhausted or the configured page
// ceiling is hit. A failed page aborts pagination and returns whatever
// was accumulated so far.
func (c *Client) SearchCourses(ctx context.Context, termCode string) []models.RawCourse {
	params := map[string]string{
		"txt_subject":      "",
		"txt_courseNumber": "",
		"txt_term":         termCode,
		"txt_campus":       c.cfg.Campus,
		"startDatepicker":  "",
		"endDatepicker":    "",
		"pageMaxSize":      strconv.Itoa(c.cfg.PageMaxSize),
		"sortColumn":       "subjectDescription",
		"sortDirection":    "asc",
	}

	var all []models.RawCourse
	pageOffset := 0
	pageCount := 0

	for {
		params["pageOffset"] = strconv.Itoa(pageOffset)
		pageCount++

		slog.Info("fetching search page",
			slog.Int("page", pageCount),
			slog.Int("offset", pageOffset),
		)

		c.Metrics.IncRequest("search")
		res, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(params).
			Get("/searchResults/searchResults")
		if err != nil {
			c.recordError(ErrTransport{Err: err})
			slog.Error("error searching courses", slog.Any("error", err))
			break
		}
		if res.IsError() {
			c.recordError(ErrTransport{Err: errStatus(res.StatusCode())})
			slog.Error("error searching courses", slog.Int("status", res.StatusCode()))
			break
		}

		var page models.SearchPage
		if err := json.Unmarshal(res.Body(), &page); err != nil {
			c.recordError(ErrParse{Err: err})
			slog.Error("malformed search response", slog.Any("error", err))
			break
		}
		if !page.Success {
			slog.Error("search failed", slog.String("body", truncate(string(res.Body()), 200)))
			break
		}
		if len(page.Data) == 0 {
			slog.Info("no more courses found")
			break
		}

		all = append(all, page.Data...)
		slog.Info("search page retrieved",
			slog.Int("page_rows", len(page.Data)),
			slog.Int("total_rows", len(all)),
		)

		if c.cfg.MaxPages > 0 && pageCount >= c.cfg.MaxPages {
			slog.Info("reached maximum pages limit", slog.Int("max_pages", c.cfg.MaxPages))
			break
		}
		// A short page means the last page.
		if len(page.Data) < c.cfg.PageMaxSize {
			slog.Info("reached last page")
			break
		}

		pageOffset += c.cfg.PageMaxSize
		sleep(ctx, c.cfg.PageDelay)
		if ctx.Err() != nil {
			break
		}
	}

	slog.Info("course search complete", slog.Int("total_courses", len(all)))
	return all
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
