package banner

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
)

func searchPageBody(crns ...string) string {
	body := `{"success": true, "totalCount": 3, "data": [`
	for i, crn := range crns {
		if i > 0 {
			body += ","
		}
		body += fmt.Sprintf(`{"courseReferenceNumber":%q,"subject":"CS","courseNumber":"101"}`, crn)
	}
	return body + `]}`
}

func TestSearchCoursesPaginates(t *testing.T) {
	c, transport := newTestClient(t)

	pages := map[string]string{
		"0": searchPageBody("10001", "10002"),
		"2": searchPageBody("10003"),
	}
	requests := 0
	transport.RegisterResponder("GET", testBase+"/searchResults/searchResults",
		func(req *http.Request) (*http.Response, error) {
			requests++
			body, ok := pages[req.URL.Query().Get("pageOffset")]
			if !ok {
				return httpmock.NewStringResponse(200, searchPageBody()), nil
			}
			return httpmock.NewStringResponse(200, body), nil
		})

	courses := c.SearchCourses(context.Background(), "202630")
	if len(courses) != 3 {
		t.Fatalf("courses = %d, want 3", len(courses))
	}
	if requests != 2 {
		t.Fatalf("requests = %d, want 2", requests)
	}
	if courses[2].CourseReferenceNumber != "10003" {
		t.Fatalf("last crn = %q, want 10003", courses[2].CourseReferenceNumber)
	}
}

func TestSearchCoursesExactPageFetchesNext(t *testing.T) {
	// A page of exactly pageMaxSize rows cannot prove exhaustion, so one
	// more fetch is made and comes back empty.
	c, transport := newTestClient(t)

	requests := 0
	transport.RegisterResponder("GET", testBase+"/searchResults/searchResults",
		func(req *http.Request) (*http.Response, error) {
			requests++
			if req.URL.Query().Get("pageOffset") == "0" {
				return httpmock.NewStringResponse(200, searchPageBody("10001", "10002")), nil
			}
			return httpmock.NewStringResponse(200, searchPageBody()), nil
		})

	courses := c.SearchCourses(context.Background(), "202630")
	if len(courses) != 2 {
		t.Fatalf("courses = %d, want 2", len(courses))
	}
	if requests != 2 {
		t.Fatalf("requests = %d, want 2", requests)
	}
}

func TestSearchCoursesHonorsMaxPages(t *testing.T) {
	c, transport := newTestClient(t)
	c.cfg.MaxPages = 1

	requests := 0
	transport.RegisterResponder("GET", testBase+"/searchResults/searchResults",
		func(req *http.Request) (*http.Response, error) {
			requests++
			return httpmock.NewStringResponse(200, searchPageBody("10001", "10002")), nil
		})

	courses := c.SearchCourses(context.Background(), "202630")
	if len(courses) != 2 {
		t.Fatalf("courses = %d, want 2", len(courses))
	}
	if requests != 1 {
		t.Fatalf("requests = %d, want 1", requests)
	}
}

func TestSearchCoursesStopsOnFailureFlag(t *testing.T) {
	c, transport := newTestClient(t)
	transport.RegisterResponder("GET", testBase+"/searchResults/searchResults",
		httpmock.NewStringResponder(200, `{"success": false, "totalCount": 0, "data": []}`))

	if courses := c.SearchCourses(context.Background(), "202630"); len(courses) != 0 {
		t.Fatalf("courses = %d, want 0", len(courses))
	}
}

func TestSearchCoursesKeepsPartialOnError(t *testing.T) {
	c, transport := newTestClient(t)

	transport.RegisterResponder("GET", testBase+"/searchResults/searchResults",
		func(req *http.Request) (*http.Response, error) {
			if req.URL.Query().Get("pageOffset") == "0" {
				return httpmock.NewStringResponse(200, searchPageBody("10001", "10002")), nil
			}
			return httpmock.NewStringResponse(502, "bad gateway"), nil
		})

	courses := c.SearchCourses(context.Background(), "202630")
	if len(courses) != 2 {
		t.Fatalf("courses = %d, want the first page retained", len(courses))
	}
	if c.errorsByType["transport"] != 1 {
		t.Fatalf("errorsByType = %v, want one transport error", c.errorsByType)
	}
}

func TestSearchCoursesSendsFilters(t *testing.T) {
	c, transport := newTestClient(t)
	c.cfg.Campus = "OAK"

	var query map[string]string
	transport.RegisterResponder("GET", testBase+"/searchResults/searchResults",
		func(req *http.Request) (*http.Response, error) {
			query = map[string]string{}
			for k := range req.URL.Query() {
				query[k] = req.URL.Query().Get(k)
			}
			return httpmock.NewStringResponse(200, searchPageBody("10001")), nil
		})

	c.SearchCourses(context.Background(), "202630")

	for key, want := range map[string]string{
		"txt_term":    "202630",
		"txt_campus":  "OAK",
		"pageMaxSize": "2",
		"sortColumn":  "subjectDescription",
	} {
		if got := query[key]; got != want {
			t.Fatalf("query[%s] = %q, want %q", key, got, want)
		}
	}
}
