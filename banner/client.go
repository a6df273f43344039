// Package banner implements the session-stateful scraping pipeline against
// the Banner student registration service: session setup, term
// authorization, paginated course search, and per-course enrichment.
package banner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"bannerwatch/config"
	"bannerwatch/models"

	"github.com/go-resty/resty/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

const meetingTimesCacheSize = 4096

// Client wraps a cookie-bearing HTTP client and the cross-request state
// the registration service expects. One client is created per run and
// reused for every request.
type Client struct {
	cfg     *config.Config
	http    *resty.Client
	origin  string
	Metrics *Metrics

	meetingTimes *lru.Cache[string, models.MeetingTimesResponse]

	requestCount int
	errorCount   int
	retryCount   int
	errorsByType map[string]int
}

// NewClient builds a session client configured from cfg.
func NewClient(cfg *config.Config) (*Client, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(cfg.BaseURL)
	httpClient.SetCookieJar(jar)
	httpClient.SetTimeout(cfg.Timeout)
	httpClient.SetHeader("User-Agent", cfg.UserAgent)
	httpClient.SetHeader("Accept-Language", "en-US,en;q=0.5")
	httpClient.SetHeader("Connection", "keep-alive")

	c := &Client{
		cfg:          cfg,
		http:         httpClient,
		origin:       parsed.Scheme + "://" + parsed.Host,
		Metrics:      NewMetrics(),
		errorsByType: make(map[string]int),
	}

	c.meetingTimes, err = lru.New[string, models.MeetingTimesResponse](meetingTimesCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create meeting-time cache: %w", err)
	}

	httpClient.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		c.requestCount++
		c.Metrics.ObserveDuration(res.Time())
		if res.StatusCode() >= http.StatusBadRequest {
			slog.Error("non-200 response",
				slog.Int("status", res.StatusCode()),
				slog.String("url", res.Request.URL),
			)
		}
		return nil
	})

	return c, nil
}

// SetTransport replaces the underlying HTTP transport. Used by tests to
// inject a mock.
func (c *Client) SetTransport(rt http.RoundTripper) {
	c.http.GetClient().Transport = rt
}

// InitSession seeds session cookies by visiting the service landing page.
// Failure is logged but non-fatal: the authorization handshake may still
// succeed on its own.
func (c *Client) InitSession(ctx context.Context) {
	c.Metrics.IncRequest("init")
	res, err := c.http.R().
		SetContext(ctx).
		Get(c.cfg.LandingURL)
	if err != nil {
		c.recordError(ErrTransport{Err: err})
		slog.Warn("failed to initialize session", slog.Any("error", err))
		return
	}
	if res.IsError() {
		c.recordError(ErrTransport{Err: fmt.Errorf("http status %d", res.StatusCode())})
		slog.Warn("failed to initialize session", slog.Int("status", res.StatusCode()))
		return
	}
	slog.Info("session initialized")
}

// FetchTerms lists available terms, newest first as returned by the
// service.
func (c *Client) FetchTerms(ctx context.Context, max int) ([]models.Term, error) {
	c.Metrics.IncRequest("terms")

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"offset":     "1",
			"max":        fmt.Sprintf("%d", max),
			"searchTerm": "",
		}).
		Get("/classSearch/getTerms")
	if err != nil {
		c.recordError(ErrTransport{Err: err})
		return nil, ErrTransport{Err: err}
	}
	if res.IsError() {
		err := ErrTransport{Err: fmt.Errorf("http status %d", res.StatusCode())}
		c.recordError(err)
		return nil, err
	}

	// Decoded by hand: the service does not always set a JSON
	// content type.
	var terms []models.Term
	if err := json.Unmarshal(res.Body(), &terms); err != nil {
		perr := ErrParse{Err: err}
		c.recordError(perr)
		return nil, perr
	}

	slog.Info("retrieved terms", slog.Int("count", len(terms)))
	return terms, nil
}

// ResetForm clears the server-side search form so a fresh search for
// another term is accepted.
func (c *Client) ResetForm(ctx context.Context) {
	c.Metrics.IncRequest("reset")
	res, err := c.http.R().
		SetContext(ctx).
		Post("/classSearch/resetDataForm")
	if err != nil {
		c.recordError(ErrTransport{Err: err})
		slog.Error("error resetting form", slog.Any("error", err))
		return
	}
	if res.IsError() {
		c.recordError(ErrTransport{Err: fmt.Errorf("http status %d", res.StatusCode())})
		slog.Error("error resetting form", slog.Int("status", res.StatusCode()))
		return
	}
	slog.Debug("form reset")
}

// RequestCount reports the number of HTTP requests issued so far.
func (c *Client) RequestCount() int {
	return c.requestCount
}

func (c *Client) recordError(err error) {
	c.errorCount++
	label := errorTypeLabel(err)
	c.errorsByType[label]++
	c.Metrics.IncError(label)
}

func (c *Client) snapshotErrors() map[string]int {
	out := make(map[string]int, len(c.errorsByType))
	for k, v := range c.errorsByType {
		out[k] = v
	}
	return out
}

// sleep waits for d unless the context is cancelled first.
func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
