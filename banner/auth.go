package banner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// authState enumerates the steps of the term authorization handshake.
// The service accepts searches only after a term has been declared on
// the session, and its responses to the declaration POST are heuristic:
// the state machine below makes the fallback paths explicit.
type authState int

const (
	authStateUnauthorized authState = iota
	authStateVisitedSearchPage
	authStateVisitedTermSelection
	authStateSubmitted
	authStateAuthorized
	authStateFailed
)

func (s authState) String() string {
	switch s {
	case authStateUnauthorized:
		return "unauthorized"
	case authStateVisitedSearchPage:
		return "visited_search_page"
	case authStateVisitedTermSelection:
		return "visited_term_selection"
	case authStateSubmitted:
		return "submitted"
	case authStateAuthorized:
		return "authorized"
	case authStateFailed:
		return "failed"
	}
	return "unknown"
}

// nullForwardPath is the sentinel the service returns instead of a real
// forward URL when it has nowhere to redirect.
const nullForwardPath = "/StudentRegistrationSsb/ssb/null/null"

// termAuthResponse decodes the JSON body of the term declaration POST.
// RegAllowed and FwdURL are raw so that key presence can be
// distinguished from a zero value, including an explicit null.
type termAuthResponse struct {
	Success    bool            `json:"success"`
	RegAllowed json.RawMessage `json:"regAllowed"`
	FwdURL     json.RawMessage `json:"fwdURL"`
}

// Authorize brings the session into a state where search queries for
// termCode are accepted. The whole handshake is retried up to
// Config.AuthRetries times with a fixed delay; exhaustion returns
// ErrAuthorization.
func (c *Client) Authorize(ctx context.Context, termCode string) error {
	for attempt := 1; attempt <= c.cfg.AuthRetries; attempt++ {
		if ctx.Err() != nil {
			break
		}
		slog.Info("attempting term authorization",
			slog.String("term", termCode),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", c.cfg.AuthRetries),
		)

		state := c.authorizeOnce(ctx, termCode)
		if state == authStateAuthorized {
			return nil
		}

		slog.Warn("authorization attempt failed",
			slog.String("term", termCode),
			slog.Int("attempt", attempt),
		)
		if attempt < c.cfg.AuthRetries {
			c.retryCount++
			c.Metrics.IncAuthRetries()
			sleep(ctx, c.cfg.AuthRetryDelay)
		}
	}

	err := ErrAuthorization{Err: fmt.Errorf("term %s: all %d attempts failed", termCode, c.cfg.AuthRetries)}
	c.recordError(err)
	return err
}

// authorizeOnce walks the handshake once and returns the terminal state.
func (c *Client) authorizeOnce(ctx context.Context, termCode string) authState {
	state := authStateUnauthorized

	// Step 1: the class search landing page sets the tokens the term
	// declaration expects.
	c.Metrics.IncRequest("auth")
	res, err := c.http.R().
		SetContext(ctx).
		Get("/classSearch/classSearch")
	if err != nil || res.IsError() {
		c.logAuthFailure(state, res, err)
		return authStateFailed
	}
	state = authStateVisitedSearchPage
	slog.Debug("authorization state", slog.String("state", state.String()))

	// Step 2: term selection page.
	c.Metrics.IncRequest("auth")
	res, err = c.http.R().
		SetContext(ctx).
		SetQueryParam("mode", "search").
		Get("/term/termSelection")
	if err != nil || res.IsError() {
		c.logAuthFailure(state, res, err)
		return authStateFailed
	}
	state = authStateVisitedTermSelection
	slog.Debug("authorization state", slog.String("state", state.String()))

	// Step 3: declare the term.
	res, err = c.submitTerm(ctx, termCode)
	if err != nil {
		c.logAuthFailure(state, res, err)
		return authStateFailed
	}
	state = authStateSubmitted
	slog.Debug("authorization state", slog.String("state", state.String()))

	state = c.inspectTermResponse(ctx, termCode, res)
	slog.Debug("authorization state", slog.String("state", state.String()))
	return state
}

func (c *Client) submitTerm(ctx context.Context, termCode string) (*resty.Response, error) {
	c.Metrics.IncRequest("auth")
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Requested-With", "XMLHttpRequest").
		SetHeader("Accept", "application/json, text/javascript, */*; q=0.01").
		SetHeader("Referer", c.cfg.BaseURL+"/term/termSelection?mode=search").
		SetFormData(map[string]string{"term": termCode}).
		Post("/term/search")
	if err != nil {
		return nil, ErrTransport{Err: err}
	}
	if res.IsError() {
		return res, ErrTransport{Err: fmt.Errorf("http status %d", res.StatusCode())}
	}
	return res, nil
}

// inspectTermResponse classifies the term declaration response. The
// service answers with one of: a success/regAllowed JSON body, a JSON
// body carrying a forward URL (possibly the null sentinel), or an HTML
// page after an internal redirect.
func (c *Client) inspectTermResponse(ctx context.Context, termCode string, res *resty.Response) authState {
	var body termAuthResponse
	if err := json.Unmarshal(res.Body(), &body); err != nil {
		// A successful redirect sometimes lands on HTML instead of JSON.
		if res.StatusCode() == http.StatusOK {
			slog.Info("non-JSON authorization response treated as success",
				slog.String("term", termCode))
			return authStateAuthorized
		}
		c.recordError(ErrParse{Err: err})
		return authStateFailed
	}

	if body.Success || body.RegAllowed != nil {
		slog.Info("session authorized", slog.String("term", termCode))
		return authStateAuthorized
	}

	if body.FwdURL != nil {
		var fwd string
		if err := json.Unmarshal(body.FwdURL, &fwd); err != nil {
			// Present but null: no concrete target, same as the sentinel.
			fwd = ""
		}
		return c.followForward(ctx, termCode, fwd)
	}

	slog.Error("unexpected authorization response", slog.String("body", string(res.Body())))
	return authStateFailed
}

// followForward handles the forward-URL branch: a real URL is visited
// and the term declaration resubmitted once; the null sentinel falls
// back to probing the class search page directly.
func (c *Client) followForward(ctx context.Context, termCode, fwdURL string) authState {
	if fwdURL != "" && fwdURL != nullForwardPath {
		if !strings.HasPrefix(fwdURL, "http") {
			fwdURL = c.origin + fwdURL
		}

		c.Metrics.IncRequest("auth")
		res, err := c.http.R().
			SetContext(ctx).
			Get(fwdURL)
		if err != nil || res.IsError() {
			c.logAuthFailure(authStateSubmitted, res, err)
			return authStateFailed
		}
		slog.Debug("visited forward url", slog.String("url", fwdURL))

		res, err = c.submitTerm(ctx, termCode)
		if err != nil {
			c.logAuthFailure(authStateSubmitted, res, err)
			return authStateFailed
		}

		var body termAuthResponse
		if err := json.Unmarshal(res.Body(), &body); err != nil {
			c.recordError(ErrParse{Err: err})
			return authStateFailed
		}
		if body.Success || body.RegAllowed != nil {
			slog.Info("session authorized after redirect", slog.String("term", termCode))
			return authStateAuthorized
		}
		return authStateFailed
	}

	// Null sentinel: probe the class search page and accept a 200
	// optimistically.
	slog.Info("null forward url, probing class search page directly")
	c.Metrics.IncRequest("auth")
	res, err := c.http.R().
		SetContext(ctx).
		Get("/classSearch/classSearch")
	if err == nil && res.StatusCode() == http.StatusOK {
		slog.Info("class search page accessible", slog.String("term", termCode))
		return authStateAuthorized
	}
	c.logAuthFailure(authStateSubmitted, res, err)
	return authStateFailed
}

func (c *Client) logAuthFailure(state authState, res *resty.Response, err error) {
	if err != nil {
		c.recordError(ErrTransport{Err: err})
		slog.Error("authorization step failed",
			slog.String("state", state.String()),
			slog.Any("error", err),
		)
		return
	}
	status := 0
	if res != nil {
		status = res.StatusCode()
	}
	c.recordError(ErrTransport{Err: fmt.Errorf("http status %d", status)})
	slog.Error("authorization step failed",
		slog.String("state", state.String()),
		slog.Int("status", status),
	)
}
