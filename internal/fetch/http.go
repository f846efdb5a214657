package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/imgajeed76/lttable/internal/logger"
	"github.com/imgajeed76/lttable/internal/record"
	"github.com/imgajeed76/lttable/internal/util"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	defaultUserAgent = "lttable/0.1"
	requestTimeout   = 10 * time.Second
	maxErrorBody     = 512
)

// HTTP fetches rows from a JSON API. The query's API URL is resolved
// against the base URL, and the rest of the query is sent as URL
// parameters (see EncodeParams).
//
// The response body is either a JSON array of row objects or an envelope
// {"rows": [...], "page_count": n}.
type HTTP struct {
	baseURL   *url.URL
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// HTTPOption configures an HTTP fetcher.
type HTTPOption func(*HTTP)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTP) { h.http = c }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(h *HTTP) {
		if d > 0 {
			h.http.Timeout = d
		}
	}
}

// WithRateLimit allows perSecond requests with bursts of burst. A
// non-positive rate disables limiting.
func WithRateLimit(perSecond float64, burst int) HTTPOption {
	return func(h *HTTP) {
		if perSecond <= 0 {
			h.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		h.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewHTTP builds an HTTP fetcher. baseURL may be empty when every API URL
// the table uses is absolute.
func NewHTTP(baseURL string, opts ...HTTPOption) (*HTTP, error) {
	h := &HTTP{
		http:      &http.Client{Timeout: requestTimeout},
		userAgent: defaultUserAgent,
	}
	if strings.TrimSpace(baseURL) != "" {
		base, err := parseBaseURL(baseURL)
		if err != nil {
			return nil, err
		}
		h.baseURL = base
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Fetch implements Fetcher.
func (h *HTTP) Fetch(ctx context.Context, q Query) (Result, error) {
	if h == nil {
		return Result{}, fmt.Errorf("http fetcher is nil")
	}
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return Result{}, fmt.Errorf("rate limit: %w", err)
		}
	}

	target, err := h.resolve(q.APIURL)
	if err != nil {
		return Result{}, err
	}
	values := target.Query()
	for k, vs := range EncodeParams(q) {
		values[k] = vs
	}
	target.RawQuery = values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", h.userAgent)
	reqID := RequestID(ctx)
	if reqID != "" {
		req.Header.Set("X-Request-Id", reqID)
	}

	log := logger.Log.WithFields(logrus.Fields{"request": reqID, "url": target.String()})
	start := time.Now()
	resp, err := h.http.Do(req)
	if err != nil {
		log.WithError(err).Warn("request failed")
		return Result{}, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	log.WithFields(logrus.Fields{"status": resp.StatusCode, "took": time.Since(start)}).Debug("response")

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			return Result{}, fmt.Errorf("api %s returned status %d", q.APIURL, resp.StatusCode)
		}
		return Result{}, fmt.Errorf("api %s returned status %d: %s", q.APIURL, resp.StatusCode, msg)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read response: %w", err)
	}
	return DecodeResult(body)
}

// Endpoint returns the URL Fetch would call for q.
func (h *HTTP) Endpoint(q Query) (string, error) {
	target, err := h.resolve(q.APIURL)
	if err != nil {
		return "", err
	}
	return target.String(), nil
}

func (h *HTTP) resolve(apiURL string) (*url.URL, error) {
	ref, err := url.Parse(strings.TrimSpace(apiURL))
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", apiURL, err)
	}
	if ref.IsAbs() {
		return ref, nil
	}
	if h.baseURL == nil {
		return nil, fmt.Errorf("api url %q is relative and no base url is configured", apiURL)
	}
	return h.baseURL.ResolveReference(ref), nil
}

// envelope is the object form of a response body.
type envelope struct {
	Rows      []record.Record `json:"rows"`
	PageCount int             `json:"page_count"`
}

// DecodeResult parses a response body: either an array of rows or an
// envelope object.
func DecodeResult(body []byte) (Result, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return Result{}, fmt.Errorf("decode response: %w: empty body", util.ErrUnexpectedPayload)
	}
	switch body[0] {
	case '[':
		var rows []record.Record
		if err := json.Unmarshal(body, &rows); err != nil {
			return Result{}, fmt.Errorf("decode response: %w", err)
		}
		return Result{Rows: rows}, nil
	case '{':
		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return Result{}, fmt.Errorf("decode response: %w", err)
		}
		return Result{Rows: env.Rows, PageCount: env.PageCount}, nil
	}
	return Result{}, fmt.Errorf("decode response: %w", util.ErrUnexpectedPayload)
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	u.RawQuery = ""
	u.Fragment = ""
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}
