package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/ErikKalkoken/itembuddy/internal/app/ipcbridge"
)

const (
	headerContentTypeKey  = "Content-Type"
	headerContentTypeJSON = "application/json"
	redacted              = "xxxxx"
)

// Values of these query parameters are masked in logs and responses to such requests are never logged.
var secretParams = []string{ipcbridge.TokenParam}

// Query strings of requests to these hosts are not logged.
var queryRedactedHosts = []string{"universalis.app"}

// Headers of price and update APIs reporting their rate limits.
var rateLimitHeaders = []string{"Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"}

// logResponse is a callback for retryablehttp.
// It logs all HTTP errors and also the complete response when log level is DEBUG.
// Responses reporting an exhausted rate limit are always logged.
func logResponse(l retryablehttp.Logger, r *http.Response) {
	isDebug := slog.Default().Enabled(context.Background(), slog.LevelDebug)
	isHTTPError := r.StatusCode >= 400
	rateLimit := rateLimitAttrs(r.Header)
	isRateLimited := r.StatusCode == http.StatusTooManyRequests || r.Header.Get("X-RateLimit-Remaining") == "0"
	if !isDebug && !isHTTPError && !isRateLimited {
		return
	}

	var level slog.Level
	if isHTTPError || isRateLimited {
		level = slog.LevelWarn
	} else {
		level = slog.LevelDebug
	}

	data, err := extractBodyForLog(r)
	if err != nil {
		slog.Error("Failed to extract response body", "error", err)
		data = nil
	}

	args := []any{
		"method", r.Request.Method,
		"url", sanitizeURL(r.Request.URL),
		"status", statusText(r),
	}
	if len(rateLimit) > 0 {
		args = append(args, slog.Group("rateLimit", rateLimit...))
	}
	if isDebug {
		args = append(args, "header", r.Header)
	}
	args = append(args, "body", data)
	slog.Log(context.Background(), level, "HTTP response", args...)
}

// sanitizeURL returns a URL for logging with secrets removed.
func sanitizeURL(u *url.URL) string {
	x := *u
	if slices.ContainsFunc(queryRedactedHosts, func(h string) bool {
		return x.Hostname() == h || strings.HasSuffix(x.Hostname(), "."+h)
	}) {
		if x.RawQuery != "" {
			x.RawQuery = redacted
		}
		return x.Redacted()
	}
	q := x.Query()
	for _, p := range secretParams {
		if q.Has(p) {
			q.Set(p, redacted)
		}
	}
	x.RawQuery = q.Encode()
	return x.Redacted()
}

// rateLimitAttrs returns the rate limit headers of a response as log attributes.
func rateLimitAttrs(h http.Header) []any {
	var attrs []any
	for _, k := range rateLimitHeaders {
		if v := h.Get(k); v != "" {
			attrs = append(attrs, slog.String(k, v))
		}
	}
	return attrs
}

func hasSecret(u *url.URL) bool {
	q := u.Query()
	return slices.ContainsFunc(secretParams, func(p string) bool {
		return q.Has(p)
	})
}

func extractBodyForLog(r *http.Response) (any, error) {
	x := r.Header.Get(headerContentTypeKey)
	var parts []string
	for _, s := range strings.Split(x, ";") {
		parts = append(parts, strings.Trim(s, " "))
	}
	isJSON := slices.Contains(parts, headerContentTypeJSON)
	if hasSecret(r.Request.URL) {
		if !isJSON {
			return redacted, nil
		}
		return map[string]bool{"redacted": true}, nil
	}
	body, err := copyResponseBody(r)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}
	if !isJSON {
		return string(body), nil
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// copyResponseBody returns a copy of the response body r. It preserves the body.
func copyResponseBody(r *http.Response) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	r.Body = io.NopCloser(bytes.NewBuffer(body))
	return body, nil
}

// statusText returns the status code of a response with adding information.
func statusText(r *http.Response) string {
	var s string
	if r.StatusCode == http.StatusTooManyRequests {
		s = "Rate Limited"
	} else {
		s = http.StatusText(r.StatusCode)
	}
	return fmt.Sprintf("%d %s", r.StatusCode, s)
}
