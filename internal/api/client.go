// Package api is a typed client for the shift-report backend (JSON over HTTP).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	u "github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/shiftreport/internal/model"
)

// HeaderRequestID carries a per-call id for correlating client and backend logs.
const HeaderRequestID = "X-Request-ID"

// Client issues one request per operation and never returns Go errors:
// failures come back inside Result.
type Client struct {
	base    string
	http    *http.Client
	log     *zap.Logger
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client (its transport gets wrapped for logging).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			cp := *hc
			c.http = &cp
		}
	}
}

// WithLogger sets the logger used for request metadata.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithTimeout sets the per-request timeout. It wins over the timeout of a
// client passed to WithHTTPClient regardless of option order.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New constructs a Client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
		log:  zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.timeout > 0 {
		c.http.Timeout = c.timeout
	}
	c.http.Transport = newLoggingTransport(c.http.Transport, c.log)
	return c
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string { return c.base }

// ---- operations ----

// GetUser resolves a user by platform id. Unknown ids come back with errs.ErrNotFound.
func (c *Client) GetUser(ctx context.Context, tgID string) Result[model.User] {
	return do[model.User](ctx, c, http.MethodGet, "/user/"+url.PathEscape(tgID), nil)
}

type registerRequest struct {
	TgID       string `json:"tgId"`
	DriverName string `json:"driverName"`
	Username   string `json:"username"`
}

// RegisterUser creates a user for the platform id.
func (c *Client) RegisterUser(ctx context.Context, tgID, driverName, username string) Result[model.User] {
	return do[model.User](ctx, c, http.MethodPost, "/register",
		registerRequest{TgID: tgID, DriverName: driverName, Username: username})
}

type changeNameRequest struct {
	TgID    string `json:"tgId"`
	NewName string `json:"newName"`
}

// ChangeNameResult is the success payload of ChangeName.
type ChangeNameResult struct {
	Success bool `json:"success"`
}

// ChangeName renames the user.
func (c *Client) ChangeName(ctx context.Context, tgID, newName string) Result[ChangeNameResult] {
	return do[ChangeNameResult](ctx, c, http.MethodPost, "/changeName",
		changeNameRequest{TgID: tgID, NewName: newName})
}

// FormData fetches vehicles, trailers and recent projects.
func (c *Client) FormData(ctx context.Context) Result[model.FormReferenceData] {
	return do[model.FormReferenceData](ctx, c, http.MethodGet, "/formData", nil)
}

type submitRequest struct {
	TgID       string              `json:"tgId"`
	ReportData model.ReportPayload `json:"reportData"`
}

// SubmitReport creates a report. Not idempotent: callers must not retry automatically.
func (c *Client) SubmitReport(ctx context.Context, tgID string, p model.ReportPayload) Result[model.SubmitResult] {
	return do[model.SubmitResult](ctx, c, http.MethodPost, "/report",
		submitRequest{TgID: tgID, ReportData: p})
}

// Reports returns the most recent reports of the user, newest first as sent by the backend.
func (c *Client) Reports(ctx context.Context, tgID string) Result[[]model.Report] {
	return do[[]model.Report](ctx, c, http.MethodGet, "/reports/"+url.PathEscape(tgID), nil)
}

type editRequest struct {
	TgID       string              `json:"tgId"`
	ReportData model.ReportPayload `json:"reportData"`
	Reason     string              `json:"reason"`
}

// EditReport replaces the payload of an existing report. Not idempotent either.
func (c *Client) EditReport(ctx context.Context, reportID int64, tgID string, p model.ReportPayload, reason string) Result[model.SubmitResult] {
	return do[model.SubmitResult](ctx, c, http.MethodPut, "/report/"+strconv.FormatInt(reportID, 10),
		editRequest{TgID: tgID, ReportData: p, Reason: reason})
}

// ---- plumbing ----

func do[T any](ctx context.Context, c *Client, method, path string, body any) Result[T] {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			// не должно случаться, все тела простые структуры
			return Result[T]{Err: &Error{Message: fmt.Sprintf("encode request: %v", err)}}
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rdr)
	if err != nil {
		c.log.Error("build request", zap.String("path", path), zap.Error(err))
		return Result[T]{Err: transportError()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if id, err := u.NewV4(); err == nil {
		req.Header.Set(HeaderRequestID, id.String())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("api network error", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return Result[T]{Err: transportError()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Warn("api read body", zap.String("path", path), zap.Error(err))
		return Result[T]{Err: transportError()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result[T]{Err: decodeFailure(resp.StatusCode, raw)}
	}
	if resp.StatusCode == http.StatusNoContent {
		return Result[T]{}
	}

	var env envelope[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		c.log.Warn("api decode body", zap.String("path", path), zap.Error(err))
		return Result[T]{Err: transportError()}
	}
	if env.Error != "" {
		return Result[T]{Err: serverError(resp.StatusCode, env.Error, env.Details)}
	}
	return Result[T]{Data: env.Data}
}

// decodeFailure builds the error for a non-2xx response: the envelope's error
// if the body parses, "HTTP error <status>" otherwise.
func decodeFailure(status int, raw []byte) *Error {
	fallback := fmt.Sprintf("HTTP error %d", status)
	var body struct {
		Error string `json:"error"`
	}
	if len(raw) == 0 || json.Unmarshal(raw, &body) != nil {
		return serverError(status, fallback, nil)
	}
	msg := body.Error
	if msg == "" {
		msg = fallback
	}
	return serverError(status, msg, json.RawMessage(raw))
}
