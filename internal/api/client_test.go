package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	u "github.com/gofrs/uuid/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/shiftreport/internal/errs"
	"github.com/and161185/shiftreport/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreAnyFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreAnyFunction("net/http.(*persistConn).writeLoop"),
	)
}

// captured is the last request seen by the fake backend.
type captured struct {
	mu     sync.Mutex
	method string
	path   string
	body   map[string]any
	reqID  string
	ctype  string
	calls  int
}

func (c *captured) record(r *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.method = r.Method
	c.path = r.URL.Path
	c.reqID = r.Header.Get(HeaderRequestID)
	c.ctype = r.Header.Get("Content-Type")
	c.body = nil
	if b, _ := io.ReadAll(r.Body); len(b) > 0 {
		_ = json.Unmarshal(b, &c.body)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// newBackend wires the backend routes the client talks to.
func newBackend(t *testing.T) (*Client, *captured) {
	t.Helper()
	seen := &captured{}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen.record(r)
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/user/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch chi.URLParam(r, "id") {
		case "1":
			writeJSON(w, http.StatusOK, map[string]any{"data": model.User{TgID: "1", DriverName: "Иванов Иван", Role: model.RoleDriver}})
		case "boom":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("<html>oops</html>"))
		case "soft":
			writeJSON(w, http.StatusOK, map[string]any{"error": "not_found"})
		default:
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "not_found"})
		}
	})
	r.Post("/register", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"data": model.User{TgID: "2", DriverName: "Петров Петр"}})
	})
	r.Post("/changeName", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/formData", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
			"vehicles":       []map[string]string{{"vehicle_name": "КАМАЗ"}},
			"trailers":       []map[string]string{{"vehicle_name": "ПР-1"}},
			"recentProjects": []map[string]string{{"project": "Сериал"}},
		}})
	})
	r.Post("/report", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": model.SubmitResult{Success: true, ReportID: 7}})
	})
	r.Get("/reports/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": []model.Report{
			{ReportID: 9, Status: "ok", Payload: model.ReportPayload{Project: "Новый"}},
			{ReportID: 8, Status: "edited", Payload: model.ReportPayload{Project: "Старый"}},
		}})
	})
	r.Put("/report/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") != "42" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "bad id", "details": map[string]any{"id": chi.URLParam(r, "id")}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": model.SubmitResult{Success: true, ReportID: 42}})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", WithHTTPClient(srv.Client()), WithLogger(zaptest.NewLogger(t))), seen
}

func TestClient_GetUser(t *testing.T) {
	c, seen := newBackend(t)
	ctx := context.Background()

	res := c.GetUser(ctx, "1")
	require.True(t, res.OK())
	require.NotNil(t, res.Data)
	require.Equal(t, "Иванов Иван", res.Data.DriverName)
	require.Equal(t, http.MethodGet, seen.method)
	require.Equal(t, "/user/1", seen.path)
	_, err := u.FromString(seen.reqID)
	require.NoError(t, err, "request id must be a uuid")

	res = c.GetUser(ctx, "404")
	require.False(t, res.OK())
	require.True(t, errors.Is(res.Err, errs.ErrNotFound))
	require.Equal(t, "not_found", res.Err.Message)
	require.Equal(t, http.StatusNotFound, res.Err.Status)

	// not_found внутри 2xx-конверта тоже распознаётся
	res = c.GetUser(ctx, "soft")
	require.ErrorIs(t, res.Err, errs.ErrNotFound)
}

func TestClient_NonJSONErrorFallsBackToStatus(t *testing.T) {
	c, _ := newBackend(t)

	res := c.GetUser(context.Background(), "boom")
	require.False(t, res.OK())
	require.Equal(t, "HTTP error 500", res.Err.Message)
	require.Nil(t, res.Err.Details)
	require.NotErrorIs(t, res.Err, errs.ErrTransport)
}

func TestClient_StructuredErrorKeepsDetails(t *testing.T) {
	c, _ := newBackend(t)

	res := c.EditReport(context.Background(), 41, "1", model.ReportPayload{}, "причина")
	require.False(t, res.OK())
	require.Equal(t, "bad id", res.Err.Message)

	var details struct {
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(res.Err.Details, &details))
	require.Equal(t, "41", details.Details["id"])
}

func TestClient_NoContentIsEmptySuccess(t *testing.T) {
	c, seen := newBackend(t)

	res := c.ChangeName(context.Background(), "1", "Новое Имя")
	require.True(t, res.OK())
	require.Nil(t, res.Data)
	require.Equal(t, map[string]any{"tgId": "1", "newName": "Новое Имя"}, seen.body)
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := New(base, WithLogger(zaptest.NewLogger(t)))
	res := c.FormData(context.Background())
	require.False(t, res.OK())
	require.ErrorIs(t, res.Err, errs.ErrTransport)
	require.Equal(t, "Failed to fetch", res.Err.Message)
	require.Equal(t, "fallback", Result[int]{}.Message("fallback"))
	require.Equal(t, "Failed to fetch", res.Message("fallback"))
}

func TestClient_TimeoutSurvivesOptionOrder(t *testing.T) {
	hc := &http.Client{Timeout: time.Minute}
	for name, opts := range map[string][]Option{
		"timeout first": {WithTimeout(50 * time.Millisecond), WithHTTPClient(hc)},
		"timeout last":  {WithHTTPClient(hc), WithTimeout(50 * time.Millisecond)},
	} {
		c := New("http://backend", opts...)
		assert.Equal(t, 50*time.Millisecond, c.http.Timeout, name)
	}
	assert.Equal(t, time.Minute, hc.Timeout, "caller's client is not mutated")
	assert.Equal(t, time.Minute, New("http://backend", WithHTTPClient(hc)).http.Timeout)

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	c := New(srv.URL, WithTimeout(50*time.Millisecond), WithHTTPClient(&http.Client{}))
	res := c.FormData(context.Background())
	require.ErrorIs(t, res.Err, errs.ErrTransport)
}

func TestClient_CancelledContextIsTransportFailure(t *testing.T) {
	c, _ := newBackend(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := c.GetUser(ctx, "1")
	require.ErrorIs(t, res.Err, errs.ErrTransport)
}

func TestClient_InvalidSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, WithHTTPClient(srv.Client()))
	res := c.FormData(context.Background())
	require.ErrorIs(t, res.Err, errs.ErrTransport)
}

func TestClient_RegisterAndReports(t *testing.T) {
	c, seen := newBackend(t)
	ctx := context.Background()

	reg := c.RegisterUser(ctx, "2", "Петров Петр", "petrov")
	require.True(t, reg.OK())
	require.Equal(t, "/register", seen.path)
	require.Equal(t, "application/json", seen.ctype)
	require.Equal(t, map[string]any{"tgId": "2", "driverName": "Петров Петр", "username": "petrov"}, seen.body)

	list := c.Reports(ctx, "2")
	require.True(t, list.OK())
	ids := []int64{}
	for _, r := range *list.Data {
		ids = append(ids, r.ReportID)
	}
	// порядок бэкенда сохраняется
	if diff := cmp.Diff([]int64{9, 8}, ids); diff != "" {
		t.Fatalf("report order mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_SubmitAndEdit(t *testing.T) {
	c, seen := newBackend(t)
	ctx := context.Background()
	p := model.ReportPayload{Date: "2026-10-17", Project: "Сериал", Vehicle: "КАМАЗ"}

	sub := c.SubmitReport(ctx, "1", p)
	require.True(t, sub.OK())
	require.True(t, sub.Data.Success)
	require.EqualValues(t, 7, sub.Data.ReportID)
	require.Equal(t, http.MethodPost, seen.method)
	rd, ok := seen.body["reportData"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Сериал", rd["project"])
	assert.Equal(t, "1", seen.body["tgId"])

	ed := c.EditReport(ctx, 42, "1", p, "опечатка")
	require.True(t, ed.OK())
	require.Equal(t, http.MethodPut, seen.method)
	require.Equal(t, "/report/42", seen.path)
	require.Equal(t, "опечатка", seen.body["reason"])
	require.Equal(t, 2, seen.calls)
}

func TestClient_FormData(t *testing.T) {
	c, _ := newBackend(t)

	res := c.FormData(context.Background())
	require.True(t, res.OK())
	require.Equal(t, []string{"КАМАЗ"}, res.Data.VehicleNames())
	require.Equal(t, []string{"ПР-1"}, res.Data.TrailerNames())
	require.Equal(t, []string{"Сериал"}, res.Data.ProjectNames())
}

func TestClient_PathEscaping(t *testing.T) {
	c, seen := newBackend(t)
	_ = c.GetUser(context.Background(), "a/b")
	require.Equal(t, "/user/a/b", seen.path) // r.URL.Path is decoded
	require.Equal(t, "http", c.BaseURL()[:4])
}

type panicRT struct{}

func (panicRT) RoundTrip(*http.Request) (*http.Response, error) { panic("transport exploded") }

func TestLoggingTransport_RecoversPanic(t *testing.T) {
	t.Parallel()

	c := New("http://backend.invalid", WithHTTPClient(&http.Client{Transport: panicRT{}}), WithLogger(zaptest.NewLogger(t)))
	res := c.GetUser(context.Background(), "1")
	require.ErrorIs(t, res.Err, errs.ErrTransport)
}
