package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Tiliavir/simple-timesheet/internal/model"
	"github.com/Tiliavir/simple-timesheet/internal/storage"
	"github.com/Tiliavir/simple-timesheet/internal/timesheet"
)

var testNow = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*Server, *storage.Memory) {
	t.Helper()
	store := storage.NewMemory()
	svc := timesheet.NewService(store,
		timesheet.WithClock(func() time.Time { return testNow }),
		timesheet.WithLocation(time.UTC),
	)
	s := NewServer(svc, Config{
		Addr:     "127.0.0.1:0",
		Location: time.UTC,
		Now:      func() time.Time { return testNow },
	})
	return s, store
}

// failingTimesheet simulates an unexpected storage failure.
type failingTimesheet struct{}

func (failingTimesheet) AddEntry(string, civil.Date, string, string, float64) (model.Entry, error) {
	return model.Entry{}, errors.New("storage offline: secret detail")
}
func (failingTimesheet) GetAllEntries() []model.Entry { return []model.Entry{} }
func (failingTimesheet) GenerateCsvOutput() string    { return timesheet.CSVHeader + "\n" }

func validForm() url.Values {
	return url.Values{
		"userName":    {"TestUser"},
		"year":        {"2026"},
		"month":       {"10"},
		"day":         {"17"},
		"project":     {"TestProject"},
		"description": {"TestDescription"},
		"hoursWorked": {"2.5"},
	}
}

func postForm(s http.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/entries", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	return rr
}

func redirectError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusSeeOther)
	}
	loc, err := url.Parse(rr.Header().Get("Location"))
	if err != nil {
		t.Fatalf("bad Location header: %v", err)
	}
	if loc.Path != "/" {
		t.Errorf("redirect path = %q, want /", loc.Path)
	}
	return loc.Query().Get("error")
}

func TestHealthCheck(t *testing.T) {
	s, _ := newTestServer(t)
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q", body["status"])
	}
}

func TestIndexRendersForm(t *testing.T) {
	s, _ := newTestServer(t)
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rr.Body.String()
	for _, want := range []string{
		`action="/entries"`,
		`name="userName"`,
		`name="year" type="number" value="2026"`,
		`value="10"`,
		`value="17"`,
		`name="hoursWorked"`,
		`href="/timesheet.csv"`,
		"(0 entries)",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("index body missing %q", want)
		}
	}
}

func TestIndexEscapesErrorMessage(t *testing.T) {
	s, _ := newTestServer(t)
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/?error="+url.QueryEscape("<script>x</script>"), nil))

	body := rr.Body.String()
	if strings.Contains(body, "<script>") {
		t.Fatal("error message was not escaped")
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Errorf("escaped error message not rendered: %s", body)
	}
}

func TestUnknownPathIsNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestAddEntryFormRedirectsToIndex(t *testing.T) {
	s, store := newTestServer(t)
	rr := postForm(s, validForm())

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rr.Code)
	}
	if got := rr.Header().Get("Location"); got != "/?added=1" {
		t.Errorf("Location = %q, want /?added=1", got)
	}

	entries := store.GetAllEntries()
	if len(entries) != 1 {
		t.Fatalf("stored entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.User != "TestUser" || e.Date != (civil.Date{Year: 2026, Month: 10, Day: 17}) ||
		e.Project != "TestProject" || e.Description != "TestDescription" || e.Hours != 2.5 {
		t.Errorf("stored entry = %+v", e)
	}
}

func TestAddEntryFormRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(url.Values)
		wantMsg string
	}{
		{"impossible day", func(f url.Values) { f.Set("day", "3000") }, msgInvalidDate},
		{"february 30", func(f url.Values) { f.Set("month", "2"); f.Set("day", "30") }, msgInvalidDate},
		{"non-numeric year", func(f url.Values) { f.Set("year", "soon") }, msgInvalidDate},
		{"non-numeric hours", func(f url.Values) { f.Set("hoursWorked", "lots") }, msgInvalidHours},
		{"blank user", func(f url.Values) { f.Set("userName", "  ") }, "User name is required."},
		{"too many hours", func(f url.Values) { f.Set("hoursWorked", "25") }, ""},
		{"future date", func(f url.Values) { f.Set("day", "18") }, "Date cannot be in the future."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, store := newTestServer(t)
			form := validForm()
			tt.mutate(form)

			msg := redirectError(t, postForm(s, form))
			if msg == "" {
				t.Fatal("expected an error message in the redirect")
			}
			if tt.wantMsg != "" && msg != tt.wantMsg {
				t.Errorf("error = %q, want %q", msg, tt.wantMsg)
			}
			if store.Len() != 0 {
				t.Errorf("store len = %d after rejection", store.Len())
			}
		})
	}
}

func TestAddEntryFormHidesUnexpectedErrors(t *testing.T) {
	s := NewServer(failingTimesheet{}, Config{Location: time.UTC, Now: func() time.Time { return testNow }})
	msg := redirectError(t, postForm(s, validForm()))
	if msg != msgTryLater {
		t.Errorf("error = %q, want %q", msg, msgTryLater)
	}
}

func TestCSVDownload(t *testing.T) {
	s, _ := newTestServer(t)
	postForm(s, validForm())

	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/timesheet.csv", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); cd != `attachment; filename="timesheet.csv"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	want := timesheet.CSVHeader + "\nTestUser,2026-10-17,TestProject,TestDescription,2.5,2.5\n"
	if rr.Body.String() != want {
		t.Errorf("body = %q, want %q", rr.Body.String(), want)
	}
}

func postJSON(s http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/entries", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	return rr
}

func TestAPICreateAndListEntries(t *testing.T) {
	s, _ := newTestServer(t)
	in := model.EntryInput{
		User:        "Bob",
		Date:        civil.Date{Year: 2026, Month: 10, Day: 16},
		Project:     "P1",
		Description: "t1",
		Hours:       3,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(in); err != nil {
		t.Fatal(err)
	}

	rr := postJSON(s, buf.String())
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var created model.Entry
	if err := json.NewDecoder(rr.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if created.User != "Bob" || created.Date != in.Date || created.Hours != 3 {
		t.Errorf("created = %+v", created)
	}

	rr = httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/entries", nil))
	var list []model.Entry
	if err := json.NewDecoder(rr.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0] != created {
		t.Errorf("list = %+v, want [%+v]", list, created)
	}
}

func TestAPIListEmptyIsArray(t *testing.T) {
	s, _ := newTestServer(t)
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/entries", nil))
	if got := strings.TrimSpace(rr.Body.String()); got != "[]" {
		t.Errorf("body = %q, want []", got)
	}
}

func TestAPICreateEntryErrors(t *testing.T) {
	tests := []struct {
		name       string
		ts         Timesheet
		body       string
		wantStatus int
		wantError  string
	}{
		{"malformed json", nil, `{"user":`, http.StatusBadRequest, ""},
		{"impossible date", nil, `{"user":"u","date":"2026-02-30","project":"p","description":"d","hours":1}`, http.StatusBadRequest, ""},
		{"validation", nil, `{"user":"","date":"2026-10-17","project":"p","description":"d","hours":1}`, http.StatusBadRequest, "User name is required."},
		{"hours", nil, `{"user":"u","date":"2026-10-17","project":"p","description":"d","hours":0}`, http.StatusBadRequest, ""},
		{"internal", failingTimesheet{}, `{"user":"u","date":"2026-10-17","project":"p","description":"d","hours":1}`, http.StatusInternalServerError, "Failed to create entry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s *Server
			if tt.ts != nil {
				s = NewServer(tt.ts, Config{})
			} else {
				s, _ = newTestServer(t)
			}
			rr := postJSON(s, tt.body)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			var resp ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if resp.Code != tt.wantStatus || resp.Error == "" {
				t.Errorf("error response = %+v", resp)
			}
			if tt.wantError != "" && resp.Error != tt.wantError {
				t.Errorf("error = %q, want %q", resp.Error, tt.wantError)
			}
		})
	}
}

func TestRequestsAreTraced(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	s := NewServer(failingTimesheet{}, Config{TracerProvider: tp})

	s.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	postJSON(s, `{"user":"u","date":"2026-10-17","project":"p","description":"d","hours":1}`)

	spans := sr.Ended()
	if len(spans) != 2 {
		t.Fatalf("ended spans = %d, want 2", len(spans))
	}
	if spans[0].Name() != "GET /healthz" {
		t.Errorf("span name = %q", spans[0].Name())
	}
	if spans[1].Status().Code.String() != "Error" {
		t.Errorf("span status = %v, want Error for a 500", spans[1].Status().Code)
	}
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	s, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestFormDate(t *testing.T) {
	d, err := formDate("2024", "2", "29")
	if err != nil {
		t.Fatalf("formDate leap day: %v", err)
	}
	if d != (civil.Date{Year: 2024, Month: 2, Day: 29}) {
		t.Errorf("formDate = %s", d)
	}
	for _, parts := range [][3]string{{"2025", "2", "29"}, {"2026", "13", "1"}, {"2026", "0", "1"}, {"", "1", "1"}} {
		if _, err := formDate(parts[0], parts[1], parts[2]); !model.IsValidation(err) {
			t.Errorf("formDate(%v) err = %v, want validation error", parts, err)
		}
	}
}
