package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/hamed0406/sanitycheck/internal/domain"
	"github.com/hamed0406/sanitycheck/internal/probe"
	"github.com/hamed0406/sanitycheck/internal/repo/memory"
	"github.com/hamed0406/sanitycheck/internal/runner"
	"github.com/hamed0406/sanitycheck/internal/service"
)

// ---- test helpers ----

type fakeProber map[string]int

func (f fakeProber) Probe(_ context.Context, _, target string) (*probe.Response, error) {
	if code, ok := f[target]; ok {
		return &probe.Response{StatusCode: code}, nil
	}
	return nil, fmt.Errorf("dial tcp: lookup %s: no such host", target)
}

type failingRuns struct{ err error }

func (f failingRuns) TriggerRun(context.Context) (*domain.RunReport, error) { return nil, f.err }
func (f failingRuns) FetchRun(context.Context, string) ([]domain.ReportEntry, error) {
	return nil, f.err
}

func setupRouter(t *testing.T, runs RunService) http.Handler {
	t.Helper()
	// very high rate limits to avoid flakiness in tests
	return NewServer(zap.NewNop(), runs).Router(10_000, 10_000)
}

func realService() *service.Service {
	store := memory.New()
	battery := []probe.Spec{
		probe.Basic("Check if PGMaker2 API is reachable", "GET", "health", 200),
		probe.Basic("Check if API returns valid database credentials", "GET", "creds", 200),
	}
	r := runner.New(zap.NewNop(), fakeProber{"health": 200, "creds": 503}, store)
	return service.New(zap.NewNop(), r, store, battery)
}

type wireEntry struct {
	RunID       string  `json:"run_id"`
	Description string  `json:"description"`
	Result      string  `json:"result"`
	Error       *string `json:"error"`
}

// ---- tests ----

func TestRunTestsThenFetchResults(t *testing.T) {
	ts := httptest.NewServer(setupRouter(t, realService()))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/run-tests")
	if err != nil {
		t.Fatalf("GET /run-tests: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	var run struct {
		RunID  string      `json:"run_id"`
		Report []wireEntry `json:"report"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&run); err != nil {
		t.Fatalf("decode run: %v", err)
	}
	if run.RunID == "" || len(run.Report) != 2 {
		t.Fatalf("unexpected run body %+v", run)
	}
	if run.Report[0].Result != "Pass" || run.Report[0].Error != nil {
		t.Fatalf("first entry: %+v", run.Report[0])
	}
	if run.Report[1].Result != "Fail" || run.Report[1].Error == nil || *run.Report[1].Error != "Expected status 200, but got 503" {
		t.Fatalf("second entry: %+v", run.Report[1])
	}

	resp2, err := http.Get(ts.URL + "/results/" + run.RunID)
	if err != nil {
		t.Fatalf("GET /results: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp2.StatusCode)
	}
	var rows []wireEntry
	if err := json.NewDecoder(resp2.Body).Decode(&rows); err != nil {
		t.Fatalf("decode rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("want 2 rows, got %d", len(rows))
	}
	for i := range rows {
		if rows[i].RunID != run.RunID || rows[i].Description != run.Report[i].Description || rows[i].Result != run.Report[i].Result {
			t.Fatalf("row %d mismatch: %+v vs %+v", i, rows[i], run.Report[i])
		}
	}
}

func TestResults_NotFound(t *testing.T) {
	ts := httptest.NewServer(setupRouter(t, realService()))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/results/00000000-0000-0000-0000-000000000000")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("want 404, got %d", resp.StatusCode)
	}
	var body map[string]string
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body["message"] != "No results found for this run ID" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestStoreFailuresAre500(t *testing.T) {
	ts := httptest.NewServer(setupRouter(t, failingRuns{err: errors.New("connection refused")}))
	defer ts.Close()

	for path, msg := range map[string]string{
		"/run-tests": "Error running tests",
		"/results/x": "Error fetching results",
	} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		var body map[string]string
		_ = json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusInternalServerError {
			t.Fatalf("%s: want 500, got %d", path, resp.StatusCode)
		}
		if body["message"] != msg || body["error"] != "connection refused" {
			t.Fatalf("%s: unexpected body %v", path, body)
		}
	}
}

func TestHealthz(t *testing.T) {
	rr := httptest.NewRecorder()
	setupRouter(t, realService()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("unexpected healthz %d %q", rr.Code, rr.Body.String())
	}
}

func TestRunTests_RateLimited(t *testing.T) {
	h := NewServer(zap.NewNop(), realService()).Router(60, 1)

	codes := []int{}
	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/run-tests", nil)
		req.RemoteAddr = "9.9.9.9:1000"
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("want [200 429], got %v", codes)
	}
}
