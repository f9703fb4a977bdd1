package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/hamed0406/sanitycheck/internal/domain"
	"github.com/hamed0406/sanitycheck/internal/probe"
	"github.com/hamed0406/sanitycheck/internal/repo/memory"
	"github.com/hamed0406/sanitycheck/internal/runner"
)

type stubProber map[string]int

func (s stubProber) Probe(_ context.Context, _, target string) (*probe.Response, error) {
	code, ok := s[target]
	if !ok {
		return nil, errors.New("connection refused")
	}
	return &probe.Response{StatusCode: code}, nil
}

type brokenStore struct{}

func (brokenStore) Append(context.Context, *domain.ReportEntry) error { return errors.New("disk full") }
func (brokenStore) QueryByRun(context.Context, string) ([]domain.ReportEntry, error) {
	return nil, errors.New("relation \"sanity_tests\" does not exist")
}

type countingObserver struct{ reports []*domain.RunReport }

func (c *countingObserver) Observe(_ context.Context, rep *domain.RunReport) {
	c.reports = append(c.reports, rep)
}

var battery = []probe.Spec{
	probe.Basic("Check if PGMaker2 API is reachable", "GET", "health", 200),
	probe.Basic("Check if API returns valid database credentials", "GET", "creds", 200),
}

func TestTriggerThenFetch(t *testing.T) {
	store := memory.New()
	obs := &countingObserver{}
	svc := New(zap.NewNop(), runner.New(zap.NewNop(), stubProber{"health": 200, "creds": 500}, store), store, battery)
	svc.Observer = obs
	ctx := context.Background()

	rep, err := svc.TriggerRun(ctx)
	if err != nil {
		t.Fatalf("TriggerRun: %v", err)
	}
	if len(rep.Report) != 2 || rep.Report[0].Result != domain.Pass || rep.Report[1].Result != domain.Fail {
		t.Fatalf("unexpected report %+v", rep.Report)
	}
	if len(obs.reports) != 1 {
		t.Fatalf("observer should see the run once")
	}

	first, err := svc.FetchRun(ctx, rep.RunID)
	if err != nil {
		t.Fatalf("FetchRun: %v", err)
	}
	if diff := cmp.Diff(rep.Report, first); diff != "" {
		t.Fatalf("fetched entries differ (-report +fetched):\n%s", diff)
	}
	second, _ := svc.FetchRun(ctx, rep.RunID)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("lookup not idempotent:\n%s", diff)
	}

	rep2, _ := svc.TriggerRun(ctx)
	if rep2.RunID == rep.RunID {
		t.Fatalf("two runs share run id %s", rep.RunID)
	}
}

func TestFetchRun_NotFound(t *testing.T) {
	store := memory.New()
	svc := New(nil, runner.New(nil, stubProber{}, store), store, battery)
	if _, err := svc.FetchRun(context.Background(), "unknown"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestStorageErrorsPropagate(t *testing.T) {
	obs := &countingObserver{}
	svc := New(nil, runner.New(nil, stubProber{"health": 200}, brokenStore{}), brokenStore{}, battery)
	svc.Observer = obs

	_, err := svc.TriggerRun(context.Background())
	var se *runner.StorageError
	if !errors.As(err, &se) {
		t.Fatalf("want storage error, got %v", err)
	}
	if len(obs.reports) != 0 {
		t.Fatalf("aborted runs must not be observed")
	}

	_, err = svc.FetchRun(context.Background(), "any")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("want generic store error, got %v", err)
	}
}
