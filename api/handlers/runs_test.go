package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kilianp07/bessopt/api/models"
	"github.com/kilianp07/bessopt/core/model"
	"github.com/kilianp07/bessopt/infra/store"
)

type fakeRunStore struct {
	runs     []store.StoredRun
	listErr  error
	sched    *model.Schedule
	getErr   error
	gotLimit int
	gotID    string
}

func (f *fakeRunStore) ListRuns(limit int) ([]store.StoredRun, error) {
	f.gotLimit = limit
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.runs, nil
}

func (f *fakeRunStore) GetRun(runID string) (*model.Schedule, error) {
	f.gotID = runID
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.sched, nil
}

func newRunsRouter(s RunStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewRunsHandler(s)
	router.GET("/api/v1/runs", h.ListRuns)
	router.GET("/api/v1/runs/:id", h.GetRun)
	return router
}

func getRuns(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRunsHandlerList(t *testing.T) {
	solvedAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	fake := &fakeRunStore{runs: []store.StoredRun{
		{RunID: "run-2", SolvedAt: solvedAt.Add(time.Hour), ElapsedNS: 2_500_000, Steps: 4, PeakKW: 3.5, TotalCost: 40},
		{RunID: "run-1", SolvedAt: solvedAt, ElapsedNS: 1_000_000, Steps: 2, PeakKW: 5, TotalCost: 500},
	}}
	router := newRunsRouter(fake)

	w := getRuns(router, "/api/v1/runs")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if fake.gotLimit != defaultRunLimit {
		t.Errorf("limit = %d, want %d", fake.gotLimit, defaultRunLimit)
	}
	var resp models.RunListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(resp.Runs))
	}
	if resp.Runs[0].RunID != "run-2" || resp.Runs[1].RunID != "run-1" {
		t.Errorf("run order = %s, %s", resp.Runs[0].RunID, resp.Runs[1].RunID)
	}
	if resp.Runs[0].ElapsedMS != 2.5 {
		t.Errorf("elapsed_ms = %v, want 2.5", resp.Runs[0].ElapsedMS)
	}
}

func TestRunsHandlerListLimit(t *testing.T) {
	fake := &fakeRunStore{}
	router := newRunsRouter(fake)

	w := getRuns(router, "/api/v1/runs?limit=1")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if fake.gotLimit != 1 {
		t.Errorf("limit = %d, want 1", fake.gotLimit)
	}
}

func TestRunsHandlerListInvalidLimit(t *testing.T) {
	router := newRunsRouter(&fakeRunStore{})

	for _, raw := range []string{"abc", "-3"} {
		w := getRuns(router, "/api/v1/runs?limit="+raw)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("limit %q: status = %d, want 400", raw, w.Code)
		}
		if resp := decodeError(t, w); resp.Error.Code != "INVALID_LIMIT" {
			t.Errorf("limit %q: code = %q, want INVALID_LIMIT", raw, resp.Error.Code)
		}
	}
}

func TestRunsHandlerListStoreError(t *testing.T) {
	router := newRunsRouter(&fakeRunStore{listErr: errors.New("disk gone")})

	w := getRuns(router, "/api/v1/runs")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if resp := decodeError(t, w); resp.Error.Code != "STORE_ERROR" {
		t.Errorf("code = %q, want STORE_ERROR", resp.Error.Code)
	}
}

func TestRunsHandlerGet(t *testing.T) {
	sched := &model.Schedule{RunID: "run-7", PeakKW: 4, TotalCost: 44}
	fake := &fakeRunStore{sched: sched}
	router := newRunsRouter(fake)

	w := getRuns(router, "/api/v1/runs/run-7")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if fake.gotID != "run-7" {
		t.Errorf("id = %q, want run-7", fake.gotID)
	}
	var got model.Schedule
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode schedule: %v", err)
	}
	if got.RunID != "run-7" || got.TotalCost != 44 {
		t.Errorf("schedule = %+v", got)
	}
}

func TestRunsHandlerGetNotFound(t *testing.T) {
	fake := &fakeRunStore{getErr: fmt.Errorf("%w: run-9", store.ErrNotFound)}
	router := newRunsRouter(fake)

	w := getRuns(router, "/api/v1/runs/run-9")

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if resp := decodeError(t, w); resp.Error.Code != "RUN_NOT_FOUND" {
		t.Errorf("code = %q, want RUN_NOT_FOUND", resp.Error.Code)
	}
}

func TestRunsHandlerStoreDisabled(t *testing.T) {
	router := newRunsRouter(nil)

	for _, path := range []string{"/api/v1/runs", "/api/v1/runs/run-1"} {
		w := getRuns(router, path)
		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s: status = %d, want 503", path, w.Code)
		}
		if resp := decodeError(t, w); resp.Error.Code != "STORE_DISABLED" {
			t.Errorf("%s: code = %q, want STORE_DISABLED", path, resp.Error.Code)
		}
	}
}
