package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentbase/talentbase/db"
	"github.com/talentbase/talentbase/gateway"
	"github.com/talentbase/talentbase/notify"
	"github.com/talentbase/talentbase/optimistic"
	"github.com/talentbase/talentbase/store"
	"github.com/talentbase/talentbase/timeline"
)

// newTestServer assembles the full stack against an in-memory store with the
// given per-route failure rates and near-zero latency.
func newTestServer(t *testing.T, rates map[string]float64) (*httptest.Server, *store.Store) {
	t.Helper()

	conn, err := db.OpenWithMigrations(db.InMemoryPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	st := store.New(conn, nil)
	faults := gateway.NewFaultInjector(gateway.FaultConfig{
		MinLatency:   time.Nanosecond,
		MaxLatency:   time.Nanosecond,
		FailureRates: rates,
	}, nil)
	transport := gateway.NewTransport(st, faults, nil, nil)
	client := gateway.NewClient(transport, "")
	recorder := timeline.NewRecorder(st, nil, nil)
	hub := notify.NewHub(nil)
	t.Cleanup(hub.Close)
	coordinator := optimistic.New(client, recorder, hub, nil)

	srv := New(st, transport.Handler(), coordinator, hub, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, st
}

func zeroRates() map[string]float64 {
	rates := gateway.DefaultFailureRates()
	for route := range rates {
		rates[route] = 0
	}
	return rates
}

func fullRates() map[string]float64 {
	rates := gateway.DefaultFailureRates()
	for route := range rates {
		rates[route] = 1
	}
	return rates
}

func seedFixture(t *testing.T, st *store.Store) (store.Job, store.Candidate) {
	t.Helper()
	job, err := st.InsertJob(store.Job{
		Title:    "Platform Engineer",
		Status:   store.JobStatusActive,
		Type:     store.JobTypeFullTime,
		Location: "Remote",
		Order:    1,
	})
	require.NoError(t, err)

	cand, err := st.InsertCandidate(store.Candidate{
		JobID:       job.ID,
		JobTitle:    job.Title,
		Name:        "Ada Lovelace",
		Email:       "ada@example.com",
		AppliedDate: time.Now().AddDate(0, 0, -7),
		Stage:       store.StageApplied,
	})
	require.NoError(t, err)
	return job, cand
}

func patchJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	encoded, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPatch, url, bytes.NewReader(encoded))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t, zeroRates())

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReadRoutesServedByGateway(t *testing.T) {
	ts, st := newTestServer(t, zeroRates())
	seedFixture(t, st)

	resp, err := http.Get(ts.URL + "/jobs")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page gateway.Page[store.Job]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	assert.Equal(t, 1, page.Total)
}

func TestCandidateStageRecordsAudit(t *testing.T) {
	ts, st := newTestServer(t, zeroRates())
	_, cand := seedFixture(t, st)

	resp := patchJSON(t, fmt.Sprintf("%s/candidates/%d", ts.URL, cand.ID),
		gateway.StagePayload{Stage: store.StageScreen, Author: "Mike Chen"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated store.Candidate
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	assert.Equal(t, store.StageScreen, updated.Stage)

	events, err := st.ListTimeline(cand.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, store.EventTypeStageChange, events[0].Type)
	assert.Equal(t, store.StageApplied, events[0].FromStage)
	assert.Equal(t, store.StageScreen, events[0].ToStage)
	assert.Equal(t, "Mike Chen", events[0].Author)
}

func TestCandidateStageFailureLeavesNoAudit(t *testing.T) {
	ts, st := newTestServer(t, fullRates())
	_, cand := seedFixture(t, st)

	resp := patchJSON(t, fmt.Sprintf("%s/candidates/%d", ts.URL, cand.ID),
		gateway.StagePayload{Stage: store.StageScreen})
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "simulated_failure", body.Code)

	// Neither the stage nor the timeline moved.
	persisted, err := st.GetCandidate(cand.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StageApplied, persisted.Stage)

	events, err := st.ListTimeline(cand.ID)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestReorderThroughCoordinator(t *testing.T) {
	ts, st := newTestServer(t, zeroRates())

	var ids []int64
	for i := 0; i < 3; i++ {
		job, err := st.InsertJob(store.Job{
			Title:    fmt.Sprintf("Role %d", i+1),
			Status:   store.JobStatusActive,
			Type:     store.JobTypeContract,
			Location: "Remote",
			Order:    i + 1,
		})
		require.NoError(t, err)
		ids = append(ids, job.ID)
	}

	resp := patchJSON(t, ts.URL+"/jobs/reorder",
		gateway.ReorderPayload{Order: []int64{ids[2], ids[0], ids[1]}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	jobs, err := st.ListJobs(store.JobFilter{})
	require.NoError(t, err)
	assert.Equal(t, ids[2], jobs[0].ID)
	assert.Equal(t, ids[0], jobs[1].ID)
	assert.Equal(t, ids[1], jobs[2].ID)
}

func TestReorderFailureKeepsOrder(t *testing.T) {
	ts, st := newTestServer(t, fullRates())

	var ids []int64
	for i := 0; i < 2; i++ {
		job, err := st.InsertJob(store.Job{
			Title:    fmt.Sprintf("Role %d", i+1),
			Status:   store.JobStatusActive,
			Type:     store.JobTypeFullTime,
			Location: "Remote",
			Order:    i + 1,
		})
		require.NoError(t, err)
		ids = append(ids, job.ID)
	}

	resp := patchJSON(t, ts.URL+"/jobs/reorder",
		gateway.ReorderPayload{Order: []int64{ids[1], ids[0]}})
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	jobs, err := st.ListJobs(store.JobFilter{})
	require.NoError(t, err)
	assert.Equal(t, ids[0], jobs[0].ID)
	assert.Equal(t, ids[1], jobs[1].ID)
}
