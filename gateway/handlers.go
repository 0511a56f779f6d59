package gateway

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/talentbase/talentbase/errors"
	"github.com/talentbase/talentbase/store"
)

// --- read routes ---

func (t *Transport) handleListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	jobs, err := t.store.ListJobs(store.JobFilter{
		Status: store.JobStatus(q.Get("status")),
		Search: q.Get("search"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	page, pageSize := pageParams(r)
	writeJSON(w, http.StatusOK, pageOf(jobs, page, pageSize))
}

func (t *Transport) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	job, err := t.store.GetJob(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (t *Transport) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.CandidateFilter{
		Stage:  store.Stage(q.Get("stage")),
		Search: q.Get("search"),
	}
	if raw := q.Get("jobId"); raw != "" {
		jobID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, errors.Wrapf(store.ErrValidation, "jobId %q", raw))
			return
		}
		filter.JobID = jobID
	}

	candidates, err := t.store.ListCandidates(filter)
	if err != nil {
		writeError(w, err)
		return
	}

	page, pageSize := pageParams(r)
	writeJSON(w, http.StatusOK, pageOf(candidates, page, pageSize))
}

func (t *Transport) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	c, err := t.store.GetCandidate(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (t *Transport) handleCandidateTimeline(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	// Missing candidates yield 404, not an empty timeline.
	if _, err := t.store.GetCandidate(id); err != nil {
		writeError(w, err)
		return
	}
	events, err := t.store.ListTimeline(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Page[store.TimelineEvent]{Data: orEmpty(events), Total: len(events)})
}

func (t *Transport) handleCandidateNotes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := t.store.GetCandidate(id); err != nil {
		writeError(w, err)
		return
	}
	notes, err := t.store.ListNotes(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Page[store.Note]{Data: orEmpty(notes), Total: len(notes)})
}

func (t *Transport) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	assessments, err := t.store.ListAssessments()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Page[store.Assessment]{Data: orEmpty(assessments), Total: len(assessments)})
}

func (t *Transport) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "jobID")
	if err != nil {
		writeError(w, err)
		return
	}
	a, err := t.store.GetAssessment(jobID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// --- mutating routes (latency + failure injection) ---

// ReorderPayload carries the full ordered id list for the affected set.
type ReorderPayload struct {
	Order []int64 `json:"order"`
}

func (t *Transport) handleReorderJobs(w http.ResponseWriter, r *http.Request) {
	var payload ReorderPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, errors.Wrap(store.ErrValidation, "decode reorder payload"))
		return
	}
	if len(payload.Order) == 0 {
		writeError(w, errors.Wrap(store.ErrValidation, "empty reorder payload"))
		return
	}

	if !t.injectFaults(w, r, RouteReorderJobs) {
		return
	}

	if err := t.store.ReorderJobs(payload.Order); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (t *Transport) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var patch store.JobPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, errors.Wrap(store.ErrValidation, "decode job patch"))
		return
	}

	if !t.injectFaults(w, r, RouteUpdateJob) {
		return
	}

	job, err := t.store.UpdateJob(id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// StagePayload requests a candidate stage transition.
type StagePayload struct {
	Stage  store.Stage `json:"stage"`
	Author string      `json:"author,omitempty"`
}

// StageChange reports a confirmed transition, carrying the exact prior stage
// for audit purposes.
type StageChange struct {
	CandidateID int64       `json:"candidateId"`
	FromStage   store.Stage `json:"fromStage"`
	ToStage     store.Stage `json:"toStage"`
	Author      string      `json:"author,omitempty"`
}

func (t *Transport) handleCandidateStage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var payload StagePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, errors.Wrap(store.ErrValidation, "decode stage payload"))
		return
	}
	// Validate before the fault roll so a bad stage is always rejected with
	// 400, never masked by a simulated 500.
	if !payload.Stage.Valid() {
		writeError(w, errors.Wrapf(store.ErrValidation, "candidate stage %q", payload.Stage))
		return
	}

	if !t.injectFaults(w, r, RouteCandidateStage) {
		return
	}

	from, err := t.store.SetCandidateStage(id, payload.Stage)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StageChange{
		CandidateID: id,
		FromStage:   from,
		ToStage:     payload.Stage,
		Author:      payload.Author,
	})
}

// NotePayload creates a note on a candidate.
type NotePayload struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

func (t *Transport) handleAddNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var payload NotePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, errors.Wrap(store.ErrValidation, "decode note payload"))
		return
	}
	if payload.Content == "" {
		writeError(w, errors.Wrap(store.ErrValidation, "note content required"))
		return
	}

	if _, err := t.store.GetCandidate(id); err != nil {
		writeError(w, err)
		return
	}

	if !t.injectFaults(w, r, RouteAddNote) {
		return
	}

	// The note and its mirroring timeline event commit together; a failure
	// on either side leaves neither behind.
	tx, err := t.store.Begin()
	if err != nil {
		writeError(w, err)
		return
	}
	defer tx.Rollback()

	note, err := tx.AddNote(store.Note{
		CandidateID: id,
		Author:      payload.Author,
		Content:     payload.Content,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := t.recorder.RecordNote(tx, id, payload.Author); err != nil {
		writeError(w, err)
		return
	}
	if err := tx.Commit(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (t *Transport) handlePutAssessment(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "jobID")
	if err != nil {
		writeError(w, err)
		return
	}

	var a store.Assessment
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		writeError(w, errors.Wrap(store.ErrValidation, "decode assessment payload"))
		return
	}
	a.JobID = jobID

	if _, err := t.store.GetJob(jobID); err != nil {
		writeError(w, err)
		return
	}

	if !t.injectFaults(w, r, RoutePutAssessment) {
		return
	}

	if err := t.store.UpsertAssessment(a); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// injectFaults applies the mutating-route contract: artificial latency, then
// a failure roll. Returns false when the handler must not proceed (the
// response has been written, or the request context ended during the delay).
func (t *Transport) injectFaults(w http.ResponseWriter, r *http.Request, route string) bool {
	if err := t.faults.Delay(r.Context()); err != nil {
		writeJSON(w, statusClientClosedRequest, errorBody{Error: err.Error()})
		return false
	}
	if t.faults.ShouldFail(route) {
		if t.logger != nil {
			t.logger.Debugw("Injected simulated failure", "route", route)
		}
		writeSimulatedFailure(w, route)
		return false
	}
	return true
}

// statusClientClosedRequest mirrors nginx's 499 for a context canceled while
// the simulated latency was pending.
const statusClientClosedRequest = 499

// --- helpers ---

func pathID(r *http.Request, key string) (int64, error) {
	raw := r.PathValue(key)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Wrapf(store.ErrValidation, "path id %q", raw)
	}
	return id, nil
}

func pageParams(r *http.Request) (page, pageSize int) {
	q := r.URL.Query()
	page, _ = strconv.Atoi(q.Get("page"))
	pageSize, _ = strconv.Atoi(q.Get("pageSize"))
	return page, pageSize
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
