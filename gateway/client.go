package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/talentbase/talentbase/db"
	"github.com/talentbase/talentbase/errors"
	"github.com/talentbase/talentbase/store"
)

// Client is the typed caller for the intercepted API. It drives a plain
// *http.Client whose transport is (normally) a *Transport, so every call
// exercises the full request/response path including fault injection.
type Client struct {
	http    *http.Client
	baseURL string
}

// DefaultBaseURL is a placeholder host; intercepted routes never resolve it.
const DefaultBaseURL = "http://talentbase.internal"

// NewClient wraps rt in an http.Client. An empty baseURL uses
// DefaultBaseURL.
func NewClient(rt http.RoundTripper, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    &http.Client{Transport: rt},
		baseURL: baseURL,
	}
}

// ListOptions are the shared pagination controls for list calls.
type ListOptions struct {
	Page     int
	PageSize int
}

func (o ListOptions) apply(q url.Values) {
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(o.PageSize))
	}
}

func (c *Client) ListJobs(ctx context.Context, filter store.JobFilter, opts ListOptions) (Page[store.Job], error) {
	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	opts.apply(q)

	var page Page[store.Job]
	err := c.do(ctx, http.MethodGet, "/jobs?"+q.Encode(), nil, &page)
	return page, err
}

func (c *Client) GetJob(ctx context.Context, id int64) (store.Job, error) {
	var job store.Job
	err := c.do(ctx, http.MethodGet, "/jobs/"+strconv.FormatInt(id, 10), nil, &job)
	return job, err
}

func (c *Client) UpdateJob(ctx context.Context, id int64, patch store.JobPatch) (store.Job, error) {
	var job store.Job
	err := c.do(ctx, http.MethodPatch, "/jobs/"+strconv.FormatInt(id, 10), patch, &job)
	return job, err
}

// ReorderJobs submits the full ordered id list for the job board.
func (c *Client) ReorderJobs(ctx context.Context, orderedIDs []int64) error {
	return c.do(ctx, http.MethodPatch, "/jobs/reorder", ReorderPayload{Order: orderedIDs}, nil)
}

func (c *Client) ListCandidates(ctx context.Context, filter store.CandidateFilter, opts ListOptions) (Page[store.Candidate], error) {
	q := url.Values{}
	if filter.Stage != "" {
		q.Set("stage", string(filter.Stage))
	}
	if filter.JobID != 0 {
		q.Set("jobId", strconv.FormatInt(filter.JobID, 10))
	}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	opts.apply(q)

	var page Page[store.Candidate]
	err := c.do(ctx, http.MethodGet, "/candidates?"+q.Encode(), nil, &page)
	return page, err
}

func (c *Client) GetCandidate(ctx context.Context, id int64) (store.Candidate, error) {
	var cand store.Candidate
	err := c.do(ctx, http.MethodGet, "/candidates/"+strconv.FormatInt(id, 10), nil, &cand)
	return cand, err
}

// UpdateCandidateStage moves a candidate and returns the confirmed transition
// including the exact prior stage.
func (c *Client) UpdateCandidateStage(ctx context.Context, id int64, to store.Stage, author string) (StageChange, error) {
	var change StageChange
	err := c.do(ctx, http.MethodPatch, "/candidates/"+strconv.FormatInt(id, 10),
		StagePayload{Stage: to, Author: author}, &change)
	return change, err
}

func (c *Client) Timeline(ctx context.Context, candidateID int64) ([]store.TimelineEvent, error) {
	var page Page[store.TimelineEvent]
	err := c.do(ctx, http.MethodGet, "/candidates/"+strconv.FormatInt(candidateID, 10)+"/timeline", nil, &page)
	return page.Data, err
}

func (c *Client) Notes(ctx context.Context, candidateID int64) ([]store.Note, error) {
	var page Page[store.Note]
	err := c.do(ctx, http.MethodGet, "/candidates/"+strconv.FormatInt(candidateID, 10)+"/notes", nil, &page)
	return page.Data, err
}

func (c *Client) AddNote(ctx context.Context, candidateID int64, author, content string) (store.Note, error) {
	var note store.Note
	err := c.do(ctx, http.MethodPost, "/candidates/"+strconv.FormatInt(candidateID, 10)+"/notes",
		NotePayload{Author: author, Content: content}, &note)
	return note, err
}

func (c *Client) ListAssessments(ctx context.Context) ([]store.Assessment, error) {
	var page Page[store.Assessment]
	err := c.do(ctx, http.MethodGet, "/assessments", nil, &page)
	return page.Data, err
}

func (c *Client) GetAssessment(ctx context.Context, jobID int64) (store.Assessment, error) {
	var a store.Assessment
	err := c.do(ctx, http.MethodGet, "/assessments/"+strconv.FormatInt(jobID, 10), nil, &a)
	return a, err
}

func (c *Client) PutAssessment(ctx context.Context, a store.Assessment) (store.Assessment, error) {
	var saved store.Assessment
	err := c.do(ctx, http.MethodPut, "/assessments/"+strconv.FormatInt(a.JobID, 10), a, &saved)
	return saved, err
}

// do issues one request and decodes the response into out (when non-nil).
// Non-2xx statuses come back as the matching sentinel error.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request body")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s %s response", method, path)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var body errorBody
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &body); err != nil {
		body.Error = string(raw)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errors.Wrap(store.ErrNotFound, body.Error)
	case resp.StatusCode == http.StatusBadRequest:
		return errors.Wrap(store.ErrValidation, body.Error)
	case resp.StatusCode == http.StatusServiceUnavailable:
		return errors.Wrap(db.ErrDatabaseClosed, body.Error)
	case body.Code == codeSimulatedFailure:
		return errors.Wrap(ErrSimulatedFailure, body.Error)
	default:
		return errors.Newf("unexpected status %d: %s", resp.StatusCode, body.Error)
	}
}
