package gateway

import (
	"bytes"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/talentbase/talentbase/store"
	"github.com/talentbase/talentbase/timeline"
)

// Transport answers declared routes from the store and passes everything else
// to the wrapped RoundTripper unmodified.
type Transport struct {
	store    *store.Store
	recorder *timeline.Recorder
	next     http.RoundTripper
	faults   *FaultInjector
	logger   *zap.SugaredLogger
	mux      *http.ServeMux
}

// NewTransport builds the interceptor. next handles unmatched routes; nil
// means http.DefaultTransport. faults may not be nil.
func NewTransport(st *store.Store, faults *FaultInjector, next http.RoundTripper, logger *zap.SugaredLogger) *Transport {
	if next == nil {
		next = http.DefaultTransport
	}
	t := &Transport{
		store:    st,
		recorder: timeline.NewRecorder(st, nil, logger),
		next:     next,
		faults:   faults,
		logger:   logger,
	}
	t.mux = t.routes()
	return t
}

// routes declares the intercepted surface. Everything else bypasses.
func (t *Transport) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /jobs", t.handleListJobs)
	mux.HandleFunc("GET /jobs/{id}", t.handleGetJob)
	mux.HandleFunc("PATCH /jobs/reorder", t.handleReorderJobs)
	mux.HandleFunc("PATCH /jobs/{id}", t.handleUpdateJob)

	mux.HandleFunc("GET /candidates", t.handleListCandidates)
	mux.HandleFunc("GET /candidates/{id}", t.handleGetCandidate)
	mux.HandleFunc("PATCH /candidates/{id}", t.handleCandidateStage)
	mux.HandleFunc("GET /candidates/{id}/timeline", t.handleCandidateTimeline)
	mux.HandleFunc("GET /candidates/{id}/notes", t.handleCandidateNotes)
	mux.HandleFunc("POST /candidates/{id}/notes", t.handleAddNote)

	mux.HandleFunc("GET /assessments", t.handleListAssessments)
	mux.HandleFunc("GET /assessments/{jobID}", t.handleGetAssessment)
	mux.HandleFunc("PUT /assessments/{jobID}", t.handlePutAssessment)

	return mux
}

// Handler exposes the intercepted route table as a plain http.Handler, so
// the same surface can be mounted on a real listener.
func (t *Transport) Handler() http.Handler {
	return t.mux
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if _, pattern := t.mux.Handler(req); pattern == "" {
		// Unmatched route: bypass to the real transport untouched.
		if t.logger != nil {
			t.logger.Debugw("Bypassing unmatched route", "method", req.Method, "path", req.URL.Path)
		}
		return t.next.RoundTrip(req)
	}

	requestID := uuid.NewString()
	if t.logger != nil {
		t.logger.Debugw("Intercepted request",
			"method", req.Method,
			"path", req.URL.Path,
			"request_id", requestID,
		)
	}

	rec := newRecorder()
	t.mux.ServeHTTP(rec, req)
	resp := rec.result(req)
	resp.Header.Set("X-Request-Id", requestID)
	return resp, nil
}

// recorder is a minimal in-memory http.ResponseWriter; responses never touch
// a socket.
type recorder struct {
	status int
	header http.Header
	body   bytes.Buffer
}

func newRecorder() *recorder {
	return &recorder{status: http.StatusOK, header: make(http.Header)}
}

func (r *recorder) Header() http.Header { return r.header }

func (r *recorder) WriteHeader(status int) { r.status = status }

func (r *recorder) Write(p []byte) (int, error) { return r.body.Write(p) }

func (r *recorder) result(req *http.Request) *http.Response {
	return &http.Response{
		StatusCode:    r.status,
		Status:        http.StatusText(r.status),
		Proto:         req.Proto,
		ProtoMajor:    req.ProtoMajor,
		ProtoMinor:    req.ProtoMinor,
		Header:        r.header,
		Body:          io.NopCloser(bytes.NewReader(r.body.Bytes())),
		ContentLength: int64(r.body.Len()),
		Request:       req,
	}
}
