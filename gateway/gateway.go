// Package gateway intercepts API requests at the transport boundary and
// answers them from the local store, standing in for a remote hiring service.
//
// Transport implements http.RoundTripper: requests matching the declared
// route table never reach a real network; anything else passes through to the
// wrapped transport untouched. Mutating routes inject artificial latency and
// a per-route failure probability, so callers must treat occasional failure
// as part of the contract.
package gateway

import (
	"github.com/talentbase/talentbase/errors"
)

// ErrSimulatedFailure marks an injected fault on a mutating route. Callers
// recover from it locally (the mutation coordinator rolls back); it is never
// an unhandled fault.
var ErrSimulatedFailure = errors.New("simulated network failure")

// Route names used for fault configuration and logging.
const (
	RouteReorderJobs    = "reorder_jobs"
	RouteUpdateJob      = "update_job"
	RouteCandidateStage = "candidate_stage"
	RouteAddNote        = "add_note"
	RoutePutAssessment  = "put_assessment"
)

// Default fault-injection contract for mutating routes.
const (
	// DefaultReorderFailureRate is the documented 10% failure probability on
	// job reordering.
	DefaultReorderFailureRate = 0.10
	// DefaultWriteFailureRate applies to the remaining mutating routes.
	DefaultWriteFailureRate = 0.05
)

// DefaultFailureRates maps each mutating route to its failure probability.
func DefaultFailureRates() map[string]float64 {
	return map[string]float64{
		RouteReorderJobs:    DefaultReorderFailureRate,
		RouteUpdateJob:      DefaultWriteFailureRate,
		RouteCandidateStage: DefaultWriteFailureRate,
		RouteAddNote:        DefaultWriteFailureRate,
		RoutePutAssessment:  DefaultWriteFailureRate,
	}
}
