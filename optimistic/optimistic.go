// Package optimistic coordinates mutations that apply locally before the
// gateway confirms them.
//
// Every mutable target (the job ordering, each candidate's stage) carries a
// strictly increasing sequence number assigned when a mutation is issued.
// Responses are applied only if they belong to the latest issued mutation for
// their target; anything older is stale and suppressed. A failed response
// rolls the target back to its last confirmed value exactly, and the audit
// recorder runs only on server-confirmed outcomes.
package optimistic

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/talentbase/talentbase/errors"
	"github.com/talentbase/talentbase/gateway"
	"github.com/talentbase/talentbase/store"
)

// Target identifies one independently sequenced mutable value.
type Target string

// TargetJobOrder is the singleton target for the board-wide job ordering.
const TargetJobOrder Target = "jobs/order"

// TargetCandidate is the per-candidate stage target.
func TargetCandidate(id int64) Target {
	return Target(fmt.Sprintf("candidates/%d/stage", id))
}

// API is the slice of the gateway client the coordinator drives.
type API interface {
	ReorderJobs(ctx context.Context, orderedIDs []int64) error
	UpdateCandidateStage(ctx context.Context, id int64, to store.Stage, author string) (gateway.StageChange, error)
}

// StageRecorder receives confirmed stage transitions for the audit timeline.
type StageRecorder interface {
	RecordStageChange(candidateID int64, from, to store.Stage, author string) (store.TimelineEvent, error)
}

// Kind classifies a mutation lifecycle notification.
type Kind string

const (
	KindApplied    Kind = "applied"
	KindConfirmed  Kind = "confirmed"
	KindRolledBack Kind = "rolled_back"
)

// Notification announces a mutation lifecycle transition on a target.
type Notification struct {
	Kind    Kind   `json:"kind"`
	Target  Target `json:"target"`
	Seq     uint64 `json:"seq"`
	Message string `json:"message"`
}

// Notifier receives lifecycle notifications. Implementations must not block.
type Notifier interface {
	Notify(n Notification)
}

// targetState tracks one target's confirmed and pending values. pending is
// meaningful only while hasPending is set.
type targetState struct {
	lastSeq    uint64
	confirmed  any
	pending    any
	hasPending bool
}

// Coordinator sequences optimistic mutations across targets. Independent
// targets never block each other: the lock guards only bookkeeping, not the
// gateway round trip.
type Coordinator struct {
	api      API
	recorder StageRecorder
	notifier Notifier
	logger   *zap.SugaredLogger

	mu      sync.Mutex
	targets map[Target]*targetState
}

// New builds a Coordinator. recorder and notifier may be nil.
func New(api API, recorder StageRecorder, notifier Notifier, logger *zap.SugaredLogger) *Coordinator {
	return &Coordinator{
		api:      api,
		recorder: recorder,
		notifier: notifier,
		logger:   logger,
		targets:  make(map[Target]*targetState),
	}
}

// ObserveJobOrder records a server-confirmed job ordering as the rollback
// baseline. It is ignored while a mutation is in flight on the target.
func (c *Coordinator) ObserveJobOrder(order []int64) {
	c.observe(TargetJobOrder, append([]int64(nil), order...))
}

// ObserveCandidateStage records a server-confirmed candidate stage.
func (c *Coordinator) ObserveCandidateStage(id int64, stage store.Stage) {
	c.observe(TargetCandidate(id), stage)
}

func (c *Coordinator) observe(target Target, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.ensure(target)
	if st.hasPending {
		return
	}
	st.confirmed = value
}

// JobOrder returns the current optimistic view of the job ordering: the
// pending value while a mutation is in flight, the confirmed value otherwise.
func (c *Coordinator) JobOrder() []int64 {
	v, ok := c.view(TargetJobOrder)
	if !ok {
		return nil
	}
	order, _ := v.([]int64)
	return append([]int64(nil), order...)
}

// CandidateStage returns the optimistic view of a candidate's stage.
func (c *Coordinator) CandidateStage(id int64) (store.Stage, bool) {
	v, ok := c.view(TargetCandidate(id))
	if !ok {
		return "", false
	}
	stage, ok := v.(store.Stage)
	return stage, ok
}

func (c *Coordinator) view(target Target) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.targets[target]
	if !ok {
		return nil, false
	}
	if st.hasPending {
		return st.pending, true
	}
	if st.confirmed == nil {
		return nil, false
	}
	return st.confirmed, true
}

// ReorderJobs applies the new ordering optimistically, submits it, and rolls
// the view back to the confirmed ordering if the gateway rejects it.
func (c *Coordinator) ReorderJobs(ctx context.Context, order []int64) error {
	value := append([]int64(nil), order...)
	seq := c.begin(TargetJobOrder, value, "job order updated")

	err := c.api.ReorderJobs(ctx, order)
	c.finish(TargetJobOrder, seq, value, err)
	if err != nil {
		return errors.Wrap(err, "reorder jobs")
	}
	return nil
}

// MoveCandidate transitions a candidate's stage optimistically. On
// confirmation the recorder appends the stage-change audit event using the
// exact prior stage reported by the gateway.
func (c *Coordinator) MoveCandidate(ctx context.Context, id int64, to store.Stage, author string) error {
	target := TargetCandidate(id)
	seq := c.begin(target, to, fmt.Sprintf("candidate moved to %s", to))

	change, err := c.api.UpdateCandidateStage(ctx, id, to, author)
	c.finish(target, seq, to, err)
	if err != nil {
		return errors.Wrapf(err, "move candidate %d", id)
	}

	if c.recorder != nil {
		if _, err := c.recorder.RecordStageChange(id, change.FromStage, change.ToStage, author); err != nil {
			return errors.Wrapf(err, "audit stage change for candidate %d", id)
		}
	}
	return nil
}

// begin assigns the next sequence number for the target and installs the
// pending value.
func (c *Coordinator) begin(target Target, value any, message string) uint64 {
	c.mu.Lock()
	st := c.ensure(target)
	st.lastSeq++
	seq := st.lastSeq
	st.pending = value
	st.hasPending = true
	c.mu.Unlock()

	c.notify(Notification{Kind: KindApplied, Target: target, Seq: seq, Message: message})
	return seq
}

// finish applies a response. A response whose seq is no longer the latest for
// its target is stale: the view is left to the newer mutation and no
// notification is emitted.
func (c *Coordinator) finish(target Target, seq uint64, value any, callErr error) {
	c.mu.Lock()
	st := c.ensure(target)
	if seq != st.lastSeq {
		latest := st.lastSeq
		c.mu.Unlock()
		if c.logger != nil {
			c.logger.Debugw("Suppressed stale response", "target", target, "seq", seq, "latest", latest)
		}
		return
	}

	kind := KindConfirmed
	message := "mutation confirmed"
	if callErr == nil {
		st.confirmed = value
	} else {
		kind = KindRolledBack
		message = callErr.Error()
	}
	st.hasPending = false
	c.mu.Unlock()

	c.notify(Notification{Kind: kind, Target: target, Seq: seq, Message: message})
}

func (c *Coordinator) ensure(target Target) *targetState {
	st, ok := c.targets[target]
	if !ok {
		st = &targetState{}
		c.targets[target] = st
	}
	return st
}

func (c *Coordinator) notify(n Notification) {
	if c.notifier == nil {
		return
	}
	c.notifier.Notify(n)
}
