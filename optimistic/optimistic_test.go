package optimistic

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentbase/talentbase/errors"
	"github.com/talentbase/talentbase/gateway"
	"github.com/talentbase/talentbase/store"
)

// pendingCall is one in-flight fake gateway call; the test decides when and
// how it completes.
type pendingCall struct {
	order []int64
	to    store.Stage
	errCh chan error
}

// fakeAPI stands in for the gateway client. With a nil pending channel every
// call completes immediately with err; otherwise each call parks until the
// test releases it.
type fakeAPI struct {
	mu      sync.Mutex
	err     error
	from    store.Stage
	pending chan *pendingCall

	reorders [][]int64
	stages   []store.Stage
}

func (f *fakeAPI) ReorderJobs(ctx context.Context, orderedIDs []int64) error {
	f.mu.Lock()
	f.reorders = append(f.reorders, append([]int64(nil), orderedIDs...))
	err, pending := f.err, f.pending
	f.mu.Unlock()

	if pending == nil {
		return err
	}
	pc := &pendingCall{order: orderedIDs, errCh: make(chan error)}
	pending <- pc
	return <-pc.errCh
}

func (f *fakeAPI) UpdateCandidateStage(ctx context.Context, id int64, to store.Stage, author string) (gateway.StageChange, error) {
	f.mu.Lock()
	f.stages = append(f.stages, to)
	err, pending, from := f.err, f.pending, f.from
	f.mu.Unlock()

	change := gateway.StageChange{CandidateID: id, FromStage: from, ToStage: to, Author: author}
	if pending == nil {
		return change, err
	}
	pc := &pendingCall{to: to, errCh: make(chan error)}
	pending <- pc
	if err := <-pc.errCh; err != nil {
		return gateway.StageChange{}, err
	}
	return change, nil
}

// recordingNotifier captures notifications in order.
type recordingNotifier struct {
	mu   sync.Mutex
	seen []Notification
}

func (n *recordingNotifier) Notify(notification Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seen = append(n.seen, notification)
}

func (n *recordingNotifier) all() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.seen...)
}

// recordingRecorder captures confirmed stage changes.
type recordingRecorder struct {
	mu      sync.Mutex
	changes []gateway.StageChange
}

func (r *recordingRecorder) RecordStageChange(candidateID int64, from, to store.Stage, author string) (store.TimelineEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, gateway.StageChange{CandidateID: candidateID, FromStage: from, ToStage: to, Author: author})
	return store.TimelineEvent{}, nil
}

func (r *recordingRecorder) all() []gateway.StageChange {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]gateway.StageChange(nil), r.changes...)
}

func TestReorderRollbackIsExact(t *testing.T) {
	api := &fakeAPI{err: gateway.ErrSimulatedFailure}
	coord := New(api, nil, nil, nil)
	coord.ObserveJobOrder([]int64{1, 2, 3})

	err := coord.ReorderJobs(context.Background(), []int64{2, 1, 3})
	require.ErrorIs(t, err, gateway.ErrSimulatedFailure)
	assert.Equal(t, []int64{1, 2, 3}, coord.JobOrder())
}

func TestReorderConfirms(t *testing.T) {
	api := &fakeAPI{}
	coord := New(api, nil, nil, nil)
	coord.ObserveJobOrder([]int64{1, 2, 3})

	require.NoError(t, coord.ReorderJobs(context.Background(), []int64{2, 1, 3}))
	assert.Equal(t, []int64{2, 1, 3}, coord.JobOrder())
	require.Len(t, api.reorders, 1)
}

func TestOptimisticViewDuringFlight(t *testing.T) {
	api := &fakeAPI{pending: make(chan *pendingCall, 1)}
	coord := New(api, nil, nil, nil)
	coord.ObserveJobOrder([]int64{1, 2, 3})

	done := make(chan error, 1)
	go func() { done <- coord.ReorderJobs(context.Background(), []int64{3, 2, 1}) }()

	pc := <-api.pending
	// The view reflects the pending mutation before the gateway answers.
	assert.Equal(t, []int64{3, 2, 1}, coord.JobOrder())

	pc.errCh <- errors.New("boom")
	require.Error(t, <-done)
	assert.Equal(t, []int64{1, 2, 3}, coord.JobOrder())
}

func TestStaleResponseSuppression(t *testing.T) {
	run := func(t *testing.T, releaseFirstInOrder bool) {
		api := &fakeAPI{pending: make(chan *pendingCall, 2)}
		coord := New(api, nil, nil, nil)
		coord.ObserveJobOrder([]int64{1, 2, 3})

		done1 := make(chan error, 1)
		go func() { done1 <- coord.ReorderJobs(context.Background(), []int64{2, 1, 3}) }()
		pc1 := <-api.pending

		done2 := make(chan error, 1)
		go func() { done2 <- coord.ReorderJobs(context.Background(), []int64{3, 1, 2}) }()
		pc2 := <-api.pending

		if releaseFirstInOrder {
			pc1.errCh <- nil
			require.NoError(t, <-done1)
			// The older response must not clobber the newer pending value.
			assert.Equal(t, []int64{3, 1, 2}, coord.JobOrder())
			pc2.errCh <- nil
			require.NoError(t, <-done2)
		} else {
			pc2.errCh <- nil
			require.NoError(t, <-done2)
			pc1.errCh <- nil
			require.NoError(t, <-done1)
		}

		assert.Equal(t, []int64{3, 1, 2}, coord.JobOrder())
	}

	t.Run("older response arrives first", func(t *testing.T) { run(t, true) })
	t.Run("older response arrives last", func(t *testing.T) { run(t, false) })
}

func TestIndependentTargetsDoNotBlock(t *testing.T) {
	api := &fakeAPI{pending: make(chan *pendingCall, 2), from: store.StageApplied}
	coord := New(api, nil, nil, nil)

	done1 := make(chan error, 1)
	go func() { done1 <- coord.MoveCandidate(context.Background(), 1, store.StageScreen, "") }()
	pc1 := <-api.pending

	// With candidate 1 still in flight, candidate 2 proceeds end to end.
	done2 := make(chan error, 1)
	go func() { done2 <- coord.MoveCandidate(context.Background(), 2, store.StageTech, "") }()
	pc2 := <-api.pending
	pc2.errCh <- nil
	require.NoError(t, <-done2)

	stage, ok := coord.CandidateStage(2)
	require.True(t, ok)
	assert.Equal(t, store.StageTech, stage)

	pc1.errCh <- nil
	require.NoError(t, <-done1)
	stage, ok = coord.CandidateStage(1)
	require.True(t, ok)
	assert.Equal(t, store.StageScreen, stage)
}

func TestAuditRunsOnlyOnConfirm(t *testing.T) {
	t.Run("confirmed transition is recorded once", func(t *testing.T) {
		recorder := &recordingRecorder{}
		api := &fakeAPI{from: store.StageApplied}
		coord := New(api, recorder, nil, nil)

		require.NoError(t, coord.MoveCandidate(context.Background(), 7, store.StageScreen, "Mike Chen"))

		changes := recorder.all()
		require.Len(t, changes, 1)
		assert.Equal(t, int64(7), changes[0].CandidateID)
		assert.Equal(t, store.StageApplied, changes[0].FromStage)
		assert.Equal(t, store.StageScreen, changes[0].ToStage)
	})

	t.Run("rolled-back transition is never recorded", func(t *testing.T) {
		recorder := &recordingRecorder{}
		api := &fakeAPI{err: gateway.ErrSimulatedFailure, from: store.StageApplied}
		coord := New(api, recorder, nil, nil)
		coord.ObserveCandidateStage(7, store.StageApplied)

		err := coord.MoveCandidate(context.Background(), 7, store.StageScreen, "")
		require.ErrorIs(t, err, gateway.ErrSimulatedFailure)
		assert.Empty(t, recorder.all())

		stage, ok := coord.CandidateStage(7)
		require.True(t, ok)
		assert.Equal(t, store.StageApplied, stage)
	})
}

func TestSequenceNumbersStrictlyIncreasePerTarget(t *testing.T) {
	notifier := &recordingNotifier{}
	api := &fakeAPI{from: store.StageApplied}
	coord := New(api, nil, notifier, nil)

	ctx := context.Background()
	require.NoError(t, coord.ReorderJobs(ctx, []int64{1}))
	require.NoError(t, coord.ReorderJobs(ctx, []int64{1}))
	require.NoError(t, coord.MoveCandidate(ctx, 5, store.StageScreen, ""))
	require.NoError(t, coord.ReorderJobs(ctx, []int64{1}))

	perTarget := make(map[Target][]uint64)
	for _, n := range notifier.all() {
		if n.Kind == KindApplied {
			perTarget[n.Target] = append(perTarget[n.Target], n.Seq)
		}
	}

	assert.Equal(t, []uint64{1, 2, 3}, perTarget[TargetJobOrder])
	assert.Equal(t, []uint64{1}, perTarget[TargetCandidate(5)])
}

func TestNotificationLifecycle(t *testing.T) {
	t.Run("applied then confirmed", func(t *testing.T) {
		notifier := &recordingNotifier{}
		coord := New(&fakeAPI{}, nil, notifier, nil)

		require.NoError(t, coord.ReorderJobs(context.Background(), []int64{1, 2}))

		seen := notifier.all()
		require.Len(t, seen, 2)
		assert.Equal(t, KindApplied, seen[0].Kind)
		assert.Equal(t, KindConfirmed, seen[1].Kind)
	})

	t.Run("applied then rolled back", func(t *testing.T) {
		notifier := &recordingNotifier{}
		coord := New(&fakeAPI{err: errors.New("down")}, nil, notifier, nil)

		require.Error(t, coord.ReorderJobs(context.Background(), []int64{1, 2}))

		seen := notifier.all()
		require.Len(t, seen, 2)
		assert.Equal(t, KindApplied, seen[0].Kind)
		assert.Equal(t, KindRolledBack, seen[1].Kind)
	})
}

func TestObserveIgnoredWhileInFlight(t *testing.T) {
	api := &fakeAPI{pending: make(chan *pendingCall, 1)}
	coord := New(api, nil, nil, nil)
	coord.ObserveJobOrder([]int64{1, 2, 3})

	done := make(chan error, 1)
	go func() { done <- coord.ReorderJobs(context.Background(), []int64{3, 2, 1}) }()
	pc := <-api.pending

	coord.ObserveJobOrder([]int64{9, 9, 9})
	assert.Equal(t, []int64{3, 2, 1}, coord.JobOrder())

	pc.errCh <- errors.New("down")
	require.Error(t, <-done)

	// Rollback lands on the pre-flight baseline, not the ignored observation.
	assert.Equal(t, []int64{1, 2, 3}, coord.JobOrder())
}
