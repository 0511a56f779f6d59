// Package timeline records confirm-time audit events for candidates.
//
// The recorder is only invoked after a mutation is confirmed by the gateway;
// optimistic state that was rolled back never reaches the timeline.
package timeline

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/talentbase/talentbase/errors"
	"github.com/talentbase/talentbase/store"
)

// DefaultAuthor is attributed to stage changes submitted without an author.
const DefaultAuthor = "HR Team"

// Recorder appends audit events to a candidate's timeline.
type Recorder struct {
	store  *store.Store
	now    func() time.Time
	logger *zap.SugaredLogger
}

// NewRecorder builds a Recorder. A nil now falls back to time.Now.
func NewRecorder(st *store.Store, now func() time.Time, logger *zap.SugaredLogger) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{store: st, now: now, logger: logger}
}

// RecordStageChange appends exactly one stage-change event for a confirmed
// transition. The event always carries both the prior and the new stage.
func (r *Recorder) RecordStageChange(candidateID int64, from, to store.Stage, author string) (store.TimelineEvent, error) {
	if !from.Valid() || !to.Valid() {
		return store.TimelineEvent{}, errors.Wrapf(store.ErrValidation,
			"stage change %q -> %q", from, to)
	}
	if author == "" {
		author = DefaultAuthor
	}

	ev, err := r.store.AppendEvent(store.TimelineEvent{
		CandidateID: candidateID,
		Type:        store.EventTypeStageChange,
		Description: fmt.Sprintf("Stage changed from %s to %s", from, to),
		Author:      author,
		FromStage:   from,
		ToStage:     to,
		CreatedAt:   r.now(),
	})
	if err != nil {
		return store.TimelineEvent{}, errors.Wrap(err, "record stage change")
	}

	if r.logger != nil {
		r.logger.Debugw("Recorded stage change",
			"candidate_id", candidateID,
			"from", from,
			"to", to,
			"author", author,
		)
	}
	return ev, nil
}

// EventAppender is the write surface RecordNote needs. Both *store.Store and
// *store.Tx satisfy it, so the mirroring event can join the note's own
// transaction.
type EventAppender interface {
	AppendEvent(store.TimelineEvent) (store.TimelineEvent, error)
}

// RecordNote appends a note-type event mirroring an added note. Callers pass
// the transaction the note itself was written in so the pair commits or rolls
// back together.
func (r *Recorder) RecordNote(events EventAppender, candidateID int64, author string) (store.TimelineEvent, error) {
	if author == "" {
		author = DefaultAuthor
	}
	ev, err := events.AppendEvent(store.TimelineEvent{
		CandidateID: candidateID,
		Type:        store.EventTypeNote,
		Description: "Added note",
		Author:      author,
		CreatedAt:   r.now(),
	})
	if err != nil {
		return store.TimelineEvent{}, errors.Wrap(err, "record note event")
	}
	return ev, nil
}
