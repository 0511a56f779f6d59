package store

import (
	"context"
	"database/sql"

	"github.com/talentbase/talentbase/errors"
)

// Tx scopes a group of writes to a single transaction. The seeder uses it so
// an interrupted run leaves no partial state behind.
type Tx struct {
	tx *sql.Tx
}

// Begin opens a write transaction.
func (s *Store) Begin() (*Tx, error) {
	return s.BeginTx(context.Background())
}

// BeginTx opens a write transaction bound to ctx; cancelling the context
// rolls back any writes not yet committed.
func (s *Store) BeginTx(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin transaction")
	}
	return &Tx{tx: tx}, nil
}

// Commit makes the transaction's writes durable.
func (t *Tx) Commit() error {
	return errors.Wrap(t.tx.Commit(), "commit transaction")
}

// Rollback discards the transaction. Safe to call after Commit.
func (t *Tx) Rollback() error {
	err := t.tx.Rollback()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return errors.Wrap(err, "rollback transaction")
	}
	return nil
}

// InsertJob creates a job inside the transaction.
func (t *Tx) InsertJob(job Job) (Job, error) {
	return insertJob(t.tx, job)
}

// InsertCandidate creates a candidate inside the transaction.
func (t *Tx) InsertCandidate(c Candidate) (Candidate, error) {
	return insertCandidate(t.tx, c)
}

// AddNote appends a note inside the transaction.
func (t *Tx) AddNote(n Note) (Note, error) {
	return addNote(t.tx, n)
}

// AppendEvent appends a timeline event inside the transaction.
func (t *Tx) AppendEvent(ev TimelineEvent) (TimelineEvent, error) {
	return appendEvent(t.tx, ev)
}

// UpsertAssessment creates or replaces a job's assessment inside the
// transaction.
func (t *Tx) UpsertAssessment(a Assessment) error {
	return upsertAssessment(t.tx, a)
}
