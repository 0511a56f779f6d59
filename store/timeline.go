package store

import (
	"database/sql"

	"github.com/talentbase/talentbase/errors"
)

// AppendEvent appends a timeline event for a candidate. Events are
// append-only; a stage-change event must carry both FromStage and ToStage.
func (s *Store) AppendEvent(ev TimelineEvent) (TimelineEvent, error) {
	return appendEvent(s.db, ev)
}

func appendEvent(e execer, ev TimelineEvent) (TimelineEvent, error) {
	if !ev.Type.Valid() {
		return TimelineEvent{}, errors.Wrapf(ErrValidation, "event type %q", ev.Type)
	}
	if ev.Type == EventTypeStageChange {
		if !ev.FromStage.Valid() || !ev.ToStage.Valid() {
			return TimelineEvent{}, errors.Wrapf(ErrValidation,
				"stage-change event requires fromStage and toStage (got %q -> %q)", ev.FromStage, ev.ToStage)
		}
	}

	author := sql.NullString{String: ev.Author, Valid: ev.Author != ""}
	fromStage := sql.NullString{String: string(ev.FromStage), Valid: ev.FromStage != ""}
	toStage := sql.NullString{String: string(ev.ToStage), Valid: ev.ToStage != ""}

	res, err := e.Exec(`
		INSERT INTO timeline_events (candidate_id, type, description, created_at, author, from_stage, to_stage)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.CandidateID, ev.Type, ev.Description, formatTime(ev.CreatedAt), author, fromStage, toStage,
	)
	if err != nil {
		return TimelineEvent{}, errors.Wrap(err, "insert timeline event")
	}

	ev.ID, err = res.LastInsertId()
	if err != nil {
		return TimelineEvent{}, errors.Wrap(err, "timeline event insert id")
	}
	return ev, nil
}

// ListTimeline returns all timeline events for a candidate, oldest first.
// Ties on created_at break by id, so per-candidate order is total.
func (s *Store) ListTimeline(candidateID int64) ([]TimelineEvent, error) {
	rows, err := s.db.Query(`
		SELECT id, candidate_id, type, description, created_at, author, from_stage, to_stage
		FROM timeline_events WHERE candidate_id = ?
		ORDER BY created_at, id`, candidateID)
	if err != nil {
		return nil, errors.Wrap(err, "list timeline")
	}
	defer rows.Close()

	var events []TimelineEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, errors.Wrap(rows.Err(), "list timeline")
}

// CountTimelineEvents returns the total number of timeline events.
func (s *Store) CountTimelineEvents() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM timeline_events").Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count timeline events")
	}
	return n, nil
}

func scanEvent(row scannable) (TimelineEvent, error) {
	var ev TimelineEvent
	var createdAt string
	var author, fromStage, toStage sql.NullString
	err := row.Scan(&ev.ID, &ev.CandidateID, &ev.Type, &ev.Description, &createdAt, &author, &fromStage, &toStage)
	if err != nil {
		return TimelineEvent{}, errors.Wrap(err, "scan timeline event")
	}

	if ev.CreatedAt, err = parseTime(createdAt); err != nil {
		return TimelineEvent{}, err
	}
	ev.Author = author.String
	ev.FromStage = Stage(fromStage.String)
	ev.ToStage = Stage(toStage.String)
	return ev, nil
}
