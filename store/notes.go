package store

import (
	"github.com/talentbase/talentbase/errors"
)

// AddNote appends a note to a candidate. Notes are append-only: there is no
// update or delete path.
func (s *Store) AddNote(n Note) (Note, error) {
	return addNote(s.db, n)
}

func addNote(e execer, n Note) (Note, error) {
	res, err := e.Exec(`
		INSERT INTO notes (candidate_id, author, content, created_at)
		VALUES (?, ?, ?, ?)`,
		n.CandidateID, n.Author, n.Content, formatTime(n.CreatedAt),
	)
	if err != nil {
		return Note{}, errors.Wrap(err, "insert note")
	}

	n.ID, err = res.LastInsertId()
	if err != nil {
		return Note{}, errors.Wrap(err, "note insert id")
	}
	return n, nil
}

// ListNotes returns all notes for a candidate, oldest first.
func (s *Store) ListNotes(candidateID int64) ([]Note, error) {
	rows, err := s.db.Query(`
		SELECT id, candidate_id, author, content, created_at
		FROM notes WHERE candidate_id = ?
		ORDER BY created_at, id`, candidateID)
	if err != nil {
		return nil, errors.Wrap(err, "list notes")
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var n Note
		var createdAt string
		if err := rows.Scan(&n.ID, &n.CandidateID, &n.Author, &n.Content, &createdAt); err != nil {
			return nil, errors.Wrap(err, "scan note")
		}
		if n.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, errors.Wrap(rows.Err(), "list notes")
}

// CountNotes returns the total number of notes.
func (s *Store) CountNotes() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM notes").Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count notes")
	}
	return n, nil
}
