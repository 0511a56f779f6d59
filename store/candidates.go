package store

import (
	"database/sql"
	"strings"

	"github.com/talentbase/talentbase/errors"
)

const candidateColumns = "id, job_id, job_title, name, email, phone, applied_date, stage"

// InsertCandidate creates a candidate. The referenced job must exist;
// AppliedDate is immutable after this point.
func (s *Store) InsertCandidate(c Candidate) (Candidate, error) {
	return insertCandidate(s.db, c)
}

// BulkInsertCandidates creates candidates in a single transaction, returning
// them with generated ids strictly increasing in input order.
func (s *Store) BulkInsertCandidates(candidates []Candidate) ([]Candidate, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, errors.Wrap(err, "begin bulk candidate insert")
	}

	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		inserted, err := insertCandidate(tx, c)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		out = append(out, inserted)
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit bulk candidate insert")
	}
	return out, nil
}

func insertCandidate(e execer, c Candidate) (Candidate, error) {
	if !c.Stage.Valid() {
		return Candidate{}, errors.Wrapf(ErrValidation, "candidate stage %q", c.Stage)
	}

	res, err := e.Exec(`
		INSERT INTO candidates (job_id, job_title, name, email, phone, applied_date, stage)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.JobID, c.JobTitle, c.Name, c.Email, c.Phone, formatTime(c.AppliedDate), c.Stage,
	)
	if err != nil {
		return Candidate{}, errors.Wrap(err, "insert candidate")
	}

	c.ID, err = res.LastInsertId()
	if err != nil {
		return Candidate{}, errors.Wrap(err, "candidate insert id")
	}
	return c, nil
}

// GetCandidate retrieves a candidate by id.
func (s *Store) GetCandidate(id int64) (Candidate, error) {
	row := s.db.QueryRow("SELECT "+candidateColumns+" FROM candidates WHERE id = ?", id)
	c, err := scanCandidate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Candidate{}, errors.Wrapf(ErrNotFound, "candidate %d", id)
	}
	return c, err
}

// ListCandidates returns candidates matching the filter in insertion order.
func (s *Store) ListCandidates(filter CandidateFilter) ([]Candidate, error) {
	query := "SELECT " + candidateColumns + " FROM candidates"
	var conds []string
	var args []any

	if filter.Stage != "" {
		if !filter.Stage.Valid() {
			return nil, errors.Wrapf(ErrValidation, "candidate stage %q", filter.Stage)
		}
		conds = append(conds, "stage = ?")
		args = append(args, filter.Stage)
	}
	if filter.JobID != 0 {
		conds = append(conds, "job_id = ?")
		args = append(args, filter.JobID)
	}
	if filter.Search != "" {
		needle := "%" + strings.ToLower(filter.Search) + "%"
		conds = append(conds, "(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)")
		args = append(args, needle, needle)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list candidates")
	}
	defer rows.Close()

	var candidates []Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, errors.Wrap(rows.Err(), "list candidates")
}

// CountCandidates returns the total number of candidates.
func (s *Store) CountCandidates() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM candidates").Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count candidates")
	}
	return n, nil
}

// SetCandidateStage moves a candidate to a new stage and returns the stage it
// held before. Validation happens before any write; the read and the write
// share one transaction so the prior stage is exact.
func (s *Store) SetCandidateStage(id int64, to Stage) (from Stage, err error) {
	if !to.Valid() {
		return "", errors.Wrapf(ErrValidation, "candidate stage %q", to)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", errors.Wrap(err, "begin stage update")
	}

	err = tx.QueryRow("SELECT stage FROM candidates WHERE id = ?", id).Scan(&from)
	if errors.Is(err, sql.ErrNoRows) {
		tx.Rollback()
		return "", errors.Wrapf(ErrNotFound, "candidate %d", id)
	}
	if err != nil {
		tx.Rollback()
		return "", errors.Wrap(err, "read candidate stage")
	}

	if _, err := tx.Exec("UPDATE candidates SET stage = ? WHERE id = ?", to, id); err != nil {
		tx.Rollback()
		return "", errors.Wrap(err, "update candidate stage")
	}

	if err := tx.Commit(); err != nil {
		return "", errors.Wrap(err, "commit stage update")
	}

	if s.logger != nil {
		s.logger.Debugw("Candidate stage updated", "candidate_id", id, "from", from, "to", to)
	}
	return from, nil
}

func scanCandidate(row scannable) (Candidate, error) {
	var c Candidate
	var appliedDate string
	err := row.Scan(&c.ID, &c.JobID, &c.JobTitle, &c.Name, &c.Email, &c.Phone, &appliedDate, &c.Stage)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Candidate{}, err
		}
		return Candidate{}, errors.Wrap(err, "scan candidate")
	}

	if c.AppliedDate, err = parseTime(appliedDate); err != nil {
		return Candidate{}, err
	}
	return c, nil
}
