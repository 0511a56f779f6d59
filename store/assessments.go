package store

import (
	"database/sql"
	"encoding/json"

	"github.com/talentbase/talentbase/errors"
)

// UpsertAssessment creates or replaces the assessment for a job. The job_id
// primary key keeps the one-assessment-per-job invariant in the schema itself.
func (s *Store) UpsertAssessment(a Assessment) error {
	if err := upsertAssessment(s.db, a); err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.Debugw("Assessment upserted", "job_id", a.JobID, "questions", len(a.Questions))
	}
	return nil
}

func upsertAssessment(e execer, a Assessment) error {
	questions, err := marshalJSON(a.Questions)
	if err != nil {
		return err
	}

	var responses sql.NullString
	if a.Responses != nil {
		encoded, err := marshalJSON(a.Responses)
		if err != nil {
			return err
		}
		responses = sql.NullString{String: encoded, Valid: true}
	}

	_, err = e.Exec(`
		INSERT INTO assessments (job_id, questions, responses)
		VALUES (?, ?, ?)
		ON CONFLICT(job_id) DO UPDATE SET
			questions = excluded.questions,
			responses = excluded.responses`,
		a.JobID, questions, responses,
	)
	if err != nil {
		return errors.Wrap(err, "upsert assessment")
	}
	return nil
}

// GetAssessment retrieves the assessment for a job.
func (s *Store) GetAssessment(jobID int64) (Assessment, error) {
	row := s.db.QueryRow("SELECT job_id, questions, responses FROM assessments WHERE job_id = ?", jobID)
	a, err := scanAssessment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Assessment{}, errors.Wrapf(ErrNotFound, "assessment for job %d", jobID)
	}
	return a, err
}

// ListAssessments returns all assessments ordered by job id.
func (s *Store) ListAssessments() ([]Assessment, error) {
	rows, err := s.db.Query("SELECT job_id, questions, responses FROM assessments ORDER BY job_id")
	if err != nil {
		return nil, errors.Wrap(err, "list assessments")
	}
	defer rows.Close()

	var assessments []Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		assessments = append(assessments, a)
	}
	return assessments, errors.Wrap(rows.Err(), "list assessments")
}

// CountAssessments returns the total number of assessments.
func (s *Store) CountAssessments() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM assessments").Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count assessments")
	}
	return n, nil
}

func scanAssessment(row scannable) (Assessment, error) {
	var a Assessment
	var questions string
	var responses sql.NullString
	err := row.Scan(&a.JobID, &questions, &responses)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Assessment{}, err
		}
		return Assessment{}, errors.Wrap(err, "scan assessment")
	}

	if err := json.Unmarshal([]byte(questions), &a.Questions); err != nil {
		return Assessment{}, errors.Wrap(err, "unmarshal assessment questions")
	}
	if responses.Valid {
		if err := json.Unmarshal([]byte(responses.String), &a.Responses); err != nil {
			return Assessment{}, errors.Wrap(err, "unmarshal assessment responses")
		}
	}
	return a, nil
}
