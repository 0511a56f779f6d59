package store

import (
	"database/sql"
	"strings"

	"github.com/talentbase/talentbase/errors"
)

const jobColumns = "id, title, slug, status, type, location, description, requirements, skills, tags, sort_order"

// InsertJob creates a job and returns it with the generated id. Slug is
// derived from the title; the caller-supplied slug is ignored.
func (s *Store) InsertJob(job Job) (Job, error) {
	inserted, err := insertJob(s.db, job)
	if err != nil {
		return Job{}, err
	}
	if s.logger != nil {
		s.logger.Debugw("Inserted job", "id", inserted.ID, "title", inserted.Title, "order", inserted.Order)
	}
	return inserted, nil
}

// BulkInsertJobs creates jobs in a single transaction and returns them with
// their generated ids, strictly increasing in input order.
func (s *Store) BulkInsertJobs(jobs []Job) ([]Job, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, errors.Wrap(err, "begin bulk job insert")
	}

	out := make([]Job, 0, len(jobs))
	for _, job := range jobs {
		inserted, err := insertJob(tx, job)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		out = append(out, inserted)
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit bulk job insert")
	}
	return out, nil
}

func insertJob(e execer, job Job) (Job, error) {
	if !job.Status.Valid() {
		return Job{}, errors.Wrapf(ErrValidation, "job status %q", job.Status)
	}
	if !job.Type.Valid() {
		return Job{}, errors.Wrapf(ErrValidation, "job type %q", job.Type)
	}

	job.Slug = Slugify(job.Title)

	requirements, err := marshalJSON(job.Requirements)
	if err != nil {
		return Job{}, err
	}
	skills, err := marshalJSON(job.Skills)
	if err != nil {
		return Job{}, err
	}
	tags, err := marshalJSON(job.Tags)
	if err != nil {
		return Job{}, err
	}

	res, err := e.Exec(`
		INSERT INTO jobs (title, slug, status, type, location, description, requirements, skills, tags, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.Title, job.Slug, job.Status, job.Type, job.Location, job.Description,
		requirements, skills, tags, job.Order,
	)
	if err != nil {
		return Job{}, errors.Wrap(err, "insert job")
	}

	job.ID, err = res.LastInsertId()
	if err != nil {
		return Job{}, errors.Wrap(err, "job insert id")
	}
	return job, nil
}

// GetJob retrieves a job by id.
func (s *Store) GetJob(id int64) (Job, error) {
	row := s.db.QueryRow("SELECT "+jobColumns+" FROM jobs WHERE id = ?", id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, errors.Wrapf(ErrNotFound, "job %d", id)
	}
	return job, err
}

// GetJobBySlug retrieves a job by slug. When titles collide the lowest id
// wins, mirroring the undeduplicated slug scheme.
func (s *Store) GetJobBySlug(slug string) (Job, error) {
	row := s.db.QueryRow("SELECT "+jobColumns+" FROM jobs WHERE slug = ? ORDER BY id LIMIT 1", slug)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, errors.Wrapf(ErrNotFound, "job slug %q", slug)
	}
	return job, err
}

// ListJobs returns jobs matching the filter, ordered by the persisted order
// field.
func (s *Store) ListJobs(filter JobFilter) ([]Job, error) {
	query := "SELECT " + jobColumns + " FROM jobs"
	var conds []string
	var args []any

	if filter.Status != "" {
		if !filter.Status.Valid() {
			return nil, errors.Wrapf(ErrValidation, "job status %q", filter.Status)
		}
		conds = append(conds, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		needle := "%" + strings.ToLower(filter.Search) + "%"
		conds = append(conds, "(LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(location) LIKE ?)")
		args = append(args, needle, needle, needle)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY sort_order, id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list jobs")
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, errors.Wrap(rows.Err(), "list jobs")
}

// CountJobs returns the total number of jobs.
func (s *Store) CountJobs() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM jobs").Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count jobs")
	}
	return n, nil
}

// UpdateJob applies a patch to a job. Enum fields are validated before any
// write; the row is untouched when validation fails or the job is missing.
func (s *Store) UpdateJob(id int64, patch JobPatch) (Job, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return Job{}, errors.Wrapf(ErrValidation, "job status %q", *patch.Status)
	}
	if patch.Type != nil && !patch.Type.Valid() {
		return Job{}, errors.Wrapf(ErrValidation, "job type %q", *patch.Type)
	}

	var sets []string
	var args []any
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if patch.Title != nil {
		set("title", *patch.Title)
		set("slug", Slugify(*patch.Title))
	}
	if patch.Status != nil {
		set("status", *patch.Status)
	}
	if patch.Type != nil {
		set("type", *patch.Type)
	}
	if patch.Location != nil {
		set("location", *patch.Location)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	for col, field := range map[string]*[]string{
		"requirements": patch.Requirements,
		"skills":       patch.Skills,
		"tags":         patch.Tags,
	} {
		if field == nil {
			continue
		}
		encoded, err := marshalJSON(*field)
		if err != nil {
			return Job{}, err
		}
		set(col, encoded)
	}

	if len(sets) == 0 {
		return s.GetJob(id)
	}

	args = append(args, id)
	res, err := s.db.Exec("UPDATE jobs SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return Job{}, errors.Wrap(err, "update job")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Job{}, errors.Wrap(err, "update job rows affected")
	}
	if affected == 0 {
		return Job{}, errors.Wrapf(ErrNotFound, "job %d", id)
	}

	return s.GetJob(id)
}

// ReorderJobs rewrites the order field so that orderedIDs[i] gets order i+1.
// All-or-nothing: an unknown id rolls the whole reorder back.
func (s *Store) ReorderJobs(orderedIDs []int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin reorder")
	}

	for i, id := range orderedIDs {
		res, err := tx.Exec("UPDATE jobs SET sort_order = ? WHERE id = ?", i+1, id)
		if err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "reorder job %d", id)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "reorder job %d", id)
		}
		if affected == 0 {
			tx.Rollback()
			return errors.Wrapf(ErrNotFound, "job %d", id)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit reorder")
	}
	if s.logger != nil {
		s.logger.Debugw("Reordered jobs", "count", len(orderedIDs))
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanJob(row scannable) (Job, error) {
	var job Job
	var requirements, skills, tags string
	err := row.Scan(&job.ID, &job.Title, &job.Slug, &job.Status, &job.Type,
		&job.Location, &job.Description, &requirements, &skills, &tags, &job.Order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, err
		}
		return Job{}, errors.Wrap(err, "scan job")
	}

	if job.Requirements, err = unmarshalStrings(requirements); err != nil {
		return Job{}, err
	}
	if job.Skills, err = unmarshalStrings(skills); err != nil {
		return Job{}, err
	}
	if job.Tags, err = unmarshalStrings(tags); err != nil {
		return Job{}, err
	}
	return job, nil
}
