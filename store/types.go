// Package store implements the hiring-pipeline persistence layer over SQLite.
//
// Tables: jobs, candidates, assessments, notes, timeline_events. Generated ids
// are positive and strictly increasing per table. Secondary indexes are
// declared by the schema migrations in the db package; because every write
// goes through a single SQL statement, a row and its index entries can never
// disagree.
package store

import (
	"strings"
	"time"

	"github.com/talentbase/talentbase/errors"
)

// JobStatus is the lifecycle state of a job posting.
type JobStatus string

const (
	JobStatusActive   JobStatus = "active"
	JobStatusArchived JobStatus = "archived"
)

// Valid reports whether the status is one of the closed set.
func (s JobStatus) Valid() bool {
	return s == JobStatusActive || s == JobStatusArchived
}

// JobType is the employment type of a job posting.
type JobType string

const (
	JobTypeFullTime   JobType = "Full-time"
	JobTypePartTime   JobType = "Part-time"
	JobTypeContract   JobType = "Contract"
	JobTypeInternship JobType = "Internship"
)

func (t JobType) Valid() bool {
	switch t {
	case JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship:
		return true
	}
	return false
}

// Stage is a candidate's position in the hiring pipeline.
type Stage string

const (
	StageApplied  Stage = "applied"
	StageScreen   Stage = "screen"
	StageTech     Stage = "tech"
	StageOffer    Stage = "offer"
	StageHired    Stage = "hired"
	StageRejected Stage = "rejected"
)

// Stages lists all pipeline stages in order.
var Stages = []Stage{StageApplied, StageScreen, StageTech, StageOffer, StageHired, StageRejected}

func (s Stage) Valid() bool {
	for _, stage := range Stages {
		if s == stage {
			return true
		}
	}
	return false
}

// EventType classifies timeline events.
type EventType string

const (
	EventTypeSystem      EventType = "system"
	EventTypeNote        EventType = "note"
	EventTypeStageChange EventType = "stage-change"
)

func (t EventType) Valid() bool {
	return t == EventTypeSystem || t == EventTypeNote || t == EventTypeStageChange
}

// Job is a posted position. Order places the job in the strict total ordering
// over all jobs; it is rewritten only by ReorderJobs.
type Job struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	Status       JobStatus `json:"status"`
	Type         JobType   `json:"type"`
	Location     string    `json:"location"`
	Description  string    `json:"description"`
	Requirements []string  `json:"requirements"`
	Skills       []string  `json:"skills"`
	Tags         []string  `json:"tags"`
	Order        int       `json:"order"`
}

// Candidate is an applicant attached to a job. JobTitle is denormalized from
// the job at creation time. AppliedDate is immutable after creation; Stage
// changes only through the mutation coordinator.
type Candidate struct {
	ID          int64     `json:"id"`
	JobID       int64     `json:"jobId"`
	JobTitle    string    `json:"jobTitle"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	AppliedDate time.Time `json:"appliedDate"`
	Stage       Stage     `json:"stage"`
}

// Question is a single assessment question.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// Assessment is the per-job questionnaire. At most one exists per job.
type Assessment struct {
	JobID     int64             `json:"jobId"`
	Questions []Question        `json:"questions"`
	Responses map[string]string `json:"responses,omitempty"`
}

// Note is an append-only annotation on a candidate.
type Note struct {
	ID          int64     `json:"id"`
	CandidateID int64     `json:"candidateId"`
	Author      string    `json:"author"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TimelineEvent is an append-only audit record for a candidate. The
// stage-change variant always carries both FromStage and ToStage.
type TimelineEvent struct {
	ID          int64     `json:"id"`
	CandidateID int64     `json:"candidateId"`
	Type        EventType `json:"type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	Author      string    `json:"author,omitempty"`
	FromStage   Stage     `json:"fromStage,omitempty"`
	ToStage     Stage     `json:"toStage,omitempty"`
}

// JobPatch updates selected job fields; nil fields are left unchanged.
// Patching Title recomputes Slug.
type JobPatch struct {
	Title        *string    `json:"title,omitempty"`
	Status       *JobStatus `json:"status,omitempty"`
	Type         *JobType   `json:"type,omitempty"`
	Location     *string    `json:"location,omitempty"`
	Description  *string    `json:"description,omitempty"`
	Requirements *[]string  `json:"requirements,omitempty"`
	Skills       *[]string  `json:"skills,omitempty"`
	Tags         *[]string  `json:"tags,omitempty"`
}

// JobFilter narrows ListJobs. Zero values match everything.
type JobFilter struct {
	Status JobStatus // exact match
	Search string    // case-insensitive substring over title/description/location
}

// CandidateFilter narrows ListCandidates. Zero values match everything.
type CandidateFilter struct {
	Stage  Stage  // exact match
	JobID  int64  // exact match, 0 = all
	Search string // case-insensitive substring over name/email
}

// Validation sentinels. Use errors.Is to classify.
var (
	// ErrNotFound indicates the target row does not exist.
	ErrNotFound = errors.ErrNotFound

	// ErrValidation indicates a value outside its enumerated set. Rejected
	// before any write reaches the database.
	ErrValidation = errors.New("validation failed")
)

// Slugify derives a URL slug from a title: lowercased, whitespace runs
// replaced with a single hyphen. Colliding slugs are not deduplicated;
// two jobs with the same title share a slug. Known gap, kept deliberately.
func Slugify(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), "-")
}
