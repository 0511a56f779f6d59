package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentbase/talentbase/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	conn, err := db.OpenWithMigrations(db.InMemoryPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return New(conn, nil)
}

func testJob(title string, order int) Job {
	return Job{
		Title:        title,
		Status:       JobStatusActive,
		Type:         JobTypeFullTime,
		Location:     "Remote",
		Description:  "We are looking for a " + title + " to join our growing team.",
		Requirements: []string{"Strong problem-solving skills"},
		Skills:       []string{"Go", "SQL"},
		Tags:         []string{"remote"},
		Order:        order,
	}
}

func testCandidate(jobID int64, name string) Candidate {
	return Candidate{
		JobID:       jobID,
		JobTitle:    "Backend Engineer",
		Name:        name,
		Email:       "candidate@example.com",
		Phone:       "+1-555-123-4567",
		AppliedDate: time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC),
		Stage:       StageApplied,
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Backend Engineer", "backend-engineer"},
		{"Site  Reliability   Engineer", "site-reliability-engineer"},
		{"  UI/UX Designer ", "ui/ux-designer"},
		{"devops", "devops"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.title))
	}
}

func TestTableCounts(t *testing.T) {
	s := newTestStore(t)

	_, err := s.InsertJob(testJob("Backend Engineer", 1))
	require.NoError(t, err)

	counts, err := s.TableCounts()
	require.NoError(t, err)
	assert.Equal(t, 1, counts["jobs"])
	assert.Equal(t, 0, counts["candidates"])
	assert.Equal(t, 0, counts["assessments"])
	assert.Equal(t, 0, counts["notes"])
	assert.Equal(t, 0, counts["timeline_events"])
}
