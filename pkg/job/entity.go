package job

import (
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/shortlist/pkg/document"
	"github.com/artem13815/shortlist/pkg/scoring"
)

type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusQueued, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is one submitted batch of candidate documents ranked against a job description.
type Job struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	// Documents is the number of files submitted.
	Documents  int       `json:"documents"`
	TokensUsed int       `json:"tokensUsed"`
	Cost       float64   `json:"cost"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CandidateSummary is the persisted outcome for one ranked candidate. Immutable once stored.
type CandidateSummary struct {
	ID              uuid.UUID      `json:"id"`
	JobID           uuid.UUID      `json:"jobId"`
	Rank            int            `json:"rank"`
	FileName        string         `json:"fileName"`
	Name            string         `json:"name"`
	Email           string         `json:"email,omitempty"`
	Phone           string         `json:"phone,omitempty"`
	ExperienceYears int            `json:"experienceYears"`
	Skills          []string       `json:"skills"`
	Education       string         `json:"education"`
	SimilarityScore float64        `json:"similarityScore"`
	FusedScore      float64        `json:"fusedScore"`
	SkillsMatch     float64        `json:"skillsMatch"`
	MissingSkills   []string       `json:"missingSkills"`
	MatchScore      float64        `json:"matchScore"`
	Status          scoring.Status `json:"status"`
	Reasoning       string         `json:"reasoning"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// File is an uploaded document waiting in temporary storage.
type File struct {
	Path   string          `json:"path"`
	Name   string          `json:"name"`
	Format document.Format `json:"format"`
}

// Task is the unit handed to a dispatcher: everything a worker needs to run a job.
type Task struct {
	JobID       uuid.UUID `json:"jobId"`
	UserID      uuid.UUID `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Files       []File    `json:"files"`
}

// Completion is applied atomically when a job finishes successfully.
type Completion struct {
	JobID      uuid.UUID
	UserID     uuid.UUID
	Candidates []CandidateSummary
	// Documents is the number of documents that survived normalization; it is
	// both the credit debit and the candidate count added to usage stats.
	Documents   int
	TokensUsed  int
	Cost        float64
	CompletedAt time.Time
}
