package job

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound            = errors.New("job not found")
	ErrInvalidTransition   = errors.New("invalid job status transition")
	ErrPersistence         = errors.New("persistence error")
	ErrNoDocuments         = errors.New("no documents could be processed")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrInvalidSubmission   = errors.New("invalid submission")
)

// Store persists jobs and their outcome. Implementations must apply Complete in
// one transaction serialized per user.
type Store interface {
	Create(ctx context.Context, j Job) error
	Get(ctx context.Context, userID, id uuid.UUID) (Job, error)
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Job, error)
	// MarkProcessing moves a queued job to processing.
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	// MarkFailed moves a non-terminal job to failed.
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	// Complete stores the summaries, moves the job to completed, adds usage
	// and debits credits.
	Complete(ctx context.Context, c Completion) error
	// Candidates lists summaries of a job owned by userID, best match first.
	Candidates(ctx context.Context, userID, jobID uuid.UUID) ([]CandidateSummary, error)
}

// Dispatcher hands a queued job over to whatever runs it.
type Dispatcher interface {
	Dispatch(ctx context.Context, t Task) error
}
