package job

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/artem13815/shortlist/pkg/account"
	"github.com/artem13815/shortlist/pkg/logger"
)

// UseCase описывает сценарии работы с заданиями на ранжирование.
type UseCase interface {
	Submit(ctx context.Context, s Submission) (Job, error)
	Get(ctx context.Context, userID, id uuid.UUID) (Job, error)
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Job, error)
	Candidates(ctx context.Context, userID, id uuid.UUID) ([]CandidateSummary, error)
	Usage(ctx context.Context, userID uuid.UUID) (UsageReport, error)
}

// Submission is a validated upload: files already sit in temporary storage.
type Submission struct {
	UserID      uuid.UUID
	Title       string
	Description string
	Files       []File
}

// UsageReport combines running totals with the remaining credit balance.
type UsageReport struct {
	Stats              account.UsageStats `json:"stats"`
	FreeTrialRemaining int                `json:"freeTrialRemaining"`
	PaidCredits        int                `json:"paidCredits"`
	RemainingBalance   int                `json:"remainingBalance"`
}

type service struct {
	store      Store
	accounts   account.Repository
	dispatcher Dispatcher
	log        *zap.Logger
}

func NewService(store Store, accounts account.Repository, dispatcher Dispatcher, log *zap.Logger) UseCase {
	return &service{store: store, accounts: accounts, dispatcher: dispatcher, log: logger.WithFields(log)}
}

// Submit creates a queued job and dispatches it. Submitted files are removed
// when the job cannot be queued; afterwards they belong to the orchestrator.
func (s *service) Submit(ctx context.Context, sub Submission) (j Job, err error) {
	defer func() {
		if err != nil {
			removeFiles(sub.Files, s.log)
		}
	}()

	sub.Title = strings.TrimSpace(sub.Title)
	sub.Description = strings.TrimSpace(sub.Description)
	switch {
	case sub.Title == "":
		return Job{}, fmt.Errorf("%w: title is required", ErrInvalidSubmission)
	case sub.Description == "":
		return Job{}, fmt.Errorf("%w: job description is required", ErrInvalidSubmission)
	case len(sub.Files) == 0:
		return Job{}, fmt.Errorf("%w: at least one file is required", ErrInvalidSubmission)
	}

	acct, err := s.accounts.Get(ctx, sub.UserID)
	if err != nil {
		return Job{}, err
	}
	if len(sub.Files) > acct.Available() {
		return Job{}, fmt.Errorf("%w: %d files, %d credits available", ErrInsufficientCredits, len(sub.Files), acct.Available())
	}

	now := time.Now().UTC()
	j = Job{
		ID:          uuid.New(),
		UserID:      sub.UserID,
		Title:       sub.Title,
		Description: sub.Description,
		Status:      StatusQueued,
		Documents:   len(sub.Files),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, j); err != nil {
		return Job{}, err
	}

	task := Task{JobID: j.ID, UserID: j.UserID, Title: j.Title, Description: j.Description, Files: sub.Files}
	if err := s.dispatcher.Dispatch(ctx, task); err != nil {
		err = fmt.Errorf("dispatch job: %w", err)
		if mErr := s.store.MarkFailed(context.WithoutCancel(ctx), j.ID, err.Error()); mErr != nil {
			s.log.Error("mark undispatched job failed", zap.String(logger.FieldJobID, j.ID.String()), zap.Error(mErr))
		}
		return Job{}, err
	}
	s.log.Info("job queued", logger.JobFields(j.ID.String(), j.UserID.String())...)
	return j, nil
}

func (s *service) Get(ctx context.Context, userID, id uuid.UUID) (Job, error) {
	return s.store.Get(ctx, userID, id)
}

func (s *service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Job, error) {
	return s.store.List(ctx, userID, limit, offset)
}

func (s *service) Candidates(ctx context.Context, userID, id uuid.UUID) ([]CandidateSummary, error) {
	return s.store.Candidates(ctx, userID, id)
}

func (s *service) Usage(ctx context.Context, userID uuid.UUID) (UsageReport, error) {
	acct, err := s.accounts.Get(ctx, userID)
	if err != nil {
		return UsageReport{}, err
	}
	stats, err := s.accounts.Usage(ctx, userID)
	if err != nil {
		return UsageReport{}, err
	}
	return UsageReport{
		Stats:              stats,
		FreeTrialRemaining: acct.FreeTrialRemaining,
		PaidCredits:        acct.PaidCredits,
		RemainingBalance:   acct.Available(),
	}, nil
}

func removeFiles(files []File, log *zap.Logger) {
	for _, f := range files {
		if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn("temp file not removed", zap.String(logger.FieldFile, f.Path), zap.Error(err))
		}
	}
}
