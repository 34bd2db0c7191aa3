package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/shortlist/pkg/account"
	"github.com/artem13815/shortlist/pkg/job"
	"github.com/artem13815/shortlist/pkg/scoring"
)

// JobRepository implements job.Store backed by PostgreSQL (pgx).
type JobRepository struct {
	pool *pgxpool.Pool
}

var _ job.Store = (*JobRepository)(nil)

func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

const jobColumns = `id, user_id, title, description, status, documents, tokens_used, cost, error, created_at, updated_at`

func (r *JobRepository) Create(ctx context.Context, j job.Job) error {
	if j.Status == "" {
		j.Status = job.StatusQueued
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO jobs (`+jobColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, j.ID, j.UserID, j.Title, j.Description, string(j.Status), j.Documents, j.TokensUsed, j.Cost, j.Error, j.CreatedAt, j.UpdatedAt)
	return mapError("insert job", err)
}

func (r *JobRepository) Get(ctx context.Context, userID, id uuid.UUID) (job.Job, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1 AND user_id = $2`, id, userID)
	j, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return job.Job{}, job.ErrNotFound
		}
		return job.Job{}, mapError("select job", err)
	}
	return j, nil
}

// List returns jobs newest first; limit <= 0 means no limit.
func (r *JobRepository) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]job.Job, error) {
	var lim any
	if limit > 0 {
		lim = limit
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+jobColumns+` FROM jobs
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`, userID, lim, max(offset, 0))
	if err != nil {
		return nil, mapError("list jobs", err)
	}
	defer rows.Close()

	out := make([]job.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, mapError("scan job", err)
		}
		out = append(out, j)
	}
	return out, mapError("list jobs", rows.Err())
}

func (r *JobRepository) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE jobs SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3
	`, id, string(job.StatusProcessing), string(job.StatusQueued))
	if err != nil {
		return mapError("mark job processing", err)
	}
	if tag.RowsAffected() == 0 {
		return r.transitionError(ctx, id, job.StatusProcessing)
	}
	return nil
}

func (r *JobRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE jobs SET status = $2, error = $3, updated_at = now()
		WHERE id = $1 AND status IN ($4, $5)
	`, id, string(job.StatusFailed), reason, string(job.StatusQueued), string(job.StatusProcessing))
	if err != nil {
		return mapError("mark job failed", err)
	}
	if tag.RowsAffected() == 0 {
		return r.transitionError(ctx, id, job.StatusFailed)
	}
	return nil
}

// transitionError explains why a guarded update touched no row.
func (r *JobRepository) transitionError(ctx context.Context, id uuid.UUID, to job.Status) error {
	var status string
	err := r.pool.QueryRow(ctx, `SELECT status FROM jobs WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return job.ErrNotFound
	}
	if err != nil {
		return mapError("select job status", err)
	}
	return fmt.Errorf("%w: %s -> %s", job.ErrInvalidTransition, status, to)
}

// Complete writes summaries, job status, usage and the credit debit in one
// transaction. The users row is locked, so completions of one user are serialized.
func (r *JobRepository) Complete(ctx context.Context, c job.Completion) error {
	at := c.CompletedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var status string
		err := tx.QueryRow(ctx, `SELECT status FROM jobs WHERE id = $1 AND user_id = $2 FOR UPDATE`, c.JobID, c.UserID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return job.ErrNotFound
		}
		if err != nil {
			return mapError("lock job", err)
		}
		if job.Status(status) != job.StatusProcessing {
			return fmt.Errorf("%w: %s -> %s", job.ErrInvalidTransition, status, job.StatusCompleted)
		}

		acct := account.Account{UserID: c.UserID}
		err = tx.QueryRow(ctx, `
			SELECT free_trial_remaining, paid_credits FROM users WHERE id = $1 FOR UPDATE
		`, c.UserID).Scan(&acct.FreeTrialRemaining, &acct.PaidCredits)
		if errors.Is(err, pgx.ErrNoRows) {
			return account.ErrNotFound
		}
		if err != nil {
			return mapError("lock account", err)
		}
		acct.Debit(c.Documents)
		if _, err := tx.Exec(ctx, `
			UPDATE users SET free_trial_remaining = $2, paid_credits = $3 WHERE id = $1
		`, c.UserID, acct.FreeTrialRemaining, acct.PaidCredits); err != nil {
			return mapError("debit credits", err)
		}

		if len(c.Candidates) > 0 {
			if _, err := tx.CopyFrom(ctx, pgx.Identifier{"candidate_summaries"}, summaryColumns, pgx.CopyFromSlice(len(c.Candidates), func(i int) ([]any, error) {
				return summaryRow(c.Candidates[i]), nil
			})); err != nil {
				return mapError("copy candidate summaries", err)
			}
		}

		if _, err := tx.Exec(ctx, `
			UPDATE jobs SET status = $2, tokens_used = $3, cost = $4, error = '', updated_at = $5
			WHERE id = $1
		`, c.JobID, string(job.StatusCompleted), c.TokensUsed, c.Cost, at); err != nil {
			return mapError("complete job", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO usage_stats (user_id, total_jobs, total_candidates, total_tokens, total_cost, updated_at)
			VALUES ($1, 1, $2, $3, $4, $5)
			ON CONFLICT (user_id) DO UPDATE SET
				total_jobs = usage_stats.total_jobs + 1,
				total_candidates = usage_stats.total_candidates + EXCLUDED.total_candidates,
				total_tokens = usage_stats.total_tokens + EXCLUDED.total_tokens,
				total_cost = usage_stats.total_cost + EXCLUDED.total_cost,
				updated_at = EXCLUDED.updated_at
		`, c.UserID, c.Documents, c.TokensUsed, c.Cost, at)
		return mapError("update usage", err)
	})
}

func (r *JobRepository) Candidates(ctx context.Context, userID, jobID uuid.UUID) ([]job.CandidateSummary, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM jobs WHERE id = $1 AND user_id = $2)
	`, jobID, userID).Scan(&exists); err != nil {
		return nil, mapError("select job", err)
	}
	if !exists {
		return nil, job.ErrNotFound
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, job_id, rank, file_name, name, email, phone, experience_years, skills, education,
			similarity_score, fused_score, skills_match, missing_skills, match_score, status, reasoning, created_at
		FROM candidate_summaries
		WHERE job_id = $1
		ORDER BY rank
	`, jobID)
	if err != nil {
		return nil, mapError("list candidates", err)
	}
	defer rows.Close()

	out := []job.CandidateSummary{}
	for rows.Next() {
		var s job.CandidateSummary
		var status string
		if err := rows.Scan(&s.ID, &s.JobID, &s.Rank, &s.FileName, &s.Name, &s.Email, &s.Phone, &s.ExperienceYears,
			&s.Skills, &s.Education, &s.SimilarityScore, &s.FusedScore, &s.SkillsMatch, &s.MissingSkills,
			&s.MatchScore, &status, &s.Reasoning, &s.CreatedAt); err != nil {
			return nil, mapError("scan candidate", err)
		}
		s.Status = scoring.Status(status)
		s.CreatedAt = s.CreatedAt.UTC()
		out = append(out, s)
	}
	return out, mapError("list candidates", rows.Err())
}

var summaryColumns = []string{
	"id", "job_id", "rank", "file_name", "name", "email", "phone", "experience_years", "skills", "education",
	"similarity_score", "fused_score", "skills_match", "missing_skills", "match_score", "status", "reasoning", "created_at",
}

func summaryRow(s job.CandidateSummary) []any {
	skills, missing := s.Skills, s.MissingSkills
	if skills == nil {
		skills = []string{}
	}
	if missing == nil {
		missing = []string{}
	}
	return []any{
		s.ID, s.JobID, s.Rank, s.FileName, s.Name, s.Email, s.Phone, s.ExperienceYears, skills, s.Education,
		s.SimilarityScore, s.FusedScore, s.SkillsMatch, missing, s.MatchScore, string(s.Status), s.Reasoning, s.CreatedAt,
	}
}

func scanJob(row pgx.Row) (job.Job, error) {
	var j job.Job
	var status string
	if err := row.Scan(&j.ID, &j.UserID, &j.Title, &j.Description, &status, &j.Documents, &j.TokensUsed,
		&j.Cost, &j.Error, &j.CreatedAt, &j.UpdatedAt); err != nil {
		return job.Job{}, err
	}
	j.Status = job.Status(status)
	j.CreatedAt = j.CreatedAt.UTC()
	j.UpdatedAt = j.UpdatedAt.UTC()
	return j, nil
}
