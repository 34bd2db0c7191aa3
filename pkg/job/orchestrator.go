package job

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/artem13815/shortlist/pkg/attributes"
	"github.com/artem13815/shortlist/pkg/document"
	"github.com/artem13815/shortlist/pkg/embedding"
	"github.com/artem13815/shortlist/pkg/logger"
	"github.com/artem13815/shortlist/pkg/rerank"
	"github.com/artem13815/shortlist/pkg/scoring"
	"github.com/artem13815/shortlist/pkg/similarity"
)

const failTimeout = 5 * time.Second

// Reranker refines the top candidates; it never fails, see rerank.Reranker.
type Reranker interface {
	Rerank(ctx context.Context, jobText string, candidates []rerank.Candidate) rerank.Result
}

// PipelineConfig carries the scoring knobs of a run.
type PipelineConfig struct {
	Weights         scoring.Weights
	Thresholds      scoring.Thresholds
	TopK            int
	CostPer1KTokens float64
}

func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Weights:         scoring.DefaultWeights(),
		Thresholds:      scoring.DefaultThresholds(),
		TopK:            rerank.MaxCandidates,
		CostPer1KTokens: 0.002,
	}
}

// Orchestrator runs the ranking pipeline of a job and owns every state change
// of that job while it runs.
type Orchestrator struct {
	store     Store
	embedder  embedding.Embedder
	extractor *attributes.Extractor
	reranker  Reranker
	cfg       PipelineConfig
	log       *zap.Logger

	extract func(path string, format document.Format) (string, error)
	remove  func(path string) error
	now     func() time.Time
}

func NewOrchestrator(store Store, embedder embedding.Embedder, extractor *attributes.Extractor, reranker Reranker, cfg PipelineConfig, log *zap.Logger) (*Orchestrator, error) {
	if err := cfg.Weights.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Thresholds.Validate(); err != nil {
		return nil, err
	}
	if cfg.TopK <= 0 || cfg.TopK > rerank.MaxCandidates {
		cfg.TopK = rerank.MaxCandidates
	}
	if extractor == nil {
		extractor = attributes.NewExtractor()
	}
	return &Orchestrator{
		store:     store,
		embedder:  embedder,
		extractor: extractor,
		reranker:  reranker,
		cfg:       cfg,
		log:       logger.WithFields(log),
		extract:   document.Extract,
		remove:    os.Remove,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// Run processes a queued job to completed or failed. Input files are removed
// on every exit path, except when the job was not queued: then the files
// belong to the run that already picked it up (a redelivered queue message).
// A returned error has already been recorded on the job.
func (o *Orchestrator) Run(ctx context.Context, t Task) (err error) {
	log := o.log.With(logger.JobFields(t.JobID.String(), t.UserID.String())...)
	ownsFiles := true
	defer func() {
		if ownsFiles {
			o.cleanup(t.Files, log)
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job run panicked: %v", r)
			o.fail(ctx, t.JobID, err, log)
		}
	}()

	if err := o.store.MarkProcessing(ctx, t.JobID); err != nil {
		ownsFiles = !errors.Is(err, ErrInvalidTransition)
		log.Error("job cannot start", zap.Error(err))
		return fmt.Errorf("start job %s: %w", t.JobID, err)
	}
	started := o.now()
	log.Info("job processing", zap.Int("files", len(t.Files)))

	completion, err := o.process(ctx, t, log)
	if err != nil {
		o.fail(ctx, t.JobID, err, log)
		return err
	}
	if err := o.store.Complete(ctx, completion); err != nil {
		err = fmt.Errorf("complete job: %w", err)
		if !errors.Is(err, ErrPersistence) {
			err = fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		o.fail(ctx, t.JobID, err, log)
		return err
	}
	log.Info("job completed",
		zap.Int("documents", completion.Documents),
		zap.Int("candidates", len(completion.Candidates)),
		zap.Int("tokens", completion.TokensUsed),
		zap.Duration("took", o.now().Sub(started)),
	)
	return nil
}

// Abort fails a job that will never run and removes its files.
func (o *Orchestrator) Abort(ctx context.Context, t Task, reason error) {
	log := o.log.With(logger.JobFields(t.JobID.String(), t.UserID.String())...)
	o.fail(ctx, t.JobID, reason, log)
	o.cleanup(t.Files, log)
}

type candidateRecord struct {
	file       File
	text       string
	attrs      attributes.Attributes
	match      attributes.SkillsMatch
	similarity float64
	fused      float64
}

func (o *Orchestrator) process(ctx context.Context, t Task, log *zap.Logger) (Completion, error) {
	records := make([]candidateRecord, 0, len(t.Files))
	for _, f := range t.Files {
		text, err := o.extract(f.Path, f.Format)
		if err != nil {
			log.Warn("document skipped", zap.String(logger.FieldFile, f.Name), zap.Error(err))
			continue
		}
		records = append(records, candidateRecord{file: f, text: text})
	}
	if len(records) == 0 {
		return Completion{}, ErrNoDocuments
	}

	jobVec, err := o.embedder.Embed(ctx, t.Description)
	if err != nil {
		return Completion{}, fmt.Errorf("embed job description: %w", err)
	}
	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.text
	}
	vecs, err := o.embedder.EmbedMany(ctx, texts)
	if err != nil {
		return Completion{}, fmt.Errorf("embed documents: %w", err)
	}
	if len(vecs) != len(records) {
		return Completion{}, fmt.Errorf("embed documents: got %d vectors for %d documents", len(vecs), len(records))
	}

	index := similarity.NewIndex(len(jobVec))
	if err := index.Build(vecs); err != nil {
		return Completion{}, fmt.Errorf("build index: %w", err)
	}
	sims, err := index.Scores(jobVec)
	if err != nil {
		return Completion{}, fmt.Errorf("score documents: %w", err)
	}

	for i := range records {
		r := &records[i]
		r.similarity = sims[i]
		r.attrs = o.extractor.Extract(r.text)
		r.match = o.extractor.MatchSkills(r.attrs.Skills, t.Description)
		r.fused = o.cfg.Weights.Fuse(r.similarity, r.attrs.ExperienceYears, r.attrs.Education.Rank)
		log.Debug("document scored",
			zap.String(logger.FieldFile, r.file.Name),
			zap.Float64("similarity", r.similarity),
			zap.Float64("fused", r.fused),
			zap.Any("skills", o.extractor.Categories(r.attrs.Skills)),
		)
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].fused > records[j].fused })

	top := records[:min(o.cfg.TopK, len(records))]
	reranked := o.reranker.Rerank(ctx, t.Description, toRerankCandidates(top))
	if len(reranked.Assessments) != len(top) {
		reranked = rerank.Fallback(toRerankCandidates(top))
	}
	if reranked.Fallback {
		log.Info("rerank used deterministic fallback")
	}

	now := o.now()
	summaries := make([]CandidateSummary, len(top))
	for i, r := range top {
		a := reranked.Assessments[i]
		score := scoring.Round2(a.Score)
		summaries[i] = CandidateSummary{
			ID:              uuid.New(),
			JobID:           t.JobID,
			FileName:        r.file.Name,
			Name:            r.attrs.Name,
			Email:           r.attrs.Email,
			Phone:           r.attrs.Phone,
			ExperienceYears: r.attrs.ExperienceYears,
			Skills:          r.attrs.Skills,
			Education:       r.attrs.Education.Label(),
			SimilarityScore: scoring.Round2(r.similarity),
			FusedScore:      scoring.Round2(r.fused),
			SkillsMatch:     scoring.Round2(r.match.Percent),
			MissingSkills:   r.match.Missing,
			MatchScore:      score,
			Status:          o.cfg.Thresholds.Classify(score),
			Reasoning:       a.Rationale,
			CreatedAt:       now,
		}
	}
	sort.SliceStable(summaries, func(i, j int) bool { return summaries[i].MatchScore > summaries[j].MatchScore })
	for i := range summaries {
		summaries[i].Rank = i + 1
	}

	return Completion{
		JobID:       t.JobID,
		UserID:      t.UserID,
		Candidates:  summaries,
		Documents:   len(records),
		TokensUsed:  reranked.TokensUsed,
		Cost:        scoring.Cost(reranked.TokensUsed, o.cfg.CostPer1KTokens),
		CompletedAt: now,
	}, nil
}

func toRerankCandidates(records []candidateRecord) []rerank.Candidate {
	out := make([]rerank.Candidate, len(records))
	for i, r := range records {
		out[i] = rerank.Candidate{
			Name:            r.attrs.Name,
			ExperienceYears: r.attrs.ExperienceYears,
			Skills:          r.attrs.Skills,
			Education:       r.attrs.Education.Label(),
			Score:           r.fused,
		}
	}
	return out
}

// fail records the failure even when ctx is already canceled.
func (o *Orchestrator) fail(ctx context.Context, id uuid.UUID, cause error, log *zap.Logger) {
	log.Error("job failed", zap.Error(cause))
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failTimeout)
	defer cancel()
	if err := o.store.MarkFailed(ctx, id, cause.Error()); err != nil {
		log.Error("mark job failed", zap.Error(err))
	}
}

func (o *Orchestrator) cleanup(files []File, log *zap.Logger) {
	for _, f := range files {
		if f.Path == "" {
			continue
		}
		if err := o.remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn("temp file not removed", zap.String(logger.FieldFile, f.Path), zap.Error(err))
		}
	}
}
