package rerank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/artem13815/shortlist/pkg/llm"
	"github.com/artem13815/shortlist/pkg/logger"
)

const (
	// MaxCandidates is the largest batch sent in one call.
	MaxCandidates  = 20
	DefaultTimeout = 30 * time.Second

	systemPrompt       = "You are an expert HR professional who provides objective, data-driven candidate assessments."
	modelRationaleStub = "LLM analysis completed"
)

// ErrRerankerUnavailable marks any failure of the reasoning service call.
// Rerank never returns it: callers get fallback assessments instead.
var ErrRerankerUnavailable = errors.New("reranker unavailable")

// Candidate is the reduced view of a ranked candidate sent to the model.
type Candidate struct {
	Name            string
	ExperienceYears int
	Skills          []string
	Education       string
	Score           float64
}

type Assessment struct {
	Score     float64
	Rationale string
	// FromModel is false when the assessment is the deterministic fallback.
	FromModel bool
}

type Result struct {
	Assessments []Assessment
	TokensUsed  int
	Fallback    bool
}

// Reranker asks a ChatModel for refined scores of the top candidates, once per job.
type Reranker struct {
	model   llm.ChatModel
	timeout time.Duration
	log     *zap.Logger
}

// New returns a Reranker. A nil model makes every call use the fallback.
func New(model llm.ChatModel, timeout time.Duration, log *zap.Logger) *Reranker {
	if timeout <= 0 || timeout > DefaultTimeout {
		timeout = DefaultTimeout
	}
	return &Reranker{model: model, timeout: timeout, log: logger.WithFields(log)}
}

// Rerank returns one assessment per candidate, in input order. At most MaxCandidates
// are sent; any failure of the call yields the fallback for the whole batch.
func (r *Reranker) Rerank(ctx context.Context, jobText string, candidates []Candidate) Result {
	if len(candidates) > MaxCandidates {
		candidates = candidates[:MaxCandidates]
	}
	if len(candidates) == 0 {
		return Result{Assessments: []Assessment{}}
	}
	res, err := r.ask(ctx, jobText, candidates)
	if err != nil {
		r.log.Warn("rerank fallback", zap.Error(err), zap.Int("candidates", len(candidates)))
		return Fallback(candidates)
	}
	return res
}

func (r *Reranker) ask(ctx context.Context, jobText string, candidates []Candidate) (Result, error) {
	if r.model == nil {
		return Result{}, fmt.Errorf("%w: no model configured", ErrRerankerUnavailable)
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := r.model.Ask(ctx, systemPrompt, buildPrompt(jobText, candidates))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrRerankerUnavailable, err)
	}
	entries, err := parseResponse(out.Content)
	if err != nil {
		r.log.Debug("unparseable rerank response", zap.String("content", logger.TruncateForLog(out.Content, 300)))
		return Result{}, fmt.Errorf("%w: %v", ErrRerankerUnavailable, err)
	}
	return pair(candidates, entries, out.TotalTokens), nil
}

type responseEntry struct {
	// candidate_number is echoed by the model but pairing is positional.
	CandidateNumber json.RawMessage `json:"candidate_number"`
	MatchScore      *float64        `json:"match_score"`
	Reasoning       *string         `json:"reasoning"`
}

type response struct {
	Candidates []responseEntry `json:"candidates"`
}

// parseResponse decodes the span from the first "{" to the last "}".
func parseResponse(raw string) ([]responseEntry, error) {
	i := strings.Index(raw, "{")
	j := strings.LastIndex(raw, "}")
	if i < 0 || j <= i {
		return nil, errors.New("no json object in response")
	}
	var resp response
	if err := json.Unmarshal([]byte(raw[i:j+1]), &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return resp.Candidates, nil
}

// pair matches entries to candidates by position. Candidates without an
// entry keep their fused score with the band rationale.
func pair(candidates []Candidate, entries []responseEntry, tokens int) Result {
	res := Result{Assessments: make([]Assessment, len(candidates)), TokensUsed: tokens}
	for i, c := range candidates {
		if i >= len(entries) {
			res.Assessments[i] = fallbackAssessment(c.Score)
			continue
		}
		e := entries[i]
		a := Assessment{Score: c.Score, Rationale: modelRationaleStub, FromModel: true}
		if e.MatchScore != nil && !math.IsNaN(*e.MatchScore) {
			a.Score = math.Max(0, math.Min(100, *e.MatchScore))
		}
		if e.Reasoning != nil && strings.TrimSpace(*e.Reasoning) != "" {
			a.Rationale = strings.TrimSpace(*e.Reasoning)
		}
		res.Assessments[i] = a
	}
	return res
}

// Fallback assesses every candidate with its fused score and a band rationale.
func Fallback(candidates []Candidate) Result {
	res := Result{Assessments: make([]Assessment, len(candidates)), Fallback: true}
	for i, c := range candidates {
		res.Assessments[i] = fallbackAssessment(c.Score)
	}
	return res
}

func fallbackAssessment(score float64) Assessment {
	return Assessment{Score: score, Rationale: BandRationale(score)}
}

// BandRationale is the fixed rationale used when no model assessment exists.
func BandRationale(score float64) string {
	switch {
	case score >= 85:
		return "Strong match based on skills and experience analysis"
	case score >= 70:
		return "Good match with some relevant qualifications"
	case score >= 50:
		return "Moderate match, may need additional evaluation"
	default:
		return "Limited match with current job requirements"
	}
}
