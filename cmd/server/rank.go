package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/artem13815/shortlist/pkg/document"
	"github.com/artem13815/shortlist/pkg/job"
	"github.com/artem13815/shortlist/pkg/repository/memory"
)

var rankCmd = &cobra.Command{
	Use:   "rank [flags] resume...",
	Short: "Rank local resume files against a job description and print the shortlist",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return rank(cmd.Context(), cmd.OutOrStdout(), args)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().String("jd", "", "file with the job description")
	rankCmd.Flags().String("jd-text", "", "job description text")
	rankCmd.Flags().String("title", "local ranking", "job title")
	rankCmd.Flags().StringP("output", "o", "table", "output format: table or json")

	_ = viper.BindPFlag("rank.jd", rankCmd.Flags().Lookup("jd"))
	_ = viper.BindPFlag("rank.jd-text", rankCmd.Flags().Lookup("jd-text"))
	_ = viper.BindPFlag("rank.title", rankCmd.Flags().Lookup("title"))
	_ = viper.BindPFlag("rank.output", rankCmd.Flags().Lookup("output"))
}

func rank(ctx context.Context, out io.Writer, paths []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	description, err := jobDescription(viper.GetString("rank.jd"), viper.GetString("rank.jd-text"))
	if err != nil {
		return err
	}
	format := viper.GetString("rank.output")
	if format != "table" && format != "json" {
		return fmt.Errorf("unknown output format %q", format)
	}

	// The pipeline removes its inputs, so it works on copies.
	tmp, err := os.MkdirTemp("", appName+"-rank-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)
	files, err := copyInputs(tmp, paths)
	if err != nil {
		return err
	}

	rdb, err := connectRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}
	embedder, _ := newEmbedder(cfg.Embedding, rdb, cfg.Redis.CacheTTL, log)

	store := memory.New(0)
	user := uuid.New()
	store.SetCredits(user, len(files), 0)
	orch, err := newOrchestrator(ctx, cfg, store, embedder, log)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	j := job.Job{
		ID:          uuid.New(),
		UserID:      user,
		Title:       viper.GetString("rank.title"),
		Description: description,
		Status:      job.StatusQueued,
		Documents:   len(files),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := store.Create(ctx, j); err != nil {
		return err
	}
	if err := orch.Run(ctx, job.Task{JobID: j.ID, UserID: user, Title: j.Title, Description: description, Files: files}); err != nil {
		return err
	}
	if j, err = store.Get(ctx, user, j.ID); err != nil {
		return err
	}
	cands, err := store.Candidates(ctx, user, j.ID)
	if err != nil {
		return err
	}

	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Job        job.Job                `json:"job"`
			Candidates []job.CandidateSummary `json:"candidates"`
		}{j, cands})
	}
	return printShortlist(out, j, cands)
}

func jobDescription(path, text string) (string, error) {
	switch {
	case path != "" && text != "":
		return "", errors.New("use either --jd or --jd-text")
	case path != "":
		b, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read job description: %w", err)
		}
		text = string(b)
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("job description is required: --jd or --jd-text")
	}
	return text, nil
}

func copyInputs(dir string, paths []string) ([]job.File, error) {
	files := make([]job.File, 0, len(paths))
	for _, p := range paths {
		format, err := document.ParseFormat(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		dst := filepath.Join(dir, uuid.NewString()+format.Ext())
		if err := os.WriteFile(dst, data, 0o600); err != nil {
			return nil, err
		}
		files = append(files, job.File{Path: dst, Name: filepath.Base(p), Format: format})
	}
	return files, nil
}

func printShortlist(out io.Writer, j job.Job, cands []job.CandidateSummary) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "RANK\tSCORE\tSTATUS\tNAME\tFILE\tYEARS\tSKILLS MATCH\tREASONING\n")
	for _, c := range cands {
		fmt.Fprintf(w, "%d\t%.2f\t%s\t%s\t%s\t%d\t%.0f%%\t%s\n",
			c.Rank, c.MatchScore, c.Status, c.Name, c.FileName, c.ExperienceYears, c.SkillsMatch, c.Reasoning)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "\n%d of %d documents ranked, %d tokens, cost $%.4f\n", len(cands), j.Documents, j.TokensUsed, j.Cost)
	return err
}
