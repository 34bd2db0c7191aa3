package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/artem13815/shortlist/pkg/account"
	"github.com/artem13815/shortlist/pkg/logger"
	pgrepo "github.com/artem13815/shortlist/pkg/repository/postgres"
	"github.com/artem13815/shortlist/pkg/security/jwt"
	"github.com/artem13815/shortlist/pkg/storage/postgres"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Create the account if needed and print a bearer token for it",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return token(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().String("user", "", "user id (UUID); a new one is generated when empty")
	_ = viper.BindPFlag("token.user", tokenCmd.Flags().Lookup("user"))
}

func token(ctx context.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	user := uuid.New()
	if s := viper.GetString("token.user"); s != "" {
		if user, err = uuid.Parse(s); err != nil {
			return fmt.Errorf("invalid --user: %w", err)
		}
	}

	if cfg.Database.URL == "" {
		return errNoDatabase
	}
	pool, err := postgres.ConnectAndMigrate(ctx, cfg.Database.URL, log)
	if err != nil {
		return err
	}
	defer pool.Close()
	acct, err := pgrepo.NewAccountRepository(pool, account.DefaultFreeTrial).Ensure(ctx, user)
	if err != nil {
		return err
	}
	log.Info("account ready",
		zap.String(logger.FieldUserID, user.String()),
		zap.Int("free_trial_remaining", acct.FreeTrialRemaining),
		zap.Int("paid_credits", acct.PaidCredits),
	)

	ttl := time.Duration(cfg.JWT.TTLMinutes) * time.Minute
	tok, err := jwt.NewGenerator(cfg.JWT.Secret, cfg.JWT.Issuer, ttl).Generate(user)
	if err != nil {
		return err
	}
	fmt.Println(tok)
	return nil
}
