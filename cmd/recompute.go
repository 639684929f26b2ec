package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/linesmerrill/legal-aid-api/cache"
	"github.com/linesmerrill/legal-aid-api/config"
	"github.com/linesmerrill/legal-aid-api/databases"
	"github.com/linesmerrill/legal-aid-api/lifecycle"
)

var recomputeLawyer string

var recomputeCmd = &cobra.Command{
	Use:   "recompute-ratings",
	Short: "Rebuild lawyer ratings from their reviewed appointments",
	RunE:  runRecompute,
}

func init() {
	recomputeCmd.Flags().StringVar(&recomputeLawyer, "lawyer", "", "only recompute this lawyer id")
}

func runRecompute(cmd *cobra.Command, args []string) error {
	conf := config.New()
	if conf.URL == "" || conf.DatabaseName == "" {
		return errors.New("config: DB_URI and DB_NAME are required")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
	defer cancel()

	client, err := databases.NewClient(ctx, conf)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer client.Disconnect(context.Background())
	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("db: %w", err)
	}

	var c cache.Cache = cache.Noop{}
	if conf.RedisURL != "" {
		rc, err := cache.NewRedis(ctx, conf.RedisURL)
		if err != nil {
			zap.S().Warnw("redis unavailable, lawyer cache will expire on its own", "error", err)
		} else {
			defer rc.Close()
			c = rc
		}
	}

	db := databases.NewDatabase(conf, client)
	ratings := lifecycle.NewAggregator(databases.NewAppointmentDatabase(db), databases.NewUserDatabase(db), c)

	if recomputeLawyer != "" {
		r, err := ratings.Recompute(ctx, recomputeLawyer)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "lawyer %s: rating %.1f from %d reviews\n", recomputeLawyer, r.Average, r.Count)
		return nil
	}

	updated, err := ratings.RecomputeAll(ctx)
	fmt.Fprintf(cmd.OutOrStdout(), "recomputed %d lawyer ratings\n", updated)
	return err
}
