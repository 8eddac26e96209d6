package main

import (
	"context"
	"os"

	"caradvisor/internal/repository"
	"caradvisor/internal/service"

	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Compute embeddings for listings that have none (postgres store only)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return embedListings(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(embedCmd)
}

func embedListings(ctx context.Context) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.logger.Sync()

	if rt.cfg.Store.Driver != repository.DriverPostgres {
		return repository.ErrEmbeddingsUnsupported
	}

	client := rt.openAIClient()
	if client == nil {
		return eris.Wrap(service.ErrAIDisabled, "set OPENAI_API_KEY to compute embeddings")
	}

	repo, err := rt.openStore(ctx)
	if err != nil {
		return eris.Wrap(err, "open listing store")
	}
	defer repo.Close()

	embeddings := service.NewEmbeddingService(repo, client, rt.cfg.OpenAI.BatchSize, rt.logger)

	// total is unknown up front, so the bar runs as a spinner with a counter
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("[cyan][bold]Embedding listings...[reset]"),
	)

	done, err := embeddings.Backfill(ctx, func(n int) {
		_ = bar.Set(n)
	})
	_ = bar.Finish()
	if err != nil {
		return eris.Wrapf(err, "embedded %d listings before failing", done)
	}

	rt.logger.Info("embeddings updated",
		zap.Int("listings", done),
		zap.String("model", rt.cfg.OpenAI.EmbeddingModel),
	)
	return nil
}
