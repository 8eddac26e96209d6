package main

import (
	"context"

	"caradvisor/internal/config"
	"caradvisor/internal/logger"
	"caradvisor/internal/repository"
	"caradvisor/internal/service"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const app = "caradvisor"

var (
	// Used for flags.
	cfgFile string
	debug   bool

	rootCmd = &cobra.Command{
		Use:          app,
		Short:        "caradvisor interviews a car buyer and recommends listings by value for money",
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is caradvisor.yaml in current directory)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "verbose/debug output")
}

// runtime is what every command needs after startup
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	limiter *rate.Limiter
}

// setup loads and validates the configuration and installs the global
// logger. A failure here stops the command.
func setup() (*runtime, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if debug {
		level = "debug"
	}
	log, err := logger.New(level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(log)

	return &runtime{
		cfg:     cfg,
		logger:  log,
		limiter: service.NewRateLimiter(cfg.AI.RequestsPerSecond),
	}, nil
}

// openStore connects to the configured listing store and creates the schema
// if needed
func (rt *runtime) openStore(ctx context.Context) (*repository.Repository, error) {
	var (
		repo *repository.Repository
		err  error
	)
	switch rt.cfg.Store.Driver {
	case repository.DriverPostgres:
		repo, err = repository.NewPostgresRepository(
			rt.cfg.GetPostgreSQLDSN(),
			rt.cfg.Store.MaxConnections,
			rt.cfg.Store.MaxIdleConnections,
			rt.cfg.OpenAI.EmbeddingDimensions,
		)
	case repository.DriverSQLite:
		repo, err = repository.NewSQLiteRepository(rt.cfg.GetSQLiteDSN())
	default:
		return nil, eris.Errorf("unknown store driver %q", rt.cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := repo.EnsureSchema(ctx); err != nil {
		repo.Close()
		return nil, err
	}

	rt.logger.Info("connected to listing store", zap.String("driver", repo.Driver()))
	return repo, nil
}

// openAIClient returns the OpenAI-compatible client, or nil without an API
// key
func (rt *runtime) openAIClient() *service.OpenAIClient {
	if !rt.cfg.OpenAI.Enabled {
		return nil
	}
	return service.NewOpenAIClient(&rt.cfg.OpenAI, rt.limiter, rt.logger)
}

// textGenerator builds the configured provider. It returns nil when the
// provider has no credentials; callers then use canned text.
func (rt *runtime) textGenerator(ctx context.Context) (service.TextGenerator, error) {
	var (
		gen service.TextGenerator
		err error
	)
	switch rt.cfg.AI.Provider {
	case "openai":
		if client := rt.openAIClient(); client != nil {
			gen = client
		} else {
			err = service.ErrAIDisabled
		}
	case "gemini":
		gen, err = service.NewGeminiClient(ctx, rt.cfg.Gemini.APIKey, rt.cfg.Gemini.Model, rt.limiter)
	case "anthropic":
		gen, err = service.NewAnthropicClient(rt.cfg.Anthropic.APIKey, rt.cfg.Anthropic.Model, rt.cfg.Anthropic.MaxTokens, rt.limiter)
	default:
		return nil, eris.Errorf("unknown ai provider %q", rt.cfg.AI.Provider)
	}

	if eris.Is(err, service.ErrAIDisabled) {
		rt.logger.Warn("text generation disabled, using canned questions and explanations",
			zap.String("provider", rt.cfg.AI.Provider))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rt.logger.Info("text generation enabled",
		zap.String("provider", gen.Name()),
		zap.Float64("requests_per_second", rt.cfg.AI.RequestsPerSecond))
	return gen, nil
}

// newInterviewService wires the question loop with the optional LLM helpers
func (rt *runtime) newInterviewService(gen service.TextGenerator) *service.InterviewService {
	opts := []service.InterviewOption{service.WithLLMTimeout(rt.cfg.Interview.LLMTimeout)}
	if gen != nil && rt.cfg.Interview.LLMPhrasing {
		opts = append(opts, service.WithQuestionPhrasing(gen))
	}
	if gen != nil && rt.cfg.Interview.Classifier {
		opts = append(opts, service.WithClassifier(service.NewLLMClassifier(gen)))
	}

	return service.NewInterviewService(
		service.NewSessionStore(rt.cfg.Interview.SessionTTL),
		rt.cfg.Interview.MaxQuestions,
		rt.logger,
		opts...,
	)
}

// newRecommendService wires filter, scorer, ranker and explainer over store
func (rt *runtime) newRecommendService(store service.ListingStore, gen service.TextGenerator) *service.RecommendService {
	rc := rt.cfg.Recommend
	return service.NewRecommendService(
		store,
		service.NewListingFilter(store, rc.StoreTimeout, rt.logger),
		service.NewValueScorer(rt.cfg.Scoring),
		service.NewRanker(rc.TopK),
		service.NewExplainer(gen, rc.ExplanationTimeout, rc.ExplanationConcurrency, rt.logger),
		rt.logger,
	)
}
