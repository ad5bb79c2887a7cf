package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/diviz/client"
	"github.com/otherjamesbrown/diviz/config"
	"github.com/otherjamesbrown/diviz/pkg/analysis"
	"github.com/otherjamesbrown/diviz/pkg/logging"
	"github.com/otherjamesbrown/diviz/pkg/server"
	"github.com/otherjamesbrown/diviz/pkg/store"
	"github.com/otherjamesbrown/diviz/services/review"
)

// Serve command flags
var (
	serveListenAddr string
)

// NewServeCommand creates the 'serve' command, which runs the diviz HTTP
// server.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the diviz HTTP server",
		Long: `Run the diviz HTTP server.

The server exposes meeting review (transcript fetch + analysis with caching),
direct transcript analysis, and per-user meeting management. Transcripts are
fetched from Fireflies.ai by Google Meet meeting code; agenda coverage
feedback is generated via an OpenAI-compatible model.

Required environment:
  FIREFLIES_API_KEY   Fireflies.ai API key (transcript source)
  OPENAI_API_KEY      Model API key (feedback generation; optional, stats
                      still work without it)

Set DIVIZ_REDIS_ADDR (or redis_addr in the config file) to share meeting
state across instances; otherwise an in-memory store is used.

Examples:
  diviz serve                      Listen on the configured address (default :8080)
  diviz serve --listen :9090       Override the listen address`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&serveListenAddr, "listen", "", "Listen address (host:port)")

	return cmd
}

func runServe(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if serveListenAddr != "" {
		cfg.ListenAddress = serveListenAddr
	}

	logger := newLogger(cfg)

	source, err := client.NewFirefliesClient(cfg.Fireflies.APIKey, &client.FirefliesOptions{
		Endpoint:     cfg.Fireflies.Endpoint,
		LookbackDays: cfg.Fireflies.LookbackDays,
	}, logger)
	if err != nil {
		return fmt.Errorf("creating transcript source: %w", err)
	}

	generator, err := buildGenerator(cfg)
	if err != nil {
		return fmt.Errorf("creating feedback generator: %w", err)
	}
	if cfg.OpenAI.APIKey == "" {
		logger.Warn("no OPENAI_API_KEY set; feedback generation disabled")
	}

	meetingStore, err := buildStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	analyzer := analysis.NewAnalyzer(generator, logger)
	svc := review.NewService(source, analyzer, meetingStore, logger)
	srv := server.New(cfg.ListenAddress, svc, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// buildStore creates the meeting store: Redis when configured, otherwise
// in-memory.
func buildStore(ctx context.Context, cfg *config.Config, logger logging.Logger) (store.MeetingStore, error) {
	if cfg.RedisAddr == "" {
		logger.Info("using in-memory meeting store")
		return store.NewMemoryStore(), nil
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	redisStore, err := store.NewRedisStore(ctx, redisClient)
	if err != nil {
		return nil, fmt.Errorf("connecting to Redis at %s: %w", cfg.RedisAddr, err)
	}

	logger.Info("using Redis meeting store", logging.F("addr", cfg.RedisAddr))
	return redisStore, nil
}
