package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kalaghar.in/lokakala/internal/cli"
	"kalaghar.in/lokakala/internal/db"
	"kalaghar.in/lokakala/internal/httpapi"
	"kalaghar.in/lokakala/internal/logging"
	"kalaghar.in/lokakala/internal/persist"
	"kalaghar.in/lokakala/internal/translation"
	"kalaghar.in/lokakala/internal/vision"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	host := fs.String("host", "0.0.0.0", "Host interface to bind")
	port := fs.Int("port", 8080, "HTTP port")
	readTimeout := fs.Duration("read-timeout", 30*time.Second, "HTTP read timeout")
	writeTimeout := fs.Duration("write-timeout", 120*time.Second, "HTTP write timeout")
	shutdownTimeout := fs.Duration("shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *port <= 0 || *port > 65535 {
		fmt.Fprintln(os.Stderr, "--port must be between 1 and 65535")
		return 2
	}

	cfg, err := loadConfig(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	dbCtx, dbCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer dbCancel()

	pool, err := db.NewPool(dbCtx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("serve failed to connect to database")
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer pool.Close()

	client, err := newOpenAIClient(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to configure OpenAI client: %v\n", err)
		return 1
	}

	registry, err := buildRegistry(cfg, client)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build translation registry: %v\n", err)
		return 1
	}

	store := db.NewArtworkStore(pool)
	resolver := translation.NewResolver(store, registry, logger, cfg.TranslationConcurrency)

	scheduler := persist.NewScheduler(store, logger, cfg.PersistQueueSize)
	scheduler.Start()
	go func() {
		for err := range scheduler.Failures() {
			logger.Error().Err(err).Msg("deferred write failed")
		}
	}()
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), *shutdownTimeout)
		defer flushCancel()
		if err := scheduler.Shutdown(flushCtx); err != nil {
			logger.Error().Err(err).Msg("scheduler shutdown incomplete")
		}
	}()

	describer := vision.NewClient(client, vision.Options{
		Model:         cfg.VisionModel,
		Timeout:       cfg.GenerationTimeout,
		VerifyEnglish: cfg.VerifyEnglishOutput,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		<-sigCh
		cancel()
	}()

	srv := httpapi.NewServer(describer, resolver, scheduler, store, logger, httpapi.Options{
		Host:            *host,
		Port:            *port,
		ReadTimeout:     *readTimeout,
		WriteTimeout:    *writeTimeout,
		ShutdownTimeout: *shutdownTimeout,
		AllowedOrigins:  cfg.CORSAllowedOriginsList(),
	})

	if err := srv.Start(ctx); err != nil {
		logger.Error().Err(err).Str("host", *host).Int("port", *port).Msg("server failed")
		fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
		return 1
	}

	return 0
}
