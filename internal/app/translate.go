package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"kalaghar.in/lokakala/internal/cli"
	"kalaghar.in/lokakala/internal/db"
	"kalaghar.in/lokakala/internal/language"
	"kalaghar.in/lokakala/internal/logging"
	"kalaghar.in/lokakala/internal/persist"
	"kalaghar.in/lokakala/internal/translation"
)

func runTranslate(args []string) int {
	fs := flag.NewFlagSet("translate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 2*time.Minute, "Command timeout")
	langs := fs.String("langs", strings.Join(language.SupportedStrings(), ","), "Comma separated target languages")
	provider := fs.String("provider", "", "Translation provider name (for example: openai)")
	artName := fs.String("art-name", "", "Art form name to store with a new record")
	artStyle := fs.String("art-style", "", "Art style to store with a new record")
	region := fs.String("region", "", "Region to store with a new record")
	dryRun := fs.Bool("dry-run", false, "Resolve translations without writing to the database")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "translate requires one argument: the English description text")
		printTranslateUsage()
		return 2
	}

	english := strings.TrimSpace(fs.Arg(0))
	if english == "" {
		fmt.Fprintln(os.Stderr, "translate argument must not be empty")
		return 2
	}

	requested, err := language.ParseList(*langs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid --langs: %v\n", err)
		return 2
	}
	if len(requested) == 0 {
		fmt.Fprintln(os.Stderr, "--langs must name at least one language")
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

	if *timeout <= 0 {
		*timeout = 2 * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
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

	result, err := resolver.Resolve(ctx, english, requested, translation.ResolveOptions{
		Provider: strings.TrimSpace(*provider),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Translate failed: %v\n", err)
		return 1
	}

	for _, lang := range language.Supported() {
		if text, ok := result.Translations[lang]; ok {
			fmt.Printf("%s: %s\n", lang, text)
		}
	}
	for lang, reason := range result.Failed {
		fmt.Fprintf(os.Stderr, "failed %s: %s\n", lang, reason)
	}

	if !*dryRun && len(result.Translations) > 0 {
		scheduler := persist.NewScheduler(store, logger, 1)
		scheduler.Start()
		err := scheduler.Enqueue(persist.SaveRequest{
			English:      english,
			ArtName:      strings.TrimSpace(*artName),
			ArtStyle:     strings.TrimSpace(*artStyle),
			Region:       strings.TrimSpace(*region),
			Translations: result.Translations,
			Existing:     result.Existing,
		})
		if shutdownErr := scheduler.Shutdown(ctx); shutdownErr != nil && err == nil {
			err = shutdownErr
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Persist failed: %v\n", err)
			return 1
		}
	}

	fmt.Printf(
		"translate langs=%s resolved=%d failed=%d dry_run=%t\n",
		*langs,
		len(result.Translations),
		len(result.Failed),
		*dryRun,
	)
	if len(result.Failed) > 0 {
		return 1
	}
	return 0
}

func printTranslateUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  lokakala translate \"<english text>\" [--langs hindi,tamil] [--provider openai] [--dry-run] [--env .env] [--timeout 2m]")
}
