package translation

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"kalaghar.in/lokakala/internal/db"
	"kalaghar.in/lokakala/internal/language"
)

// Store is the record lookup the resolver needs. FindByEnglish must return
// (nil, nil) when no record matches.
type Store interface {
	FindByEnglish(ctx context.Context, english string) (*db.Artwork, error)
}

// ResolveOptions controls one resolution.
type ResolveOptions struct {
	// Provider selects a registered provider by name; empty uses the default.
	Provider string
}

// Result is the outcome of one resolution. Translations holds every language
// that could be served from cache or freshly fetched; Failed maps each
// language whose provider call failed to its error message. The two key sets
// are disjoint and together cover the requested set.
type Result struct {
	Translations map[language.Code]string
	Failed       map[language.Code]string
	Existing     *db.Artwork
}

// Resolver answers "which translations exist already, and which must be
// fetched" for a generated English text. Provider calls are issued only for
// cache misses, run with bounded concurrency, and fail independently per
// language.
type Resolver struct {
	store         Store
	registry      *Registry
	logger        zerolog.Logger
	maxConcurrent int
}

func NewResolver(store Store, registry *Registry, logger zerolog.Logger, maxConcurrent int) *Resolver {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Resolver{
		store:         store,
		registry:      registry,
		logger:        logger,
		maxConcurrent: maxConcurrent,
	}
}

// Resolve merges cached translations for english with freshly fetched ones
// for the requested languages. The returned error covers only the record
// lookup and provider resolution; individual translation failures degrade
// into Result.Failed.
func (r *Resolver) Resolve(ctx context.Context, english string, requested []language.Code, opts ResolveOptions) (Result, error) {
	if r == nil || r.store == nil {
		return Result{}, fmt.Errorf("resolver is not initialized")
	}
	if strings.TrimSpace(english) == "" {
		return Result{}, fmt.Errorf("english text is required")
	}

	result := Result{
		Translations: make(map[language.Code]string, len(requested)),
		Failed:       make(map[language.Code]string),
	}

	existing, err := r.store.FindByEnglish(ctx, english)
	if err != nil {
		return Result{}, fmt.Errorf("lookup cached record: %w", err)
	}
	result.Existing = existing

	if len(requested) == 0 {
		return result, nil
	}

	for _, lang := range requested {
		if cached := existing.Translation(lang); cached != nil && strings.TrimSpace(*cached) != "" {
			result.Translations[lang] = *cached
		}
	}

	missing := make([]language.Code, 0, len(requested))
	seen := make(map[language.Code]struct{}, len(requested))
	for _, lang := range requested {
		if _, hit := result.Translations[lang]; hit {
			continue
		}
		if _, dup := seen[lang]; dup {
			continue
		}
		seen[lang] = struct{}{}
		missing = append(missing, lang)
	}
	if len(missing) == 0 {
		return result, nil
	}

	provider, err := r.registry.Provider(opts.Provider)
	if err != nil {
		return Result{}, err
	}

	var mu sync.Mutex
	group := new(errgroup.Group)
	group.SetLimit(r.maxConcurrent)
	for _, lang := range missing {
		lang := lang
		group.Go(func() error {
			resp, callErr := provider.Translate(ctx, TranslateRequest{
				Text:       english,
				TargetLang: lang,
			})

			mu.Lock()
			defer mu.Unlock()
			if callErr != nil {
				provErr := &ProviderError{Lang: lang, Provider: provider.Name(), Err: callErr}
				result.Failed[lang] = provErr.Error()
				r.logger.Warn().
					Err(provErr).
					Str("provider", provider.Name()).
					Str("lang", string(lang)).
					Msg("translation provider call failed")
				return nil
			}
			result.Translations[lang] = resp.Text
			return nil
		})
	}
	// Workers never return errors; per-language failures are collected above.
	_ = group.Wait()

	return result, nil
}
