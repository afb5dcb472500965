// Package persist defers record writes so HTTP responses are never blocked
// on the database. Writes run on a background worker; failures are logged
// and surfaced on an operator channel, never to the client.
package persist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"kalaghar.in/lokakala/internal/db"
	"kalaghar.in/lokakala/internal/language"
)

var ErrStopped = errors.New("persistence scheduler is stopped")

// Store is the write surface the scheduler needs.
type Store interface {
	FindByEnglish(ctx context.Context, english string) (*db.Artwork, error)
	Insert(ctx context.Context, artwork *db.Artwork) error
	UpdateTranslations(ctx context.Context, id int64, partial map[language.Code]string) error
}

// SaveRequest captures everything needed to persist one generation outcome.
// Metadata fields apply only when a new record is created; cache-hit paths
// update translation columns exclusively.
type SaveRequest struct {
	English      string
	ArtName      string
	ArtStyle     string
	Region       string
	Question     *string
	Translations map[language.Code]string
	// Existing is the record handle observed during resolution, nil for a
	// first-time English text.
	Existing *db.Artwork
}

// Scheduler owns the background worker. Enqueue never blocks the caller;
// once a request is accepted it runs to completion or reports failure,
// regardless of client disconnection.
type Scheduler struct {
	store    Store
	logger   zerolog.Logger
	tasks    chan SaveRequest
	failures chan error

	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

func NewScheduler(store Store, logger zerolog.Logger, queueSize int) *Scheduler {
	if queueSize < 1 {
		queueSize = 64
	}
	return &Scheduler{
		store:    store,
		logger:   logger,
		tasks:    make(chan SaveRequest, queueSize),
		failures: make(chan error, queueSize),
	}
}

// Start launches the worker. Safe to call once; subsequent calls are no-ops.
func (s *Scheduler) Start() {
	s.startOnce.Do(func() {
		s.wg.Add(1)
		go s.run()
	})
}

// Failures exposes deferred-write errors to an operator. The channel is
// buffered and never blocks the worker; when nobody drains it, entries are
// dropped after being logged.
func (s *Scheduler) Failures() <-chan error {
	return s.failures
}

// Enqueue schedules one deferred write. Fails fast when the queue is full or
// the scheduler has stopped; it never blocks the response path.
func (s *Scheduler) Enqueue(req SaveRequest) error {
	if s == nil {
		return fmt.Errorf("scheduler is nil")
	}
	if strings.TrimSpace(req.English) == "" {
		return fmt.Errorf("save request english text is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrStopped
	}
	select {
	case s.tasks <- req:
		return nil
	default:
		return fmt.Errorf("persistence queue is full")
	}
}

// Shutdown stops accepting work and drains queued writes. The context bounds
// the wait, not the in-flight writes themselves.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()
		close(s.tasks)
	})

	finished := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	for req := range s.tasks {
		if err := s.save(context.Background(), req); err != nil {
			s.logger.Error().
				Err(err).
				Str("english", truncate(req.English, 80)).
				Msg("deferred persistence failed")
			select {
			case s.failures <- err:
			default:
			}
		}
	}
}

// save applies the insert-or-update protocol. The duplicate-key race between
// two first-time requests for the same English text is converted into an
// update against the winning row; an update against a row deleted mid-flight
// falls back to insert. One recovery cycle each way.
func (s *Scheduler) save(ctx context.Context, req SaveRequest) error {
	if req.Existing != nil {
		err := s.store.UpdateTranslations(ctx, req.Existing.ID, req.Translations)
		if err == nil {
			return nil
		}
		if !errors.Is(err, db.ErrNotFound) {
			return err
		}
		// Record vanished between resolution and persistence.
		return s.insertFresh(ctx, req)
	}

	err := s.insertFresh(ctx, req)
	if err == nil {
		return nil
	}
	if !errors.Is(err, db.ErrDuplicateKey) {
		return err
	}

	// A concurrent request created the row first; merge into it instead.
	winner, findErr := s.store.FindByEnglish(ctx, req.English)
	if findErr != nil {
		return fmt.Errorf("lookup after duplicate insert: %w", findErr)
	}
	if winner == nil {
		return fmt.Errorf("duplicate insert but no row found for english text")
	}
	if len(req.Translations) == 0 {
		return nil
	}
	if updateErr := s.store.UpdateTranslations(ctx, winner.ID, req.Translations); updateErr != nil {
		return fmt.Errorf("merge into winning row: %w", updateErr)
	}
	return nil
}

func (s *Scheduler) insertFresh(ctx context.Context, req SaveRequest) error {
	artwork := &db.Artwork{
		English:  req.English,
		ArtName:  req.ArtName,
		ArtStyle: req.ArtStyle,
		Region:   req.Region,
		Question: req.Question,
	}
	for lang, text := range req.Translations {
		artwork.SetTranslation(lang, text)
	}
	return s.store.Insert(ctx, artwork)
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
