package persist

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"kalaghar.in/lokakala/internal/db"
	"kalaghar.in/lokakala/internal/language"
)

// memoryStore behaves like the artwork table: unique English text, additive
// translation merges.
type memoryStore struct {
	mu        sync.Mutex
	nextID    int64
	rows      map[int64]*db.Artwork
	insertErr error
	updateErr error
	inserts   int
	updates   int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{nextID: 1, rows: make(map[int64]*db.Artwork)}
}

func (m *memoryStore) FindByEnglish(_ context.Context, english string) (*db.Artwork, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.English == english {
			clone := *row
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *memoryStore) Insert(_ context.Context, artwork *db.Artwork) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
	if m.insertErr != nil {
		return m.insertErr
	}
	for _, row := range m.rows {
		if row.English == artwork.English {
			return fmt.Errorf("insert artwork: %w", db.ErrDuplicateKey)
		}
	}
	clone := *artwork
	clone.ID = m.nextID
	m.nextID++
	m.rows[clone.ID] = &clone
	artwork.ID = clone.ID
	return nil
}

func (m *memoryStore) UpdateTranslations(_ context.Context, id int64, partial map[language.Code]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	if m.updateErr != nil {
		return m.updateErr
	}
	row, ok := m.rows[id]
	if !ok {
		return fmt.Errorf("update artwork translations: %w", db.ErrNotFound)
	}
	for lang, text := range partial {
		if row.Translation(lang) == nil {
			row.SetTranslation(lang, text)
		}
	}
	return nil
}

func (m *memoryStore) row(english string) *db.Artwork {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.English == english {
			clone := *row
			return &clone
		}
	}
	return nil
}

func (m *memoryStore) rowCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func drainScheduler(t *testing.T, s *Scheduler) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown scheduler: %v", err)
	}
}

func TestSchedulerInsertsNewRecord(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	scheduler := NewScheduler(store, zerolog.Nop(), 8)
	scheduler.Start()

	question := "What is the origin of this motif?"
	err := scheduler.Enqueue(SaveRequest{
		English:  "A Warli harvest scene",
		ArtName:  "Warli Harvest",
		ArtStyle: "Warli",
		Region:   "Maharashtra",
		Question: &question,
		Translations: map[language.Code]string{
			language.Hindi: "hindi-text",
		},
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	drainScheduler(t, scheduler)

	row := store.row("A Warli harvest scene")
	if row == nil {
		t.Fatal("expected row to be inserted")
	}
	if row.ArtName != "Warli Harvest" || row.Region != "Maharashtra" {
		t.Fatalf("metadata not persisted: %+v", row)
	}
	if row.Question == nil || *row.Question != question {
		t.Fatalf("question not persisted")
	}
	if row.Hindi == nil || *row.Hindi != "hindi-text" {
		t.Fatalf("hindi translation not persisted")
	}
}

func TestSchedulerUpdatesExistingRecordOnly(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	seed := &db.Artwork{
		English:  "A Gond forest panel",
		ArtName:  "Original Name",
		Region:   "Madhya Pradesh",
		ArtStyle: "Gond",
	}
	seed.SetTranslation(language.Hindi, "existing-hindi")
	if err := store.Insert(context.Background(), seed); err != nil {
		t.Fatalf("seed insert: %v", err)
	}

	scheduler := NewScheduler(store, zerolog.Nop(), 8)
	scheduler.Start()

	err := scheduler.Enqueue(SaveRequest{
		English:  "A Gond forest panel",
		ArtName:  "Attempted Rename",
		Region:   "Elsewhere",
		Existing: seed,
		Translations: map[language.Code]string{
			language.Hindi: "new-hindi",
			language.Tamil: "fresh-tamil",
		},
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	drainScheduler(t, scheduler)

	row := store.row("A Gond forest panel")
	if row.ArtName != "Original Name" || row.Region != "Madhya Pradesh" {
		t.Fatalf("metadata must not change on cache-hit path: %+v", row)
	}
	if row.Hindi == nil || *row.Hindi != "existing-hindi" {
		t.Fatalf("populated translation must not be overwritten, got %v", row.Hindi)
	}
	if row.Tamil == nil || *row.Tamil != "fresh-tamil" {
		t.Fatalf("missing translation must be added")
	}
	if store.rowCount() != 1 {
		t.Fatalf("expected exactly one row, got %d", store.rowCount())
	}
}

func TestSchedulerConvertsDuplicateInsertToUpdate(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	winner := &db.Artwork{English: "A Saura tree of life", ArtName: "Winner"}
	winner.SetTranslation(language.Hindi, "winner-hindi")
	if err := store.Insert(context.Background(), winner); err != nil {
		t.Fatalf("seed insert: %v", err)
	}

	scheduler := NewScheduler(store, zerolog.Nop(), 8)
	scheduler.Start()

	// The loser observed Existing == nil before the winner's row landed.
	err := scheduler.Enqueue(SaveRequest{
		English: "A Saura tree of life",
		ArtName: "Loser",
		Translations: map[language.Code]string{
			language.Tamil: "loser-tamil",
		},
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	drainScheduler(t, scheduler)

	if store.rowCount() != 1 {
		t.Fatalf("duplicate insert must not create a second row, got %d", store.rowCount())
	}
	row := store.row("A Saura tree of life")
	if row.ArtName != "Winner" {
		t.Fatalf("winning row metadata must be kept, got %q", row.ArtName)
	}
	if row.Hindi == nil || *row.Hindi != "winner-hindi" {
		t.Fatalf("winner translations must survive")
	}
	if row.Tamil == nil || *row.Tamil != "loser-tamil" {
		t.Fatalf("loser translations must be merged into the winning row")
	}
}

func TestSchedulerFallsBackToInsertWhenRecordVanished(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	scheduler := NewScheduler(store, zerolog.Nop(), 8)
	scheduler.Start()

	ghost := &db.Artwork{ID: 999, English: "A Pithora horse mural", ArtName: "Ghost"}
	err := scheduler.Enqueue(SaveRequest{
		English:  "A Pithora horse mural",
		ArtName:  "Ghost",
		Existing: ghost,
		Translations: map[language.Code]string{
			language.Bengali: "bengali-text",
		},
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	drainScheduler(t, scheduler)

	row := store.row("A Pithora horse mural")
	if row == nil {
		t.Fatal("expected fallback insert after not-found update")
	}
	if row.Bengali == nil || *row.Bengali != "bengali-text" {
		t.Fatalf("translations must be carried into the fallback insert")
	}
}

func TestSchedulerReportsFailures(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	store.insertErr = fmt.Errorf("connection reset")
	scheduler := NewScheduler(store, zerolog.Nop(), 8)
	scheduler.Start()

	if err := scheduler.Enqueue(SaveRequest{English: "A Bhil dotted deer"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	drainScheduler(t, scheduler)

	select {
	case err := <-scheduler.Failures():
		if err == nil {
			t.Fatal("expected non-nil failure")
		}
	default:
		t.Fatal("expected a failure on the operator channel")
	}
}

func TestSchedulerRejectsAfterShutdown(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	scheduler := NewScheduler(store, zerolog.Nop(), 8)
	scheduler.Start()
	drainScheduler(t, scheduler)

	err := scheduler.Enqueue(SaveRequest{English: "late"})
	if err == nil {
		t.Fatal("expected error after shutdown")
	}
}

func TestSchedulerConcurrentFirstRequestsUnion(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	scheduler := NewScheduler(store, zerolog.Nop(), 8)
	scheduler.Start()

	// Both requests observed no existing row; their disjoint language sets
	// must union into a single record.
	reqs := []SaveRequest{
		{
			English:      "A Madhubani wedding mural",
			ArtName:      "Madhubani Wedding",
			Translations: map[language.Code]string{language.Hindi: "hindi-text"},
		},
		{
			English:      "A Madhubani wedding mural",
			ArtName:      "Madhubani Wedding",
			Translations: map[language.Code]string{language.Tamil: "tamil-text"},
		},
	}

	var wg sync.WaitGroup
	for _, req := range reqs {
		wg.Add(1)
		go func(r SaveRequest) {
			defer wg.Done()
			if err := scheduler.Enqueue(r); err != nil {
				t.Errorf("enqueue: %v", err)
			}
		}(req)
	}
	wg.Wait()
	drainScheduler(t, scheduler)

	if store.rowCount() != 1 {
		t.Fatalf("expected exactly one row for the shared english text, got %d", store.rowCount())
	}
	row := store.row("A Madhubani wedding mural")
	if row.Hindi == nil || *row.Hindi != "hindi-text" {
		t.Fatalf("hindi translation lost in the race")
	}
	if row.Tamil == nil || *row.Tamil != "tamil-text" {
		t.Fatalf("tamil translation lost in the race")
	}
}
