package translation

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"kalaghar.in/lokakala/internal/db"
	"kalaghar.in/lokakala/internal/language"
)

type stubStore struct {
	mu      sync.Mutex
	record  *db.Artwork
	lookups int
}

func (s *stubStore) FindByEnglish(_ context.Context, _ string) (*db.Artwork, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	return s.record, nil
}

type stubTranslateProvider struct {
	mu       sync.Mutex
	calls    map[language.Code]int
	failFor  map[language.Code]error
	response func(lang language.Code) string
}

func newStubProvider() *stubTranslateProvider {
	return &stubTranslateProvider{
		calls:   make(map[language.Code]int),
		failFor: make(map[language.Code]error),
		response: func(lang language.Code) string {
			return "translated-" + string(lang)
		},
	}
}

func (p *stubTranslateProvider) Translate(_ context.Context, req TranslateRequest) (*TranslateResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[req.TargetLang]++
	if err, ok := p.failFor[req.TargetLang]; ok {
		return nil, err
	}
	return &TranslateResponse{
		Text:         p.response(req.TargetLang),
		TargetLang:   req.TargetLang,
		ProviderName: p.Name(),
	}, nil
}

func (p *stubTranslateProvider) Name() string { return "stub" }

func (p *stubTranslateProvider) SupportedLanguages() []language.Code {
	return language.Supported()
}

func (p *stubTranslateProvider) callCount(lang language.Code) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[lang]
}

func newTestResolver(store Store, provider Provider) *Resolver {
	registry := NewRegistry("stub")
	if err := registry.Register(provider); err != nil {
		panic(err)
	}
	return NewResolver(store, registry, zerolog.Nop(), 2)
}

func str(s string) *string { return &s }

func TestResolveAllMisses(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	provider := newStubProvider()
	resolver := newTestResolver(store, provider)

	result, err := resolver.Resolve(context.Background(), "A Warli harvest scene", []language.Code{language.Hindi, language.Tamil}, ResolveOptions{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if result.Existing != nil {
		t.Fatalf("expected no existing record")
	}
	if len(result.Translations) != 2 {
		t.Fatalf("unexpected translation count: %d", len(result.Translations))
	}
	if result.Translations[language.Hindi] != "translated-hindi" {
		t.Fatalf("unexpected hindi translation: %q", result.Translations[language.Hindi])
	}
	if len(result.Failed) != 0 {
		t.Fatalf("unexpected failures: %v", result.Failed)
	}
	if provider.callCount(language.Hindi) != 1 || provider.callCount(language.Tamil) != 1 {
		t.Fatalf("expected one provider call per language")
	}
}

func TestResolveCacheHitSkipsProvider(t *testing.T) {
	t.Parallel()

	store := &stubStore{record: &db.Artwork{
		ID:      7,
		English: "A Warli harvest scene",
		Hindi:   str("cached-hindi"),
	}}
	provider := newStubProvider()
	resolver := newTestResolver(store, provider)

	result, err := resolver.Resolve(context.Background(), "A Warli harvest scene", []language.Code{language.Hindi, language.Tamil}, ResolveOptions{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if result.Existing == nil || result.Existing.ID != 7 {
		t.Fatalf("expected existing record handle")
	}
	if result.Translations[language.Hindi] != "cached-hindi" {
		t.Fatalf("expected cached hindi, got %q", result.Translations[language.Hindi])
	}
	if result.Translations[language.Tamil] != "translated-tamil" {
		t.Fatalf("expected fresh tamil, got %q", result.Translations[language.Tamil])
	}
	if provider.callCount(language.Hindi) != 0 {
		t.Fatalf("hindi was cached, expected no provider call, got %d", provider.callCount(language.Hindi))
	}
	if provider.callCount(language.Tamil) != 1 {
		t.Fatalf("expected one tamil provider call, got %d", provider.callCount(language.Tamil))
	}
}

func TestResolvePartialFailureIsolated(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	provider := newStubProvider()
	provider.failFor[language.Tamil] = fmt.Errorf("upstream unavailable")
	resolver := newTestResolver(store, provider)

	result, err := resolver.Resolve(context.Background(), "A Gond forest panel", []language.Code{language.Hindi, language.Tamil}, ResolveOptions{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if result.Translations[language.Hindi] != "translated-hindi" {
		t.Fatalf("hindi success must survive tamil failure")
	}
	if _, ok := result.Translations[language.Tamil]; ok {
		t.Fatalf("failed language must be omitted from translations")
	}
	if _, ok := result.Failed[language.Tamil]; !ok {
		t.Fatalf("tamil failure must be flagged")
	}
	if _, ok := result.Failed[language.Hindi]; ok {
		t.Fatalf("hindi must not be flagged as failed")
	}
}

func TestResolveEmptyRequest(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	provider := newStubProvider()
	resolver := newTestResolver(store, provider)

	result, err := resolver.Resolve(context.Background(), "A Madhubani wedding mural", nil, ResolveOptions{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(result.Translations) != 0 || len(result.Failed) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
	if provider.callCount(language.Hindi) != 0 {
		t.Fatalf("expected no provider calls")
	}
}

func TestResolveDeduplicatesRequestedLanguages(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	provider := newStubProvider()
	resolver := newTestResolver(store, provider)

	result, err := resolver.Resolve(context.Background(), "A Pithora horse mural", []language.Code{language.Telugu, language.Telugu}, ResolveOptions{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if provider.callCount(language.Telugu) != 1 {
		t.Fatalf("duplicate request must not trigger duplicate provider calls, got %d", provider.callCount(language.Telugu))
	}
	if result.Translations[language.Telugu] != "translated-telugu" {
		t.Fatalf("unexpected telugu translation: %q", result.Translations[language.Telugu])
	}
}

func TestResolveDisjointKeySets(t *testing.T) {
	t.Parallel()

	store := &stubStore{record: &db.Artwork{
		ID:      3,
		English: "A Saura tree of life",
		Bengali: str("cached-bengali"),
	}}
	provider := newStubProvider()
	provider.failFor[language.Telugu] = fmt.Errorf("boom")
	resolver := newTestResolver(store, provider)

	requested := []language.Code{language.Bengali, language.Tamil, language.Telugu}
	result, err := resolver.Resolve(context.Background(), "A Saura tree of life", requested, ResolveOptions{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	for lang := range result.Failed {
		if _, ok := result.Translations[lang]; ok {
			t.Fatalf("language %s present in both translations and failures", lang)
		}
	}
	total := len(result.Translations) + len(result.Failed)
	if total != len(requested) {
		t.Fatalf("translations+failures must cover the request: got %d want %d", total, len(requested))
	}
}

func TestResolveUnknownProvider(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	provider := newStubProvider()
	resolver := newTestResolver(store, provider)

	_, err := resolver.Resolve(context.Background(), "A Bhil dotted deer", []language.Code{language.Hindi}, ResolveOptions{Provider: "missing"})
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
