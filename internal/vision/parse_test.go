package vision

import (
	"errors"
	"testing"
)

func TestParseDescriptionPlainJSON(t *testing.T) {
	t.Parallel()

	raw := `{"art_name": "Warli Harvest", "art_style": "Warli", "region": "Maharashtra", "english": "A harvest dance painted in rice paste."}`
	desc, err := parseDescription(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if desc.ArtName != "Warli Harvest" || desc.Region != "Maharashtra" {
		t.Fatalf("unexpected description: %+v", desc)
	}
	if desc.English != "A harvest dance painted in rice paste." {
		t.Fatalf("unexpected english text: %q", desc.English)
	}
}

func TestParseDescriptionStripsCodeFences(t *testing.T) {
	t.Parallel()

	raw := "```json\n{\"art_name\": \"Gond Panel\", \"english\": \"A forest scene.\"}\n```"
	desc, err := parseDescription(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if desc.ArtName != "Gond Panel" || desc.English != "A forest scene." {
		t.Fatalf("unexpected description: %+v", desc)
	}
}

func TestParseDescriptionDefaults(t *testing.T) {
	t.Parallel()

	desc, err := parseDescription(`{"english": "A dotted deer."}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if desc.ArtName != "Unknown Art" {
		t.Fatalf("expected default art name, got %q", desc.ArtName)
	}
	if desc.Region != "India" {
		t.Fatalf("expected default region, got %q", desc.Region)
	}
}

func TestParseDescriptionRejectsInvalidJSON(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{
		"",
		"not json at all",
		"```json\n```",
		`{"english": 42}`,
		`{"art_name": "no english field"}`,
		`{"english": ""}`,
	} {
		_, err := parseDescription(raw)
		if err == nil {
			t.Fatalf("expected parse error for %q", raw)
		}
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("expected *ParseError for %q, got %T", raw, err)
		}
	}
}
