package language

import (
	"errors"
	"testing"
)

func TestParseListValid(t *testing.T) {
	t.Parallel()

	codes, err := ParseList(" Hindi, tamil ,MARATHI")
	if err != nil {
		t.Fatalf("parse list: %v", err)
	}
	want := []Code{Hindi, Tamil, Marathi}
	if len(codes) != len(want) {
		t.Fatalf("unexpected code count: got %d want %d", len(codes), len(want))
	}
	for i, code := range want {
		if codes[i] != code {
			t.Fatalf("unexpected code at %d: got %q want %q", i, codes[i], code)
		}
	}
}

func TestParseListEmpty(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "   ", ",,", " , "} {
		codes, err := ParseList(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if len(codes) != 0 {
			t.Fatalf("expected empty list for %q, got %v", raw, codes)
		}
	}
}

func TestParseListKeepsDuplicates(t *testing.T) {
	t.Parallel()

	codes, err := ParseList("hindi,hindi")
	if err != nil {
		t.Fatalf("parse list: %v", err)
	}
	if len(codes) != 2 || codes[0] != Hindi || codes[1] != Hindi {
		t.Fatalf("expected duplicates preserved, got %v", codes)
	}
}

func TestParseListUnsupported(t *testing.T) {
	t.Parallel()

	_, err := ParseList("hindi,klingon")
	if err == nil {
		t.Fatal("expected error for unsupported language")
	}

	var unsupported *UnsupportedError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected *UnsupportedError, got %T", err)
	}
	if len(unsupported.Unsupported) != 1 || unsupported.Unsupported[0] != "klingon" {
		t.Fatalf("unexpected offenders: %v", unsupported.Unsupported)
	}
	if len(unsupported.Supported) != 5 {
		t.Fatalf("expected full supported set in error, got %v", unsupported.Supported)
	}
}

func TestISO(t *testing.T) {
	t.Parallel()

	if got := ISO(Bengali); got != "bn" {
		t.Fatalf("unexpected ISO code for bengali: %q", got)
	}
	if got := ISO(Code("klingon")); got != "" {
		t.Fatalf("expected empty ISO code for unknown language, got %q", got)
	}
}
