package encoder

import (
	"errors"
	"strings"
	"testing"
)

func TestEncodeProducesURLSafeToken(t *testing.T) {
	src := "@startuml\nBob -> Alice : hello\n@enduml\n"
	token, err := PlantUML{}.Encode(src)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if token == "" || len(token)%4 != 0 {
		t.Fatalf("expected whole 4-character groups, got %q", token)
	}
	for _, r := range token {
		if !strings.ContainsRune(Alphabet, r) {
			t.Fatalf("token contains %q outside the PlantUML alphabet: %s", r, token)
		}
	}
	back, err := Decode("~1" + token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back != src {
		t.Fatalf("decode mismatch\nwant %q\ngot  %q", src, back)
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	a, err := PlantUML{}.Encode("A -> B")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	b, err := PlantUML{}.Encode("A -> B")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if a != b {
		t.Fatalf("expected identical tokens, got %q and %q", a, b)
	}
}

func TestEncodeAcceptsBlankSource(t *testing.T) {
	for _, src := range []string{"", " \n\t"} {
		token, err := PlantUML{}.Encode(src)
		if err != nil {
			t.Fatalf("encode %q: %v", src, err)
		}
		if token == "" {
			t.Fatalf("expected a token for %q", src)
		}
		back, err := Decode(token)
		if err != nil {
			t.Fatalf("decode %q: %v", token, err)
		}
		if back != src {
			t.Fatalf("decode mismatch\nwant %q\ngot  %q", src, back)
		}
	}
}

func TestDecodeRejectsEmptyToken(t *testing.T) {
	if _, err := Decode("~1"); !errors.Is(err, ErrEmptyToken) {
		t.Fatalf("expected ErrEmptyToken, got %v", err)
	}
}

func TestEncodeRejectsInvalidLevel(t *testing.T) {
	if _, err := (PlantUML{Level: 42}).Encode("A -> B"); err == nil {
		t.Fatalf("expected error for invalid compression level")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode("!!!"); err == nil {
		t.Fatalf("expected error for characters outside the alphabet")
	}
}
