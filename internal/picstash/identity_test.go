package picstash

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateCollectionID(t *testing.T) {
	valid := []string{
		"vacation-photos",
		"a",
		"summer_2024",
		"Pets",
		"trip to paris", // interior spaces are fine
	}
	for _, id := range valid {
		if err := ValidateCollectionID(id); err != nil {
			t.Errorf("ValidateCollectionID(%q) = %v, want nil", id, err)
		}
	}

	invalid := []string{
		"",
		"   ",
		".",
		"..",
		"a/b",
		`a\b`,
		"a:b",
		"a*b",
		`a"b`,
		"a<b>",
		"a|b",
		"a?b",
		".hidden",
		"trailing.",
	}
	for _, id := range invalid {
		err := ValidateCollectionID(id)
		if !errors.Is(err, ErrInvalidIdentifier) {
			t.Errorf("ValidateCollectionID(%q) = %v, want ErrInvalidIdentifier", id, err)
		}
	}
}

func TestValidateCollectionName(t *testing.T) {
	if err := ValidateCollectionName("summer-trip_2024"); err != nil {
		t.Errorf("ValidateCollectionName() = %v, want nil", err)
	}
	if err := ValidateCollectionName(strings.Repeat("a", 256)); err != nil {
		t.Errorf("256-char name rejected: %v", err)
	}

	invalid := []string{
		"",
		strings.Repeat("a", 257),
		"has space",
		"has.dot",
		"emoji\U0001F600",
	}
	for _, name := range invalid {
		err := ValidateCollectionName(name)
		if !errors.Is(err, ErrInvalidName) {
			t.Errorf("ValidateCollectionName(%q) = %v, want ErrInvalidName", name, err)
		}
	}
}

func TestValidateImageID(t *testing.T) {
	valid := []string{
		"2e9f0b55-7a1c-4d2e-9b3f-0a1b2c3d4e5f",
		"2E9F0B55-7A1C-4D2E-9B3F-0A1B2C3D4E5F",
		"00000000-0000-4000-8000-000000000001",
	}
	for _, id := range valid {
		if err := ValidateImageID(id); err != nil {
			t.Errorf("ValidateImageID(%q) = %v, want nil", id, err)
		}
	}

	invalid := []string{
		"",
		"id-1",
		"2e9f0b557a1c4d2e9b3f0a1b2c3d4e5f",             // no hyphens
		"2e9f0b55-7a1c-1d2e-9b3f-0a1b2c3d4e5f",        // wrong version
		"2e9f0b55-7a1c-4d2e-0b3f-0a1b2c3d4e5f",        // wrong variant
		"2e9f0b55-7a1c-4d2e-9b3f-0a1b2c3d4e5",         // too short
		"g2e9f0b5-7a1c-4d2e-9b3f-0a1b2c3d4e5f",        // non-hex
		" 2e9f0b55-7a1c-4d2e-9b3f-0a1b2c3d4e5f",       // leading space
		"2e9f0b55-7a1c-4d2e-9b3f-0a1b2c3d4e5f-extra",  // trailing junk
	}
	for _, id := range invalid {
		err := ValidateImageID(id)
		if !errors.Is(err, ErrInvalidIdentifier) {
			t.Errorf("ValidateImageID(%q) = %v, want ErrInvalidIdentifier", id, err)
		}
	}
}

func TestValidateArchiveName(t *testing.T) {
	if err := ValidateArchiveName("trip"); err != nil {
		t.Errorf("ValidateArchiveName(trip) = %v, want nil", err)
	}
	for _, name := range []string{"", "has space", "a.zip", strings.Repeat("x", 257)} {
		err := ValidateArchiveName(name)
		if !errors.Is(err, ErrInvalidArchiveName) {
			t.Errorf("ValidateArchiveName(%q) = %v, want ErrInvalidArchiveName", name, err)
		}
	}
}

func TestContentHash(t *testing.T) {
	// Known SHA-256 of "hello".
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got := ContentHash([]byte("hello")); got != want {
		t.Errorf("ContentHash(hello) = %q, want %q", got, want)
	}

	if ContentHash([]byte("a")) == ContentHash([]byte("b")) {
		t.Error("different content produced identical hashes")
	}
	if ContentHash([]byte("same")) != ContentHash([]byte("same")) {
		t.Error("identical content produced different hashes")
	}
}
