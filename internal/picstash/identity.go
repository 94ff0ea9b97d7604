package picstash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// reservedIDChars are characters that are unsafe in a directory name on at
// least one supported filesystem.
const reservedIDChars = `/\:*?"<>|`

var (
	nameRe   = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	uuidV4Re = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-4[0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`)
)

// ValidateCollectionID rejects identifiers that cannot safely name a
// directory: empty or whitespace-only values, "." and "..", filesystem
// reserved characters, and leading or trailing dots.
func ValidateCollectionID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: empty collection id", ErrInvalidIdentifier)
	}
	if id == "." || id == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}
	if strings.ContainsAny(id, reservedIDChars) {
		return fmt.Errorf("%w: %q contains a reserved character", ErrInvalidIdentifier, id)
	}
	if strings.HasPrefix(id, ".") || strings.HasSuffix(id, ".") {
		return fmt.Errorf("%w: %q starts or ends with a dot", ErrInvalidIdentifier, id)
	}
	return nil
}

// ValidateCollectionName enforces the display-name rules: non-empty, at
// most 256 characters, letters, digits, underscore and hyphen only.
func ValidateCollectionName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty collection name", ErrInvalidName)
	}
	if len(name) > 256 {
		return fmt.Errorf("%w: name exceeds 256 characters", ErrInvalidName)
	}
	if !nameRe.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// ValidateImageID accepts the case-insensitive hyphenated UUID-v4 form.
func ValidateImageID(id string) error {
	if !uuidV4Re.MatchString(id) {
		return fmt.Errorf("%w: %q is not a valid image id", ErrInvalidIdentifier, id)
	}
	return nil
}

// ValidateArchiveName enforces the same safe-filename rules as collection
// names for the user-supplied archive name.
func ValidateArchiveName(name string) error {
	if name == "" || len(name) > 256 || !nameRe.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidArchiveName, name)
	}
	return nil
}

// ContentHash returns the SHA-256 checksum of data as a lowercase hex
// string. It is the content-addressed fingerprint of an original: stable
// for identical bytes, used for integrity checks, never as a primary key.
func ContentHash(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
