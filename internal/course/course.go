// Package course validates and normalizes tracked course identifiers.
//
// Course IDs are configured in display form ("7n1-mvb-wkf") and normalized
// to nine characters from a base-32-like alphabet before any network
// activity. Validation runs once at startup; any failure is a configuration
// error and aborts the process, so a malformed ID never reaches the wire.
package course

import (
	"errors"
	"fmt"
	"strings"
)

// alphabet holds every character a normalized course ID may contain: digits
// plus uppercase letters, excluding the easily-confused I, O and Z.
const alphabet = "0123456789ABCDEFGHJKLMNPQRSTUVWXY"

// idLength is the length of a normalized course ID.
const idLength = 9

// ErrNoCourses indicates the configured course list is empty.
var ErrNoCourses = errors.New("no course ids configured")

// InvalidIDError reports a course ID that failed normalization, naming the
// raw identifier as the operator wrote it.
type InvalidIDError struct {
	Raw    string
	Reason string
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid course id %q: %s", e.Raw, e.Reason)
}

// Normalize strips separator characters from a display-formatted course ID,
// uppercases it, and validates length and alphabet.
func Normalize(raw string) (string, error) {
	id := strings.ToUpper(strings.Map(dropSeparators, raw))
	if len(id) != idLength {
		return "", &InvalidIDError{
			Raw:    raw,
			Reason: fmt.Sprintf("must be %d characters after removing separators, got %d", idLength, len(id)),
		}
	}
	for _, r := range id {
		if !strings.ContainsRune(alphabet, r) {
			return "", &InvalidIDError{
				Raw:    raw,
				Reason: fmt.Sprintf("character %q is not allowed", r),
			}
		}
	}
	return id, nil
}

// NormalizeAll normalizes a raw course list, preserving first-seen order and
// dropping duplicates. An empty list or any invalid identifier is an error.
func NormalizeAll(raws []string) ([]string, error) {
	if len(raws) == 0 {
		return nil, ErrNoCourses
	}
	out := make([]string, 0, len(raws))
	seen := make(map[string]struct{}, len(raws))
	for _, raw := range raws {
		id, err := Normalize(raw)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

// dropSeparators removes dashes and whitespace, the separators used in the
// display form of a course ID.
func dropSeparators(r rune) rune {
	switch r {
	case '-', ' ', '\t':
		return -1
	}
	return r
}
