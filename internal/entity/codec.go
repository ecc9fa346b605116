package entity

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var valuePattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

const (
	segmentSeparator = "_"
	keySeparator     = "-"
)

// Parse splits a filename into its ordered entities and trailing suffix.
// Extensions are stripped first, so both base names and full filenames are
// accepted. The final segment is the suffix; every preceding segment must be
// a key-value expression and the sub entity must be present.
func Parse(name string) (Attributes, string, error) {
	base := StripExtensions(filepath.Base(name))
	segments := splitSegments(base)
	if len(segments) == 0 {
		return Attributes{}, "", fmt.Errorf("%w: empty filename", ErrMalformedName)
	}

	suffix := segments[len(segments)-1]
	var attrs Attributes
	for _, segment := range segments[:len(segments)-1] {
		key, value, found := strings.Cut(segment, keySeparator)
		if !found {
			return Attributes{}, "", fmt.Errorf("%w: segment %q is missing %q separator", ErrMalformedName, segment, keySeparator)
		}
		if key == "" || value == "" {
			return Attributes{}, "", fmt.Errorf("%w: invalid entity expression %q", ErrMalformedName, segment)
		}
		attrs.pairs = append(attrs.pairs, Pair{Key: key, Value: value})
	}

	if !attrs.Has(KeySubject) {
		return Attributes{}, "", fmt.Errorf("%w: missing required %q entity", ErrMalformedName, KeySubject)
	}
	return attrs, suffix, nil
}

// Build joins entities and suffix back into a base name, validating the
// character set of every value and of the suffix. Entities are emitted in
// the order carried by attrs, which Parse and Set keep canonical.
func Build(attrs Attributes, suffix string) (string, error) {
	if !valuePattern.MatchString(suffix) {
		return "", fmt.Errorf("%w: suffix %q", ErrInvalidCharacter, suffix)
	}
	parts := make([]string, 0, len(attrs.pairs)+1)
	for _, p := range attrs.pairs {
		if !valuePattern.MatchString(p.Value) {
			return "", fmt.Errorf("%w: entity %q value %q", ErrInvalidCharacter, p.Key, p.Value)
		}
		parts = append(parts, p.Key+keySeparator+p.Value)
	}
	parts = append(parts, suffix)
	return strings.Join(parts, segmentSeparator), nil
}

// Normalize collapses repeated segment separators and trims leading and
// trailing ones, guaranteeing a canonical, re-parseable base name after raw
// string mutation.
func Normalize(base string) string {
	for strings.Contains(base, segmentSeparator+segmentSeparator) {
		base = strings.ReplaceAll(base, segmentSeparator+segmentSeparator, segmentSeparator)
	}
	return strings.Trim(base, segmentSeparator)
}

// Validate parses and character-checks a base name end to end.
func Validate(base string) error {
	attrs, suffix, err := Parse(base)
	if err != nil {
		return err
	}
	_, err = Build(attrs, suffix)
	return err
}

// StripExtensions removes the full extension chain: "a_events.tsv.gz"
// becomes "a_events". Names without extensions pass through unchanged.
func StripExtensions(name string) string {
	base := name
	for {
		ext := filepath.Ext(base)
		if ext == "" || ext == base {
			return base
		}
		base = strings.TrimSuffix(base, ext)
	}
}

// ExtensionChain returns the full extension chain of name, including the
// leading dot: ".tsv.gz" for "a_events.tsv.gz".
func ExtensionChain(name string) string {
	return strings.TrimPrefix(name, StripExtensions(name))
}

func splitSegments(base string) []string {
	var out []string
	for _, segment := range strings.Split(base, segmentSeparator) {
		if segment != "" {
			out = append(out, segment)
		}
	}
	return out
}
