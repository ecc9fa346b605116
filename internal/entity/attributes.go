package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// canonicalOrder is the published priority sequence for known entities.
// Unknown entities sort after every known one, in arrival order.
var canonicalOrder = []string{
	"sub", "ses", "task", "acq", "ce", "dir", "rec", "run", "echo",
	"flip", "inv", "mt", "part", "recording", "space", "split", "desc",
	"label",
}

// Well-known entity keys used throughout the matching pipeline. KeySubject
// is mandatory in every BIDS name.
const (
	KeySubject = "sub"
	KeySession = "ses"
	KeyTask    = "task"
	KeyRun     = "run"
)

func orderIndex(key string) int {
	for i, known := range canonicalOrder {
		if known == key {
			return i
		}
	}
	return len(canonicalOrder) + 1
}

// Pair is a single key-value entity.
type Pair struct {
	Key   string
	Value string
}

// Attributes is an ordered entity list. Keys are unique; iteration order is
// the canonical priority order for known keys, arrival order for unknown
// ones. The zero value is an empty list ready for use.
type Attributes struct {
	pairs []Pair
}

// Get returns the value for key and whether it is present.
func (a *Attributes) Get(key string) (string, bool) {
	for _, p := range a.pairs {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Value returns the value for key, or the empty string when absent.
func (a *Attributes) Value(key string) string {
	v, _ := a.Get(key)
	return v
}

// Has reports whether key is present.
func (a *Attributes) Has(key string) bool {
	_, ok := a.Get(key)
	return ok
}

// Len returns the number of entities.
func (a *Attributes) Len() int { return len(a.pairs) }

// Pairs returns a copy of the entities in order.
func (a *Attributes) Pairs() []Pair {
	out := make([]Pair, len(a.pairs))
	copy(out, a.pairs)
	return out
}

// Set updates an existing entity in place or inserts a new one at its
// canonical position relative to the keys already present. Values must be
// non-empty and alphanumeric.
func (a *Attributes) Set(key, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("%w: entity %q requires a non-empty value", ErrEmptyValue, key)
	}
	if !valuePattern.MatchString(value) {
		return fmt.Errorf("%w: entity value %q", ErrInvalidCharacter, value)
	}

	for i, p := range a.pairs {
		if p.Key == key {
			a.pairs[i].Value = value
			return nil
		}
	}

	target := orderIndex(key)
	for i, p := range a.pairs {
		if target < orderIndex(p.Key) {
			a.pairs = append(a.pairs, Pair{})
			copy(a.pairs[i+1:], a.pairs[i:])
			a.pairs[i] = Pair{Key: key, Value: value}
			return nil
		}
	}
	a.pairs = append(a.pairs, Pair{Key: key, Value: value})
	return nil
}

// Remove deletes an entity. Removing the sub entity is refused; removing an
// absent key is a no-op.
func (a *Attributes) Remove(key string) error {
	if key == KeySubject {
		return fmt.Errorf("%w: cannot remove mandatory %q entity", ErrProtectedAttribute, KeySubject)
	}
	for i, p := range a.pairs {
		if p.Key == key {
			a.pairs = append(a.pairs[:i], a.pairs[i+1:]...)
			return nil
		}
	}
	return nil
}

// Require returns ErrMalformedName when any of the given keys is absent or
// has an empty value.
func (a *Attributes) Require(keys ...string) error {
	var missing []string
	for _, key := range keys {
		if v, ok := a.Get(key); !ok || v == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required entities: %s", ErrMalformedName, strings.Join(missing, ", "))
	}
	return nil
}

// NormalizeNumeric maps zero-padded numeric labels to their integer form so
// that "01" and "1" compare equal. Non-numeric labels pass through unchanged.
func NormalizeNumeric(value string) string {
	if value == "" {
		return ""
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return value
		}
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return value
	}
	return strconv.Itoa(n)
}
