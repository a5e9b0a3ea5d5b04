package indexer

import (
	"errors"
	"fmt"

	"github.com/votascan/votascan/pkg/indexer/types"
)

// ErrMissingAttribute marks a required attribute absent from an event that
// was expected to carry it. It aborts the run: the feed is either corrupt or
// produced by an unsupported contract revision.
var ErrMissingAttribute = errors.New("missing required attribute")

// Attributes wraps an event's flat attribute list with first-match lookup.
// Duplicate keys across merged sub-messages resolve to the first occurrence;
// downstream consumers depend on that tie-break.
type Attributes []types.Attribute

// Lookup returns the first value for key and whether it was present.
func (a Attributes) Lookup(key string) (string, bool) {
	for _, attr := range a {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// Get returns the first value for key, or ErrMissingAttribute when absent.
func (a Attributes) Get(key string) (string, error) {
	if v, ok := a.Lookup(key); ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: %s", ErrMissingAttribute, key)
}

// GetOr returns the first value for key, or def when absent.
func (a Attributes) GetOr(key, def string) string {
	if v, ok := a.Lookup(key); ok {
		return v
	}
	return def
}
