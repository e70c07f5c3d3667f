// Package remote holds per-user documents. Each document is a set of named
// fields; a merge-write replaces the fields it names and leaves the others
// untouched.
package remote

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned by Read when the user has no document yet.
var ErrNotFound = errors.New("document not found")

// Document maps field names ("tasks", "notes", ...) to raw JSON values.
type Document map[string]json.RawMessage

// DocumentStore is the remote side of synchronization.
type DocumentStore interface {
	Read(ctx context.Context, userID string) (Document, error)
	WriteMerge(ctx context.Context, userID string, fields Document) error
}

func (d Document) clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

func validate(userID string, fields Document) error {
	if userID == "" {
		return errors.New("empty user id")
	}
	for k, v := range fields {
		if k == "" {
			return errors.New("empty field name")
		}
		if !json.Valid(v) {
			return errors.New("field " + k + " is not valid JSON")
		}
	}
	return nil
}
