package planner

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/sadopc/planr/internal/dates"
	"github.com/sadopc/planr/internal/identity"
	"github.com/sadopc/planr/internal/remote"
	"github.com/sadopc/planr/internal/store"
	"github.com/sadopc/planr/internal/syncstore"
)

const domainNotes = "notes"

type Notes struct {
	c   *syncstore.Collection[int64, store.Note]
	ids *idSource
}

func newNotes(dev syncstore.Device, rem remote.DocumentStore, ids *idSource, u *identity.User) (*Notes, error) {
	c, err := syncstore.New(syncstore.Options[int64, store.Note]{
		Domain:   domainNotes,
		KeyOf:    func(n store.Note) int64 { return n.ID },
		Validate: validateNote,
		Device:   dev,
		Remote:   rem,
	}, u)
	if err != nil {
		return nil, fmt.Errorf("open notes: %w", err)
	}
	return &Notes{c: c, ids: ids}, nil
}

func validateNote(n store.Note) error {
	if strings.TrimSpace(n.Text) == "" {
		return syncstore.Invalid("text", "must not be empty")
	}
	if n.DateISO != "" && !dates.Valid(n.DateISO) {
		return syncstore.Invalid("date", fmt.Sprintf("%q is not a YYYY-MM-DD date", n.DateISO))
	}
	return nil
}

// Add creates a note. dateISO is optional and may be in the past.
func (n *Notes) Add(ctx context.Context, text, dateISO string) (store.Note, error) {
	note := store.Note{Text: strings.TrimSpace(text), DateISO: dateISO}
	if err := validateNote(note); err != nil {
		return store.Note{}, err
	}
	note.ID = n.ids.next(maxID(n.c.Items(), func(n store.Note) int64 { return n.ID }))
	if err := n.c.Add(ctx, note); err != nil {
		return store.Note{}, err
	}
	return note, nil
}

// Update replaces the text of a note.
func (n *Notes) Update(ctx context.Context, id int64, text string) error {
	text = strings.TrimSpace(text)
	return n.c.Update(ctx, id, func(note store.Note) store.Note {
		note.Text = text
		return note
	})
}

func (n *Notes) Remove(ctx context.Context, id int64) error {
	return n.c.Remove(ctx, id)
}

func (n *Notes) Items() []store.Note { return n.c.Items() }

// Newest lists notes most recent first.
func (n *Notes) Newest() []store.Note {
	items := n.c.Items()
	slices.Reverse(items)
	return items
}

// ForDate returns the notes attached to dateISO.
func (n *Notes) ForDate(dateISO string) []store.Note {
	var out []store.Note
	for _, note := range n.c.Items() {
		if note.DateISO == dateISO {
			out = append(out, note)
		}
	}
	return out
}

// Search returns notes containing query, ignoring case, newest first.
func (n *Notes) Search(query string) []store.Note {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return n.Newest()
	}
	var out []store.Note
	for _, note := range n.Newest() {
		if strings.Contains(strings.ToLower(note.Text), q) {
			out = append(out, note)
		}
	}
	return out
}
