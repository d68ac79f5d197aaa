package notify

import (
	"context"
	"fmt"

	"bookshelf/internal/models"
)

// Event is a change to the bookshelf worth telling someone about
type Event struct {
	Kind EventKind
	Book models.Book
}

// EventKind identifies what happened to a book
type EventKind string

const (
	BookAdded   EventKind = "added"
	BookUpdated EventKind = "updated"
	BookDeleted EventKind = "deleted"
)

// Notifier delivers bookshelf events
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Nop discards every event
type Nop struct{}

// Notify does nothing
func (Nop) Notify(context.Context, Event) error { return nil }

// Text renders the message body for an event
func (e Event) Text() string {
	switch e.Kind {
	case BookAdded:
		return fmt.Sprintf("New book on the shelf!\n\nTitle: %s\nAuthor: %s\nPages: %d",
			e.Book.Name, e.Book.Author, e.Book.PageCount)
	case BookUpdated:
		status := "in progress"
		if e.Book.Finished {
			status = "finished"
		}
		return fmt.Sprintf("Book updated\n\nTitle: %s\nProgress: %d/%d (%s)",
			e.Book.Name, e.Book.ReadPage, e.Book.PageCount, status)
	case BookDeleted:
		return fmt.Sprintf("Book removed from the shelf: %s", e.Book.Name)
	default:
		return fmt.Sprintf("Book %s: %s", e.Kind, e.Book.Name)
	}
}
