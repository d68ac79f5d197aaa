package storage

import (
	"context"

	"bookshelf/internal/models"
)

// Storage defines the ordered collection operations the book store relies on.
// Implementations must keep insertion order and make each call atomic.
type Storage interface {
	// Insert appends a book to the end of the collection
	Insert(ctx context.Context, book models.Book) error

	// List returns a copy of all books in insertion order
	List(ctx context.Context) ([]models.Book, error)

	// Get returns the book with the given ID; ok is false if there is none
	Get(ctx context.Context, id string) (book models.Book, ok bool, err error)

	// Update applies fn to the stored book with the given ID in place.
	// fn must not change the ID. ok is false if there is no such book.
	Update(ctx context.Context, id string, fn func(*models.Book)) (ok bool, err error)

	// Delete removes the book with the given ID, keeping the order of the rest,
	// and returns the removed book
	Delete(ctx context.Context, id string) (book models.Book, ok bool, err error)

	// Count returns the number of stored books
	Count(ctx context.Context) (int, error)

	// Lifecycle
	Close() error
}
