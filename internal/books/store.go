// Package books implements the bookshelf operations on top of a Storage.
package books

import (
	"context"
	"fmt"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"

	"bookshelf/internal/models"
	"bookshelf/internal/notify"
	"bookshelf/internal/storage"
)

// IDLength is the length of generated book IDs
const IDLength = 16

// Store is the book record manager
type Store struct {
	db       storage.Storage
	notifier notify.Notifier
	logger   *zap.Logger
	now      func() time.Time
	newID    func() (string, error)
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the time source used for timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the book ID generator
func WithIDGenerator(newID func() (string, error)) Option {
	return func(s *Store) { s.newID = newID }
}

// WithNotifier sets where book events are sent
func WithNotifier(n notify.Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// NewStore creates a Store backed by db
func NewStore(db storage.Storage, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		db:       db,
		notifier: notify.Nop{},
		logger:   logger,
		now:      time.Now,
		newID:    func() (string, error) { return gonanoid.New(IDLength) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func validate(op Op, in models.BookInput) error {
	if in.Name == nil {
		return &ValidationError{Op: op, Reason: ReasonMissingName}
	}
	if in.ReadPage > in.PageCount {
		return &ValidationError{Op: op, Reason: ReasonReadPageExceedsPageCount}
	}
	return nil
}

// apply copies the mutable fields of in onto book
func apply(book *models.Book, in models.BookInput, now time.Time) {
	book.Name = *in.Name
	book.Year = in.Year
	book.Author = in.Author
	book.Summary = in.Summary
	book.Publisher = in.Publisher
	book.PageCount = in.PageCount
	book.ReadPage = in.ReadPage
	book.Reading = in.Reading
	book.Finished = in.PageCount == in.ReadPage
	book.UpdatedAt = now
}

// Create validates in and appends a new book, returning its ID
func (s *Store) Create(ctx context.Context, in models.BookInput) (string, error) {
	if err := validate(OpCreate, in); err != nil {
		return "", err
	}

	id, err := s.newID()
	if err != nil {
		return "", fmt.Errorf("failed to generate book id: %w", err)
	}

	now := s.now().UTC()
	book := models.Book{ID: id, InsertedAt: now}
	apply(&book, in, now)

	if err := s.db.Insert(ctx, book); err != nil {
		return "", fmt.Errorf("failed to insert book: %w", err)
	}

	s.logger.Info("Book created",
		zap.String("book_id", id),
		zap.String("name", book.Name),
	)
	s.notify(ctx, notify.BookAdded, book)

	return id, nil
}

// List returns summaries of the books matching filter in insertion order.
// Only the first set filter applies: name, then reading, then finished.
func (s *Store) List(ctx context.Context, filter models.ListFilter) ([]models.BookSummary, error) {
	all, err := s.db.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	match := func(models.Book) bool { return true }
	switch {
	case filter.NameContains != nil:
		needle := strings.ToLower(*filter.NameContains)
		match = func(b models.Book) bool {
			return strings.Contains(strings.ToLower(b.Name), needle)
		}
	case filter.Reading != models.FilterUnset:
		match = func(b models.Book) bool { return filter.Reading.Match(b.Reading) }
	case filter.Finished != models.FilterUnset:
		match = func(b models.Book) bool { return filter.Finished.Match(b.Finished) }
	}

	summaries := make([]models.BookSummary, 0, len(all))
	for _, b := range all {
		if match(b) {
			summaries = append(summaries, b.ToSummary())
		}
	}
	return summaries, nil
}

// Get returns the book with the given ID
func (s *Store) Get(ctx context.Context, id string) (models.Book, error) {
	book, ok, err := s.db.Get(ctx, id)
	if err != nil {
		return models.Book{}, fmt.Errorf("failed to get book: %w", err)
	}
	if !ok {
		return models.Book{}, fmt.Errorf("%s %q: %w", OpGet, id, ErrNotFound)
	}
	return book, nil
}

// Update replaces every mutable field of the book with the given ID.
// The payload is validated before the ID is looked up.
func (s *Store) Update(ctx context.Context, id string, in models.BookInput) error {
	if err := validate(OpUpdate, in); err != nil {
		return err
	}

	// The clock is read under the storage lock so updatedAt follows commit order
	var updated models.Book
	ok, err := s.db.Update(ctx, id, func(b *models.Book) {
		apply(b, in, s.now().UTC())
		updated = *b
	})
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}
	if !ok {
		return fmt.Errorf("%s %q: %w", OpUpdate, id, ErrNotFound)
	}

	s.logger.Info("Book updated", zap.String("book_id", id))
	s.notify(ctx, notify.BookUpdated, updated)

	return nil
}

// Delete removes the book with the given ID
func (s *Store) Delete(ctx context.Context, id string) error {
	book, ok, err := s.db.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if !ok {
		return fmt.Errorf("%s %q: %w", OpDelete, id, ErrNotFound)
	}

	s.logger.Info("Book deleted", zap.String("book_id", id))
	s.notify(ctx, notify.BookDeleted, book)

	return nil
}

func (s *Store) notify(ctx context.Context, kind notify.EventKind, book models.Book) {
	if err := s.notifier.Notify(ctx, notify.Event{Kind: kind, Book: book}); err != nil {
		s.logger.Warn("Failed to send notification",
			zap.Error(err),
			zap.String("kind", string(kind)),
			zap.String("book_id", book.ID),
		)
	}
}
