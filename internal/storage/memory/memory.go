package memory

import (
	"context"
	"sync"

	"bookshelf/internal/models"
	"bookshelf/internal/storage"
)

var _ storage.Storage = (*DB)(nil)

// DB is an in-memory implementation of the Storage interface.
// Books are kept in a slice so iteration follows insertion order.
type DB struct {
	mu    sync.RWMutex
	books []models.Book
}

// NewDB creates an empty in-memory database
func NewDB() *DB {
	return &DB{
		books: make([]models.Book, 0),
	}
}

// Insert appends a book to the end of the collection
func (m *DB) Insert(ctx context.Context, book models.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.books = append(m.books, book)
	return nil
}

// List returns a snapshot of all books in insertion order
func (m *DB) List(ctx context.Context) ([]models.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	books := make([]models.Book, len(m.books))
	copy(books, m.books)
	return books, nil
}

// Get retrieves a book by its ID
func (m *DB) Get(ctx context.Context, id string) (models.Book, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.indexOf(id)
	if i == -1 {
		return models.Book{}, false, nil
	}
	return m.books[i], true, nil
}

// Update mutates the book with the given ID under the write lock
func (m *DB) Update(ctx context.Context, id string, fn func(*models.Book)) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i == -1 {
		return false, nil
	}

	book := m.books[i]
	fn(&book)
	book.ID = id
	m.books[i] = book
	return true, nil
}

// Delete removes the book with the given ID
func (m *DB) Delete(ctx context.Context, id string) (models.Book, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i == -1 {
		return models.Book{}, false, nil
	}

	book := m.books[i]
	m.books = append(m.books[:i], m.books[i+1:]...)
	return book, true, nil
}

// Count returns the number of stored books
func (m *DB) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.books), nil
}

// Close drops all books
func (m *DB) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.books = nil
	return nil
}

// indexOf does a linear scan; callers must hold the lock
func (m *DB) indexOf(id string) int {
	for i := range m.books {
		if m.books[i].ID == id {
			return i
		}
	}
	return -1
}
