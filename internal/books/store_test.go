package books

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bookshelf/internal/models"
	"bookshelf/internal/notify"
	"bookshelf/internal/storage/memory"
)

// gatedDB holds the first Update until release is closed
type gatedDB struct {
	*memory.DB
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGatedDB() *gatedDB {
	return &gatedDB{
		DB:      memory.NewDB(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (g *gatedDB) Update(ctx context.Context, id string, fn func(*models.Book)) (bool, error) {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
	}
	return g.DB.Update(ctx, id, fn)
}

// fakeClock advances one second on every call
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// sequentialIDs returns book-1, book-2, ...
func sequentialIDs() func() (string, error) {
	var mu sync.Mutex
	n := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("book-%d", n), nil
	}
}

type recordingNotifier struct {
	events []notify.Event
	err    error
}

func (r *recordingNotifier) Notify(_ context.Context, e notify.Event) error {
	r.events = append(r.events, e)
	return r.err
}

func setupStore(t *testing.T, opts ...Option) (*Store, *memory.DB) {
	t.Helper()
	db := memory.NewDB()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	defaults := []Option{WithClock(clock.Now), WithIDGenerator(sequentialIDs())}
	return NewStore(db, zap.NewNop(), append(defaults, opts...)...), db
}

func input(name string, pageCount, readPage int, reading bool) models.BookInput {
	return models.BookInput{
		Name:      &name,
		Year:      2010,
		Author:    "Author " + name,
		Summary:   "Summary " + name,
		Publisher: "Publisher " + name,
		PageCount: pageCount,
		ReadPage:  readPage,
		Reading:   reading,
	}
}

func summaryIDs(summaries []models.BookSummary) []string {
	out := make([]string, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, s.ID)
	}
	return out
}

func TestStore_CreateFinished(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, input("Done", 100, 100, false))
	require.NoError(t, err)
	book, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, book.Finished)

	id, err = store.Create(ctx, input("Halfway", 100, 50, true))
	require.NoError(t, err)
	book, err = store.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, book.Finished)
}

func TestStore_CreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		in     models.BookInput
		reason Reason
	}{
		{name: "read page exceeds page count", in: input("Too far", 100, 150, false), reason: ReasonReadPageExceedsPageCount},
		{name: "missing name", in: models.BookInput{PageCount: 10}, reason: ReasonMissingName},
		{name: "missing name wins over read page", in: models.BookInput{PageCount: 10, ReadPage: 20}, reason: ReasonMissingName},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store, db := setupStore(t)
			ctx := context.Background()

			_, err := store.Create(ctx, tc.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, OpCreate, verr.Op)
			assert.Equal(t, tc.reason, verr.Reason)

			count, err := db.Count(ctx)
			require.NoError(t, err)
			assert.Zero(t, count)
		})
	}
}

func TestStore_CreateEmptyNameIsPresent(t *testing.T) {
	store, _ := setupStore(t)
	_, err := store.Create(context.Background(), input("", 1, 0, false))
	assert.NoError(t, err)
}

func TestStore_CreateIDGeneratorFailure(t *testing.T) {
	store, db := setupStore(t, WithIDGenerator(func() (string, error) {
		return "", errors.New("entropy exhausted")
	}))
	ctx := context.Background()

	_, err := store.Create(ctx, input("A", 1, 0, false))
	require.Error(t, err)
	var verr *ValidationError
	assert.False(t, errors.As(err, &verr))

	count, err := db.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStore_DefaultIDGenerator(t *testing.T) {
	store := NewStore(memory.NewDB(), zap.NewNop())
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		id, err := store.Create(ctx, input("A", 1, 0, false))
		require.NoError(t, err)
		assert.Len(t, id, IDLength)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestStore_ListAllInCreationOrder(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	// Empty store lists as an empty slice
	summaries, err := store.List(ctx, models.ListFilter{})
	require.NoError(t, err)
	assert.NotNil(t, summaries)
	assert.Empty(t, summaries)

	var want []string
	for _, name := range []string{"Zeta", "Alpha", "Mid"} {
		id, err := store.Create(ctx, input(name, 10, 0, false))
		require.NoError(t, err)
		want = append(want, id)
	}

	summaries, err = store.List(ctx, models.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, want, summaryIDs(summaries))
	assert.Equal(t, models.BookSummary{ID: want[0], Name: "Zeta", Publisher: "Publisher Zeta"}, summaries[0])
}

func TestStore_ListFilters(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	// book-1: reading, not finished
	// book-2: not reading, finished
	// book-3: reading, finished
	// book-4: not reading, not finished
	_, _ = store.Create(ctx, input("Dicoding Academy", 10, 5, true))
	_, _ = store.Create(ctx, input("Kelas DICODING", 10, 10, false))
	_, _ = store.Create(ctx, input("Golang Basics", 10, 10, true))
	_, _ = store.Create(ctx, input("Other", 10, 1, false))

	name := func(s string) *string { return &s }

	tests := []struct {
		name   string
		filter models.ListFilter
		want   []string
	}{
		{name: "name case insensitive", filter: models.ListFilter{NameContains: name("dicoding")}, want: []string{"book-1", "book-2"}},
		{name: "name ignores reading and finished", filter: models.ListFilter{NameContains: name("DiCo"), Reading: models.FilterFalse, Finished: models.FilterFalse}, want: []string{"book-1", "book-2"}},
		{name: "empty name matches all", filter: models.ListFilter{NameContains: name("")}, want: []string{"book-1", "book-2", "book-3", "book-4"}},
		{name: "reading true", filter: models.ListFilter{Reading: models.FilterTrue}, want: []string{"book-1", "book-3"}},
		{name: "reading false", filter: models.ListFilter{Reading: models.FilterFalse}, want: []string{"book-2", "book-4"}},
		{name: "reading ignores finished", filter: models.ListFilter{Reading: models.FilterTrue, Finished: models.FilterFalse}, want: []string{"book-1", "book-3"}},
		{name: "reading unrecognized returns all", filter: models.ListFilter{Reading: models.FilterAny, Finished: models.FilterTrue}, want: []string{"book-1", "book-2", "book-3", "book-4"}},
		{name: "finished true", filter: models.ListFilter{Finished: models.FilterTrue}, want: []string{"book-2", "book-3"}},
		{name: "finished false", filter: models.ListFilter{Finished: models.FilterFalse}, want: []string{"book-1", "book-4"}},
		{name: "finished unrecognized returns all", filter: models.ListFilter{Finished: models.FilterAny}, want: []string{"book-1", "book-2", "book-3", "book-4"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			summaries, err := store.List(ctx, tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.want, summaryIDs(summaries))
		})
	}
}

func TestStore_GetRoundTrip(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	in := input("Bumi", 300, 42, true)
	id, err := store.Create(ctx, in)
	require.NoError(t, err)

	book, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, book.ID)
	assert.Equal(t, "Bumi", book.Name)
	assert.Equal(t, in.Year, book.Year)
	assert.Equal(t, in.Author, book.Author)
	assert.Equal(t, in.Summary, book.Summary)
	assert.Equal(t, in.Publisher, book.Publisher)
	assert.Equal(t, 300, book.PageCount)
	assert.Equal(t, 42, book.ReadPage)
	assert.True(t, book.Reading)
	assert.False(t, book.Finished)
	assert.False(t, book.InsertedAt.IsZero())
	assert.Equal(t, book.InsertedAt, book.UpdatedAt)
}

func TestStore_GetNotFound(t *testing.T) {
	store, _ := setupStore(t)

	_, err := store.Get(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Update(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, input("Before", 100, 10, true))
	require.NoError(t, err)
	before, err := store.Get(ctx, id)
	require.NoError(t, err)

	err = store.Update(ctx, id, input("After", 200, 200, false))
	require.NoError(t, err)

	after, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, after.ID)
	assert.Equal(t, before.InsertedAt, after.InsertedAt)
	assert.Equal(t, "After", after.Name)
	assert.Equal(t, "Author After", after.Author)
	assert.Equal(t, "Publisher After", after.Publisher)
	assert.Equal(t, 200, after.PageCount)
	assert.Equal(t, 200, after.ReadPage)
	assert.False(t, after.Reading)
	assert.True(t, after.Finished)
	assert.False(t, after.UpdatedAt.Before(before.UpdatedAt))
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
}

func TestStore_UpdateTimestampFollowsCommitOrder(t *testing.T) {
	db := newGatedDB()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewStore(db, zap.NewNop(), WithClock(clock.Now), WithIDGenerator(sequentialIDs()))
	ctx := context.Background()

	id, err := store.Create(ctx, input("Race", 100, 0, false))
	require.NoError(t, err)

	// The slow update starts first but commits last
	slowDone := make(chan error, 1)
	go func() { slowDone <- store.Update(ctx, id, input("Slow", 100, 20, true)) }()
	<-db.entered

	require.NoError(t, store.Update(ctx, id, input("Fast", 100, 10, true)))
	fast, err := store.Get(ctx, id)
	require.NoError(t, err)

	close(db.release)
	require.NoError(t, <-slowDone)

	slow, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Slow", slow.Name)
	assert.False(t, slow.UpdatedAt.Before(fast.UpdatedAt),
		"updatedAt moved backwards: %s after %s", slow.UpdatedAt, fast.UpdatedAt)
}

func TestStore_UpdateValidation(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, input("Keep", 100, 10, true))
	require.NoError(t, err)

	err = store.Update(ctx, id, input("Bad", 10, 11, true))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, OpUpdate, verr.Op)
	assert.Equal(t, ReasonReadPageExceedsPageCount, verr.Reason)

	book, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Keep", book.Name)
}

func TestStore_UpdateValidationBeforeExistence(t *testing.T) {
	store, _ := setupStore(t)

	err := store.Update(context.Background(), "missing", models.BookInput{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, ReasonMissingName, verr.Reason)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestStore_UpdateNotFound(t *testing.T) {
	store, _ := setupStore(t)

	err := store.Update(context.Background(), "missing", input("Valid", 10, 1, false))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"A", "B", "C"} {
		id, err := store.Create(ctx, input(name, 10, 0, false))
		require.NoError(t, err)
		ids = append(ids, id)
	}
	first, err := store.Get(ctx, ids[0])
	require.NoError(t, err)
	last, err := store.Get(ctx, ids[2])
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, ids[1]))

	summaries, err := store.List(ctx, models.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{ids[0], ids[2]}, summaryIDs(summaries))

	gotFirst, err := store.Get(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, first, gotFirst)
	gotLast, err := store.Get(ctx, ids[2])
	require.NoError(t, err)
	assert.Equal(t, last, gotLast)

	// Deleting twice fails the second time
	assert.ErrorIs(t, store.Delete(ctx, ids[1]), ErrNotFound)
}

func TestStore_Notifications(t *testing.T) {
	rec := &recordingNotifier{}
	store, _ := setupStore(t, WithNotifier(rec))
	ctx := context.Background()

	id, err := store.Create(ctx, input("Noted", 10, 0, false))
	require.NoError(t, err)
	require.NoError(t, store.Update(ctx, id, input("Noted again", 10, 10, false)))
	require.NoError(t, store.Delete(ctx, id))

	// Failed operations send nothing
	_, _ = store.Create(ctx, models.BookInput{})
	_ = store.Delete(ctx, id)

	require.Len(t, rec.events, 3)
	assert.Equal(t, notify.BookAdded, rec.events[0].Kind)
	assert.Equal(t, "Noted", rec.events[0].Book.Name)
	assert.Equal(t, notify.BookUpdated, rec.events[1].Kind)
	assert.True(t, rec.events[1].Book.Finished)
	assert.Equal(t, notify.BookDeleted, rec.events[2].Kind)
	assert.Equal(t, "Noted again", rec.events[2].Book.Name)
}

func TestStore_NotificationFailureIsNotFatal(t *testing.T) {
	rec := &recordingNotifier{err: errors.New("chat unreachable")}
	store, _ := setupStore(t, WithNotifier(rec))

	_, err := store.Create(context.Background(), input("Still saved", 1, 0, false))
	assert.NoError(t, err)
}

func TestStore_ConcurrentCreate(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := store.Create(ctx, input("Parallel", 10, 0, false))
			if err == nil {
				_ = store.Update(ctx, id, input("Parallel", 10, 10, true))
			}
		}()
	}
	wg.Wait()

	count, err := db.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, count)

	summaries, err := store.List(ctx, models.ListFilter{Finished: models.FilterTrue})
	require.NoError(t, err)
	assert.Len(t, summaries, 25)
}

func TestSeed(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, Seed(ctx, store, SampleBooks()))

	summaries, err := store.List(ctx, models.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, summaries, len(SampleBooks()))
	assert.Equal(t, "The Go Programming Language", summaries[0].Name)
}
