package book

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryCollection keeps books in-process. Records are returned in
// insertion order.
type MemoryCollection struct {
	mu    sync.RWMutex
	books map[primitive.ObjectID]Book
	order []primitive.ObjectID
}

// NewMemoryCollection initializes an empty in-memory collection.
func NewMemoryCollection() *MemoryCollection {
	return &MemoryCollection{books: make(map[primitive.ObjectID]Book)}
}

// InsertOne assigns a new ObjectID and stores b. The natural key is checked
// under the write lock, so concurrent inserts of the same title and author
// admit exactly one.
func (m *MemoryCollection) InsertOne(_ context.Context, b Book) (Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.findByNaturalKey(b.Title, b.Author, primitive.NilObjectID); ok {
		return Book{}, ErrConflict
	}

	oid := primitive.NewObjectID()
	b = cloneBook(b)
	b.ID = oid.Hex()
	m.books[oid] = b
	m.order = append(m.order, oid)
	return cloneBook(b), nil
}

func (m *MemoryCollection) FindAll(_ context.Context) ([]Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Book, 0, len(m.order))
	for _, oid := range m.order {
		if b, ok := m.books[oid]; ok {
			out = append(out, cloneBook(b))
		}
	}
	return out, nil
}

func (m *MemoryCollection) FindByID(_ context.Context, id primitive.ObjectID) (Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.books[id]
	if !ok {
		return Book{}, ErrNotFound
	}
	return cloneBook(b), nil
}

func (m *MemoryCollection) FindByNaturalKey(_ context.Context, title, author string) (Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.findByNaturalKey(title, author, primitive.NilObjectID)
	if !ok {
		return Book{}, ErrNotFound
	}
	return cloneBook(b), nil
}

func (m *MemoryCollection) UpdateByID(_ context.Context, id primitive.ObjectID, c Changes) (Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.books[id]
	if !ok {
		return Book{}, ErrNotFound
	}
	c.apply(&b)
	if _, clash := m.findByNaturalKey(b.Title, b.Author, id); clash {
		return Book{}, ErrConflict
	}
	m.books[id] = b
	return cloneBook(b), nil
}

func (m *MemoryCollection) DeleteByID(_ context.Context, id primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.books[id]; !ok {
		return false, nil
	}
	delete(m.books, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (m *MemoryCollection) Ping(context.Context) error { return nil }

// findByNaturalKey must be called with m.mu held. skip excludes one record,
// letting updates ignore the book being modified.
func (m *MemoryCollection) findByNaturalKey(title, author string, skip primitive.ObjectID) (Book, bool) {
	for oid, b := range m.books {
		if oid != skip && b.Title == title && b.Author == author {
			return b, true
		}
	}
	return Book{}, false
}

// cloneBook copies the pointer fields so callers cannot mutate stored state.
func cloneBook(b Book) Book {
	if b.PublicationYear != nil {
		year := *b.PublicationYear
		b.PublicationYear = &year
	}
	return b
}
