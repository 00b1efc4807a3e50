package book

import (
	"context"
	"errors"
	"strings"
	"time"

	"bookrecords/internal/platform/validate"
)

// Service provides book-related business logic on top of a Collection.
type Service struct {
	coll Collection
	now  func() time.Time
}

// NewService creates a new book service.
func NewService(coll Collection) *Service {
	return &Service{coll: coll, now: time.Now}
}

// timestamp returns the current time at the precision every backend keeps.
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// Create stores a new book unless one with the same title and author exists.
//
// The lookup and the insert are separate store calls. Collections enforce
// (title, author) uniqueness themselves, so a concurrent create that slips
// past the lookup still fails with ErrConflict.
func (s *Service) Create(ctx context.Context, in NewBook) (Book, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	if errs := validate.Struct(in); errs != nil {
		return Book{}, newValidationError(errs)
	}

	_, err := s.coll.FindByNaturalKey(ctx, in.Title, in.Author)
	switch {
	case err == nil:
		return Book{}, ErrConflict
	case !errors.Is(err, ErrNotFound):
		return Book{}, err
	}

	now := s.timestamp()
	return s.coll.InsertOne(ctx, Book{
		Title:           in.Title,
		Author:          in.Author,
		ISBN:            in.ISBN,
		PublicationYear: in.PublicationYear,
		Genre:           in.Genre,
		Description:     in.Description,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
}

// List returns every book in the collection's natural order.
func (s *Service) List(ctx context.Context) ([]Book, error) {
	books, err := s.coll.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []Book{}
	}
	return books, nil
}

// Get returns a book by its id.
func (s *Service) Get(ctx context.Context, id string) (Book, error) {
	oid, err := ParseID(id)
	if err != nil {
		return Book{}, err
	}
	return s.coll.FindByID(ctx, oid)
}

// Update applies the fields present in p and returns the updated book.
// An empty patch returns the stored book untouched.
func (s *Service) Update(ctx context.Context, id string, p Patch) (Book, error) {
	oid, err := ParseID(id)
	if err != nil {
		return Book{}, err
	}
	if errs := p.validate(); errs != nil {
		return Book{}, newValidationError(errs)
	}
	if p.IsEmpty() {
		return s.coll.FindByID(ctx, oid)
	}

	c := p.changes()
	c.Set[fieldUpdatedAt] = s.timestamp()
	return s.coll.UpdateByID(ctx, oid, c)
}

// Delete permanently removes a book.
func (s *Service) Delete(ctx context.Context, id string) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	deleted, err := s.coll.DeleteByID(ctx, oid)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// Ping reports whether the underlying store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.coll.Ping(ctx)
}

func newValidationError(errs []validate.FieldError) *ValidationError {
	fields := make([]FieldError, len(errs))
	for i, e := range errs {
		fields[i] = FieldError{Field: e.Field, Message: e.Message}
	}
	return &ValidationError{Fields: fields}
}
