package book

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when no book has the requested id.
	ErrNotFound = errors.New("book not found")
	// ErrConflict is returned when a book with the same title and author exists.
	ErrConflict = errors.New("book already exists")
	// ErrInvalidID is returned when an id is not a well-formed ObjectID.
	ErrInvalidID = errors.New("invalid book id")
)

// Book represents a stored book record.
type Book struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn,omitempty"`
	PublicationYear *int      `json:"publication_year,omitempty"`
	Genre           string    `json:"genre,omitempty"`
	Description     string    `json:"description,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewBook is the payload accepted by Create.
type NewBook struct {
	Title           string `json:"title" validate:"required,notblank,max=500"`
	Author          string `json:"author" validate:"required,notblank,max=300"`
	ISBN            string `json:"isbn,omitempty" validate:"max=32"`
	PublicationYear *int   `json:"publication_year,omitempty" validate:"omitempty,gte=0,lte=9999"`
	Genre           string `json:"genre,omitempty" validate:"max=100"`
	Description     string `json:"description,omitempty" validate:"max=5000"`
}

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a payload fails validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid input"
	}
	if len(e.Fields) == 1 {
		return e.Fields[0].Message
	}
	return fmt.Sprintf("%s (and %d more)", e.Fields[0].Message, len(e.Fields)-1)
}

// StoreError wraps a failure reported by the underlying collection.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return "store " + e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
