package book

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

//go:generate mockgen -source=ports.go -destination=mock_collection.go -package=book

// Collection defines the contract for the book document store.
// Lookups that find nothing return ErrNotFound; inserts or updates that break
// (title, author) uniqueness return ErrConflict.
type Collection interface {
	// InsertOne stores b, assigning a fresh ID, and returns the stored record.
	InsertOne(ctx context.Context, b Book) (Book, error)
	FindAll(ctx context.Context) ([]Book, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (Book, error)
	// FindByNaturalKey looks up a book by exact title and author.
	FindByNaturalKey(ctx context.Context, title, author string) (Book, error)
	// UpdateByID applies c and returns the record as it is after the update.
	UpdateByID(ctx context.Context, id primitive.ObjectID, c Changes) (Book, error)
	// DeleteByID reports whether a record was removed.
	DeleteByID(ctx context.Context, id primitive.ObjectID) (bool, error)
	Ping(ctx context.Context) error
}
