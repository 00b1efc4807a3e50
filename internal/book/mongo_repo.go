package book

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// naturalKeyIndex is the unique index backing duplicate detection.
const naturalKeyIndex = "title_author_unique"

type bookDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Title           string             `bson:"title"`
	Author          string             `bson:"author"`
	ISBN            string             `bson:"isbn,omitempty"`
	PublicationYear *int               `bson:"publication_year,omitempty"`
	Genre           string             `bson:"genre,omitempty"`
	Description     string             `bson:"description,omitempty"`
	CreatedAt       time.Time          `bson:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at"`
}

func (d bookDoc) toBook() Book {
	return Book{
		ID:              d.ID.Hex(),
		Title:           d.Title,
		Author:          d.Author,
		ISBN:            d.ISBN,
		PublicationYear: d.PublicationYear,
		Genre:           d.Genre,
		Description:     d.Description,
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
	}
}

// MongoCollection stores books in a MongoDB collection.
type MongoCollection struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewMongoCollection(coll *mongo.Collection, timeout time.Duration) *MongoCollection {
	return &MongoCollection{coll: coll, timeout: timeout}
}

func (r *MongoCollection) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// EnsureIndexes creates the unique (title, author) index if it is missing.
func (r *MongoCollection) EnsureIndexes(ctx context.Context) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.coll.Indexes().CreateOne(timeoutCtx, mongo.IndexModel{
		Keys:    bson.D{{Key: fieldTitle, Value: 1}, {Key: fieldAuthor, Value: 1}},
		Options: options.Index().SetUnique(true).SetName(naturalKeyIndex),
	})
	return storeErr("ensure indexes", err)
}

func (r *MongoCollection) InsertOne(ctx context.Context, b Book) (Book, error) {
	doc := bookDoc{
		ID:              primitive.NewObjectID(),
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		PublicationYear: b.PublicationYear,
		Genre:           b.Genre,
		Description:     b.Description,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if _, err := r.coll.InsertOne(timeoutCtx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return Book{}, ErrConflict
		}
		return Book{}, storeErr("insert", err)
	}
	return doc.toBook(), nil
}

func (r *MongoCollection) FindAll(ctx context.Context) ([]Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	cur, err := r.coll.Find(timeoutCtx, bson.D{})
	if err != nil {
		return nil, storeErr("find", err)
	}
	defer cur.Close(timeoutCtx)

	out := []Book{}
	for cur.Next(timeoutCtx) {
		var doc bookDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, storeErr("decode", err)
		}
		out = append(out, doc.toBook())
	}
	return out, storeErr("find", cur.Err())
}

func (r *MongoCollection) FindByID(ctx context.Context, id primitive.ObjectID) (Book, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (r *MongoCollection) FindByNaturalKey(ctx context.Context, title, author string) (Book, error) {
	return r.findOne(ctx, bson.D{{Key: fieldTitle, Value: title}, {Key: fieldAuthor, Value: author}})
}

func (r *MongoCollection) findOne(ctx context.Context, filter bson.D) (Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var doc bookDoc
	if err := r.coll.FindOne(timeoutCtx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Book{}, ErrNotFound
		}
		return Book{}, storeErr("find one", err)
	}
	return doc.toBook(), nil
}

func (r *MongoCollection) UpdateByID(ctx context.Context, id primitive.ObjectID, c Changes) (Book, error) {
	update := bson.D{}
	if len(c.Set) > 0 {
		set := bson.D{}
		for name, v := range c.Set {
			set = append(set, bson.E{Key: name, Value: v})
		}
		update = append(update, bson.E{Key: "$set", Value: set})
	}
	if len(c.Unset) > 0 {
		unset := bson.D{}
		for _, name := range c.Unset {
			unset = append(unset, bson.E{Key: name, Value: ""})
		}
		update = append(update, bson.E{Key: "$unset", Value: unset})
	}
	if len(update) == 0 {
		return r.FindByID(ctx, id)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc bookDoc
	err := r.coll.FindOneAndUpdate(timeoutCtx, bson.D{{Key: "_id", Value: id}}, update, opts).Decode(&doc)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return Book{}, ErrNotFound
		case mongo.IsDuplicateKeyError(err):
			return Book{}, ErrConflict
		}
		return Book{}, storeErr("update", err)
	}
	return doc.toBook(), nil
}

func (r *MongoCollection) DeleteByID(ctx context.Context, id primitive.ObjectID) (bool, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	res, err := r.coll.DeleteOne(timeoutCtx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return false, storeErr("delete", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoCollection) Ping(ctx context.Context) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.coll.Database().Client().Ping(timeoutCtx, readpref.Primary())
}
