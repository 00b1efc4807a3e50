package book

import (
	"context"
	"testing"
	"time"

	"bookrecords/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// runCollectionContract exercises the behaviour every Collection must share.
// newColl must return an empty collection.
func runCollectionContract(t *testing.T, newColl func(t *testing.T) Collection) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	orwell := func(title string) Book {
		return Book{
			Title:           title,
			Author:          "George Orwell",
			PublicationYear: testutil.IntPtr(1949),
			Genre:           "dystopia",
			CreatedAt:       now,
			UpdatedAt:       now,
		}
	}

	t.Run("insert assigns distinct ids", func(t *testing.T) {
		coll := newColl(t)
		a, err := coll.InsertOne(ctx, orwell("1984"))
		require.NoError(t, err)
		b, err := coll.InsertOne(ctx, orwell("Animal Farm"))
		require.NoError(t, err)

		_, err = ParseID(a.ID)
		assert.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("find by id round trip", func(t *testing.T) {
		coll := newColl(t)
		created, err := coll.InsertOne(ctx, orwell("1984"))
		require.NoError(t, err)

		oid, _ := ParseID(created.ID)
		got, err := coll.FindByID(ctx, oid)
		require.NoError(t, err)
		assert.Equal(t, created, got)

		_, err = coll.FindByID(ctx, primitive.NewObjectID())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("natural key", func(t *testing.T) {
		coll := newColl(t)
		created, err := coll.InsertOne(ctx, orwell("1984"))
		require.NoError(t, err)

		got, err := coll.FindByNaturalKey(ctx, "1984", "George Orwell")
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)

		_, err = coll.FindByNaturalKey(ctx, "1984", "Someone Else")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = coll.InsertOne(ctx, orwell("1984"))
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("update sets and unsets", func(t *testing.T) {
		coll := newColl(t)
		created, err := coll.InsertOne(ctx, orwell("1984"))
		require.NoError(t, err)
		oid, _ := ParseID(created.ID)

		later := now.Add(time.Minute)
		got, err := coll.UpdateByID(ctx, oid, Changes{
			Set:   map[string]any{fieldDescription: "updated", fieldUpdatedAt: later},
			Unset: []string{fieldGenre, fieldPublicationYear},
		})
		require.NoError(t, err)
		assert.Equal(t, "updated", got.Description)
		assert.Empty(t, got.Genre)
		assert.Nil(t, got.PublicationYear)
		assert.Equal(t, created.Title, got.Title)
		assert.True(t, later.Equal(got.UpdatedAt))
		assert.True(t, created.CreatedAt.Equal(got.CreatedAt))

		stored, err := coll.FindByID(ctx, oid)
		require.NoError(t, err)
		assert.Equal(t, got, stored)

		_, err = coll.UpdateByID(ctx, primitive.NewObjectID(), Changes{Set: map[string]any{fieldGenre: "x"}})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update onto existing natural key conflicts", func(t *testing.T) {
		coll := newColl(t)
		_, err := coll.InsertOne(ctx, orwell("1984"))
		require.NoError(t, err)
		other, err := coll.InsertOne(ctx, orwell("Animal Farm"))
		require.NoError(t, err)
		oid, _ := ParseID(other.ID)

		_, err = coll.UpdateByID(ctx, oid, Changes{Set: map[string]any{fieldTitle: "1984"}})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("delete", func(t *testing.T) {
		coll := newColl(t)
		created, err := coll.InsertOne(ctx, orwell("1984"))
		require.NoError(t, err)
		oid, _ := ParseID(created.ID)

		deleted, err := coll.DeleteByID(ctx, oid)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = coll.DeleteByID(ctx, oid)
		require.NoError(t, err)
		assert.False(t, deleted)

		_, err = coll.FindByID(ctx, oid)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("find all", func(t *testing.T) {
		coll := newColl(t)
		books, err := coll.FindAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, books)

		for _, title := range []string{"1984", "Animal Farm", "Homage to Catalonia"} {
			_, err := coll.InsertOne(ctx, orwell(title))
			require.NoError(t, err)
		}
		books, err = coll.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, books, 3)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, newColl(t).Ping(ctx))
	})
}
