package main

import (
	"context"
	"testing"

	"bookrecords/internal/book"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed_SkipsDuplicatesOnRerun(t *testing.T) {
	svc := book.NewService(book.NewMemoryCollection())
	ctx := context.Background()

	inserted, skipped, err := seed(ctx, svc, seedBooks())
	require.NoError(t, err)
	assert.Equal(t, len(seedBooks()), inserted)
	assert.Zero(t, skipped)

	inserted, skipped, err = seed(ctx, svc, seedBooks())
	require.NoError(t, err)
	assert.Zero(t, inserted)
	assert.Equal(t, len(seedBooks()), skipped)
}

func TestSeed_StopsOnValidationError(t *testing.T) {
	svc := book.NewService(book.NewMemoryCollection())

	inserted, _, err := seed(context.Background(), svc, []book.NewBook{
		{Title: "ok", Author: "a"},
		{Title: "missing author"},
	})

	var verr *book.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, 1, inserted)
}
