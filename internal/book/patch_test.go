package book

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatch_UnmarshalDistinguishesAbsentAndNull(t *testing.T) {
	var p Patch
	require.NoError(t, json.Unmarshal([]byte(`{"description":"X","genre":null}`), &p))

	assert.Equal(t, Some("X"), p.Description)
	assert.Equal(t, Null[string](), p.Genre)
	assert.False(t, p.Title.Set)
	assert.False(t, p.PublicationYear.Set)
	assert.False(t, p.IsEmpty())
}

func TestPatch_EmptyObject(t *testing.T) {
	var p Patch
	require.NoError(t, json.Unmarshal([]byte(`{}`), &p))
	assert.True(t, p.IsEmpty())
}

func TestPatch_WrongType(t *testing.T) {
	var p Patch
	assert.Error(t, json.Unmarshal([]byte(`{"publication_year":"1949"}`), &p))
}

func TestPatch_Validate(t *testing.T) {
	tests := []struct {
		name   string
		patch  Patch
		fields []string
	}{
		{name: "absent required fields are fine", patch: Patch{Description: Some("x")}},
		{name: "null title", patch: Patch{Title: Null[string]()}, fields: []string{"title"}},
		{name: "blank author", patch: Patch{Author: Some("  ")}, fields: []string{"author"}},
		{name: "null optional fields clear", patch: Patch{ISBN: Null[string](), PublicationYear: Null[int]()}},
		{name: "year out of range", patch: Patch{PublicationYear: Some(10000)}, fields: []string{"publication_year"}},
		{name: "empty optional text clears", patch: Patch{Genre: Some("")}},
		{name: "multi-byte title within limit", patch: Patch{Title: Some(strings.Repeat("é", 500))}},
		{name: "title over limit", patch: Patch{Title: Some(strings.Repeat("é", 501))}, fields: []string{"title"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, fe := range tt.patch.validate() {
				got = append(got, fe.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

func TestPatch_Changes(t *testing.T) {
	p := Patch{
		Title:           Some("  Animal Farm "),
		ISBN:            Null[string](),
		PublicationYear: Some(1945),
		Genre:           Some(""),
		Description:     Some("fable"),
	}

	c := p.changes()

	assert.Equal(t, map[string]any{
		fieldTitle:           "Animal Farm",
		fieldPublicationYear: 1945,
		fieldDescription:     "fable",
	}, c.Set)
	assert.ElementsMatch(t, []string{fieldISBN, fieldGenre}, c.Unset)
}

func TestChanges_Apply(t *testing.T) {
	year := 1949
	b := Book{Title: "1984", Author: "George Orwell", ISBN: "123", PublicationYear: &year, Genre: "dystopia"}

	Changes{
		Set:   map[string]any{fieldDescription: "updated", fieldPublicationYear: 1950},
		Unset: []string{fieldISBN, fieldGenre},
	}.apply(&b)

	assert.Equal(t, "updated", b.Description)
	assert.Equal(t, 1950, *b.PublicationYear)
	assert.Equal(t, 1949, year, "apply must not write through the old pointer")
	assert.Empty(t, b.ISBN)
	assert.Empty(t, b.Genre)
	assert.Equal(t, "1984", b.Title)
}

func TestPatch_ValidateMessagesMatchCreate(t *testing.T) {
	tests := []struct {
		name    string
		patch   Patch
		message string
	}{
		{name: "null title", patch: Patch{Title: Null[string]()}, message: "title is required"},
		{name: "blank author", patch: Patch{Author: Some(" ")}, message: "author is required"},
		{name: "long isbn", patch: Patch{ISBN: Some(strings.Repeat("9", 33))}, message: "isbn must be at most 32 characters"},
		{name: "negative year", patch: Patch{PublicationYear: Some(-1)}, message: "publication_year must be at least 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.patch.validate()
			require.Len(t, errs, 1)
			assert.Equal(t, tt.message, errs[0].Message)
		})
	}
}
