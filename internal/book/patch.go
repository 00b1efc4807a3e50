package book

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"bookrecords/internal/platform/validate"
)

// Optional is a JSON field that distinguishes "absent" from "null".
// Set is true whenever the key appeared in the payload; Null is true when its
// value was the JSON literal null.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns an Optional carrying v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// Null returns an Optional explicitly set to null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// Patch is a sparse update. Fields that were not supplied are left untouched.
type Patch struct {
	Title           Optional[string] `json:"title"`
	Author          Optional[string] `json:"author"`
	ISBN            Optional[string] `json:"isbn"`
	PublicationYear Optional[int]    `json:"publication_year"`
	Genre           Optional[string] `json:"genre"`
	Description     Optional[string] `json:"description"`
}

// IsEmpty reports whether the patch carries no fields at all.
func (p Patch) IsEmpty() bool {
	return !p.Title.Set && !p.Author.Set && !p.ISBN.Set &&
		!p.PublicationYear.Set && !p.Genre.Set && !p.Description.Set
}

// Changes is the normalized form of a Patch handed to a Collection.
// Set holds column/field name to new value; Unset lists fields to clear.
type Changes struct {
	Set   map[string]any
	Unset []string
}

// Field names shared by every backend.
const (
	fieldTitle           = "title"
	fieldAuthor          = "author"
	fieldISBN            = "isbn"
	fieldPublicationYear = "publication_year"
	fieldGenre           = "genre"
	fieldDescription     = "description"
	fieldUpdatedAt       = "updated_at"
)

// Rules applied to present patch values. They match the tags on NewBook.
const (
	titleRule           = "notblank,max=500"
	authorRule          = "notblank,max=300"
	isbnRule            = "max=32"
	publicationYearRule = "gte=0,lte=9999"
	genreRule           = "max=100"
	descriptionRule     = "max=5000"
)

// validate checks the patch and returns field errors for anything that
// would leave the record invalid. Null and empty optional values clear the
// field and are not checked.
func (p Patch) validate() []validate.FieldError {
	var errs []validate.FieldError
	required := func(name string, o Optional[string], rule string) {
		if !o.Set {
			return
		}
		if o.Null {
			errs = append(errs, validate.FieldError{Field: name, Message: name + " is required"})
			return
		}
		errs = append(errs, validate.Var(name, strings.TrimSpace(o.Value), rule)...)
	}
	optional := func(name string, o Optional[string], rule string) {
		if o.Set && !o.Null && o.Value != "" {
			errs = append(errs, validate.Var(name, o.Value, rule)...)
		}
	}

	required(fieldTitle, p.Title, titleRule)
	required(fieldAuthor, p.Author, authorRule)
	optional(fieldISBN, p.ISBN, isbnRule)
	if y := p.PublicationYear; y.Set && !y.Null {
		errs = append(errs, validate.Var(fieldPublicationYear, y.Value, publicationYearRule)...)
	}
	optional(fieldGenre, p.Genre, genreRule)
	optional(fieldDescription, p.Description, descriptionRule)
	return errs
}

// changes converts the patch into backend-neutral set/unset lists.
// Empty strings on optional text fields clear the field.
func (p Patch) changes() Changes {
	c := Changes{Set: map[string]any{}}
	if p.Title.Set {
		c.Set[fieldTitle] = strings.TrimSpace(p.Title.Value)
	}
	if p.Author.Set {
		c.Set[fieldAuthor] = strings.TrimSpace(p.Author.Value)
	}
	text := func(name string, o Optional[string]) {
		if !o.Set {
			return
		}
		if o.Null || o.Value == "" {
			c.Unset = append(c.Unset, name)
			return
		}
		c.Set[name] = o.Value
	}
	text(fieldISBN, p.ISBN)
	if p.PublicationYear.Set {
		if p.PublicationYear.Null {
			c.Unset = append(c.Unset, fieldPublicationYear)
		} else {
			c.Set[fieldPublicationYear] = p.PublicationYear.Value
		}
	}
	text(fieldGenre, p.Genre)
	text(fieldDescription, p.Description)
	return c
}

// apply mutates b in place according to c. Used by the in-memory collection.
func (c Changes) apply(b *Book) {
	for name, v := range c.Set {
		switch name {
		case fieldTitle:
			b.Title = v.(string)
		case fieldAuthor:
			b.Author = v.(string)
		case fieldISBN:
			b.ISBN = v.(string)
		case fieldPublicationYear:
			year := v.(int)
			b.PublicationYear = &year
		case fieldGenre:
			b.Genre = v.(string)
		case fieldDescription:
			b.Description = v.(string)
		case fieldUpdatedAt:
			b.UpdatedAt = v.(time.Time)
		}
	}
	for _, name := range c.Unset {
		switch name {
		case fieldISBN:
			b.ISBN = ""
		case fieldPublicationYear:
			b.PublicationYear = nil
		case fieldGenre:
			b.Genre = ""
		case fieldDescription:
			b.Description = ""
		}
	}
}
