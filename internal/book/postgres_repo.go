package book

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// pgUniqueViolation is the SQLSTATE raised when books_title_author_key trips.
const pgUniqueViolation = "23505"

const bookColumns = `id, title, author, COALESCE(isbn, ''), publication_year,
	COALESCE(genre, ''), COALESCE(description, ''), created_at, updated_at`

// PostgresCollection stores books in the `books` table created by the
// migrations under db/migrations. Ids are ObjectIDs kept as 24-char hex.
type PostgresCollection struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresCollection(db *pgxpool.Pool, timeout time.Duration) *PostgresCollection {
	return &PostgresCollection{db: db, timeout: timeout}
}

func (r *PostgresCollection) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func scanBook(row pgx.Row) (Book, error) {
	var b Book
	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.ISBN, &b.PublicationYear,
		&b.Genre, &b.Description, &b.CreatedAt, &b.UpdatedAt,
	)
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return b, err
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func (r *PostgresCollection) InsertOne(ctx context.Context, b Book) (Book, error) {
	sql := `
		INSERT INTO books (id, title, author, isbn, publication_year, genre, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + bookColumns

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	out, err := scanBook(r.db.QueryRow(timeoutCtx, sql,
		primitive.NewObjectID().Hex(), b.Title, b.Author, nullIfEmpty(b.ISBN), b.PublicationYear,
		nullIfEmpty(b.Genre), nullIfEmpty(b.Description), b.CreatedAt, b.UpdatedAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return Book{}, ErrConflict
		}
		return Book{}, storeErr("insert", err)
	}
	return out, nil
}

func (r *PostgresCollection) FindAll(ctx context.Context) ([]Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, `SELECT `+bookColumns+` FROM books`)
	if err != nil {
		return nil, storeErr("find", err)
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, storeErr("scan", err)
		}
		out = append(out, b)
	}
	return out, storeErr("find", rows.Err())
}

func (r *PostgresCollection) FindByID(ctx context.Context, id primitive.ObjectID) (Book, error) {
	return r.findOne(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id.Hex())
}

func (r *PostgresCollection) FindByNaturalKey(ctx context.Context, title, author string) (Book, error) {
	return r.findOne(ctx, `SELECT `+bookColumns+` FROM books WHERE title = $1 AND author = $2 LIMIT 1`, title, author)
}

func (r *PostgresCollection) findOne(ctx context.Context, sql string, args ...any) (Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(timeoutCtx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, storeErr("find one", err)
	}
	return b, nil
}

func (r *PostgresCollection) UpdateByID(ctx context.Context, id primitive.ObjectID, c Changes) (Book, error) {
	names := make([]string, 0, len(c.Set))
	for name := range c.Set {
		names = append(names, name)
	}
	sort.Strings(names)

	clauses := []string{}
	args := []any{}
	argn := 1
	for _, name := range names {
		if !updatableColumn(name) {
			return Book{}, fmt.Errorf("unknown book field %q", name)
		}
		clauses = append(clauses, fmt.Sprintf("%s = $%d", name, argn))
		args = append(args, c.Set[name])
		argn++
	}
	for _, name := range c.Unset {
		if !updatableColumn(name) {
			return Book{}, fmt.Errorf("unknown book field %q", name)
		}
		clauses = append(clauses, name+" = NULL")
	}
	if len(clauses) == 0 {
		return r.FindByID(ctx, id)
	}

	sql := fmt.Sprintf(`UPDATE books SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(clauses, ", "), argn, bookColumns)
	args = append(args, id.Hex())

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(timeoutCtx, sql, args...))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return Book{}, ErrNotFound
		case isUniqueViolation(err):
			return Book{}, ErrConflict
		}
		return Book{}, storeErr("update", err)
	}
	return b, nil
}

func updatableColumn(name string) bool {
	switch name {
	case fieldTitle, fieldAuthor, fieldISBN, fieldPublicationYear, fieldGenre, fieldDescription, fieldUpdatedAt:
		return true
	}
	return false
}

func (r *PostgresCollection) DeleteByID(ctx context.Context, id primitive.ObjectID) (bool, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, `DELETE FROM books WHERE id = $1`, id.Hex())
	if err != nil {
		return false, storeErr("delete", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresCollection) Ping(ctx context.Context) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.Ping(timeoutCtx)
}
