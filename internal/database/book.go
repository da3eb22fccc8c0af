package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/evolabz/wob-crawler/internal/models"
)

// ErrDuplicateSKU is returned when an insert hits the unique constraint
// on sku. The crawl treats it as a benign skip, not a failure.
var ErrDuplicateSKU = errors.New("book with this sku already exists")

const pgUniqueViolation = "23505"

// BookRow is a persisted book as read back from the books table.
type BookRow struct {
	ID              int64           `db:"id"`
	Title           string          `db:"title"`
	Author          sql.NullString  `db:"author"`
	SKU             string          `db:"sku"`
	ISBN            sql.NullString  `db:"isbn"`
	Price           sql.NullFloat64 `db:"wob_price"`
	URL             sql.NullString  `db:"wob_url"`
	Condition       sql.NullString  `db:"condition"`
	Binding         sql.NullString  `db:"binding"`
	Publisher       sql.NullString  `db:"publisher"`
	PublicationYear sql.NullString  `db:"publication_year"`
	Category        sql.NullString  `db:"category"`
	Subcategory     sql.NullString  `db:"subcategory"`
	CreatedAt       time.Time       `db:"created_at"`
}

// BookStore persists extracted records and answers the dedup gate.
type BookStore struct {
	db *DB
}

func NewBookStore(db *DB) *BookStore {
	return &BookStore{db: db}
}

// FindBySKU returns the stored book for an identifier, or nil when the
// identifier has never been ingested.
func (s *BookStore) FindBySKU(ctx context.Context, sku string) (*BookRow, error) {
	query := `
		SELECT id, title, author, sku, isbn, wob_price, wob_url,
			   condition, binding, publisher, publication_year,
			   category, subcategory, created_at
		FROM books
		WHERE sku = $1`

	row := &BookRow{}
	err := s.db.pool.QueryRow(ctx, query, sku).Scan(
		&row.ID, &row.Title, &row.Author, &row.SKU, &row.ISBN,
		&row.Price, &row.URL, &row.Condition, &row.Binding,
		&row.Publisher, &row.PublicationYear,
		&row.Category, &row.Subcategory, &row.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find book by sku: %w", err)
	}

	return row, nil
}

// Insert writes a record and returns the new row id. The record crosses
// the boundary as the flat field mapping from models.Book.Fields, so
// absent optionals arrive as explicit NULLs.
func (s *BookStore) Insert(ctx context.Context, book *models.Book) (int64, error) {
	query := `
		INSERT INTO books (
			title, author, sku, isbn, wob_price, wob_url,
			condition, binding, publisher, publication_year,
			description, image_url, category, subcategory
		) VALUES (
			@title, @author, @sku, @isbn, @wob_price, @wob_url,
			@condition, @binding, @publisher, @publication_year,
			@description, @image_url, @category, @subcategory
		)
		RETURNING id`

	var id int64
	err := s.db.pool.QueryRow(ctx, query, pgx.NamedArgs(book.Fields())).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateSKU
		}
		return 0, fmt.Errorf("failed to insert book: %w", err)
	}

	return id, nil
}

// Count returns the number of ingested books.
func (s *BookStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM books`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return count, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
