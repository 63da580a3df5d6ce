package bookrepo

import (
	"context"
	"database/sql"
	"errors"

	"librarymgmt/model"
)

// BookUpdate carries a partial edit; nil fields keep their stored value.
type BookUpdate struct {
	Title       *string
	Subtitle    *string
	Summary     *string
	ISBN        *string
	AuthorID    *int64
	PublisherID *int64
	PublishYear *string
}

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	Update(ctx context.Context, id int64, upd BookUpdate) error
	Delete(ctx context.Context, id int64) error
	ByID(ctx context.Context, id int64) (*model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	ListByIDs(ctx context.Context, ids []int64) ([]model.Book, error)

	AuthorExists(ctx context.Context, id int64) (bool, error)
	PublisherExists(ctx context.Context, id int64) (bool, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Create(ctx context.Context, b *model.Book) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO books (title, subtitle, summary, isbn, author_id, publisher_id, publish_year, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		b.Title, b.Subtitle, b.Summary, b.ISBN, b.AuthorID, b.PublisherID,
		b.PublishYear, b.Status, b.CreatedBy,
	).Scan(&b.ID)
}

func (r *repo) Update(ctx context.Context, id int64, upd BookUpdate) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE books
		SET title        = COALESCE($2, title),
		    subtitle     = COALESCE($3, subtitle),
		    summary      = COALESCE($4, summary),
		    isbn         = COALESCE($5, isbn),
		    author_id    = COALESCE($6, author_id),
		    publisher_id = COALESCE($7, publisher_id),
		    publish_year = COALESCE($8, publish_year)
		WHERE id = $1`,
		id, upd.Title, upd.Subtitle, upd.Summary, upd.ISBN,
		upd.AuthorID, upd.PublisherID, upd.PublishYear)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

const bookCols = `id, title, subtitle, summary, isbn, author_id, publisher_id, publish_year, status, created_by`

func scanBook(row interface{ Scan(...any) error }) (*model.Book, error) {
	b := &model.Book{}
	var (
		subtitle, summary, isbn, year    sql.NullString
		authorID, publisherID, createdBy sql.NullInt64
	)
	err := row.Scan(&b.ID, &b.Title, &subtitle, &summary, &isbn,
		&authorID, &publisherID, &year, &b.Status, &createdBy)
	if err != nil {
		return nil, err
	}
	b.Subtitle = subtitle.String
	b.Summary = summary.String
	b.ISBN = isbn.String
	b.PublishYear = year.String
	if authorID.Valid {
		b.AuthorID = &authorID.Int64
	}
	if publisherID.Valid {
		b.PublisherID = &publisherID.Int64
	}
	if createdBy.Valid {
		b.CreatedBy = &createdBy.Int64
	}
	return b, nil
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Book, error) {
	b, err := scanBook(r.db.QueryRowContext(ctx,
		`SELECT `+bookCols+` FROM books WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

func (r *repo) List(ctx context.Context) ([]model.Book, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookCols+` FROM books ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *repo) ListByIDs(ctx context.Context, ids []int64) ([]model.Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookCols+` FROM books WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows *sql.Rows) ([]model.Book, error) {
	var out []model.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *repo) AuthorExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM book_authors WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *repo) PublisherExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM book_publishers WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}
