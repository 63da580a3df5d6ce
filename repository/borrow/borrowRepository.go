package borrowrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"librarymgmt/model"
)

// Repo is the borrow ledger. The tx-taking methods are the building blocks
// of the request/approve/return state transitions; the service owns the
// transaction so a partial failure rolls every row back together.
type Repo interface {
	BookForUpdate(ctx context.Context, tx *sql.Tx, bookID int64) (*model.Book, error)
	LiveByBookForUpdate(ctx context.Context, tx *sql.Tx, bookID int64) (*model.BorrowRecord, error)
	ByIDForUpdate(ctx context.Context, tx *sql.Tx, recordID int64) (*model.BorrowRecord, error)

	Insert(ctx context.Context, tx *sql.Tx, rec *model.BorrowRecord) error
	MarkIssued(ctx context.Context, tx *sql.Tx, recordID, issuerID int64, issueDate time.Time) error
	MarkReturnedAndDelete(ctx context.Context, tx *sql.Tx, recordID int64, returnDate time.Time) error
	SetBookStatus(ctx context.Context, tx *sql.Tx, bookID int64, status model.BookStatus) error
	IncDueCount(ctx context.Context, tx *sql.Tx, studentID int64) error
	DecDueCount(ctx context.Context, tx *sql.Tx, studentID int64) error

	ListPending(ctx context.Context) ([]model.PendingRequest, error)
	BookIDsBorrowedBy(ctx context.Context, studentID int64) ([]int64, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) BookForUpdate(ctx context.Context, tx *sql.Tx, bookID int64) (*model.Book, error) {
	b := &model.Book{}
	err := tx.QueryRowContext(ctx, `
		SELECT id, title, status
		FROM books
		WHERE id = $1
		FOR UPDATE`, bookID,
	).Scan(&b.ID, &b.Title, &b.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

const recordCols = `id, student_id, book_id, application_date, issue_date, return_date, is_issued, issuer_id`

func scanRecord(row interface{ Scan(...any) error }) (*model.BorrowRecord, error) {
	rec := &model.BorrowRecord{}
	var (
		appDate, issueDate, returnDate sql.NullTime
		issuerID                       sql.NullInt64
	)
	err := row.Scan(&rec.ID, &rec.StudentID, &rec.BookID,
		&appDate, &issueDate, &returnDate, &rec.IsIssued, &issuerID)
	if err != nil {
		return nil, err
	}
	if appDate.Valid {
		rec.ApplicationDate = &appDate.Time
	}
	if issueDate.Valid {
		rec.IssueDate = &issueDate.Time
	}
	if returnDate.Valid {
		rec.ReturnDate = &returnDate.Time
	}
	if issuerID.Valid {
		rec.IssuerID = &issuerID.Int64
	}
	return rec, nil
}

func (r *repo) LiveByBookForUpdate(ctx context.Context, tx *sql.Tx, bookID int64) (*model.BorrowRecord, error) {
	rec, err := scanRecord(tx.QueryRowContext(ctx, `
		SELECT `+recordCols+`
		FROM book_borrowers
		WHERE book_id = $1
		FOR UPDATE`, bookID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

func (r *repo) ByIDForUpdate(ctx context.Context, tx *sql.Tx, recordID int64) (*model.BorrowRecord, error) {
	rec, err := scanRecord(tx.QueryRowContext(ctx, `
		SELECT `+recordCols+`
		FROM book_borrowers
		WHERE id = $1
		FOR UPDATE`, recordID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, rec *model.BorrowRecord) error {
	return tx.QueryRowContext(ctx, `
		INSERT INTO book_borrowers (student_id, book_id, application_date, is_issued)
		VALUES ($1, $2, $3, FALSE)
		RETURNING id`,
		rec.StudentID, rec.BookID, rec.ApplicationDate,
	).Scan(&rec.ID)
}

func (r *repo) MarkIssued(ctx context.Context, tx *sql.Tx, recordID, issuerID int64, issueDate time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE book_borrowers
		SET is_issued = TRUE,
		    issuer_id = $2,
		    issue_date = $3
		WHERE id = $1`,
		recordID, issuerID, issueDate)
	return err
}

func (r *repo) MarkReturnedAndDelete(ctx context.Context, tx *sql.Tx, recordID int64, returnDate time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE book_borrowers
		SET is_issued = FALSE,
		    return_date = $2
		WHERE id = $1`,
		recordID, returnDate)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`DELETE FROM book_borrowers WHERE id = $1`, recordID)
	return err
}

func (r *repo) SetBookStatus(ctx context.Context, tx *sql.Tx, bookID int64, status model.BookStatus) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE books SET status = $2 WHERE id = $1`, bookID, status)
	return err
}

func (r *repo) IncDueCount(ctx context.Context, tx *sql.Tx, studentID int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE user_profiles
		SET total_books_due = total_books_due + 1
		WHERE account_id = $1`, studentID)
	return err
}

func (r *repo) DecDueCount(ctx context.Context, tx *sql.Tx, studentID int64) error {
	// Clamped at zero so the counter can never go negative.
	_, err := tx.ExecContext(ctx, `
		UPDATE user_profiles
		SET total_books_due = GREATEST(total_books_due - 1, 0)
		WHERE account_id = $1`, studentID)
	return err
}

func (r *repo) ListPending(ctx context.Context) ([]model.PendingRequest, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT bb.id, bb.book_id, b.title, bb.student_id, u.username, bb.application_date
		FROM book_borrowers bb
		JOIN books b ON b.id = bb.book_id
		JOIN users u ON u.id = bb.student_id
		WHERE bb.issuer_id IS NULL AND NOT bb.is_issued
		ORDER BY bb.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PendingRequest
	for rows.Next() {
		var p model.PendingRequest
		var appDate sql.NullTime
		if err := rows.Scan(&p.RecordID, &p.BookID, &p.BookTitle,
			&p.StudentID, &p.StudentUsername, &appDate); err != nil {
			return nil, err
		}
		if appDate.Valid {
			p.ApplicationDate = &appDate.Time
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repo) BookIDsBorrowedBy(ctx context.Context, studentID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT book_id
		FROM book_borrowers
		WHERE student_id = $1
		ORDER BY book_id`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
