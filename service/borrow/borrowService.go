package borrowsvc

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"librarymgmt/model"
	bookrepo "librarymgmt/repository/book"
	borrowrepo "librarymgmt/repository/borrow"
)

type ErrCode string

const (
	ErrBookNotFound   ErrCode = "BOOK_NOT_FOUND"
	ErrRecordNotFound ErrCode = "RECORD_NOT_FOUND"
	ErrNotLibrarian   ErrCode = "NOT_LIBRARIAN"

	// The four rejection flavours for a request against a book with a
	// live record: {issued, requested} x {same caller, different caller}.
	ErrIssuedToYou      ErrCode = "ISSUED_TO_YOU"
	ErrIssuedToOther    ErrCode = "ISSUED_TO_OTHER"
	ErrRequestedByYou   ErrCode = "REQUESTED_BY_YOU"
	ErrRequestedByOther ErrCode = "REQUESTED_BY_OTHER"

	ErrAlreadyIssued ErrCode = "ALREADY_ISSUED"
	ErrNotBorrowed   ErrCode = "NOT_BORROWED"
	ErrNotOwner      ErrCode = "NOT_OWNER"
	ErrNotIssuedYet  ErrCode = "NOT_ISSUED_YET"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Service interface {
	// Request opens a borrow request for the caller. A book with any live
	// record, whoever holds it, is rejected with one of the four coded
	// reasons above.
	Request(ctx context.Context, caller *model.Account, bookID int64) (*model.BorrowRecord, error)

	// Approve issues a requested record: issuer, issue date, book status
	// and the student's due-count all move in one transaction.
	Approve(ctx context.Context, caller *model.Account, recordID int64) error

	// Return closes an issued record held by the caller: the book goes
	// back to AVAILABLE, the due-count drops and the record is deleted.
	Return(ctx context.Context, caller *model.Account, bookID int64) error

	ListPending(ctx context.Context, caller *model.Account) ([]model.PendingRequest, error)
	MyBorrowedBooks(ctx context.Context, caller *model.Account) ([]model.Book, error)
}

type service struct {
	db *sql.DB
	r  borrowrepo.Repo
	br bookrepo.Repo
}

func New(db *sql.DB, r borrowrepo.Repo, br bookrepo.Repo) Service {
	return &service{db: db, r: r, br: br}
}

// serializable keeps the check-then-act sequences atomic under concurrent
// requests; the unique index on book_borrowers(book_id) backs it up.
var serializable = &sql.TxOptions{Isolation: sql.LevelSerializable}

func (s *service) Request(ctx context.Context, caller *model.Account, bookID int64) (rec *model.BorrowRecord, err error) {
	tx, err := s.db.BeginTx(ctx, serializable)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	book, err := s.r.BookForUpdate(ctx, tx, bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, makeErr(ErrBookNotFound)
	}

	existing, err := s.r.LiveByBookForUpdate(ctx, tx, bookID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, rejectExisting(existing, caller.ID)
	}

	today := time.Now()
	rec = &model.BorrowRecord{
		StudentID:       caller.ID,
		BookID:          bookID,
		ApplicationDate: &today,
	}
	if err = s.r.Insert(ctx, tx, rec); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return rec, nil
}

// rejectExisting picks the rejection reason for a request against a book
// that already has a live record.
func rejectExisting(rec *model.BorrowRecord, callerID int64) error {
	same := rec.StudentID == callerID
	switch {
	case rec.IsIssued && same:
		return makeErr(ErrIssuedToYou)
	case rec.IsIssued:
		return makeErr(ErrIssuedToOther)
	case same:
		return makeErr(ErrRequestedByYou)
	default:
		return makeErr(ErrRequestedByOther)
	}
}

func (s *service) Approve(ctx context.Context, caller *model.Account, recordID int64) (err error) {
	if !caller.Can(model.RoleLibrarian) {
		return makeErr(ErrNotLibrarian)
	}

	tx, err := s.db.BeginTx(ctx, serializable)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rec, err := s.r.ByIDForUpdate(ctx, tx, recordID)
	if err != nil {
		return err
	}
	if rec == nil {
		return makeErr(ErrRecordNotFound)
	}
	if rec.IsIssued {
		return makeErr(ErrAlreadyIssued)
	}

	today := time.Now()
	if err = s.r.MarkIssued(ctx, tx, rec.ID, caller.ID, today); err != nil {
		return err
	}
	if err = s.r.SetBookStatus(ctx, tx, rec.BookID, model.BookBorrowed); err != nil {
		return err
	}
	if err = s.r.IncDueCount(ctx, tx, rec.StudentID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) Return(ctx context.Context, caller *model.Account, bookID int64) (err error) {
	tx, err := s.db.BeginTx(ctx, serializable)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	book, err := s.r.BookForUpdate(ctx, tx, bookID)
	if err != nil {
		return err
	}
	if book == nil {
		return makeErr(ErrBookNotFound)
	}

	rec, err := s.r.LiveByBookForUpdate(ctx, tx, bookID)
	if err != nil {
		return err
	}
	if rec == nil {
		return makeErr(ErrNotBorrowed)
	}
	if rec.StudentID != caller.ID {
		return makeErr(ErrNotOwner)
	}
	if !rec.IsIssued {
		return makeErr(ErrNotIssuedYet)
	}

	today := time.Now()
	if err = s.r.MarkReturnedAndDelete(ctx, tx, rec.ID, today); err != nil {
		return err
	}
	if err = s.r.SetBookStatus(ctx, tx, bookID, model.BookAvailable); err != nil {
		return err
	}
	if err = s.r.DecDueCount(ctx, tx, rec.StudentID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) ListPending(ctx context.Context, caller *model.Account) ([]model.PendingRequest, error) {
	if !caller.Can(model.RoleLibrarian) {
		return nil, makeErr(ErrNotLibrarian)
	}
	return s.r.ListPending(ctx)
}

// MyBorrowedBooks lists every book the caller has a record for, requested
// or issued.
func (s *service) MyBorrowedBooks(ctx context.Context, caller *model.Account) ([]model.Book, error) {
	ids, err := s.r.BookIDsBorrowedBy(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []model.Book{}, nil
	}
	return s.br.ListByIDs(ctx, ids)
}
