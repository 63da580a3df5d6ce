package booksvc

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"librarymgmt/model"
	bookrepo "librarymgmt/repository/book"
)

type ErrCode string

const (
	ErrBookNotFound ErrCode = "BOOK_NOT_FOUND"
	ErrNotLibrarian ErrCode = "NOT_LIBRARIAN"
	ErrBadInput     ErrCode = "BAD_INPUT"
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

type AddReq struct {
	Title       string
	Subtitle    string
	Summary     string
	ISBN        string
	AuthorID    *int64
	PublisherID *int64
	PublishYear string
}

type Service interface {
	Add(ctx context.Context, caller *model.Account, req AddReq) (*model.Book, error)
	Update(ctx context.Context, caller *model.Account, id int64, upd bookrepo.BookUpdate) (*model.Book, error)
	Delete(ctx context.Context, caller *model.Account, id int64) error
	Detail(ctx context.Context, caller *model.Account, id int64) (*model.Book, error)
	List(ctx context.Context, caller *model.Account) ([]model.Book, error)
}

type service struct{ br bookrepo.Repo }

func New(br bookrepo.Repo) Service { return &service{br: br} }

func (s *service) Add(ctx context.Context, caller *model.Account, req AddReq) (*model.Book, error) {
	if !caller.Can(model.RoleLibrarian) {
		return nil, makeErr(ErrNotLibrarian)
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, makeErr(ErrBadInput)
	}

	// Author/publisher ids that do not resolve are dropped, not rejected.
	authorID, err := s.resolve(ctx, req.AuthorID, s.br.AuthorExists)
	if err != nil {
		return nil, err
	}
	publisherID, err := s.resolve(ctx, req.PublisherID, s.br.PublisherExists)
	if err != nil {
		return nil, err
	}

	creator := caller.ID
	b := &model.Book{
		Title:       req.Title,
		Subtitle:    req.Subtitle,
		Summary:     req.Summary,
		ISBN:        req.ISBN,
		AuthorID:    authorID,
		PublisherID: publisherID,
		PublishYear: req.PublishYear,
		Status:      model.BookAvailable,
		CreatedBy:   &creator,
	}
	if err := s.br.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) resolve(ctx context.Context, id *int64, exists func(context.Context, int64) (bool, error)) (*int64, error) {
	if id == nil {
		return nil, nil
	}
	ok, err := exists(ctx, *id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return id, nil
}

func (s *service) Update(ctx context.Context, caller *model.Account, id int64, upd bookrepo.BookUpdate) (*model.Book, error) {
	if !caller.Can(model.RoleLibrarian) {
		return nil, makeErr(ErrNotLibrarian)
	}
	var err error
	if upd.AuthorID, err = s.resolve(ctx, upd.AuthorID, s.br.AuthorExists); err != nil {
		return nil, err
	}
	if upd.PublisherID, err = s.resolve(ctx, upd.PublisherID, s.br.PublisherExists); err != nil {
		return nil, err
	}

	if err := s.br.Update(ctx, id, upd); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrBookNotFound)
		}
		return nil, err
	}
	return s.br.ByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, caller *model.Account, id int64) error {
	if !caller.Can(model.RoleLibrarian) {
		return makeErr(ErrNotLibrarian)
	}
	if err := s.br.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrBookNotFound)
		}
		return err
	}
	return nil
}

func (s *service) Detail(ctx context.Context, caller *model.Account, id int64) (*model.Book, error) {
	b, err := s.br.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, makeErr(ErrBookNotFound)
	}
	return b, nil
}

func (s *service) List(ctx context.Context, caller *model.Account) ([]model.Book, error) {
	return s.br.List(ctx)
}
