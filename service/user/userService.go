package usersvc

import (
	"context"
	"errors"
	"time"

	"librarymgmt/model"
	userrepo "librarymgmt/repository/user"
	authsvc "librarymgmt/service/auth"
)

type ErrCode string

const (
	ErrTargetNotFound ErrCode = "TARGET_NOT_FOUND"
	ErrTargetInactive ErrCode = "TARGET_INACTIVE"
	ErrNotAuthorized  ErrCode = "NOT_AUTHORIZED"
	ErrDeleteSelf     ErrCode = "DELETE_SELF"
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
	// Update edits a profile. targetID 0 means self; editing anyone else
	// requires the librarian capability.
	Update(ctx context.Context, caller *model.Account, targetID int64, upd userrepo.ProfileUpdate) (*model.Account, error)

	// Delete removes the target account. Librarian-only; members remove
	// themselves through DeleteSelf. A librarian must not delete the
	// account they are currently logged in with.
	Delete(ctx context.Context, caller *model.Account, targetID int64) error

	// DeleteSelf removes the caller's own account; refused for accounts
	// holding the librarian capability.
	DeleteSelf(ctx context.Context, caller *model.Account) error

	List(ctx context.Context, caller *model.Account) ([]model.Account, error)
	Detail(ctx context.Context, caller *model.Account, targetID int64) (*model.Account, error)
}

type service struct{ ur userrepo.Repo }

func New(ur userrepo.Repo) Service { return &service{ur: ur} }

func (s *service) Update(ctx context.Context, caller *model.Account, targetID int64, upd userrepo.ProfileUpdate) (*model.Account, error) {
	if targetID == 0 {
		targetID = caller.ID
	}
	if targetID != caller.ID && !caller.Can(model.RoleLibrarian) {
		return nil, makeErr(ErrNotAuthorized)
	}

	target, err := s.ur.ByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target == nil || target.Profile == nil {
		return nil, makeErr(ErrTargetNotFound)
	}
	if !target.IsActive {
		return nil, makeErr(ErrTargetInactive)
	}

	// A branch id that does not resolve is dropped, not rejected.
	if upd.BranchID != nil {
		ok, err := s.ur.BranchExists(ctx, *upd.BranchID)
		if err != nil {
			return nil, err
		}
		if !ok {
			upd.BranchID = nil
		}
	}

	if err := s.ur.UpdateProfile(ctx, targetID, upd); err != nil {
		return nil, err
	}

	// Roll numbers are assigned once; backfill only if it was never set.
	if target.Profile.RollNo == "" {
		rollNo := authsvc.RollNo(target.Username, time.Now().Year(), target.ID)
		if err := s.ur.SetRollNo(ctx, targetID, rollNo); err != nil {
			return nil, err
		}
	}

	return s.ur.ByID(ctx, targetID)
}

func (s *service) Delete(ctx context.Context, caller *model.Account, targetID int64) error {
	if !caller.Can(model.RoleLibrarian) {
		return makeErr(ErrNotAuthorized)
	}
	if targetID == caller.ID {
		return makeErr(ErrDeleteSelf)
	}

	target, err := s.ur.ByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return makeErr(ErrTargetNotFound)
	}
	return s.ur.Delete(ctx, targetID)
}

func (s *service) DeleteSelf(ctx context.Context, caller *model.Account) error {
	if caller.Can(model.RoleLibrarian) {
		return makeErr(ErrDeleteSelf)
	}
	return s.ur.Delete(ctx, caller.ID)
}

func (s *service) List(ctx context.Context, caller *model.Account) ([]model.Account, error) {
	if !caller.Can(model.RoleLibrarian) {
		return nil, makeErr(ErrNotAuthorized)
	}
	return s.ur.List(ctx)
}

func (s *service) Detail(ctx context.Context, caller *model.Account, targetID int64) (*model.Account, error) {
	if !caller.Can(model.RoleLibrarian) {
		return nil, makeErr(ErrNotAuthorized)
	}
	target, err := s.ur.ByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, makeErr(ErrTargetNotFound)
	}
	if !target.IsActive {
		return nil, makeErr(ErrTargetInactive)
	}
	return target, nil
}
