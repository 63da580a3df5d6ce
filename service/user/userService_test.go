package usersvc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"librarymgmt/model"
	userrepo "librarymgmt/repository/user"
)

type mockRepo struct {
	byIDFn          func(ctx context.Context, id int64) (*model.Account, error)
	updateProfileFn func(ctx context.Context, accountID int64, upd userrepo.ProfileUpdate) error
	setRollNoFn     func(ctx context.Context, accountID int64, rollNo string) error
	deleteFn        func(ctx context.Context, accountID int64) error
	branchExistsFn  func(ctx context.Context, branchID int64) (bool, error)
	listFn          func(ctx context.Context) ([]model.Account, error)
}

var _ userrepo.Repo = (*mockRepo)(nil)

func (m *mockRepo) CreateWithProfile(ctx context.Context, a *model.Account, rollNo func(id int64) string) error {
	return nil
}

func (m *mockRepo) ByID(ctx context.Context, id int64) (*model.Account, error) {
	if m.byIDFn == nil {
		return nil, nil
	}
	return m.byIDFn(ctx, id)
}

func (m *mockRepo) ByUsername(ctx context.Context, username string) (*model.Account, error) {
	return nil, nil
}

func (m *mockRepo) List(ctx context.Context) ([]model.Account, error) {
	if m.listFn == nil {
		return nil, nil
	}
	return m.listFn(ctx)
}

func (m *mockRepo) UpdateProfile(ctx context.Context, accountID int64, upd userrepo.ProfileUpdate) error {
	if m.updateProfileFn == nil {
		return nil
	}
	return m.updateProfileFn(ctx, accountID, upd)
}

func (m *mockRepo) SetRollNo(ctx context.Context, accountID int64, rollNo string) error {
	if m.setRollNoFn == nil {
		return nil
	}
	return m.setRollNoFn(ctx, accountID, rollNo)
}

func (m *mockRepo) SetActive(ctx context.Context, accountID int64) error { return nil }

func (m *mockRepo) SetToken(ctx context.Context, accountID int64, token string) error { return nil }

func (m *mockRepo) Delete(ctx context.Context, accountID int64) error {
	if m.deleteFn == nil {
		return nil
	}
	return m.deleteFn(ctx, accountID)
}

func (m *mockRepo) BranchExists(ctx context.Context, branchID int64) (bool, error) {
	if m.branchExistsFn == nil {
		return false, nil
	}
	return m.branchExistsFn(ctx, branchID)
}

func librarian(id int64) *model.Account {
	return &model.Account{
		ID:       id,
		Username: "lib",
		IsActive: true,
		Profile:  &model.Profile{AccountID: id, Role: model.RoleLibrarian, RollNo: "LI202200001"},
	}
}

func member(id int64) *model.Account {
	return &model.Account{
		ID:       id,
		Username: "mem",
		IsActive: true,
		Profile:  &model.Profile{AccountID: id, Role: model.RoleMember, RollNo: "ME202200002"},
	}
}

// --- tests ---

func TestUpdate_SelfByDefault(t *testing.T) {
	ctx := context.Background()
	caller := member(7)
	var updatedID int64
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.Account, error) {
			require.Equal(t, int64(7), id)
			return caller, nil
		},
		updateProfileFn: func(ctx context.Context, accountID int64, upd userrepo.ProfileUpdate) error {
			updatedID = accountID
			return nil
		},
	}
	svc := New(m)

	mobile := "+6281234567890"
	_, err := svc.Update(ctx, caller, 0, userrepo.ProfileUpdate{Mobile: &mobile})
	require.NoError(t, err)
	require.Equal(t, int64(7), updatedID)
}

func TestUpdate_CrossUserNeedsLibrarian(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockRepo{})

	_, err := svc.Update(ctx, member(7), 8, userrepo.ProfileUpdate{})
	require.Error(t, err)
	require.Equal(t, ErrNotAuthorized, Code(err))
}

func TestUpdate_TargetNotFound(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.Account, error) {
			return nil, nil
		},
	}
	svc := New(m)

	_, err := svc.Update(ctx, librarian(1), 8, userrepo.ProfileUpdate{})
	require.Error(t, err)
	require.Equal(t, ErrTargetNotFound, Code(err))
}

func TestUpdate_TargetInactive(t *testing.T) {
	ctx := context.Background()
	target := member(8)
	target.IsActive = false
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.Account, error) {
			return target, nil
		},
	}
	svc := New(m)

	_, err := svc.Update(ctx, librarian(1), 8, userrepo.ProfileUpdate{})
	require.Error(t, err)
	require.Equal(t, ErrTargetInactive, Code(err))
}

func TestUpdate_MissingBranchDropped(t *testing.T) {
	ctx := context.Background()
	caller := member(7)
	branch := int64(99)
	var applied userrepo.ProfileUpdate
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.Account, error) {
			return caller, nil
		},
		branchExistsFn: func(ctx context.Context, branchID int64) (bool, error) {
			return false, nil
		},
		updateProfileFn: func(ctx context.Context, accountID int64, upd userrepo.ProfileUpdate) error {
			applied = upd
			return nil
		},
	}
	svc := New(m)

	_, err := svc.Update(ctx, caller, 0, userrepo.ProfileUpdate{BranchID: &branch})
	require.NoError(t, err)
	require.Nil(t, applied.BranchID)
}

func TestUpdate_BackfillsRollNoOnce(t *testing.T) {
	ctx := context.Background()
	caller := member(7)
	caller.Profile.RollNo = ""
	var backfilled string
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.Account, error) {
			return caller, nil
		},
		setRollNoFn: func(ctx context.Context, accountID int64, rollNo string) error {
			backfilled = rollNo
			return nil
		},
	}
	svc := New(m)

	_, err := svc.Update(ctx, caller, 0, userrepo.ProfileUpdate{})
	require.NoError(t, err)
	require.NotEmpty(t, backfilled)
	require.Contains(t, backfilled, "ME")
}

func TestUpdate_KeepsExistingRollNo(t *testing.T) {
	ctx := context.Background()
	caller := member(7)
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.Account, error) {
			return caller, nil
		},
		setRollNoFn: func(ctx context.Context, accountID int64, rollNo string) error {
			t.Fatal("roll number must not be reassigned")
			return nil
		},
	}
	svc := New(m)

	_, err := svc.Update(ctx, caller, 0, userrepo.ProfileUpdate{})
	require.NoError(t, err)
}

func TestDelete_LibrarianSelf(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockRepo{})

	err := svc.Delete(ctx, librarian(1), 1)
	require.Error(t, err)
	require.Equal(t, ErrDeleteSelf, Code(err))
}

func TestDelete_MemberCrossUser(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockRepo{})

	err := svc.Delete(ctx, member(7), 8)
	require.Error(t, err)
	require.Equal(t, ErrNotAuthorized, Code(err))
}

func TestDelete_MemberSelfRefused(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		deleteFn: func(ctx context.Context, accountID int64) error {
			t.Fatal("members remove themselves through DeleteSelf only")
			return nil
		},
	}
	svc := New(m)

	err := svc.Delete(ctx, member(7), 7)
	require.Error(t, err)
	require.Equal(t, ErrNotAuthorized, Code(err))
}

func TestDelete_LibrarianDeletesOther(t *testing.T) {
	ctx := context.Background()
	var deleted int64
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.Account, error) {
			return member(8), nil
		},
		deleteFn: func(ctx context.Context, accountID int64) error {
			deleted = accountID
			return nil
		},
	}
	svc := New(m)

	require.NoError(t, svc.Delete(ctx, librarian(1), 8))
	require.Equal(t, int64(8), deleted)
}

func TestDelete_TargetNotFound(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.Account, error) {
			return nil, nil
		},
	}
	svc := New(m)

	err := svc.Delete(ctx, librarian(1), 8)
	require.Error(t, err)
	require.Equal(t, ErrTargetNotFound, Code(err))
}

func TestDeleteSelf_Member(t *testing.T) {
	ctx := context.Background()
	var deleted int64
	m := &mockRepo{
		deleteFn: func(ctx context.Context, accountID int64) error {
			deleted = accountID
			return nil
		},
	}
	svc := New(m)

	require.NoError(t, svc.DeleteSelf(ctx, member(7)))
	require.Equal(t, int64(7), deleted)
}

func TestDeleteSelf_LibrarianRefused(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockRepo{})

	err := svc.DeleteSelf(ctx, librarian(1))
	require.Error(t, err)
	require.Equal(t, ErrDeleteSelf, Code(err))
}

func TestList_MemberRefused(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockRepo{})

	_, err := svc.List(ctx, member(7))
	require.Error(t, err)
	require.Equal(t, ErrNotAuthorized, Code(err))
}

func TestDetail_Librarian(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.Account, error) {
			return member(8), nil
		},
	}
	svc := New(m)

	a, err := svc.Detail(ctx, librarian(1), 8)
	require.NoError(t, err)
	require.Equal(t, int64(8), a.ID)
}
