package authsvc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"librarymgmt/model"
	mailrepo "librarymgmt/repository/mail"
	userrepo "librarymgmt/repository/user"
	"librarymgmt/util/hash"
	"librarymgmt/util/token"
)

type mockRepo struct {
	createFn       func(ctx context.Context, a *model.Account, rollNo func(id int64) string) error
	byIDFn         func(ctx context.Context, id int64) (*model.Account, error)
	byUsernameFn   func(ctx context.Context, username string) (*model.Account, error)
	setActiveFn    func(ctx context.Context, accountID int64) error
	setTokenFn     func(ctx context.Context, accountID int64, token string) error
	branchExistsFn func(ctx context.Context, branchID int64) (bool, error)
}

var _ userrepo.Repo = (*mockRepo)(nil)

func (m *mockRepo) CreateWithProfile(ctx context.Context, a *model.Account, rollNo func(id int64) string) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, a, rollNo)
}

func (m *mockRepo) ByID(ctx context.Context, id int64) (*model.Account, error) {
	if m.byIDFn == nil {
		return nil, nil
	}
	return m.byIDFn(ctx, id)
}

func (m *mockRepo) ByUsername(ctx context.Context, username string) (*model.Account, error) {
	if m.byUsernameFn == nil {
		return nil, nil
	}
	return m.byUsernameFn(ctx, username)
}

func (m *mockRepo) List(ctx context.Context) ([]model.Account, error) { return nil, nil }

func (m *mockRepo) UpdateProfile(ctx context.Context, accountID int64, upd userrepo.ProfileUpdate) error {
	return nil
}

func (m *mockRepo) SetRollNo(ctx context.Context, accountID int64, rollNo string) error { return nil }

func (m *mockRepo) SetActive(ctx context.Context, accountID int64) error {
	if m.setActiveFn == nil {
		return nil
	}
	return m.setActiveFn(ctx, accountID)
}

func (m *mockRepo) SetToken(ctx context.Context, accountID int64, token string) error {
	if m.setTokenFn == nil {
		return nil
	}
	return m.setTokenFn(ctx, accountID, token)
}

func (m *mockRepo) Delete(ctx context.Context, accountID int64) error { return nil }

func (m *mockRepo) BranchExists(ctx context.Context, branchID int64) (bool, error) {
	if m.branchExistsFn == nil {
		return false, nil
	}
	return m.branchExistsFn(ctx, branchID)
}

type mockMail struct {
	sent []mailrepo.Activation
	err  error
}

func (m *mockMail) SendActivation(ctx context.Context, a mailrepo.Activation) error {
	m.sent = append(m.sent, a)
	return m.err
}

func testCfg() Config {
	return Config{
		JWTSecret:    "test-secret",
		BaseURL:      "http://localhost:8080",
		PlatformName: "Library Management System",
	}
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()

	h, err := hash.HashPassword(plain)
	require.NoError(t, err)
	return h
}

// --- tests ---

func TestRegister_Success(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		createFn: func(ctx context.Context, a *model.Account, rollNo func(id int64) string) error {
			a.ID = 42
			a.Profile.AccountID = 42
			a.Profile.RollNo = rollNo(42)
			return nil
		},
	}
	mail := &mockMail{}
	svc := New(m, mail, testCfg())

	reg, err := svc.Register(ctx, RegisterReq{
		Username:  "halim",
		Email:     "user@example.com",
		Password:  "supersecret",
		FirstName: "Halim",
		LastName:  "Iskandar",
	}, model.RoleMember, nil)
	require.NoError(t, err)
	require.NotNil(t, reg)
	require.Equal(t, int64(42), reg.Account.ID)
	require.False(t, reg.Account.IsActive)
	require.True(t, reg.Account.Profile.Role.Has(model.RoleMember))
	require.False(t, reg.Account.Profile.Role.Has(model.RoleLibrarian))
	require.NotEmpty(t, reg.Account.PasswordHash)
	require.NotEqual(t, "supersecret", reg.Account.PasswordHash)
	require.Contains(t, reg.ActivationURL, "http://localhost:8080/activate/")

	require.Len(t, mail.sent, 1)
	require.Equal(t, "user@example.com", mail.sent[0].To)
	require.Equal(t, reg.ActivationURL, mail.sent[0].ActivationURL)
}

func TestRegister_BadInput(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockRepo{}, &mockMail{}, testCfg())

	_, err := svc.Register(ctx, RegisterReq{
		Username: " ",
		Email:    "x@example.com",
		Password: "123",
	}, model.RoleMember, nil)
	require.Error(t, err)
	require.Equal(t, ErrBadInput, Code(err))
}

func TestRegister_MissingBranchDropped(t *testing.T) {
	ctx := context.Background()
	branch := int64(99)
	m := &mockRepo{
		branchExistsFn: func(ctx context.Context, branchID int64) (bool, error) {
			return false, nil
		},
		createFn: func(ctx context.Context, a *model.Account, rollNo func(id int64) string) error {
			a.ID = 1
			return nil
		},
	}
	svc := New(m, &mockMail{}, testCfg())

	reg, err := svc.Register(ctx, RegisterReq{
		Username: "halim",
		Email:    "user@example.com",
		Password: "supersecret",
		BranchID: &branch,
	}, model.RoleMember, nil)
	require.NoError(t, err)
	require.Nil(t, reg.Account.Profile.BranchID)
}

func TestRegister_MailFailureIgnored(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		createFn: func(ctx context.Context, a *model.Account, rollNo func(id int64) string) error {
			a.ID = 5
			return nil
		},
	}
	svc := New(m, &mockMail{err: errors.New("smtp down")}, testCfg())

	reg, err := svc.Register(ctx, RegisterReq{
		Username: "halim",
		Email:    "user@example.com",
		Password: "supersecret",
	}, model.RoleMember, nil)
	require.NoError(t, err)
	require.NotEmpty(t, reg.ActivationURL)
}

func TestRegisterMemberAs_NotLibrarian(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockRepo{}, &mockMail{}, testCfg())

	caller := &model.Account{ID: 3, Profile: &model.Profile{Role: model.RoleMember}}
	_, err := svc.RegisterMemberAs(ctx, caller, RegisterReq{
		Username: "new",
		Email:    "new@example.com",
		Password: "supersecret",
	})
	require.Error(t, err)
	require.Equal(t, ErrNotLibrarian, Code(err))
}

func TestRegisterMemberAs_TracksCreator(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		createFn: func(ctx context.Context, a *model.Account, rollNo func(id int64) string) error {
			a.ID = 10
			return nil
		},
	}
	svc := New(m, &mockMail{}, testCfg())

	caller := &model.Account{ID: 3, Profile: &model.Profile{Role: model.RoleLibrarian}}
	reg, err := svc.RegisterMemberAs(ctx, caller, RegisterReq{
		Username: "new",
		Email:    "new@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)
	require.NotNil(t, reg.Account.Profile.CreatedBy)
	require.Equal(t, int64(3), *reg.Account.Profile.CreatedBy)
}

func TestRollNo(t *testing.T) {
	require.Equal(t, "JO202200001", RollNo("john", 2022, 1))
	require.Equal(t, "AB202312345", RollNo("ab", 2023, 12345))
	require.Equal(t, "X20240007", RollNo("x", 2024, 7))
	// Multibyte usernames must not split a rune.
	require.Equal(t, "ÉC202200003", RollNo("éclair", 2022, 3))
}

func TestActivate_Success(t *testing.T) {
	ctx := context.Background()
	cfg := testCfg()
	stored := &model.Account{
		ID:       7,
		Username: "halim",
		IsActive: false,
		Profile:  &model.Profile{AccountID: 7, Role: model.RoleMember},
	}
	var activated bool
	var savedToken string
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.Account, error) {
			require.Equal(t, int64(7), id)
			return stored, nil
		},
		setActiveFn: func(ctx context.Context, accountID int64) error {
			activated = true
			return nil
		},
		setTokenFn: func(ctx context.Context, accountID int64, token string) error {
			savedToken = token
			return nil
		},
	}
	svc := New(m, &mockMail{}, cfg)

	uid := token.EncodeUID(7)
	tok := token.Make(cfg.JWTSecret, 7, false)

	res, err := svc.Activate(ctx, uid, tok)
	require.NoError(t, err)
	require.True(t, res.Valid)
	require.True(t, activated)
	require.NotEmpty(t, res.Token)
	require.Equal(t, res.Token, savedToken)
	require.True(t, res.Account.IsActive)
}

func TestActivate_SecondUseInvalid(t *testing.T) {
	ctx := context.Background()
	cfg := testCfg()
	// Already active: the token minted against the inactive state no longer
	// verifies.
	stored := &model.Account{
		ID:       7,
		IsActive: true,
		Profile:  &model.Profile{AccountID: 7, Role: model.RoleMember},
	}
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.Account, error) {
			return stored, nil
		},
		setActiveFn: func(ctx context.Context, accountID int64) error {
			t.Fatal("must not touch state on an invalid token")
			return nil
		},
	}
	svc := New(m, &mockMail{}, cfg)

	res, err := svc.Activate(ctx, token.EncodeUID(7), token.Make(cfg.JWTSecret, 7, false))
	require.NoError(t, err)
	require.False(t, res.Valid)
}

func TestActivate_GarbageUID(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockRepo{}, &mockMail{}, testCfg())

	res, err := svc.Activate(ctx, "!!not-base64!!", "whatever")
	require.NoError(t, err)
	require.False(t, res.Valid)
}

func TestActivate_UnknownUser(t *testing.T) {
	ctx := context.Background()
	cfg := testCfg()
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.Account, error) {
			return nil, nil
		},
	}
	svc := New(m, &mockMail{}, cfg)

	res, err := svc.Activate(ctx, token.EncodeUID(99), token.Make(cfg.JWTSecret, 99, false))
	require.NoError(t, err)
	require.False(t, res.Valid)
}

func TestLogin_Success(t *testing.T) {
	ctx := context.Background()
	pw := "supersecret"
	hashed := mustHash(t, pw)

	var savedToken string
	m := &mockRepo{
		byUsernameFn: func(ctx context.Context, username string) (*model.Account, error) {
			return &model.Account{
				ID:           7,
				Username:     "halim",
				Email:        "user@example.com",
				PasswordHash: hashed,
				IsActive:     true,
				Profile:      &model.Profile{AccountID: 7, Role: model.RoleMember, CurrentToken: "stale"},
			}, nil
		},
		setTokenFn: func(ctx context.Context, accountID int64, token string) error {
			savedToken = token
			return nil
		},
	}
	svc := New(m, &mockMail{}, testCfg())

	res, err := svc.Login(ctx, "halim", pw)
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	// The fresh session replaces the stale one.
	require.Equal(t, res.Token, savedToken)
	require.Equal(t, res.Token, res.Account.Profile.CurrentToken)
}

func TestLogin_UserNotFound(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockRepo{}, &mockMail{}, testCfg())

	_, err := svc.Login(ctx, "missing", "whatever")
	require.Error(t, err)
	require.Equal(t, ErrUserNotFound, Code(err))
}

func TestLogin_WrongPassword(t *testing.T) {
	ctx := context.Background()
	hashed := mustHash(t, "correct-password")
	m := &mockRepo{
		byUsernameFn: func(ctx context.Context, username string) (*model.Account, error) {
			return &model.Account{
				ID:           7,
				PasswordHash: hashed,
				IsActive:     true,
				Profile:      &model.Profile{AccountID: 7},
			}, nil
		},
	}
	svc := New(m, &mockMail{}, testCfg())

	_, err := svc.Login(ctx, "halim", "wrong-password")
	require.Error(t, err)
	require.Equal(t, ErrBadPassword, Code(err))
}

func TestLogin_NoProfile(t *testing.T) {
	ctx := context.Background()
	pw := "supersecret"
	hashed := mustHash(t, pw)
	m := &mockRepo{
		byUsernameFn: func(ctx context.Context, username string) (*model.Account, error) {
			return &model.Account{ID: 7, PasswordHash: hashed, IsActive: true}, nil
		},
	}
	svc := New(m, &mockMail{}, testCfg())

	_, err := svc.Login(ctx, "halim", pw)
	require.Error(t, err)
	require.Equal(t, ErrNoProfile, Code(err))
}

func TestLogin_Inactive(t *testing.T) {
	ctx := context.Background()
	pw := "supersecret"
	hashed := mustHash(t, pw)
	m := &mockRepo{
		byUsernameFn: func(ctx context.Context, username string) (*model.Account, error) {
			return &model.Account{
				ID:           7,
				PasswordHash: hashed,
				IsActive:     false,
				Profile:      &model.Profile{AccountID: 7},
			}, nil
		},
	}
	svc := New(m, &mockMail{}, testCfg())

	_, err := svc.Login(ctx, "halim", pw)
	require.Error(t, err)
	require.Equal(t, ErrInactive, Code(err))
}

func TestLogout_ClearsToken(t *testing.T) {
	ctx := context.Background()
	var cleared *string
	m := &mockRepo{
		setTokenFn: func(ctx context.Context, accountID int64, token string) error {
			cleared = &token
			return nil
		},
	}
	svc := New(m, &mockMail{}, testCfg())

	require.NoError(t, svc.Logout(ctx, 7))
	require.NotNil(t, cleared)
	require.Empty(t, *cleared)
}

func TestCodeExtractor(t *testing.T) {
	require.Equal(t, ErrEmailTaken, Code(makeErr(ErrEmailTaken)))
	require.Equal(t, ErrCode(""), Code(errors.New("plain")))
}
