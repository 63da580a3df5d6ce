package authsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"librarymgmt/model"
	mailrepo "librarymgmt/repository/mail"
	userrepo "librarymgmt/repository/user"
	"librarymgmt/util/hash"
	jwtutil "librarymgmt/util/jwt"
	"librarymgmt/util/token"
)

type ErrCode string

const (
	ErrEmailTaken    ErrCode = "EMAIL_TAKEN"
	ErrUsernameTaken ErrCode = "USERNAME_TAKEN"
	ErrBadInput      ErrCode = "BAD_INPUT"
	ErrUserNotFound  ErrCode = "USER_NOT_FOUND"
	ErrBadPassword   ErrCode = "BAD_PASSWORD"
	ErrNoProfile     ErrCode = "NO_PROFILE"
	ErrInactive      ErrCode = "INACTIVE"
	ErrNotLibrarian  ErrCode = "NOT_LIBRARIAN"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts the error code, "" for uncoded errors.
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type RegisterReq struct {
	Username  string
	Email     string
	Password  string
	Mobile    string
	FirstName string
	LastName  string
	BranchID  *int64
}

type Registered struct {
	Account       *model.Account
	ActivationURL string
}

type ActivationResult struct {
	Valid   bool
	Token   string
	Account *model.Account
}

type LoginResult struct {
	Token   string
	Account *model.Account
}

type Config struct {
	JWTSecret    string
	BaseURL      string
	PlatformName string
}

type Service interface {
	Register(ctx context.Context, req RegisterReq, role model.Role, createdBy *int64) (*Registered, error)
	RegisterMemberAs(ctx context.Context, caller *model.Account, req RegisterReq) (*Registered, error)
	Activate(ctx context.Context, uid, activationToken string) (*ActivationResult, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Logout(ctx context.Context, accountID int64) error
}

const sessionTTLHours = 24

type service struct {
	ur   userrepo.Repo
	mail mailrepo.Sender
	cfg  Config
}

func New(ur userrepo.Repo, mail mailrepo.Sender, cfg Config) Service {
	return &service{ur: ur, mail: mail, cfg: cfg}
}

func (s *service) Register(ctx context.Context, req RegisterReq, role model.Role, createdBy *int64) (*Registered, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, makeErr(ErrBadInput)
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	// A branch id that does not resolve is dropped, not rejected.
	var branchID *int64
	if req.BranchID != nil {
		ok, err := s.ur.BranchExists(ctx, *req.BranchID)
		if err != nil {
			return nil, err
		}
		if ok {
			branchID = req.BranchID
		}
	}

	a := &model.Account{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashed,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Profile: &model.Profile{
			Mobile:    req.Mobile,
			BranchID:  branchID,
			Role:      role,
			CreatedBy: createdBy,
		},
	}

	username := req.Username
	if err := s.ur.CreateWithProfile(ctx, a, func(id int64) string {
		return RollNo(username, time.Now().Year(), id)
	}); err != nil {
		if derr := mapDuplicateErr(err); derr != nil {
			return nil, derr
		}
		return nil, err
	}

	activationURL := s.activationURL(a.ID)

	// Best effort: a failed relay must not undo the committed registration,
	// and the URL is returned in the response anyway.
	_ = s.mail.SendActivation(ctx, mailrepo.Activation{
		To:            a.Email,
		Username:      a.Username,
		ActivationURL: activationURL,
		PlatformName:  s.cfg.PlatformName,
	})

	return &Registered{Account: a, ActivationURL: activationURL}, nil
}

func (s *service) RegisterMemberAs(ctx context.Context, caller *model.Account, req RegisterReq) (*Registered, error) {
	if !caller.Can(model.RoleLibrarian) {
		return nil, makeErr(ErrNotLibrarian)
	}
	createdBy := caller.ID
	return s.Register(ctx, req, model.RoleMember, &createdBy)
}

func (s *service) Activate(ctx context.Context, uid, activationToken string) (*ActivationResult, error) {
	invalid := &ActivationResult{Valid: false}

	id, err := token.DecodeUID(uid)
	if err != nil {
		return invalid, nil
	}
	a, err := s.ur.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil || a.Profile == nil {
		return invalid, nil
	}
	// An already-active account fails here: the stored active flag no
	// longer matches the one the token was minted with.
	if !token.Check(s.cfg.JWTSecret, a.ID, a.IsActive, activationToken) {
		return invalid, nil
	}

	if err := s.ur.SetActive(ctx, a.ID); err != nil {
		return nil, err
	}
	a.IsActive = true

	sessionToken, err := jwtutil.Issue(s.cfg.JWTSecret, a.ID, sessionTTLHours)
	if err != nil {
		return nil, err
	}
	if err := s.ur.SetToken(ctx, a.ID, sessionToken); err != nil {
		return nil, err
	}
	a.Profile.CurrentToken = sessionToken

	return &ActivationResult{Valid: true, Token: sessionToken, Account: a}, nil
}

func (s *service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, makeErr(ErrBadInput)
	}
	a, err := s.ur.ByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, makeErr(ErrUserNotFound)
	}
	if !hash.Check(a.PasswordHash, password) {
		return nil, makeErr(ErrBadPassword)
	}
	if a.Profile == nil {
		return nil, makeErr(ErrNoProfile)
	}
	if !a.IsActive {
		return nil, makeErr(ErrInactive)
	}

	sessionToken, err := jwtutil.Issue(s.cfg.JWTSecret, a.ID, sessionTTLHours)
	if err != nil {
		return nil, err
	}
	// Compare-and-overwrite: the fresh token replaces whatever session was
	// live before, so only the newest login stays valid.
	if err := s.ur.SetToken(ctx, a.ID, sessionToken); err != nil {
		return nil, err
	}
	a.Profile.CurrentToken = sessionToken

	return &LoginResult{Token: sessionToken, Account: a}, nil
}

func (s *service) Logout(ctx context.Context, accountID int64) error {
	return s.ur.SetToken(ctx, accountID, "")
}

// RollNo synthesizes the immutable roll number: the first two letters of the
// username upper-cased, the current year, and the account id padded to five
// digits. JO + 2022 + 00001 -> "JO202200001".
func RollNo(username string, year int, id int64) string {
	prefix := []rune(strings.ToUpper(username))
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}
	return fmt.Sprintf("%s%d%05d", string(prefix), year, id)
}

func (s *service) activationURL(id int64) string {
	return fmt.Sprintf("%s/activate/%s/%s/",
		strings.TrimRight(s.cfg.BaseURL, "/"),
		token.EncodeUID(id),
		token.Make(s.cfg.JWTSecret, id, false))
}

func mapDuplicateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		cn := strings.ToLower(pgErr.ConstraintName)
		msg := strings.ToLower(pgErr.Message)

		if strings.Contains(cn, "users_email") || strings.Contains(msg, "email") {
			return makeErr(ErrEmailTaken)
		}
		if strings.Contains(cn, "users_username") || strings.Contains(msg, "username") {
			return makeErr(ErrUsernameTaken)
		}
		return makeErr(ErrBadInput)
	}
	return nil
}
