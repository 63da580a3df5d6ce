package userrepo

import (
	"context"
	"database/sql"
	"errors"

	"librarymgmt/model"
)

// ProfileUpdate carries a partial profile edit. Nil fields keep their
// stored value.
type ProfileUpdate struct {
	Mobile    *string
	FirstName *string
	LastName  *string
	BranchID  *int64
	Librarian *bool
	Member    *bool
}

type Repo interface {
	// CreateWithProfile inserts the account and its profile in one
	// transaction. rollNo synthesizes the roll number once the generated
	// account id is known.
	CreateWithProfile(ctx context.Context, a *model.Account, rollNo func(id int64) string) error

	ByID(ctx context.Context, id int64) (*model.Account, error)
	ByUsername(ctx context.Context, username string) (*model.Account, error)
	List(ctx context.Context) ([]model.Account, error)

	UpdateProfile(ctx context.Context, accountID int64, upd ProfileUpdate) error
	SetRollNo(ctx context.Context, accountID int64, rollNo string) error
	SetActive(ctx context.Context, accountID int64) error
	SetToken(ctx context.Context, accountID int64, token string) error

	// Delete removes the account; the profile and any borrow records go
	// with it through the FK cascades.
	Delete(ctx context.Context, accountID int64) error

	BranchExists(ctx context.Context, branchID int64) (bool, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) CreateWithProfile(ctx context.Context, a *model.Account, rollNo func(id int64) string) (err error) {
	if a.Profile == nil {
		return errors.New("account without profile")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash, first_name, last_name, is_active)
		VALUES ($1, $2, $3, $4, $5, FALSE)
		RETURNING id, created_at`,
		a.Username, a.Email, a.PasswordHash, a.FirstName, a.LastName,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return err
	}

	a.Profile.AccountID = a.ID
	a.Profile.RollNo = rollNo(a.ID)
	librarian, member := a.Profile.Role.Flags()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_profiles
			(account_id, mobile, branch_id, roll_no, total_books_due, current_token, is_librarian, is_member, created_by)
		VALUES ($1, $2, $3, $4, 0, '', $5, $6, $7)`,
		a.ID, a.Profile.Mobile, a.Profile.BranchID, a.Profile.RollNo,
		librarian, member, a.Profile.CreatedBy,
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

const accountCols = `
	u.id, u.username, u.email, u.password_hash, u.first_name, u.last_name, u.is_active, u.created_at,
	p.account_id, p.mobile, p.branch_id, p.roll_no, p.total_books_due, p.current_token,
	p.is_librarian, p.is_member, p.created_by`

func scanAccount(row interface{ Scan(...any) error }) (*model.Account, error) {
	a := &model.Account{}
	var (
		pid       sql.NullInt64
		mobile    sql.NullString
		branchID  sql.NullInt64
		rollNo    sql.NullString
		due       sql.NullInt64
		tok       sql.NullString
		librarian sql.NullBool
		member    sql.NullBool
		createdBy sql.NullInt64
	)
	err := row.Scan(
		&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.FirstName, &a.LastName, &a.IsActive, &a.CreatedAt,
		&pid, &mobile, &branchID, &rollNo, &due, &tok, &librarian, &member, &createdBy,
	)
	if err != nil {
		return nil, err
	}
	if pid.Valid {
		p := &model.Profile{
			AccountID:     pid.Int64,
			Mobile:        mobile.String,
			RollNo:        rollNo.String,
			TotalBooksDue: due.Int64,
			CurrentToken:  tok.String,
			Role:          model.RoleFromFlags(librarian.Bool, member.Bool),
		}
		if branchID.Valid {
			p.BranchID = &branchID.Int64
		}
		if createdBy.Valid {
			p.CreatedBy = &createdBy.Int64
		}
		a.Profile = p
	}
	return a, nil
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, `
		SELECT `+accountCols+`
		FROM users u
		LEFT JOIN user_profiles p ON p.account_id = u.id
		WHERE u.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (r *repo) ByUsername(ctx context.Context, username string) (*model.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, `
		SELECT `+accountCols+`
		FROM users u
		LEFT JOIN user_profiles p ON p.account_id = u.id
		WHERE lower(u.username) = lower($1)`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (r *repo) List(ctx context.Context) ([]model.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+accountCols+`
		FROM users u
		LEFT JOIN user_profiles p ON p.account_id = u.id
		ORDER BY u.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *repo) UpdateProfile(ctx context.Context, accountID int64, upd ProfileUpdate) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		UPDATE users
		SET first_name = COALESCE($2, first_name),
		    last_name  = COALESCE($3, last_name)
		WHERE id = $1`,
		accountID, upd.FirstName, upd.LastName)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE user_profiles
		SET mobile       = COALESCE($2, mobile),
		    branch_id    = COALESCE($3, branch_id),
		    is_librarian = COALESCE($4, is_librarian),
		    is_member    = COALESCE($5, is_member)
		WHERE account_id = $1`,
		accountID, upd.Mobile, upd.BranchID, upd.Librarian, upd.Member)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (r *repo) SetRollNo(ctx context.Context, accountID int64, rollNo string) error {
	// Assigned once; an already-set roll number is never rewritten.
	_, err := r.db.ExecContext(ctx, `
		UPDATE user_profiles
		SET roll_no = $2
		WHERE account_id = $1 AND (roll_no IS NULL OR roll_no = '')`,
		accountID, rollNo)
	return err
}

func (r *repo) SetActive(ctx context.Context, accountID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_active = TRUE WHERE id = $1`, accountID)
	return err
}

func (r *repo) SetToken(ctx context.Context, accountID int64, token string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE user_profiles SET current_token = $2 WHERE account_id = $1`,
		accountID, token)
	return err
}

func (r *repo) Delete(ctx context.Context, accountID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, accountID)
	return err
}

func (r *repo) BranchExists(ctx context.Context, branchID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM branches WHERE id = $1)`, branchID).Scan(&exists)
	return exists, err
}
