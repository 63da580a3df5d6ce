package model

import "time"

type Account struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`

	// Profile is nil for an account that never completed registration.
	// Such an identity is rejected by the auth layer before dispatch.
	Profile *Profile `json:"profile,omitempty"`
}

type Profile struct {
	AccountID     int64  `json:"account_id"`
	Mobile        string `json:"mobile,omitempty"`
	BranchID      *int64 `json:"branch_id,omitempty"`
	RollNo        string `json:"roll_no"`
	TotalBooksDue int64  `json:"total_books_due"`
	Role          Role   `json:"-"`
	CurrentToken  string `json:"-"`
	CreatedBy     *int64 `json:"created_by,omitempty"`
}

// Can is the single authorization predicate: an account without a profile
// holds no capabilities at all.
func (a *Account) Can(c Role) bool {
	return a != nil && a.Profile != nil && a.Profile.Role.Has(c)
}

func (a *Account) FullName() string {
	switch {
	case a.FirstName != "" && a.LastName != "":
		return a.FirstName + " " + a.LastName
	case a.FirstName != "":
		return a.FirstName
	default:
		return a.LastName
	}
}

type Branch struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
