package user

// UpdateReq carries a partial profile edit: omitted fields keep their
// stored value, including the role flags.
type UpdateReq struct {
	Mobile      *string `json:"mobile" validate:"omitempty,e164"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	BranchID    *int64  `json:"branch_id"`
	IsLibrarian *bool   `json:"is_librarian"`
	IsMember    *bool   `json:"is_member"`
}
