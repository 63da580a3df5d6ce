package auth

type RegisterReq struct {
	Username  string `json:"username" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Mobile    string `json:"mobile" validate:"omitempty,e164"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	BranchID  *int64 `json:"branch_id"`
}

type LoginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
