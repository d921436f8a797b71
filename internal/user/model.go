package user

import "time"

// PublicUser is what other users may see of an account.
type PublicUser struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"join_date"`
}

type RegisterInput struct {
	Username       string `json:"username" binding:"required,min=3,max=40"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=6"`
	RepeatPassword string `json:"repeat_password" binding:"required,eqfield=Password"`
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateUser is the complete set of mutable account fields. IsAdmin may only
// be set by an admin.
type UpdateUser struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=6"`
	IsAdmin  *bool   `json:"is_admin"`
}
