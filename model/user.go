package model

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleManager  Role = "manager"
)

// RoleOf maps the stored manager flag to a Role.
func RoleOf(isManager bool) Role {
	if isManager {
		return RoleManager
	}
	return RoleCustomer
}

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsManager    bool      `json:"manager"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u User) Role() Role { return RoleOf(u.IsManager) }

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

func (p Principal) IsManager() bool { return p.Role == RoleManager }

// RegisterReq represents user registration payload
// swagger:model RegisterReq
type RegisterReq struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginReq represents login payload
// swagger:model LoginReq
type LoginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
