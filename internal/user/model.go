package user

import "time"

type Role string

const (
	RoleCustomer  Role = "customer"
	RoleAdmin     Role = "admin"
	RolePersonnel Role = "personnel"
)

// Staff reports whether the role may use the admin back-office.
func (r Role) Staff() bool {
	return r == RoleAdmin || r == RolePersonnel
}

type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Phone           string    `json:"phone"`
	ProfileImageURL string    `json:"profileImageUrl,omitempty"`
	Role            Role      `json:"role"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// RegisterInput is the self-service signup payload. The phone format
// matches the storefront's 10-digit local convention (5xxxxxxxxx).
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Phone     string `json:"phone" validate:"required,len=10,numeric"`
}

// ProfilePatch updates the caller's own profile fields.
type ProfilePatch struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1"`
	LastName  *string `json:"lastName" validate:"omitempty,min=1"`
	Phone     *string `json:"phone" validate:"omitempty,len=10,numeric"`
}
