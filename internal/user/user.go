package user

import "time"

// Account roles. Sellers may open the seller dashboard; suppliers and plain
// users can shop.
const (
	RoleUser     = "user"
	RoleSupplier = "supplier"
	RoleSeller   = "seller"
)

type User struct {
	ID        int64     `json:"userId"`
	Email     string    `json:"email"`
	Password  string    `json:"password,omitempty"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createAt"`
	UpdatedAt time.Time `json:"updateAt"`
}

func validRole(role string) bool {
	switch role {
	case RoleUser, RoleSupplier, RoleSeller:
		return true
	}
	return false
}
