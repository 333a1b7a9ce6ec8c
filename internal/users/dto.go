package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/vendorverse-backend/pkg/db/models"
	"github.com/angelmondragon/vendorverse-backend/pkg/enums"
)

// UserDTO is the public view of an account. The password hash never leaves
// this package.
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Role        enums.Role `json:"role"`
	HomeRoute   string     `json:"home_route"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type CreateUserDTO struct {
	Email        string
	PasswordHash string
	Role         enums.Role
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		Role:        u.Role,
		HomeRoute:   u.Role.HomeRoute(),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{Email: NormalizeEmail(c.Email), PasswordHash: c.PasswordHash, Role: c.Role}
}
