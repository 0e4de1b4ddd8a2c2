package user

import (
	"errors"

	"users-api/internal/database"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

// User is the write-model: the full persisted record including the
// password hash. It never leaves the repository/auth layer; HTTP
// responses are built from UserView instead.
type User struct {
	ID             int64   `json:"id"`
	Email          string  `json:"email"`
	Username       string  `json:"username"`
	HashedPassword string  `json:"-"`
	Avatar         *string `json:"avatar"`
	PhoneNumber    *string `json:"phone_number"`
	IsActive       bool    `json:"is_active"`
	IsSuperuser    bool    `json:"is_superuser"`
	IsVerified     bool    `json:"is_verified"`
}

// UserView is the read-facing representation. The password hash is not a
// field of this type, so it cannot leak through serialization.
type UserView struct {
	ID          int64   `json:"id"`
	Email       string  `json:"email"`
	Username    string  `json:"username"`
	Avatar      *string `json:"avatar"`
	PhoneNumber *string `json:"phone_number"`
	IsActive    bool    `json:"is_active"`
	IsSuperuser bool    `json:"is_superuser"`
	IsVerified  bool    `json:"is_verified"`
}

// View converts the write-model to its read-facing representation.
func (u *User) View() UserView {
	return UserView{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		Avatar:      u.Avatar,
		PhoneNumber: u.PhoneNumber,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
		IsVerified:  u.IsVerified,
	}
}

// mapDBUserToModel converts the persistence model to the domain write-model.
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:             dbu.ID,
		Email:          dbu.Email,
		Username:       dbu.Username,
		HashedPassword: dbu.HashedPassword,
		Avatar:         dbu.Avatar,
		PhoneNumber:    dbu.PhoneNumber,
		IsActive:       dbu.IsActive,
		IsSuperuser:    dbu.IsSuperuser,
		IsVerified:     dbu.IsVerified,
	}
}

// mapDBUserToView converts the persistence model straight to the read view.
func mapDBUserToView(dbu *database.User) UserView {
	return UserView{
		ID:          dbu.ID,
		Email:       dbu.Email,
		Username:    dbu.Username,
		Avatar:      dbu.Avatar,
		PhoneNumber: dbu.PhoneNumber,
		IsActive:    dbu.IsActive,
		IsSuperuser: dbu.IsSuperuser,
		IsVerified:  dbu.IsVerified,
	}
}
