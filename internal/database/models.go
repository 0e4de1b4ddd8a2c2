package database

import (
	"github.com/uptrace/bun"
)

// User is the persistence model for the users table.
// HashedPassword never leaves this layer; read-facing code works with
// the user package's view type instead.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID             int64   `bun:"id,pk,autoincrement"`
	Email          string  `bun:"email,notnull"`
	Username       string  `bun:"username,notnull"`
	HashedPassword string  `bun:"hashed_password,notnull"`
	Avatar         *string `bun:"avatar"`
	PhoneNumber    *string `bun:"phone_number"`
	IsActive       bool    `bun:"is_active,notnull,default:true"`
	IsSuperuser    bool    `bun:"is_superuser,notnull,default:false"`
	IsVerified     bool    `bun:"is_verified,notnull,default:false"`
}
