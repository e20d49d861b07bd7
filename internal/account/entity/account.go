package entity

import "time"

// UserType is the closed set of account roles. The store constrains the
// column to the same two values; anything else is treated as corrupt data.
type UserType string

const (
	UserTypeUser  UserType = "user"
	UserTypeAdmin UserType = "admin"
)

// Valid reports whether t is one of the known user types.
func (t UserType) Valid() bool {
	return t == UserTypeUser || t == UserTypeAdmin
}

// Account represents a row in the `accounts` table. The password hash is
// never serialized to JSON.
type Account struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	UserType     UserType  `db:"user_type" json:"userType"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}
