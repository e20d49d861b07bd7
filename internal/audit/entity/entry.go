package entity

import "time"

// Entry is one append-only record of a security-relevant action. UserID is
// nil for failed sign-ins against unknown emails.
type Entry struct {
	ID        string    `db:"id" json:"id"`
	UserID    *int64    `db:"user_id" json:"userId"`
	Action    string    `db:"action" json:"action"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
