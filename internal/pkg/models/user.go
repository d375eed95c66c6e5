package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a rider account. Profile management lives outside this
// service; only the fields the realtime layer needs are modeled here.
type User struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Avatar    string     `json:"avatar,omitempty" db:"avatar"`
	LastSeen  *time.Time `json:"lastSeen,omitempty" db:"last_seen"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
}

// UserSnapshot is the subset of a user embedded in broadcast payloads
type UserSnapshot struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Avatar string    `json:"avatar,omitempty"`
}

// Snapshot returns the broadcast-safe view of the user
func (u *User) Snapshot() UserSnapshot {
	return UserSnapshot{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
}
