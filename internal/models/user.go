package models

import (
	"time"
)

// User is the local record of a Steam account that has signed in.
type User struct {
	ID          int       `json:"id" db:"id"`
	SteamID     string    `json:"steam_id" db:"steam_id"`
	Username    string    `json:"username" db:"username"`
	AvatarURL   string    `json:"avatar_url" db:"avatar_url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	LastUpdated time.Time `json:"last_updated" db:"last_updated"`
}

// SharedSnapshot is the persisted, frozen copy of a user's wrapped bundle.
// ID is stable for the owner; Token can be regenerated.
type SharedSnapshot struct {
	ID        string    `json:"id" db:"id"`
	Token     string    `json:"token" db:"token"`
	SteamID   string    `json:"steam_id" db:"steam_id"`
	Payload   string    `json:"-" db:"payload"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
