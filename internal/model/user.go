package model

import "time"

// Role values recognized by the authorization policy.
const (
	RoleAdmin    = "admin"
	RoleResolver = "resolver"
)

// User represents a staff account able to authenticate against the system.
// Users are created by the seed utility and never mutated by the server.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:80;not null"`
	PasswordHash string    `json:"-" gorm:"size:500;not null"` // Never expose in JSON
	Role         string    `json:"role" gorm:"size:20;not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
