package models

import "time"

// User represents an account that can authenticate and own todos.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username  string    `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required"`
	Password  string    `json:"-" gorm:"type:varchar(255)"` // bcrypt hash, never serialized
	Email     string    `json:"email,omitempty" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
