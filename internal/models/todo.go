package models

import "time"

// Todo statuses. A todo starts as "new" unless the client says otherwise.
const (
	StatusNew        = "new"
	StatusInProgress = "inProgress"
	StatusDone       = "done"
)

// ValidStatus reports whether s is one of the three todo statuses.
func ValidStatus(s string) bool {
	return s == StatusNew || s == StatusInProgress || s == StatusDone
}

// Todo represents a single to-do item owned by exactly one user.
// PositionOrder drives the user-visible manual sort; it is not required
// to be unique or contiguous.
type Todo struct {
	ID            string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Title         string    `json:"title" gorm:"type:varchar(500)" validate:"required,max=500"`
	Status        string    `json:"status" gorm:"type:varchar(20)"`
	PositionOrder int       `json:"positionOrder"`
	UserID        string    `json:"-" gorm:"index;type:varchar(36)"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
