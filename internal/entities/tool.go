package entities

import "time"

// Tool is a lendable item users can declare on signup.
type Tool struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:100" json:"name"`
	Description string    `gorm:"size:500" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
