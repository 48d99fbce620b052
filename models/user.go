package models

import "time"

// Gender is the fixed set of genders a user can pick at login.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// Valid reports whether g is one of the known genders.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// User is a tracker participant identified by a unique name. There is no password.
// TotalPoints is maintained by the submission ledger only.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Gender      Gender    `gorm:"size:16;not null" json:"gender"`
	CreatedAt   time.Time `json:"created_at"`
	TotalPoints int       `gorm:"not null;default:0;index" json:"total_points"`
}
