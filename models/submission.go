package models

import "time"

// SubmissionPoints is awarded for every submission at creation time.
const SubmissionPoints = 5

// SubmissionType classifies a submission.
type SubmissionType string

const (
	SubmissionAccountBook SubmissionType = "account_book"
	SubmissionJournal     SubmissionType = "journal"
	SubmissionContent     SubmissionType = "content"
)

// Valid reports whether t is one of the known submission types.
func (t SubmissionType) Valid() bool {
	switch t {
	case SubmissionAccountBook, SubmissionJournal, SubmissionContent:
		return true
	}
	return false
}

// DailyLimited reports whether at most one submission of this type is allowed per user and day.
func (t SubmissionType) DailyLimited() bool {
	return t == SubmissionAccountBook || t == SubmissionJournal
}

// Submission is one daily entry. Type, UserID and Points never change after creation.
type Submission struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index:idx_submissions_daily,priority:1" json:"user_id"`
	Type      SubmissionType `gorm:"size:32;not null;index:idx_submissions_daily,priority:2" json:"type"`
	Content   string         `gorm:"type:text" json:"content"`
	Date      Date           `gorm:"not null;index:idx_submissions_daily,priority:3" json:"date"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	Points    int            `gorm:"not null;default:5" json:"points"`
	Owner     *User          `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
}

// SubmissionView is a submission joined with its owner's name for display.
type SubmissionView struct {
	Submission
	OwnerName *string `json:"owner_name"`
}
