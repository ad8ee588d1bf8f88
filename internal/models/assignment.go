package models

import "time"

// Assignment is a class-bound copy of a teacher-authored homework template.
// Publishing to N classes creates N rows sharing title/content/deadline.
type Assignment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Content     string    `gorm:"type:text" json:"content"`
	ClassID     uint      `gorm:"not null;index" json:"class_id"`
	ClassName   string    `gorm:"size:255" json:"class_name"`
	ChapterID   *uint     `gorm:"index" json:"chapter_id"`
	ChapterName string    `gorm:"size:255" json:"chapter_name"`
	TotalScore  int       `gorm:"not null;default:100" json:"total_score"`
	Deadline    time.Time `gorm:"not null" json:"deadline"`
	CreatorID   uint      `gorm:"not null;index" json:"creator_id"`
	CreatorName string    `gorm:"size:255" json:"creator_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsPastDue returns true when the deadline has already passed. A submission at
// exactly the deadline instant is still accepted.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.Deadline)
}
