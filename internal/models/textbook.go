package models

import "time"

// Textbook groups chapters for a grade level.
type Textbook struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	GradeName   string    `gorm:"size:64" json:"grade_name"`
	CreatorID   uint      `gorm:"index" json:"creator_id"`
	CreatorName string    `gorm:"size:255" json:"creator_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Chapter is a section of a textbook that questions and assignments reference.
type Chapter struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	TextbookID   uint      `gorm:"index" json:"textbook_id"`
	TextbookName string    `gorm:"size:255" json:"textbook_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
