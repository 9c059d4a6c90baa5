package model

import "time"

// Tag is identified by its normalized slug.
type Tag struct {
	ID        string    `json:"id" gorm:"primaryKey;size:50"`
	CreatedAt time.Time `json:"-"`
}

func (Tag) TableName() string {
	return "tags"
}
