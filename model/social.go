package model

import "time"

// FavoriteAudio records that a user favorited an audio.
type FavoriteAudio struct {
	AudioID   int64     `json:"audioId" gorm:"primaryKey;autoIncrement:false"`
	UserID    int64     `json:"userId" gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time `json:"createdAt"`
}

func (FavoriteAudio) TableName() string {
	return "favorite_audios"
}

// FollowedUser records that ObserverID follows TargetID.
type FollowedUser struct {
	ObserverID int64     `json:"observerId" gorm:"primaryKey;autoIncrement:false"`
	TargetID   int64     `json:"targetId" gorm:"primaryKey;autoIncrement:false;index"`
	FollowedAt time.Time `json:"followedAt" gorm:"autoCreateTime"`
}

func (FollowedUser) TableName() string {
	return "followed_users"
}

// AllModels lists every table owned by this service, in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Genre{},
		&Tag{},
		&Audio{},
		&FavoriteAudio{},
		&FollowedUser{},
	}
}
