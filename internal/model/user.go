package model

import "time"

// User is created lazily on first sign-in and never overwritten by
// re-authentication. UID comes from the identity provider.
type User struct {
	UID        string    `gorm:"column:uid;primaryKey;size:128"`
	Name       string    `gorm:"size:120;not null"`
	Email      string    `gorm:"size:255"`
	PictureURL *string   `gorm:"column:picture_url;size:512"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
