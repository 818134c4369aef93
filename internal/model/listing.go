package model

import "time"

type Listing struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Title     string    `gorm:"size:120;not null"`
	Author    string    `gorm:"size:120;not null"`
	Volume    uint      `gorm:"not null"`
	Condition int       `gorm:"column:cond;not null"` // 1-5
	ImageURL  string    `gorm:"column:image_url;size:512;not null"`
	OwnerUID  string    `gorm:"column:owner_uid;size:128;index;not null"`
	Latitude  float64   `gorm:"column:latitude;not null"`
	Longitude float64   `gorm:"column:longitude;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Listing) TableName() string {
	return "mangas"
}
