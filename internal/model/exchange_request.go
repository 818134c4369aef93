package model

import "time"

type RequestStatus string

const (
	RequestStatusPending RequestStatus = "pending"
)

// ExchangeRequest is resolved by deletion: acceptance creates a chat and
// removes the record, rejection removes it directly. No history is kept.
type ExchangeRequest struct {
	ID           uint64        `gorm:"primaryKey;autoIncrement"`
	ListingID    uint64        `gorm:"column:manga_id;index;uniqueIndex:uk_listing_requester;not null"`
	RequesterUID string        `gorm:"column:requested_by;size:128;index;uniqueIndex:uk_listing_requester;not null"`
	OwnerUID     string        `gorm:"column:requested_from;size:128;index;not null"`
	Status       RequestStatus `gorm:"column:status;size:32;not null"`
	CreatedAt    time.Time     `gorm:"autoCreateTime"`
	UpdatedAt    time.Time     `gorm:"autoUpdateTime"`
}

func (ExchangeRequest) TableName() string {
	return "requests"
}
