package model

import "time"

// ChatChannel binds exactly one listing and two participants. The listing
// owner is one participant; the unique index on (manga_id, requester_uid)
// keeps the pair+listing combination single.
type ChatChannel struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ListingID    uint64    `gorm:"column:manga_id;index:uk_chat_listing_requester,unique" json:"listingId"`
	OwnerUID     string    `gorm:"column:owner_uid;size:128;index" json:"ownerUid"`
	RequesterUID string    `gorm:"column:requester_uid;size:128;index:uk_chat_listing_requester,unique" json:"requesterUid"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (ChatChannel) TableName() string {
	return "chats"
}

// HasParticipant reports whether uid is one of the two channel members.
func (c *ChatChannel) HasParticipant(uid string) bool {
	return uid == c.OwnerUID || uid == c.RequesterUID
}
