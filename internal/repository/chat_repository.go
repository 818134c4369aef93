package repository

import (
	"context"
	"errors"

	"github.com/mangaswap/mangaswap-backend/internal/model"
	"gorm.io/gorm"
)

type ChatRepository interface {
	FindByID(ctx context.Context, id uint64) (*model.ChatChannel, error)
	// FindForPair returns nil, nil when no channel exists for the listing
	// and unordered participant pair.
	FindForPair(ctx context.Context, listingID uint64, uidA, uidB string) (*model.ChatChannel, error)
	ListByUser(ctx context.Context, uid string) ([]model.ChatChannel, error)
	// CreateFromRequest creates the channel and deletes the originating
	// request in one transaction. If the request row is already gone the
	// transaction rolls back with gorm.ErrRecordNotFound.
	CreateFromRequest(ctx context.Context, chat *model.ChatChannel, requestID uint64) error
	// DeleteCascade removes, in one transaction: the channel's messages,
	// the channel, the associated listing, and every request referencing
	// that listing.
	DeleteCascade(ctx context.Context, chatID, listingID uint64) error

	CreateMessage(ctx context.Context, msg *model.Message) error
	ListMessages(ctx context.Context, chatID uint64) ([]model.Message, error)
	FindMessage(ctx context.Context, id uint64) (*model.Message, error)
	DeleteMessage(ctx context.Context, id uint64) error
	SetDB(db *gorm.DB)
}

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) SetDB(db *gorm.DB) {
	r.db = db
}

func (r *chatRepository) FindByID(ctx context.Context, id uint64) (*model.ChatChannel, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var ch model.ChatChannel
	if err := r.db.WithContext(ctx).First(&ch, id).Error; err != nil {
		return nil, err
	}
	return &ch, nil
}

func (r *chatRepository) FindForPair(ctx context.Context, listingID uint64, uidA, uidB string) (*model.ChatChannel, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var ch model.ChatChannel
	err := r.db.WithContext(ctx).
		Where("manga_id = ?", listingID).
		Where("(owner_uid = ? AND requester_uid = ?) OR (owner_uid = ? AND requester_uid = ?)",
			uidA, uidB, uidB, uidA).
		First(&ch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ch, nil
}

func (r *chatRepository) ListByUser(ctx context.Context, uid string) ([]model.ChatChannel, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.ChatChannel
	if err := r.db.WithContext(ctx).
		Where("owner_uid = ? OR requester_uid = ?", uid, uid).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *chatRepository) CreateFromRequest(ctx context.Context, chat *model.ChatChannel, requestID uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(chat).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.ExchangeRequest{}, requestID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// request resolved concurrently; undo the chat creation
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *chatRepository) DeleteCascade(ctx context.Context, chatID, listingID uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chat_id = ?", chatID).Delete(&model.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.ChatChannel{}, chatID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Listing{}, listingID).Error; err != nil {
			return err
		}
		return tx.Where("manga_id = ?", listingID).Delete(&model.ExchangeRequest{}).Error
	})
}

func (r *chatRepository) CreateMessage(ctx context.Context, msg *model.Message) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *chatRepository) ListMessages(ctx context.Context, chatID uint64) ([]model.Message, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var msgs []model.Message
	// created_at is the server-assigned ordering key; id breaks same-
	// timestamp ties in insertion order.
	if err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *chatRepository) FindMessage(ctx context.Context, id uint64) (*model.Message, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var msg model.Message
	if err := r.db.WithContext(ctx).First(&msg, id).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *chatRepository) DeleteMessage(ctx context.Context, id uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Delete(&model.Message{}, id).Error
}
