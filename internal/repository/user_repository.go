package repository

import (
	"context"
	"errors"

	"github.com/mangaswap/mangaswap-backend/internal/model"
	"gorm.io/gorm"
)

var ErrDBNotReady = errors.New("database not initialized")

type UserRepository interface {
	// Ensure inserts the user if no row with the same UID exists. An
	// existing row is left untouched so re-authentication never clobbers
	// a profile the user has edited since first sign-in.
	Ensure(ctx context.Context, user *model.User) error
	FindByUID(ctx context.Context, uid string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	// DeleteCascade removes the user row together with everything the
	// account owns or participates in: listings, requests on either side,
	// chats and their messages. One transaction, all or nothing.
	DeleteCascade(ctx context.Context, uid string) error
	SetDB(db *gorm.DB)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) SetDB(db *gorm.DB) {
	r.db = db
}

func (r *userRepository) Ensure(ctx context.Context, user *model.User) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).
		Where("uid = ?", user.UID).
		FirstOrCreate(user).Error
}

func (r *userRepository) FindByUID(ctx context.Context, uid string) (*model.User, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var u model.User
	if err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) DeleteCascade(ctx context.Context, uid string) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var chatIDs []uint64
		if err := tx.Model(&model.ChatChannel{}).
			Where("owner_uid = ? OR requester_uid = ?", uid, uid).
			Pluck("id", &chatIDs).Error; err != nil {
			return err
		}
		if len(chatIDs) > 0 {
			if err := tx.Where("chat_id IN ?", chatIDs).Delete(&model.Message{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", chatIDs).Delete(&model.ChatChannel{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("owner_uid = ?", uid).Delete(&model.Listing{}).Error; err != nil {
			return err
		}
		if err := tx.Where("requested_by = ? OR requested_from = ?", uid, uid).
			Delete(&model.ExchangeRequest{}).Error; err != nil {
			return err
		}
		return tx.Where("uid = ?", uid).Delete(&model.User{}).Error
	})
}
