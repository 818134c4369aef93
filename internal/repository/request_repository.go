package repository

import (
	"context"
	"errors"

	"github.com/mangaswap/mangaswap-backend/internal/model"
	"gorm.io/gorm"
)

type RequestRepository interface {
	Create(ctx context.Context, req *model.ExchangeRequest) error
	FindByID(ctx context.Context, id uint64) (*model.ExchangeRequest, error)
	// FindPending returns nil, nil when no pending request exists for the
	// (listing, requester) pair.
	FindPending(ctx context.Context, listingID uint64, requesterUID string) (*model.ExchangeRequest, error)
	ListByOwner(ctx context.Context, ownerUID string) ([]model.ExchangeRequest, error)
	ListByRequester(ctx context.Context, requesterUID string) ([]model.ExchangeRequest, error)
	Delete(ctx context.Context, id uint64) error
	SetDB(db *gorm.DB)
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) SetDB(db *gorm.DB) {
	r.db = db
}

func (r *requestRepository) Create(ctx context.Context, req *model.ExchangeRequest) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *requestRepository) FindByID(ctx context.Context, id uint64) (*model.ExchangeRequest, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var req model.ExchangeRequest
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) FindPending(ctx context.Context, listingID uint64, requesterUID string) (*model.ExchangeRequest, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var req model.ExchangeRequest
	if err := r.db.WithContext(ctx).
		Where("manga_id = ? AND requested_by = ? AND status = ?",
			listingID, requesterUID, model.RequestStatusPending).
		First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) ListByOwner(ctx context.Context, ownerUID string) ([]model.ExchangeRequest, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.ExchangeRequest
	if err := r.db.WithContext(ctx).
		Where("requested_from = ?", ownerUID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *requestRepository) ListByRequester(ctx context.Context, requesterUID string) ([]model.ExchangeRequest, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.ExchangeRequest
	if err := r.db.WithContext(ctx).
		Where("requested_by = ?", requesterUID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *requestRepository) Delete(ctx context.Context, id uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Delete(&model.ExchangeRequest{}, id).Error
}
