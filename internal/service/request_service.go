package service

import (
	"context"
	"errors"
	"strings"

	"github.com/mangaswap/mangaswap-backend/internal/model"
	"github.com/mangaswap/mangaswap-backend/internal/repository"
	"gorm.io/gorm"
)

// RequestService drives the exchange-request lifecycle:
// none -> pending -> accepted (chat created, record deleted)
//                 -> rejected (record deleted).
// Resolution never leaves a request record behind.
type RequestService interface {
	Submit(ctx context.Context, listingID uint64, requesterUID string) (*model.ExchangeRequest, error)
	// Accept creates the chat channel and deletes the request as one
	// transaction. The caller must be the listing's owner.
	Accept(ctx context.Context, requestID uint64, callerUID string) (*model.ChatChannel, error)
	// Reject deletes the request. Callable by either participant.
	Reject(ctx context.Context, requestID uint64, callerUID string) error
	ListIncoming(ctx context.Context, ownerUID string) ([]model.ExchangeRequest, error)
	ListOutgoing(ctx context.Context, requesterUID string) ([]model.ExchangeRequest, error)
}

type requestService struct {
	requestRepo repository.RequestRepository
	listingRepo repository.ListingRepository
	chatRepo    repository.ChatRepository
}

func NewRequestService(requestRepo repository.RequestRepository, listingRepo repository.ListingRepository, chatRepo repository.ChatRepository) RequestService {
	return &requestService{requestRepo: requestRepo, listingRepo: listingRepo, chatRepo: chatRepo}
}

func (s *requestService) Submit(ctx context.Context, listingID uint64, requesterUID string) (*model.ExchangeRequest, error) {
	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if listing.OwnerUID == requesterUID {
		return nil, ErrSelfRequest
	}
	existing, err := s.requestRepo.FindPending(ctx, listingID, requesterUID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyRequested
	}

	req := &model.ExchangeRequest{
		ListingID:    listingID,
		RequesterUID: requesterUID,
		OwnerUID:     listing.OwnerUID,
		Status:       model.RequestStatusPending,
	}
	if err := s.requestRepo.Create(ctx, req); err != nil {
		// the unique index on (listing, requester) closes the race
		// between the FindPending check and this insert
		if isDuplicateKey(err) {
			return nil, ErrAlreadyRequested
		}
		return nil, err
	}
	return req, nil
}

func (s *requestService) Accept(ctx context.Context, requestID uint64, callerUID string) (*model.ChatChannel, error) {
	req, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if req.OwnerUID != callerUID {
		return nil, ErrForbidden
	}

	existing, err := s.chatRepo.FindForPair(ctx, req.ListingID, req.RequesterUID, req.OwnerUID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		// accepting a duplicate request for an already-chatted listing is
		// a conflict the caller must reconcile; the request stays put
		return nil, ErrChatAlreadyExists
	}

	chat := &model.ChatChannel{
		ListingID:    req.ListingID,
		OwnerUID:     req.OwnerUID,
		RequesterUID: req.RequesterUID,
	}
	if err := s.chatRepo.CreateFromRequest(ctx, chat, req.ID); err != nil {
		if isDuplicateKey(err) {
			return nil, ErrChatAlreadyExists
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return chat, nil
}

func (s *requestService) Reject(ctx context.Context, requestID uint64, callerUID string) error {
	req, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if req.RequesterUID != callerUID && req.OwnerUID != callerUID {
		return ErrForbidden
	}
	return s.requestRepo.Delete(ctx, req.ID)
}

func (s *requestService) ListIncoming(ctx context.Context, ownerUID string) ([]model.ExchangeRequest, error) {
	return s.requestRepo.ListByOwner(ctx, ownerUID)
}

func (s *requestService) ListOutgoing(ctx context.Context, requesterUID string) ([]model.ExchangeRequest, error) {
	return s.requestRepo.ListByRequester(ctx, requesterUID)
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "Duplicate entry")
}
