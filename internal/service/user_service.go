package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mangaswap/mangaswap-backend/internal/model"
	"github.com/mangaswap/mangaswap-backend/internal/repository"
	"github.com/mangaswap/mangaswap-backend/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IdentityProvider is the slice of the auth backend the user service needs.
type IdentityProvider interface {
	GetUser(ctx context.Context, uid string) (name, email string, pictureURL *string, err error)
	DeleteUser(ctx context.Context, uid string) error
}

type UserService interface {
	// Ensure creates the user record on first sign-in. Idempotent: an
	// existing record is returned unchanged.
	Ensure(ctx context.Context, uid string) (*model.User, error)
	Get(ctx context.Context, uid string) (*model.User, error)
	UpdateProfile(ctx context.Context, uid, name string, pictureURL *string) (*model.User, error)
	// DeleteAccount removes the identity and everything the account owns.
	DeleteAccount(ctx context.Context, uid string) error
}

type userService struct {
	repo     repository.UserRepository
	identity IdentityProvider
	uploader storage.Uploader
	log      *zap.Logger
}

func NewUserService(repo repository.UserRepository, identity IdentityProvider, uploader storage.Uploader, log *zap.Logger) UserService {
	return &userService{repo: repo, identity: identity, uploader: uploader, log: log}
}

func (s *userService) Ensure(ctx context.Context, uid string) (*model.User, error) {
	name, email, pictureURL, err := s.identity.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = "Anonymous"
	}
	u := &model.User{UID: uid, Name: name, Email: email, PictureURL: pictureURL}
	if err := s.repo.Ensure(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userService) Get(ctx context.Context, uid string) (*model.User, error) {
	u, err := s.repo.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *userService) UpdateProfile(ctx context.Context, uid, name string, pictureURL *string) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 120 {
		return nil, fmt.Errorf("%w: invalid name", ErrValidation)
	}
	u, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	u.Name = name
	if pictureURL != nil {
		u.PictureURL = pictureURL
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userService) DeleteAccount(ctx context.Context, uid string) error {
	if _, err := s.Get(ctx, uid); err != nil {
		return err
	}
	if err := s.repo.DeleteCascade(ctx, uid); err != nil {
		return err
	}
	if err := s.uploader.DeleteAllFor(ctx, imageCategory, uid); err != nil {
		s.log.Warn("image cleanup failed after record cascade",
			zap.String("uid", uid), zap.Error(err))
	}
	if err := s.identity.DeleteUser(ctx, uid); err != nil {
		// records are gone; the orphaned identity can only re-trigger
		// Ensure, so log instead of failing the whole operation
		s.log.Warn("identity deletion failed after record cascade",
			zap.String("uid", uid), zap.Error(err))
	}
	return nil
}
