package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mangaswap/mangaswap-backend/internal/geo"
	"github.com/mangaswap/mangaswap-backend/internal/model"
	"github.com/mangaswap/mangaswap-backend/internal/repository"
	"github.com/mangaswap/mangaswap-backend/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const imageCategory = "manga_images"

type CreateListingInput struct {
	Title     string
	Author    string
	Volume    uint
	Condition int
	Latitude  float64
	Longitude float64
	// HasLocation distinguishes "no fix" from a genuine (0,0) coordinate.
	HasLocation bool
	ImageData   []byte
	ImageType   string
}

type UpdateListingInput struct {
	Title       string
	Author      string
	Volume      uint
	Condition   int
	Latitude    float64
	Longitude   float64
	HasLocation bool
}

// Coordinate is a viewer position known to be present; absence is the nil
// pointer, never the zero value.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// ListingWithDistance pairs a listing with its distance from the viewer.
// DistanceKm is nil when no viewer coordinate was available.
type ListingWithDistance struct {
	Listing    model.Listing
	DistanceKm *float64
}

type ListingService interface {
	// Create uploads the image and inserts the record. A listing without
	// an image is never persisted; if the insert fails the uploaded
	// object is deleted again.
	Create(ctx context.Context, ownerUID string, in CreateListingInput) (*model.Listing, error)
	Get(ctx context.Context, id uint64) (*model.Listing, error)
	// List filters by title (case-insensitive substring) and, when a
	// viewer coordinate is present, ranks ascending by great-circle
	// distance. Without a viewer coordinate the order is unranked and
	// every DistanceKm is nil.
	List(ctx context.Context, query string, viewer *Coordinate) ([]ListingWithDistance, error)
	ListMine(ctx context.Context, ownerUID string) ([]model.Listing, error)
	Update(ctx context.Context, id uint64, callerUID string, in UpdateListingInput) (*model.Listing, error)
	Delete(ctx context.Context, id uint64, callerUID string) error
}

type listingService struct {
	repo     repository.ListingRepository
	uploader storage.Uploader
	log      *zap.Logger
}

func NewListingService(repo repository.ListingRepository, uploader storage.Uploader, log *zap.Logger) ListingService {
	return &listingService{repo: repo, uploader: uploader, log: log}
}

func validateFields(title, author string, condition int, hasLocation bool) error {
	if strings.TrimSpace(title) == "" || len(title) > 120 {
		return fmt.Errorf("%w: invalid title", ErrValidation)
	}
	if strings.TrimSpace(author) == "" || len(author) > 120 {
		return fmt.Errorf("%w: invalid author", ErrValidation)
	}
	if condition < 1 || condition > 5 {
		return fmt.Errorf("%w: condition must be between 1 and 5", ErrValidation)
	}
	if !hasLocation {
		return fmt.Errorf("%w: location is required", ErrValidation)
	}
	return nil
}

func (s *listingService) Create(ctx context.Context, ownerUID string, in CreateListingInput) (*model.Listing, error) {
	if err := validateFields(in.Title, in.Author, in.Condition, in.HasLocation); err != nil {
		return nil, err
	}
	if len(in.ImageData) == 0 {
		return nil, fmt.Errorf("%w: image is required", ErrValidation)
	}

	downloadURL, objectPath, err := s.uploader.Upload(ctx, imageCategory, ownerUID, in.ImageData, in.ImageType)
	if err != nil {
		return nil, err
	}

	listing := &model.Listing{
		Title:     strings.TrimSpace(in.Title),
		Author:    strings.TrimSpace(in.Author),
		Volume:    in.Volume,
		Condition: in.Condition,
		ImageURL:  downloadURL,
		OwnerUID:  ownerUID,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
	}
	if err := s.repo.Create(ctx, listing); err != nil {
		if delErr := s.uploader.Delete(ctx, objectPath); delErr != nil {
			s.log.Warn("orphaned image after failed listing insert",
				zap.String("path", objectPath), zap.Error(delErr))
		}
		return nil, err
	}
	return listing, nil
}

func (s *listingService) Get(ctx context.Context, id uint64) (*model.Listing, error) {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return listing, nil
}

func (s *listingService) List(ctx context.Context, query string, viewer *Coordinate) ([]ListingWithDistance, error) {
	listings, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	listings = geo.FilterByTitle(listings, query)

	if viewer == nil {
		out := make([]ListingWithDistance, 0, len(listings))
		for _, l := range listings {
			out = append(out, ListingWithDistance{Listing: l})
		}
		return out, nil
	}

	ranked := geo.Rank(viewer.Latitude, viewer.Longitude, listings)
	out := make([]ListingWithDistance, 0, len(ranked))
	for _, r := range ranked {
		d := r.DistanceKm
		out = append(out, ListingWithDistance{Listing: r.Listing, DistanceKm: &d})
	}
	return out, nil
}

func (s *listingService) ListMine(ctx context.Context, ownerUID string) ([]model.Listing, error) {
	return s.repo.ListByOwner(ctx, ownerUID)
}

func (s *listingService) Update(ctx context.Context, id uint64, callerUID string, in UpdateListingInput) (*model.Listing, error) {
	if err := validateFields(in.Title, in.Author, in.Condition, in.HasLocation); err != nil {
		return nil, err
	}
	listing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.OwnerUID != callerUID {
		return nil, ErrForbidden
	}
	listing.Title = strings.TrimSpace(in.Title)
	listing.Author = strings.TrimSpace(in.Author)
	listing.Volume = in.Volume
	listing.Condition = in.Condition
	listing.Latitude = in.Latitude
	listing.Longitude = in.Longitude
	if err := s.repo.Update(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *listingService) Delete(ctx context.Context, id uint64, callerUID string) error {
	listing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if listing.OwnerUID != callerUID {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}
