package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/carhire/apiserver/internal/logging"
	"github.com/carhire/apiserver/internal/storage"
	"github.com/carhire/apiserver/types"
)

// MaxImageSize bounds uploaded car photos.
const MaxImageSize = 10 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// CarRepository adds the car-specific reads and the image key update.
type CarRepository interface {
	Repository[types.Car]
	ListWithLocation(ctx context.Context, offset, limit int) ([]types.CarWithLocation, error)
	SetImageKey(ctx context.Context, id int, key string) error
}

// ImageStore is the subset of object storage used for car photos.
type ImageStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}

type CarService struct {
	*ResourceService[types.Car]
	repo   CarRepository
	images ImageStore
}

// NewCarService builds the car service. images may be nil, in which case the
// image operations return ErrStorageDisabled.
func NewCarService(repo CarRepository, images ImageStore) *CarService {
	return &CarService{
		ResourceService: NewResourceService[types.Car](repo, validateCar, prepareCar),
		repo:            repo,
		images:          images,
	}
}

// prepareCar defaults availability to true and drops any client-supplied
// image key.
func prepareCar(c *types.Car, id int) {
	c.ID = id
	c.ImageKey = nil
	if c.Available == nil {
		available := true
		c.Available = &available
	}
}

func (s *CarService) ListWithLocation(ctx context.Context, offset, limit int) ([]types.CarWithLocation, error) {
	offset, limit = clampPage(offset, limit)
	return s.repo.ListWithLocation(ctx, offset, limit)
}

// UploadImage stores a new photo for the car and replaces the previous one.
func (s *CarService) UploadImage(ctx context.Context, id int, r io.Reader, size int64, contentType string) (types.Car, error) {
	if s.images == nil {
		return types.Car{}, ErrStorageDisabled
	}
	ext, ok := imageExtensions[contentType]
	if !ok {
		return types.Car{}, invalidRequest(fmt.Errorf("unsupported image type %q", contentType))
	}
	if size <= 0 || size > MaxImageSize {
		return types.Car{}, invalidRequest(errors.New("image must be between 1 byte and 10 MiB"))
	}

	car, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Car{}, err
	}

	key := fmt.Sprintf("cars/%d/%s%s", id, uuid.NewString(), ext)
	if err := s.images.Put(ctx, key, r, size, contentType); err != nil {
		return types.Car{}, fmt.Errorf("store image: %w", err)
	}
	if err := s.repo.SetImageKey(ctx, id, key); err != nil {
		if delErr := s.images.Delete(ctx, key); delErr != nil {
			logging.FromContext(ctx).WarnContext(ctx, "orphaned car image", "key", key, "err", delErr)
		}
		return types.Car{}, err
	}

	if car.ImageKey != nil && *car.ImageKey != "" {
		if err := s.images.Delete(ctx, *car.ImageKey); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			logging.FromContext(ctx).WarnContext(ctx, "old car image not removed", "key", *car.ImageKey, "err", err)
		}
	}
	car.ImageKey = &key
	return car, nil
}

// OpenImage returns a reader for the car's photo. The caller closes it.
func (s *CarService) OpenImage(ctx context.Context, id int) (io.ReadCloser, storage.ObjectInfo, error) {
	if s.images == nil {
		return nil, storage.ObjectInfo{}, ErrStorageDisabled
	}
	car, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, storage.ObjectInfo{}, err
	}
	if car.ImageKey == nil || *car.ImageKey == "" {
		return nil, storage.ObjectInfo{}, ErrImageNotFound
	}
	rc, info, err := s.images.Get(ctx, *car.ImageKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, storage.ObjectInfo{}, ErrImageNotFound
		}
		return nil, storage.ObjectInfo{}, fmt.Errorf("open image: %w", err)
	}
	return rc, info, nil
}
