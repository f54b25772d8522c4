package services

import (
	"context"

	"github.com/carhire/apiserver/types"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Repository is the persistence contract shared by the rental resources.
type Repository[T any] interface {
	List(ctx context.Context, offset, limit int) ([]T, int, error)
	Get(ctx context.Context, id int) (T, error)
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, item T) (T, error)
	Delete(ctx context.Context, id int) error
}

// ResourceService validates and persists one kind of rental resource.
type ResourceService[T any] struct {
	repo     Repository[T]
	validate func(*T) error
	// prepare sets the id and resets any fields clients may not write.
	prepare func(*T, int)
}

func NewResourceService[T any](repo Repository[T], validate func(*T) error, prepare func(*T, int)) *ResourceService[T] {
	return &ResourceService[T]{repo: repo, validate: validate, prepare: prepare}
}

func (s *ResourceService[T]) List(ctx context.Context, offset, limit int) ([]T, int, error) {
	offset, limit = clampPage(offset, limit)
	return s.repo.List(ctx, offset, limit)
}

func (s *ResourceService[T]) Get(ctx context.Context, id int) (T, error) {
	return s.repo.Get(ctx, id)
}

func (s *ResourceService[T]) Create(ctx context.Context, item T) (T, error) {
	s.prepare(&item, 0)
	if err := s.validate(&item); err != nil {
		var zero T
		return zero, invalidRequest(err)
	}
	return s.repo.Create(ctx, item)
}

// Update replaces the resource with the given id.
func (s *ResourceService[T]) Update(ctx context.Context, id int, item T) (T, error) {
	s.prepare(&item, id)
	if err := s.validate(&item); err != nil {
		var zero T
		return zero, invalidRequest(err)
	}
	return s.repo.Update(ctx, item)
}

func (s *ResourceService[T]) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

func clampPage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return offset, limit
}

func NewLocationService(repo Repository[types.Location]) *ResourceService[types.Location] {
	return NewResourceService(repo, validateLocation, func(l *types.Location, id int) { l.ID = id })
}

func NewPaymentService(repo Repository[types.Payment]) *ResourceService[types.Payment] {
	return NewResourceService(repo, validatePayment, func(p *types.Payment, id int) { p.ID = id })
}

func NewMaintenanceService(repo Repository[types.Maintenance]) *ResourceService[types.Maintenance] {
	return NewResourceService(repo, validateMaintenance, func(m *types.Maintenance, id int) { m.ID = id })
}

func NewInsuranceService(repo Repository[types.Insurance]) *ResourceService[types.Insurance] {
	return NewResourceService(repo, validateInsurance, func(i *types.Insurance, id int) { i.ID = id })
}

// BookingRepository adds the booking-specific reads.
type BookingRepository interface {
	Repository[types.Booking]
	ListByCustomer(ctx context.Context, customerID int) ([]types.Booking, error)
	ListWithPayments(ctx context.Context, offset, limit int) ([]types.BookingWithPayments, error)
}

type BookingService struct {
	*ResourceService[types.Booking]
	repo BookingRepository
}

func NewBookingService(repo BookingRepository) *BookingService {
	return &BookingService{
		ResourceService: NewResourceService[types.Booking](repo, validateBooking, func(b *types.Booking, id int) { b.ID = id }),
		repo:            repo,
	}
}

func (s *BookingService) ListByCustomer(ctx context.Context, customerID int) ([]types.Booking, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

func (s *BookingService) ListWithPayments(ctx context.Context, offset, limit int) ([]types.BookingWithPayments, error) {
	offset, limit = clampPage(offset, limit)
	return s.repo.ListWithPayments(ctx, offset, limit)
}

// ReservationRepository adds the reservation-specific reads.
type ReservationRepository interface {
	Repository[types.Reservation]
	ListByCustomer(ctx context.Context, customerID int) ([]types.Reservation, error)
}

type ReservationService struct {
	*ResourceService[types.Reservation]
	repo ReservationRepository
}

func NewReservationService(repo ReservationRepository) *ReservationService {
	return &ReservationService{
		ResourceService: NewResourceService[types.Reservation](repo, validateReservation, func(r *types.Reservation, id int) { r.ID = id }),
		repo:            repo,
	}
}

func (s *ReservationService) ListByCustomer(ctx context.Context, customerID int) ([]types.Reservation, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

// CustomerRepository is what administrators need to manage accounts.
type CustomerRepository interface {
	List(ctx context.Context, offset, limit int) ([]types.Customer, int, error)
	GetByID(ctx context.Context, id int) (types.Customer, error)
	Delete(ctx context.Context, id int) error
}

// CustomerService exposes account records to administrators. Accounts are
// created through AccountService only.
type CustomerService struct {
	repo CustomerRepository
}

func NewCustomerService(repo CustomerRepository) *CustomerService {
	return &CustomerService{repo: repo}
}

func (s *CustomerService) List(ctx context.Context, offset, limit int) ([]types.Customer, int, error) {
	offset, limit = clampPage(offset, limit)
	return s.repo.List(ctx, offset, limit)
}

func (s *CustomerService) Get(ctx context.Context, id int) (types.Customer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CustomerService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}
