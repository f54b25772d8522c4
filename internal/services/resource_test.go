package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/carhire/apiserver/internal/store"
	"github.com/carhire/apiserver/types"
)

type fakeBookings struct {
	created      []types.Booking
	lastOffset   int
	lastLimit    int
	withPayments []types.BookingWithPayments
}

func (f *fakeBookings) List(_ context.Context, offset, limit int) ([]types.Booking, int, error) {
	f.lastOffset, f.lastLimit = offset, limit
	return f.created, len(f.created), nil
}

func (f *fakeBookings) Get(_ context.Context, id int) (types.Booking, error) {
	for _, b := range f.created {
		if b.ID == id {
			return b, nil
		}
	}
	return types.Booking{}, store.ErrNotFound
}

func (f *fakeBookings) Create(_ context.Context, b types.Booking) (types.Booking, error) {
	b.ID = len(f.created) + 1
	f.created = append(f.created, b)
	return b, nil
}

func (f *fakeBookings) Update(_ context.Context, b types.Booking) (types.Booking, error) {
	for i := range f.created {
		if f.created[i].ID == b.ID {
			f.created[i] = b
			return b, nil
		}
	}
	return types.Booking{}, store.ErrNotFound
}

func (f *fakeBookings) Delete(context.Context, int) error { return nil }

func (f *fakeBookings) ListByCustomer(_ context.Context, customerID int) ([]types.Booking, error) {
	var out []types.Booking
	for _, b := range f.created {
		if b.CustomerID == customerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookings) ListWithPayments(_ context.Context, offset, limit int) ([]types.BookingWithPayments, error) {
	f.lastOffset, f.lastLimit = offset, limit
	return f.withPayments, nil
}

func validBooking() types.Booking {
	total := "450.00"
	return types.Booking{
		CarID:           3,
		CustomerID:      7,
		RentalStartDate: "2026-05-01",
		RentalEndDate:   "2026-05-04",
		TotalAmount:     &total,
	}
}

func TestBookingServiceCreate(t *testing.T) {
	repo := &fakeBookings{}
	svc := NewBookingService(repo)

	in := validBooking()
	in.ID = 99
	created, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, 1, created.ID)

	mine, err := svc.ListByCustomer(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, mine, 1)
}

func TestBookingServiceValidation(t *testing.T) {
	svc := NewBookingService(&fakeBookings{})
	ctx := context.Background()

	cases := map[string]func(*types.Booking){
		"end before start": func(b *types.Booking) { b.RentalEndDate = "2026-04-30" },
		"bad date":         func(b *types.Booking) { b.RentalStartDate = "01/05/2026" },
		"missing car":      func(b *types.Booking) { b.CarID = 0 },
		"negative ref":     func(b *types.Booking) { b.CustomerID = -2 },
		"bad amount":       func(b *types.Booking) { s := "12.345"; b.TotalAmount = &s },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			b := validBooking()
			mutate(&b)
			_, err := svc.Create(ctx, b)
			require.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestBookingServiceUpdateUsesPathID(t *testing.T) {
	repo := &fakeBookings{}
	svc := NewBookingService(repo)
	ctx := context.Background()
	_, err := svc.Create(ctx, validBooking())
	require.NoError(t, err)

	in := validBooking()
	in.ID = 42
	in.RentalEndDate = "2026-05-10"
	updated, err := svc.Update(ctx, 1, in)
	require.NoError(t, err)
	require.Equal(t, 1, updated.ID)
	require.Equal(t, "2026-05-10", repo.created[0].RentalEndDate)

	_, err = svc.Update(ctx, 5, validBooking())
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestListClampsPagination(t *testing.T) {
	repo := &fakeBookings{}
	svc := NewBookingService(repo)
	ctx := context.Background()

	_, _, err := svc.List(ctx, -10, 0)
	require.NoError(t, err)
	require.Equal(t, 0, repo.lastOffset)
	require.Equal(t, defaultListLimit, repo.lastLimit)

	_, err = svc.ListWithPayments(ctx, 40, 1000)
	require.NoError(t, err)
	require.Equal(t, 40, repo.lastOffset)
	require.Equal(t, maxListLimit, repo.lastLimit)
}

func TestValidators(t *testing.T) {
	phone := "555-0100"
	require.NoError(t, validateLocation(&types.Location{Name: "Downtown", Address: "1 Main St", ContactNumber: &phone}))
	require.Error(t, validateLocation(&types.Location{Address: "1 Main St"}))

	require.NoError(t, validateCar(&types.Car{Model: "Toyota Corolla", Year: "2022-01-01", RentalRate: "49.99"}))
	require.Error(t, validateCar(&types.Car{Model: "Toyota Corolla", Year: "2022", RentalRate: "49.99"}))
	require.Error(t, validateCar(&types.Car{Model: "Toyota Corolla", Year: "2022-01-01", RentalRate: "cheap"}))

	require.NoError(t, validatePayment(&types.Payment{BookingID: 1, PaymentDate: "2026-05-01", Amount: "100"}))
	require.Error(t, validatePayment(&types.Payment{BookingID: 1, PaymentDate: "2026-05-01"}))

	require.NoError(t, validateReservation(&types.Reservation{CustomerID: 1, CarID: 2, ReservationDate: "2026-04-01", PickupDate: "2026-04-10"}))
	bad := "soon"
	require.Error(t, validateReservation(&types.Reservation{CustomerID: 1, CarID: 2, ReservationDate: "2026-04-01", PickupDate: "2026-04-10", ReturnDate: &bad}))

	require.NoError(t, validateMaintenance(&types.Maintenance{CarID: 1, MaintenanceDate: "2026-03-03"}))
	require.Error(t, validateMaintenance(&types.Maintenance{MaintenanceDate: "2026-03-03"}))

	require.NoError(t, validateInsurance(&types.Insurance{CarID: 1, Provider: "Acme", PolicyNumber: "POL-1", StartDate: "2026-01-01"}))
	require.Error(t, validateInsurance(&types.Insurance{CarID: 1, Provider: "Acme", PolicyNumber: "POL\x00", StartDate: "2026-01-01"}))
}
