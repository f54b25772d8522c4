package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestBookingListWithPaymentsGroupsRows(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	columns := []string{
		"id", "car_id", "customer_id", "rental_start_date", "rental_end_date", "total_amount",
		"p_id", "p_booking_id", "p_date", "p_amount", "p_method",
	}
	mock.ExpectQuery(`(?s)LEFT JOIN payments p ON p.booking_id = b.id`).
		WithArgs(0, 20).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(1, 2, 3, "2024-06-01", "2024-06-05", "200.00", 10, 1, "2024-06-01", "100.00", "card").
			AddRow(1, 2, 3, "2024-06-01", "2024-06-05", "200.00", 11, 1, "2024-06-05", "100.00", nil).
			AddRow(2, 4, 3, "2024-07-01", "2024-07-02", nil, nil, nil, nil, nil, nil))

	items, err := repo.ListWithPayments(context.Background(), 0, 20)
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.Equal(t, 1, items[0].Booking.ID)
	require.Len(t, items[0].Payments, 2)
	require.Equal(t, "card", *items[0].Payments[0].PaymentMethod)
	require.Nil(t, items[0].Payments[1].PaymentMethod)

	require.Equal(t, 2, items[1].Booking.ID)
	require.Nil(t, items[1].Booking.TotalAmount)
	require.NotNil(t, items[1].Payments)
	require.Empty(t, items[1].Payments)
}

func TestBookingListByCustomer(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	mock.ExpectQuery(`(?s)FROM bookings b WHERE b.customer_id = \$1`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "car_id", "customer_id", "s", "e", "t"}))

	bookings, err := repo.ListByCustomer(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, bookings)
	require.Empty(t, bookings)
}

func TestBookingDeleteMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	mock.ExpectExec(`DELETE FROM bookings WHERE id = \$1`).
		WithArgs(8).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.ErrorIs(t, repo.Delete(context.Background(), 8), ErrNotFound)
}
