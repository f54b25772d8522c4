package store

import (
	"context"
	"database/sql"

	"github.com/carhire/apiserver/types"
)

const bookingColumns = `b.id, b.car_id, b.customer_id, to_char(b.rental_start_date, 'YYYY-MM-DD'),
		to_char(b.rental_end_date, 'YYYY-MM-DD'), b.total_amount::text`

// BookingRepository handles persistence for bookings.
type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func bookingDest(booking *types.Booking) []any {
	return []any{
		&booking.ID,
		&booking.CarID,
		&booking.CustomerID,
		&booking.RentalStartDate,
		&booking.RentalEndDate,
		&booking.TotalAmount,
	}
}

func scanBooking(row rowScanner) (types.Booking, error) {
	var booking types.Booking
	if err := row.Scan(bookingDest(&booking)...); err != nil {
		return types.Booking{}, mapError(err)
	}
	return booking, nil
}

func (r *BookingRepository) List(ctx context.Context, offset, limit int) ([]types.Booking, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM bookings`).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `SELECT ` + bookingColumns + ` FROM bookings b ORDER BY b.id OFFSET $1 LIMIT $2`
	items, err := r.query(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListByCustomer returns every booking made by the customer.
func (r *BookingRepository) ListByCustomer(ctx context.Context, customerID int) ([]types.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.customer_id = $1 ORDER BY b.id`
	return r.query(ctx, query, customerID)
}

func (r *BookingRepository) query(ctx context.Context, query string, args ...any) ([]types.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := []types.Booking{}
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

// ListWithPayments returns a page of bookings, each with all of its payments.
func (r *BookingRepository) ListWithPayments(ctx context.Context, offset, limit int) ([]types.BookingWithPayments, error) {
	query := `
		SELECT ` + bookingColumns + `,
			p.id, p.booking_id, to_char(p.payment_date, 'YYYY-MM-DD'), p.amount::text, p.payment_method
		FROM (SELECT * FROM bookings ORDER BY id OFFSET $1 LIMIT $2) b
		LEFT JOIN payments p ON p.booking_id = b.id
		ORDER BY b.id, p.id`
	rows, err := r.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []types.BookingWithPayments{}
	for rows.Next() {
		var booking types.Booking
		var paymentID, paymentBookingID sql.NullInt64
		var paymentDate, amount, method sql.NullString
		dest := append(bookingDest(&booking), &paymentID, &paymentBookingID, &paymentDate, &amount, &method)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		if len(items) == 0 || items[len(items)-1].Booking.ID != booking.ID {
			items = append(items, types.BookingWithPayments{Booking: booking, Payments: []types.Payment{}})
		}
		if paymentID.Valid {
			payment := types.Payment{
				ID:          int(paymentID.Int64),
				BookingID:   int(paymentBookingID.Int64),
				PaymentDate: paymentDate.String,
				Amount:      amount.String,
			}
			if method.Valid {
				payment.PaymentMethod = &method.String
			}
			last := &items[len(items)-1]
			last.Payments = append(last.Payments, payment)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *BookingRepository) Get(ctx context.Context, id int) (types.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = $1`
	return scanBooking(r.db.QueryRowContext(ctx, query, id))
}

func (r *BookingRepository) Create(ctx context.Context, booking types.Booking) (types.Booking, error) {
	const query = `
		INSERT INTO bookings (car_id, customer_id, rental_start_date, rental_end_date, total_amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		booking.CarID,
		booking.CustomerID,
		booking.RentalStartDate,
		booking.RentalEndDate,
		booking.TotalAmount,
	).Scan(&booking.ID); err != nil {
		return types.Booking{}, mapError(err)
	}
	return booking, nil
}

func (r *BookingRepository) Update(ctx context.Context, booking types.Booking) (types.Booking, error) {
	const query = `
		UPDATE bookings
		SET car_id = $1,
			customer_id = $2,
			rental_start_date = $3,
			rental_end_date = $4,
			total_amount = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		booking.CarID,
		booking.CustomerID,
		booking.RentalStartDate,
		booking.RentalEndDate,
		booking.TotalAmount,
		booking.ID,
	)
	if err != nil {
		return types.Booking{}, mapError(err)
	}
	if err := expectAffected(result); err != nil {
		return types.Booking{}, err
	}
	return booking, nil
}

func (r *BookingRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	return expectAffected(result)
}
