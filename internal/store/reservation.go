package store

import (
	"context"
	"database/sql"

	"github.com/carhire/apiserver/types"
)

const reservationColumns = `id, customer_id, car_id, to_char(reservation_date, 'YYYY-MM-DD'),
		to_char(pickup_date, 'YYYY-MM-DD'), to_char(return_date, 'YYYY-MM-DD')`

// ReservationRepository handles persistence for reservations.
type ReservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func scanReservation(row rowScanner) (types.Reservation, error) {
	var reservation types.Reservation
	err := row.Scan(
		&reservation.ID,
		&reservation.CustomerID,
		&reservation.CarID,
		&reservation.ReservationDate,
		&reservation.PickupDate,
		&reservation.ReturnDate,
	)
	if err != nil {
		return types.Reservation{}, mapError(err)
	}
	return reservation, nil
}

func (r *ReservationRepository) List(ctx context.Context, offset, limit int) ([]types.Reservation, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM reservations`).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `SELECT ` + reservationColumns + ` FROM reservations ORDER BY id OFFSET $1 LIMIT $2`
	items, err := r.query(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListByCustomer returns every reservation held by the customer.
func (r *ReservationRepository) ListByCustomer(ctx context.Context, customerID int) ([]types.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE customer_id = $1 ORDER BY id`
	return r.query(ctx, query, customerID)
}

func (r *ReservationRepository) query(ctx context.Context, query string, args ...any) ([]types.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := []types.Reservation{}
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *ReservationRepository) Get(ctx context.Context, id int) (types.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	return scanReservation(r.db.QueryRowContext(ctx, query, id))
}

func (r *ReservationRepository) Create(ctx context.Context, reservation types.Reservation) (types.Reservation, error) {
	const query = `
		INSERT INTO reservations (customer_id, car_id, reservation_date, pickup_date, return_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		reservation.CustomerID,
		reservation.CarID,
		reservation.ReservationDate,
		reservation.PickupDate,
		reservation.ReturnDate,
	).Scan(&reservation.ID); err != nil {
		return types.Reservation{}, mapError(err)
	}
	return reservation, nil
}

func (r *ReservationRepository) Update(ctx context.Context, reservation types.Reservation) (types.Reservation, error) {
	const query = `
		UPDATE reservations
		SET customer_id = $1,
			car_id = $2,
			reservation_date = $3,
			pickup_date = $4,
			return_date = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		reservation.CustomerID,
		reservation.CarID,
		reservation.ReservationDate,
		reservation.PickupDate,
		reservation.ReturnDate,
		reservation.ID,
	)
	if err != nil {
		return types.Reservation{}, mapError(err)
	}
	if err := expectAffected(result); err != nil {
		return types.Reservation{}, err
	}
	return reservation, nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	return expectAffected(result)
}
