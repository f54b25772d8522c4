package store

import (
	"context"
	"database/sql"

	"github.com/carhire/apiserver/types"
)

const paymentColumns = `id, booking_id, to_char(payment_date, 'YYYY-MM-DD'), amount::text, payment_method`

// PaymentRepository handles persistence for payments.
type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func scanPayment(row rowScanner) (types.Payment, error) {
	var payment types.Payment
	err := row.Scan(
		&payment.ID,
		&payment.BookingID,
		&payment.PaymentDate,
		&payment.Amount,
		&payment.PaymentMethod,
	)
	if err != nil {
		return types.Payment{}, mapError(err)
	}
	return payment, nil
}

func (r *PaymentRepository) List(ctx context.Context, offset, limit int) ([]types.Payment, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM payments`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + paymentColumns + ` FROM payments ORDER BY id OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	payments := make([]types.Payment, 0, limit)
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func (r *PaymentRepository) Get(ctx context.Context, id int) (types.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return scanPayment(r.db.QueryRowContext(ctx, query, id))
}

func (r *PaymentRepository) Create(ctx context.Context, payment types.Payment) (types.Payment, error) {
	const query = `
		INSERT INTO payments (booking_id, payment_date, amount, payment_method)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		payment.BookingID,
		payment.PaymentDate,
		payment.Amount,
		payment.PaymentMethod,
	).Scan(&payment.ID); err != nil {
		return types.Payment{}, mapError(err)
	}
	return payment, nil
}

func (r *PaymentRepository) Update(ctx context.Context, payment types.Payment) (types.Payment, error) {
	const query = `
		UPDATE payments
		SET booking_id = $1,
			payment_date = $2,
			amount = $3,
			payment_method = $4
		WHERE id = $5`
	result, err := r.db.ExecContext(
		ctx,
		query,
		payment.BookingID,
		payment.PaymentDate,
		payment.Amount,
		payment.PaymentMethod,
		payment.ID,
	)
	if err != nil {
		return types.Payment{}, mapError(err)
	}
	if err := expectAffected(result); err != nil {
		return types.Payment{}, err
	}
	return payment, nil
}

func (r *PaymentRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	return expectAffected(result)
}
