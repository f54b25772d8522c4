package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/carhire/apiserver/types"
)

const customerColumns = `id, first_name, last_name, email, phone_number, address, role,
		password_hash, verification_code, verified, created_at, updated_at`

// CustomerRepository handles persistence for customer accounts.
type CustomerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func scanCustomer(row rowScanner) (types.Customer, error) {
	var customer types.Customer
	err := row.Scan(
		&customer.ID,
		&customer.FirstName,
		&customer.LastName,
		&customer.Email,
		&customer.PhoneNumber,
		&customer.Address,
		&customer.Role,
		&customer.PasswordHash,
		&customer.VerificationCode,
		&customer.Verified,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		return types.Customer{}, mapError(err)
	}
	return customer, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int) (types.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	return scanCustomer(r.db.QueryRowContext(ctx, query, id))
}

func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (types.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE email = $1`
	return scanCustomer(r.db.QueryRowContext(ctx, query, email))
}

func (r *CustomerRepository) List(ctx context.Context, offset, limit int) ([]types.Customer, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	const countQuery = `SELECT COUNT(1) FROM customers`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY id OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	customers := make([]types.Customer, 0, limit)
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

// Create inserts a new account. A duplicate email yields ErrConflict.
func (r *CustomerRepository) Create(ctx context.Context, customer types.Customer) (types.Customer, error) {
	now := time.Now().UTC()
	customer.CreatedAt = now
	customer.UpdatedAt = now

	const query = `
		INSERT INTO customers (first_name, last_name, email, phone_number, address, role,
			password_hash, verification_code, verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		customer.FirstName,
		customer.LastName,
		customer.Email,
		customer.PhoneNumber,
		customer.Address,
		customer.Role,
		customer.PasswordHash,
		customer.VerificationCode,
		customer.Verified,
		customer.CreatedAt,
		customer.UpdatedAt,
	).Scan(&customer.ID); err != nil {
		return types.Customer{}, mapError(err)
	}
	return customer, nil
}

// UpdateProfile writes the self-service fields only. Email, role and
// verification state are deliberately absent from the statement.
func (r *CustomerRepository) UpdateProfile(ctx context.Context, customer types.Customer) (types.Customer, error) {
	customer.UpdatedAt = time.Now().UTC()

	const query = `
		UPDATE customers
		SET first_name = $1,
			last_name = $2,
			phone_number = $3,
			address = $4,
			password_hash = $5,
			updated_at = $6
		WHERE id = $7`
	result, err := r.db.ExecContext(
		ctx,
		query,
		customer.FirstName,
		customer.LastName,
		customer.PhoneNumber,
		customer.Address,
		customer.PasswordHash,
		customer.UpdatedAt,
		customer.ID,
	)
	if err != nil {
		return types.Customer{}, mapError(err)
	}
	if err := expectAffected(result); err != nil {
		return types.Customer{}, err
	}
	return customer, nil
}

// MarkVerified consumes a verification code. The email and code must match the
// same unverified row; otherwise ErrNotFound is returned and nothing changes.
func (r *CustomerRepository) MarkVerified(ctx context.Context, email, code string) (int, error) {
	const query = `
		UPDATE customers
		SET verified = TRUE,
			verification_code = NULL,
			updated_at = $3
		WHERE email = $1
			AND verification_code = $2
			AND verified = FALSE
		RETURNING id`
	var id int
	if err := r.db.QueryRowContext(ctx, query, email, code, time.Now().UTC()).Scan(&id); err != nil {
		return 0, mapError(err)
	}
	return id, nil
}

// ReplaceVerificationCode stores a fresh code for an unverified account.
func (r *CustomerRepository) ReplaceVerificationCode(ctx context.Context, email, code string) error {
	const query = `
		UPDATE customers
		SET verification_code = $2,
			updated_at = $3
		WHERE email = $1
			AND verified = FALSE`
	result, err := r.db.ExecContext(ctx, query, email, code, time.Now().UTC())
	if err != nil {
		return mapError(err)
	}
	return expectAffected(result)
}

func (r *CustomerRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM customers WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return mapError(err)
	}
	return expectAffected(result)
}
