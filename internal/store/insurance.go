package store

import (
	"context"
	"database/sql"

	"github.com/carhire/apiserver/types"
)

const insuranceColumns = `id, car_id, provider, policy_number, to_char(start_date, 'YYYY-MM-DD'),
		to_char(end_date, 'YYYY-MM-DD')`

// InsuranceRepository handles persistence for insurance policies.
type InsuranceRepository struct {
	db *sql.DB
}

func NewInsuranceRepository(db *sql.DB) *InsuranceRepository {
	return &InsuranceRepository{db: db}
}

func scanInsurance(row rowScanner) (types.Insurance, error) {
	var policy types.Insurance
	err := row.Scan(
		&policy.ID,
		&policy.CarID,
		&policy.Provider,
		&policy.PolicyNumber,
		&policy.StartDate,
		&policy.EndDate,
	)
	if err != nil {
		return types.Insurance{}, mapError(err)
	}
	return policy, nil
}

func (r *InsuranceRepository) List(ctx context.Context, offset, limit int) ([]types.Insurance, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM insurance`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + insuranceColumns + ` FROM insurance ORDER BY id OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	policies := make([]types.Insurance, 0, limit)
	for rows.Next() {
		policy, err := scanInsurance(rows)
		if err != nil {
			return nil, 0, err
		}
		policies = append(policies, policy)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return policies, total, nil
}

func (r *InsuranceRepository) Get(ctx context.Context, id int) (types.Insurance, error) {
	query := `SELECT ` + insuranceColumns + ` FROM insurance WHERE id = $1`
	return scanInsurance(r.db.QueryRowContext(ctx, query, id))
}

func (r *InsuranceRepository) Create(ctx context.Context, policy types.Insurance) (types.Insurance, error) {
	const query = `
		INSERT INTO insurance (car_id, provider, policy_number, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		policy.CarID,
		policy.Provider,
		policy.PolicyNumber,
		policy.StartDate,
		policy.EndDate,
	).Scan(&policy.ID); err != nil {
		return types.Insurance{}, mapError(err)
	}
	return policy, nil
}

func (r *InsuranceRepository) Update(ctx context.Context, policy types.Insurance) (types.Insurance, error) {
	const query = `
		UPDATE insurance
		SET car_id = $1,
			provider = $2,
			policy_number = $3,
			start_date = $4,
			end_date = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		policy.CarID,
		policy.Provider,
		policy.PolicyNumber,
		policy.StartDate,
		policy.EndDate,
		policy.ID,
	)
	if err != nil {
		return types.Insurance{}, mapError(err)
	}
	if err := expectAffected(result); err != nil {
		return types.Insurance{}, err
	}
	return policy, nil
}

func (r *InsuranceRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM insurance WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	return expectAffected(result)
}
