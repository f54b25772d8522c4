package store

import (
	"context"
	"database/sql"

	"github.com/carhire/apiserver/types"
)

const maintenanceColumns = `id, car_id, to_char(maintenance_date, 'YYYY-MM-DD'), description, cost::text`

// MaintenanceRepository handles persistence for car service records.
type MaintenanceRepository struct {
	db *sql.DB
}

func NewMaintenanceRepository(db *sql.DB) *MaintenanceRepository {
	return &MaintenanceRepository{db: db}
}

func scanMaintenance(row rowScanner) (types.Maintenance, error) {
	var record types.Maintenance
	err := row.Scan(
		&record.ID,
		&record.CarID,
		&record.MaintenanceDate,
		&record.Description,
		&record.Cost,
	)
	if err != nil {
		return types.Maintenance{}, mapError(err)
	}
	return record, nil
}

func (r *MaintenanceRepository) List(ctx context.Context, offset, limit int) ([]types.Maintenance, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM maintenance`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + maintenanceColumns + ` FROM maintenance ORDER BY id OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	records := make([]types.Maintenance, 0, limit)
	for rows.Next() {
		record, err := scanMaintenance(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *MaintenanceRepository) Get(ctx context.Context, id int) (types.Maintenance, error) {
	query := `SELECT ` + maintenanceColumns + ` FROM maintenance WHERE id = $1`
	return scanMaintenance(r.db.QueryRowContext(ctx, query, id))
}

func (r *MaintenanceRepository) Create(ctx context.Context, record types.Maintenance) (types.Maintenance, error) {
	const query = `
		INSERT INTO maintenance (car_id, maintenance_date, description, cost)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		record.CarID,
		record.MaintenanceDate,
		record.Description,
		record.Cost,
	).Scan(&record.ID); err != nil {
		return types.Maintenance{}, mapError(err)
	}
	return record, nil
}

func (r *MaintenanceRepository) Update(ctx context.Context, record types.Maintenance) (types.Maintenance, error) {
	const query = `
		UPDATE maintenance
		SET car_id = $1,
			maintenance_date = $2,
			description = $3,
			cost = $4
		WHERE id = $5`
	result, err := r.db.ExecContext(
		ctx,
		query,
		record.CarID,
		record.MaintenanceDate,
		record.Description,
		record.Cost,
		record.ID,
	)
	if err != nil {
		return types.Maintenance{}, mapError(err)
	}
	if err := expectAffected(result); err != nil {
		return types.Maintenance{}, err
	}
	return record, nil
}

func (r *MaintenanceRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM maintenance WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	return expectAffected(result)
}
