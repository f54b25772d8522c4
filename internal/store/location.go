package store

import (
	"context"
	"database/sql"

	"github.com/carhire/apiserver/types"
)

// LocationRepository handles persistence for rental locations.
type LocationRepository struct {
	db *sql.DB
}

func NewLocationRepository(db *sql.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

func scanLocation(row rowScanner) (types.Location, error) {
	var location types.Location
	if err := row.Scan(&location.ID, &location.Name, &location.Address, &location.ContactNumber); err != nil {
		return types.Location{}, mapError(err)
	}
	return location, nil
}

func (r *LocationRepository) List(ctx context.Context, offset, limit int) ([]types.Location, int, error) {
	const countQuery = `SELECT COUNT(1) FROM locations`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	const query = `
		SELECT id, name, address, contact_number
		FROM locations
		ORDER BY id
		OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	locations := make([]types.Location, 0, limit)
	for rows.Next() {
		location, err := scanLocation(rows)
		if err != nil {
			return nil, 0, err
		}
		locations = append(locations, location)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return locations, total, nil
}

func (r *LocationRepository) Get(ctx context.Context, id int) (types.Location, error) {
	const query = `SELECT id, name, address, contact_number FROM locations WHERE id = $1`
	return scanLocation(r.db.QueryRowContext(ctx, query, id))
}

func (r *LocationRepository) Create(ctx context.Context, location types.Location) (types.Location, error) {
	const query = `
		INSERT INTO locations (name, address, contact_number)
		VALUES ($1, $2, $3)
		RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, location.Name, location.Address, location.ContactNumber).Scan(&location.ID); err != nil {
		return types.Location{}, mapError(err)
	}
	return location, nil
}

func (r *LocationRepository) Update(ctx context.Context, location types.Location) (types.Location, error) {
	const query = `
		UPDATE locations
		SET name = $1,
			address = $2,
			contact_number = $3
		WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, location.Name, location.Address, location.ContactNumber, location.ID)
	if err != nil {
		return types.Location{}, mapError(err)
	}
	if err := expectAffected(result); err != nil {
		return types.Location{}, err
	}
	return location, nil
}

func (r *LocationRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	return expectAffected(result)
}
