package store

import (
	"context"
	"database/sql"

	"github.com/carhire/apiserver/types"
)

const carColumns = `c.id, c.model, to_char(c.year, 'YYYY-MM-DD'), c.color, c.rental_rate::text,
		c.available, c.location_id, c.image_key`

// CarRepository handles persistence for cars.
type CarRepository struct {
	db *sql.DB
}

func NewCarRepository(db *sql.DB) *CarRepository {
	return &CarRepository{db: db}
}

func carDest(car *types.Car) []any {
	return []any{
		&car.ID,
		&car.Model,
		&car.Year,
		&car.Color,
		&car.RentalRate,
		&car.Available,
		&car.LocationID,
		&car.ImageKey,
	}
}

func scanCar(row rowScanner) (types.Car, error) {
	var car types.Car
	if err := row.Scan(carDest(&car)...); err != nil {
		return types.Car{}, mapError(err)
	}
	return car, nil
}

func (r *CarRepository) List(ctx context.Context, offset, limit int) ([]types.Car, int, error) {
	const countQuery = `SELECT COUNT(1) FROM cars`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + carColumns + ` FROM cars c ORDER BY c.id OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	cars := make([]types.Car, 0, limit)
	for rows.Next() {
		car, err := scanCar(rows)
		if err != nil {
			return nil, 0, err
		}
		cars = append(cars, car)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return cars, total, nil
}

// ListWithLocation returns cars that are assigned to a location, joined with it.
func (r *CarRepository) ListWithLocation(ctx context.Context, offset, limit int) ([]types.CarWithLocation, error) {
	query := `
		SELECT ` + carColumns + `, l.id, l.name, l.address, l.contact_number
		FROM cars c
		INNER JOIN locations l ON l.id = c.location_id
		ORDER BY c.id
		OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]types.CarWithLocation, 0, limit)
	for rows.Next() {
		var item types.CarWithLocation
		dest := append(carDest(&item.Car),
			&item.Location.ID,
			&item.Location.Name,
			&item.Location.Address,
			&item.Location.ContactNumber,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *CarRepository) Get(ctx context.Context, id int) (types.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars c WHERE c.id = $1`
	return scanCar(r.db.QueryRowContext(ctx, query, id))
}

func (r *CarRepository) Create(ctx context.Context, car types.Car) (types.Car, error) {
	const query = `
		INSERT INTO cars (model, year, color, rental_rate, available, location_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		car.Model,
		car.Year,
		car.Color,
		car.RentalRate,
		car.Available,
		car.LocationID,
	).Scan(&car.ID); err != nil {
		return types.Car{}, mapError(err)
	}
	return car, nil
}

// Update rewrites the car's attributes. The image key is managed by SetImageKey.
func (r *CarRepository) Update(ctx context.Context, car types.Car) (types.Car, error) {
	const query = `
		UPDATE cars
		SET model = $1,
			year = $2,
			color = $3,
			rental_rate = $4,
			available = $5,
			location_id = $6
		WHERE id = $7
		RETURNING image_key`
	err := r.db.QueryRowContext(
		ctx,
		query,
		car.Model,
		car.Year,
		car.Color,
		car.RentalRate,
		car.Available,
		car.LocationID,
		car.ID,
	).Scan(&car.ImageKey)
	if err != nil {
		return types.Car{}, mapError(err)
	}
	return car, nil
}

func (r *CarRepository) SetImageKey(ctx context.Context, id int, key string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE cars SET image_key = $1 WHERE id = $2`, key, id)
	if err != nil {
		return mapError(err)
	}
	return expectAffected(result)
}

func (r *CarRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cars WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	return expectAffected(result)
}
