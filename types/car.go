package types

// Car represents a vehicle in the rental fleet.
type Car struct {
	// ID is the unique identifier of the car.
	ID int `json:"carId" db:"id"`

	// Model is the make and model, e.g. "Toyota Corolla".
	Model string `json:"carModel" db:"model"`

	// Year is the model year as a YYYY-MM-DD date.
	Year string `json:"year" db:"year"`

	// Color is the optional exterior colour.
	Color *string `json:"color,omitempty" db:"color"`

	// RentalRate is the daily rate as a decimal string with two fraction digits.
	RentalRate string `json:"rentalRate" db:"rental_rate"`

	// Available reports whether the car can currently be rented.
	// Unset means available.
	Available *bool `json:"availability" db:"available"`

	// LocationID references the branch holding the car. It is cleared
	// when the location is deleted.
	LocationID *int `json:"locationId,omitempty" db:"location_id"`

	// ImageKey is the object storage key of the car's photo, if any.
	// Only the image upload sets it.
	ImageKey *string `json:"imageKey,omitempty" db:"image_key"`
}

// CarWithLocation pairs a car with the location it is assigned to.
type CarWithLocation struct {
	Car      Car      `json:"car"`
	Location Location `json:"location"`
}
