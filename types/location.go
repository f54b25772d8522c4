package types

// Location is a branch where cars are picked up and returned.
type Location struct {
	ID            int     `json:"locationId" db:"id"`
	Name          string  `json:"locationName" db:"name"`
	Address       string  `json:"address" db:"address"`
	ContactNumber *string `json:"contactNumber,omitempty" db:"contact_number"`
}
