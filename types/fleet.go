package types

// Maintenance is a service record for a car.
type Maintenance struct {
	ID              int     `json:"maintenanceId" db:"id"`
	CarID           int     `json:"carId" db:"car_id"`
	MaintenanceDate string  `json:"maintenanceDate" db:"maintenance_date"`
	Description     *string `json:"description,omitempty" db:"description"`
	Cost            *string `json:"cost,omitempty" db:"cost"`
}

// Insurance is a policy covering a car.
type Insurance struct {
	ID           int     `json:"insuranceId" db:"id"`
	CarID        int     `json:"carId" db:"car_id"`
	Provider     string  `json:"insuranceProvider" db:"provider"`
	PolicyNumber string  `json:"policyNumber" db:"policy_number"`
	StartDate    string  `json:"startDate" db:"start_date"`
	EndDate      *string `json:"endDate,omitempty" db:"end_date"`
}
