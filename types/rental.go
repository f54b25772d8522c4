package types

// Reservation holds a car for a customer ahead of pickup.
type Reservation struct {
	ID              int     `json:"reservationId" db:"id"`
	CustomerID      int     `json:"customerId" db:"customer_id"`
	CarID           int     `json:"carId" db:"car_id"`
	ReservationDate string  `json:"reservationDate" db:"reservation_date"`
	PickupDate      string  `json:"pickupDate" db:"pickup_date"`
	ReturnDate      *string `json:"returnDate,omitempty" db:"return_date"`
}

// Booking is a confirmed rental of a car for a date range.
type Booking struct {
	ID              int     `json:"bookingId" db:"id"`
	CarID           int     `json:"carId" db:"car_id"`
	CustomerID      int     `json:"customerId" db:"customer_id"`
	RentalStartDate string  `json:"rentalStartDate" db:"rental_start_date"`
	RentalEndDate   string  `json:"rentalEndDate" db:"rental_end_date"`
	TotalAmount     *string `json:"totalAmount,omitempty" db:"total_amount"`
}

// BookingWithPayments pairs a booking with every payment made against it.
type BookingWithPayments struct {
	Booking  Booking   `json:"booking"`
	Payments []Payment `json:"payments"`
}

// Payment records money received for a booking.
type Payment struct {
	ID            int     `json:"paymentId" db:"id"`
	BookingID     int     `json:"bookingId" db:"booking_id"`
	PaymentDate   string  `json:"paymentDate" db:"payment_date"`
	Amount        string  `json:"amount" db:"amount"`
	PaymentMethod *string `json:"paymentMethod,omitempty" db:"payment_method"`
}
