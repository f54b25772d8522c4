package services

import (
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/carhire/apiserver/types"
)

const dateLayout = "2006-01-02"

var (
	isDate  = validation.Date(dateLayout).Error("must be a date in YYYY-MM-DD format")
	isMoney = validation.Match(regexp.MustCompile(`^\d{1,8}(\.\d{1,2})?$`)).Error("must be a decimal amount with at most two fraction digits")
	isRef   = validation.Min(1)
)

func validateLocation(l *types.Location) error {
	return validation.ValidateStruct(l,
		validation.Field(&l.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&l.Address, validation.Required),
		validation.Field(&l.ContactNumber, validation.Length(0, 50)),
	)
}

func validateCar(c *types.Car) error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Model, validation.Required, validation.Length(1, 255)),
		validation.Field(&c.Year, validation.Required, isDate),
		validation.Field(&c.Color, validation.Length(0, 64)),
		validation.Field(&c.RentalRate, validation.Required, isMoney),
		validation.Field(&c.LocationID, isRef),
	)
}

func validateReservation(r *types.Reservation) error {
	return validation.ValidateStruct(r,
		validation.Field(&r.CustomerID, validation.Required, isRef),
		validation.Field(&r.CarID, validation.Required, isRef),
		validation.Field(&r.ReservationDate, validation.Required, isDate),
		validation.Field(&r.PickupDate, validation.Required, isDate),
		validation.Field(&r.ReturnDate, isDate),
	)
}

func validateBooking(b *types.Booking) error {
	return validation.ValidateStruct(b,
		validation.Field(&b.CarID, validation.Required, isRef),
		validation.Field(&b.CustomerID, validation.Required, isRef),
		validation.Field(&b.RentalStartDate, validation.Required, isDate),
		validation.Field(&b.RentalEndDate, validation.Required, isDate, validation.By(notBefore(b.RentalStartDate))),
		validation.Field(&b.TotalAmount, isMoney),
	)
}

func validatePayment(p *types.Payment) error {
	return validation.ValidateStruct(p,
		validation.Field(&p.BookingID, validation.Required, isRef),
		validation.Field(&p.PaymentDate, validation.Required, isDate),
		validation.Field(&p.Amount, validation.Required, isMoney),
		validation.Field(&p.PaymentMethod, validation.Length(0, 64)),
	)
}

func validateMaintenance(m *types.Maintenance) error {
	return validation.ValidateStruct(m,
		validation.Field(&m.CarID, validation.Required, isRef),
		validation.Field(&m.MaintenanceDate, validation.Required, isDate),
		validation.Field(&m.Cost, isMoney),
	)
}

func validateInsurance(i *types.Insurance) error {
	return validation.ValidateStruct(i,
		validation.Field(&i.CarID, validation.Required, isRef),
		validation.Field(&i.Provider, validation.Required, validation.Length(1, 255)),
		validation.Field(&i.PolicyNumber, validation.Required, is.PrintableASCII, validation.Length(1, 255)),
		validation.Field(&i.StartDate, validation.Required, isDate),
		validation.Field(&i.EndDate, isDate),
	)
}

// notBefore rejects a YYYY-MM-DD date earlier than start. Malformed dates are
// left to the date rule.
func notBefore(start string) validation.RuleFunc {
	return func(value interface{}) error {
		end, _ := value.(string)
		if len(start) != len(dateLayout) || len(end) != len(dateLayout) {
			return nil
		}
		if end < start {
			return errors.New("must not be before the start date")
		}
		return nil
	}
}
