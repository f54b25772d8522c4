package types

import "time"

// Role distinguishes administrators from standard customers.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Customer represents an account in the system.
// Both customers and administrators are stored as customers; Role tells them apart.
type Customer struct {
	// ID is the unique identifier of the account, assigned on creation.
	ID int `json:"customerId" db:"id"`

	// FirstName is the customer's given name.
	FirstName string `json:"firstName" db:"first_name"`

	// LastName is the customer's family name.
	LastName string `json:"lastName" db:"last_name"`

	// Email is the unique login identifier.
	Email string `json:"email" db:"email"`

	// PhoneNumber is an optional contact number.
	PhoneNumber *string `json:"phoneNumber,omitempty" db:"phone_number"`

	// Address is an optional postal address.
	Address *string `json:"address,omitempty" db:"address"`

	// Role is set at creation and only the admin creation path can set RoleAdmin.
	Role Role `json:"role" db:"role"`

	// PasswordHash stores the hashed representation of the password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// VerificationCode is present only while the account is unverified.
	// This field is never exposed in API responses.
	VerificationCode *string `json:"-" db:"verification_code"`

	// Verified becomes true once the emailed code has been presented.
	// It never reverts to false.
	Verified bool `json:"verified" db:"verified"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the account.
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// IsAdmin reports whether the account holds administrator privileges.
func (c Customer) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// AdminView is the public projection returned when an administrator is created.
type AdminView struct {
	ID        int    `json:"customerId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
}

// AdminView projects the account onto its public administrator fields.
func (c Customer) AdminView() AdminView {
	return AdminView{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Role:      c.Role,
	}
}
