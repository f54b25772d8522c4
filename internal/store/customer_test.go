package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/carhire/apiserver/types"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

var customerRowColumns = []string{
	"id", "first_name", "last_name", "email", "phone_number", "address", "role",
	"password_hash", "verification_code", "verified", "created_at", "updated_at",
}

func TestCustomerCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomerRepository(db)

	code := "123456"
	mock.ExpectQuery(`(?s)INSERT INTO customers .* RETURNING id`).
		WithArgs("Ada", "Lovelace", "ada@example.com", nil, nil, "user",
			"hash", "123456", false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	got, err := repo.Create(context.Background(), types.Customer{
		FirstName:        "Ada",
		LastName:         "Lovelace",
		Email:            "ada@example.com",
		Role:             types.RoleUser,
		PasswordHash:     "hash",
		VerificationCode: &code,
	})
	require.NoError(t, err)
	require.Equal(t, 7, got.ID)
	require.False(t, got.CreatedAt.IsZero())
	require.Equal(t, got.CreatedAt, got.UpdatedAt)
}

func TestCustomerCreateDuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomerRepository(db)

	mock.ExpectQuery(`(?s)INSERT INTO customers`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "customers_email_key"})

	_, err := repo.Create(context.Background(), types.Customer{Email: "ada@example.com", Role: types.RoleUser})
	require.ErrorIs(t, err, ErrConflict)
}

func TestCustomerGetByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomerRepository(db)

	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`(?s)SELECT .* FROM customers WHERE email = \$1`).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows(customerRowColumns).AddRow(
			3, "Ada", "Lovelace", "ada@example.com", "555-0100", nil, "admin",
			"hash", nil, true, created, created,
		))

	got, err := repo.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, 3, got.ID)
	require.Equal(t, types.RoleAdmin, got.Role)
	require.NotNil(t, got.PhoneNumber)
	require.Equal(t, "555-0100", *got.PhoneNumber)
	require.Nil(t, got.Address)
	require.Nil(t, got.VerificationCode)
	require.True(t, got.Verified)
}

func TestCustomerGetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomerRepository(db)

	mock.ExpectQuery(`(?s)SELECT .* FROM customers WHERE id = \$1`).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 99)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCustomerMarkVerified(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomerRepository(db)

	mock.ExpectQuery(`(?s)UPDATE customers\s+SET verified = TRUE,\s+verification_code = NULL.*WHERE email = \$1\s+AND verification_code = \$2\s+AND verified = FALSE`).
		WithArgs("ada@example.com", "123456", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	id, err := repo.MarkVerified(context.Background(), "ada@example.com", "123456")
	require.NoError(t, err)
	require.Equal(t, 7, id)
}

func TestCustomerMarkVerifiedNoMatch(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomerRepository(db)

	mock.ExpectQuery(`(?s)UPDATE customers\s+SET verified = TRUE`).
		WithArgs("ada@example.com", "000000", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.MarkVerified(context.Background(), "ada@example.com", "000000")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCustomerReplaceVerificationCodeOnVerifiedAccount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomerRepository(db)

	mock.ExpectExec(`(?s)UPDATE customers\s+SET verification_code = \$2`).
		WithArgs("ada@example.com", "654321", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ReplaceVerificationCode(context.Background(), "ada@example.com", "654321")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCustomerUpdateProfileLeavesRoleAlone(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomerRepository(db)

	mock.ExpectExec(`(?s)UPDATE customers\s+SET first_name = \$1,\s+last_name = \$2,\s+phone_number = \$3,\s+address = \$4,\s+password_hash = \$5,\s+updated_at = \$6\s+WHERE id = \$7`).
		WithArgs("Ada", "King", nil, nil, "hash", sqlmock.AnyArg(), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := repo.UpdateProfile(context.Background(), types.Customer{
		ID:           7,
		FirstName:    "Ada",
		LastName:     "King",
		PasswordHash: "hash",
		Role:         types.RoleAdmin,
	})
	require.NoError(t, err)
	require.Equal(t, "King", got.LastName)
}

func TestCustomerDeleteMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomerRepository(db)

	mock.ExpectExec(`DELETE FROM customers WHERE id = \$1`).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.ErrorIs(t, repo.Delete(context.Background(), 5), ErrNotFound)
}
