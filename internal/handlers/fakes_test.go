package handlers

import (
	"context"
	"sync"

	"github.com/carhire/apiserver/internal/store"
	"github.com/carhire/apiserver/types"
)

type memAccounts struct {
	mu     sync.Mutex
	nextID int
	rows   map[int]types.Customer
}

func newMemAccounts() *memAccounts {
	return &memAccounts{nextID: 1, rows: map[int]types.Customer{}}
}

func (m *memAccounts) GetByID(_ context.Context, id int) (types.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return types.Customer{}, store.ErrNotFound
	}
	return c, nil
}

func (m *memAccounts) GetByEmail(_ context.Context, email string) (types.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.rows {
		if c.Email == email {
			return c, nil
		}
	}
	return types.Customer{}, store.ErrNotFound
}

func (m *memAccounts) Create(_ context.Context, c types.Customer) (types.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.rows {
		if existing.Email == c.Email {
			return types.Customer{}, store.ErrConflict
		}
	}
	c.ID = m.nextID
	m.nextID++
	m.rows[c.ID] = c
	return c, nil
}

func (m *memAccounts) UpdateProfile(_ context.Context, c types.Customer) (types.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[c.ID]; !ok {
		return types.Customer{}, store.ErrNotFound
	}
	m.rows[c.ID] = c
	return c, nil
}

func (m *memAccounts) MarkVerified(_ context.Context, email, code string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.rows {
		if c.Email == email && !c.Verified && c.VerificationCode != nil && *c.VerificationCode == code {
			c.Verified = true
			c.VerificationCode = nil
			m.rows[id] = c
			return id, nil
		}
	}
	return 0, store.ErrNotFound
}

func (m *memAccounts) ReplaceVerificationCode(_ context.Context, email, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.rows {
		if c.Email == email && !c.Verified {
			c.VerificationCode = &code
			m.rows[id] = c
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memAccounts) List(_ context.Context, _, _ int) ([]types.Customer, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.Customer, 0, len(m.rows))
	for _, c := range m.rows {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (m *memAccounts) Delete(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memAccounts) promote(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.rows[id]
	c.Role = types.RoleAdmin
	m.rows[id] = c
}

func (m *memAccounts) code(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.rows {
		if c.Email == email && c.VerificationCode != nil {
			return *c.VerificationCode
		}
	}
	return ""
}

type memBookings struct {
	mu   sync.Mutex
	rows map[int]types.Booking
}

func (m *memBookings) List(context.Context, int, int) ([]types.Booking, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.Booking, 0, len(m.rows))
	for _, b := range m.rows {
		out = append(out, b)
	}
	return out, len(out), nil
}

func (m *memBookings) Get(_ context.Context, id int) (types.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return types.Booking{}, store.ErrNotFound
	}
	return b, nil
}

func (m *memBookings) Create(_ context.Context, b types.Booking) (types.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = len(m.rows) + 1
	m.rows[b.ID] = b
	return b, nil
}

func (m *memBookings) Update(_ context.Context, b types.Booking) (types.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[b.ID]; !ok {
		return types.Booking{}, store.ErrNotFound
	}
	m.rows[b.ID] = b
	return b, nil
}

func (m *memBookings) Delete(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memBookings) ListByCustomer(_ context.Context, customerID int) ([]types.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.Booking
	for _, b := range m.rows {
		if b.CustomerID == customerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memBookings) ListWithPayments(context.Context, int, int) ([]types.BookingWithPayments, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return nil, nil
}

type memReservations struct{}

func (memReservations) List(context.Context, int, int) ([]types.Reservation, int, error) {
	return nil, 0, nil
}

func (memReservations) Get(context.Context, int) (types.Reservation, error) {
	return types.Reservation{}, store.ErrNotFound
}

func (memReservations) Create(_ context.Context, r types.Reservation) (types.Reservation, error) {
	r.ID = 1
	return r, nil
}

func (memReservations) Update(context.Context, types.Reservation) (types.Reservation, error) {
	return types.Reservation{}, store.ErrNotFound
}

func (memReservations) Delete(context.Context, int) error { return store.ErrNotFound }

func (memReservations) ListByCustomer(context.Context, int) ([]types.Reservation, error) {
	return nil, nil
}

type memCars struct {
	mu   sync.Mutex
	rows map[int]types.Car
}

func (m *memCars) List(context.Context, int, int) ([]types.Car, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.Car, 0, len(m.rows))
	for _, c := range m.rows {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (m *memCars) Get(_ context.Context, id int) (types.Car, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return types.Car{}, store.ErrNotFound
	}
	return c, nil
}

func (m *memCars) Create(_ context.Context, c types.Car) (types.Car, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.LocationID != nil && *c.LocationID > 100 {
		return types.Car{}, store.ErrForeignKey
	}
	c.ID = len(m.rows) + 1
	m.rows[c.ID] = c
	return c, nil
}

func (m *memCars) Update(_ context.Context, c types.Car) (types.Car, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[c.ID]; !ok {
		return types.Car{}, store.ErrNotFound
	}
	m.rows[c.ID] = c
	return c, nil
}

func (m *memCars) Delete(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memCars) ListWithLocation(context.Context, int, int) ([]types.CarWithLocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return nil, nil
}

func (m *memCars) SetImageKey(_ context.Context, id int, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return store.ErrNotFound
	}
	c.ImageKey = &key
	m.rows[id] = c
	return nil
}

func (m *memBookings) put(b types.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[b.ID] = b
}

func (m *memCars) put(c types.Car) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[c.ID] = c
}

func (m *memAccounts) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}
