package cashiers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	cashiers map[int64]*Cashier
	nextID   int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{cashiers: make(map[int64]*Cashier), nextID: 1}
}

func (m *mockRepo) List(ctx context.Context, shopID int64) ([]Cashier, error) {
	var out []Cashier
	for _, c := range m.cashiers {
		if c.ShopID == shopID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockRepo) Get(ctx context.Context, id int64) (Cashier, error) {
	c, ok := m.cashiers[id]
	if !ok {
		return Cashier{}, ErrCashierNotFound
	}
	return *c, nil
}

func (m *mockRepo) Create(ctx context.Context, c Cashier) (Cashier, error) {
	c.ID = m.nextID
	m.nextID++
	c.IsActive = true
	stored := c
	m.cashiers[c.ID] = &stored
	return c, nil
}

func (m *mockRepo) Update(ctx context.Context, id int64, c Cashier) error {
	existing, ok := m.cashiers[id]
	if !ok {
		return ErrCashierNotFound
	}
	existing.Name = c.Name
	existing.Phone = c.Phone
	existing.IsActive = c.IsActive
	return nil
}

func (m *mockRepo) SetPINHash(ctx context.Context, id int64, hash string) error {
	c, ok := m.cashiers[id]
	if !ok {
		return ErrCashierNotFound
	}
	c.PINHash = hash
	return nil
}

func (m *mockRepo) Deactivate(ctx context.Context, id int64) error {
	c, ok := m.cashiers[id]
	if !ok {
		return ErrCashierNotFound
	}
	c.IsActive = false
	return nil
}

func TestCreateHashesPIN(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), Cashier{ShopID: 1, Name: "Wanjiru"}, "4321")
	require.NoError(t, err)
	stored := repo.cashiers[created.ID]
	assert.NotEmpty(t, stored.PINHash)
	assert.NotEqual(t, "4321", stored.PINHash)
}

func TestCreateRejectsShortPIN(t *testing.T) {
	svc := NewService(newMockRepo())
	_, err := svc.Create(context.Background(), Cashier{ShopID: 1, Name: "Wanjiru"}, "12")
	require.Error(t, err)
}

func TestVerifyPIN(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	created, err := svc.Create(context.Background(), Cashier{ShopID: 1, Name: "Wanjiru"}, "4321")
	require.NoError(t, err)
	// The returned value omits the stored hash; verify against the repo copy.
	repo.cashiers[created.ID].IsActive = true

	cashier, err := svc.VerifyPIN(context.Background(), created.ID, "4321")
	require.NoError(t, err)
	assert.Equal(t, "Wanjiru", cashier.Name)

	_, err = svc.VerifyPIN(context.Background(), created.ID, "0000")
	require.ErrorIs(t, err, ErrInvalidPIN)
}

func TestVerifyPINInactiveCashier(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	created, err := svc.Create(context.Background(), Cashier{ShopID: 1, Name: "Wanjiru"}, "4321")
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(context.Background(), created.ID))

	_, err = svc.VerifyPIN(context.Background(), created.ID, "4321")
	require.ErrorIs(t, err, ErrInvalidPIN)
}

func TestSetPINReplacesHash(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	created, err := svc.Create(context.Background(), Cashier{ShopID: 1, Name: "Wanjiru"}, "4321")
	require.NoError(t, err)
	oldHash := repo.cashiers[created.ID].PINHash

	require.NoError(t, svc.SetPIN(context.Background(), created.ID, "9876"))
	assert.NotEqual(t, oldHash, repo.cashiers[created.ID].PINHash)

	_, err = svc.VerifyPIN(context.Background(), created.ID, "9876")
	require.NoError(t, err)
	_, err = svc.VerifyPIN(context.Background(), created.ID, "4321")
	require.ErrorIs(t, err, ErrInvalidPIN)
}
