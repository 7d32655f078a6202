package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	products  map[int64]*Product
	movements []StockMovement
	nextID    int64

	txError error
}

func newMockRepo() *mockRepo {
	return &mockRepo{products: make(map[int64]*Product), nextID: 1}
}

func (m *mockRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if m.txError != nil {
		return m.txError
	}
	movementsBefore := len(m.movements)
	stockBefore := make(map[int64]int, len(m.products))
	for id, p := range m.products {
		stockBefore[id] = p.CurrentStock
	}
	if err := fn(ctx, &mockTx{repo: m}); err != nil {
		m.movements = m.movements[:movementsBefore]
		for id, stock := range stockBefore {
			m.products[id].CurrentStock = stock
		}
		return err
	}
	return nil
}

func (m *mockRepo) List(ctx context.Context, filter ListFilter) ([]Product, int, error) {
	var out []Product
	for _, p := range m.products {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (m *mockRepo) Get(ctx context.Context, id int64) (Product, error) {
	p, ok := m.products[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return *p, nil
}

func (m *mockRepo) Create(ctx context.Context, p Product) (Product, error) {
	p.ID = m.nextID
	m.nextID++
	stored := p
	m.products[p.ID] = &stored
	return p, nil
}

func (m *mockRepo) Update(ctx context.Context, id int64, p Product) error {
	if _, ok := m.products[id]; !ok {
		return ErrProductNotFound
	}
	p.ID = id
	stored := p
	m.products[id] = &stored
	return nil
}

func (m *mockRepo) Deactivate(ctx context.Context, id int64) error {
	p, ok := m.products[id]
	if !ok {
		return ErrProductNotFound
	}
	p.IsActive = false
	return nil
}

func (m *mockRepo) StockHistory(ctx context.Context, filter HistoryFilter) ([]StockMovement, error) {
	var out []StockMovement
	for _, mv := range m.movements {
		if mv.ProductID == filter.ProductID {
			out = append(out, mv)
		}
	}
	return out, nil
}

func (m *mockRepo) LowStock(ctx context.Context, shopID int64) ([]Product, error) {
	var out []Product
	for _, p := range m.products {
		if p.ShopID == shopID && p.IsActive && p.CurrentStock <= p.MinStockLevel {
			out = append(out, *p)
		}
	}
	return out, nil
}

type mockTx struct {
	repo *mockRepo
}

func (t *mockTx) GetForUpdate(ctx context.Context, id int64) (Product, error) {
	p, ok := t.repo.products[id]
	if !ok || !p.IsActive {
		return Product{}, ErrProductNotFound
	}
	return *p, nil
}

func (t *mockTx) ApplyStockChange(ctx context.Context, id int64, newStock int, touch MovementType) error {
	p, ok := t.repo.products[id]
	if !ok {
		return ErrProductNotFound
	}
	p.CurrentStock = newStock
	return nil
}

func (t *mockTx) InsertMovement(ctx context.Context, m StockMovement) error {
	t.repo.movements = append(t.repo.movements, m)
	return nil
}

func seedProduct(repo *mockRepo, stock int) Product {
	p, _ := repo.Create(context.Background(), Product{
		ShopID:          1,
		Name:            "Cooking Oil 1L",
		BuyingPrice:     250,
		MinSellingPrice: 320,
		CurrentStock:    stock,
		MinStockLevel:   5,
		IsActive:        true,
	})
	return p
}

func TestCreatePostsOpeningStockMovement(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)

	created, err := svc.Create(context.Background(), Product{
		ShopID:          1,
		Name:            "Cooking Oil 1L",
		BuyingPrice:     250,
		MinSellingPrice: 320,
		CurrentStock:    12,
	})
	require.NoError(t, err)
	assert.True(t, created.IsActive)

	require.Len(t, repo.movements, 1)
	mv := repo.movements[0]
	assert.Equal(t, MovementRestock, mv.Type)
	assert.Equal(t, 12, mv.Quantity)
	assert.Equal(t, 0, mv.PreviousStock)
	assert.Equal(t, 12, mv.NewStock)
	assert.Equal(t, "opening-stock", mv.Reference)
}

func TestCreateZeroStockSkipsMovement(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), Product{ShopID: 1, Name: "Matches", MinSellingPrice: 10})
	require.NoError(t, err)
	assert.Empty(t, repo.movements)
}

func TestCreateRejectsInvalidProduct(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), Product{ShopID: 1, Name: "  "})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), Product{ShopID: 1, Name: "Oil", BuyingPrice: -1})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), Product{Name: "Oil"})
	require.Error(t, err)
}

func TestRestockIncreasesStockAndRecordsHistory(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)
	p := seedProduct(repo, 3)

	updated, err := svc.Restock(context.Background(), RestockInput{
		ProductID: p.ID,
		Quantity:  20,
		Reference: "delivery-104",
		ActorName: "Njoroge",
	})
	require.NoError(t, err)
	assert.Equal(t, 23, updated.CurrentStock)

	require.Len(t, repo.movements, 1)
	mv := repo.movements[0]
	assert.Equal(t, MovementRestock, mv.Type)
	assert.Equal(t, 3, mv.PreviousStock)
	assert.Equal(t, 23, mv.NewStock)
	assert.Equal(t, "delivery-104", mv.Reference)
}

func TestRestockRejectsNegativeQuantity(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)
	p := seedProduct(repo, 3)

	_, err := svc.Restock(context.Background(), RestockInput{ProductID: p.ID, Quantity: -2})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.Restock(context.Background(), RestockInput{ProductID: p.ID, Quantity: 0})
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestAdjustmentMayBeNegativeButNotBelowZero(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)
	p := seedProduct(repo, 5)

	updated, err := svc.Restock(context.Background(), RestockInput{
		ProductID: p.ID,
		Quantity:  -3,
		Type:      MovementAdjustment,
		Note:      "breakage",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.CurrentStock)

	_, err = svc.Restock(context.Background(), RestockInput{
		ProductID: p.ID,
		Quantity:  -10,
		Type:      MovementAdjustment,
	})
	require.ErrorIs(t, err, ErrNegativeStock)
	// Rolled back.
	assert.Equal(t, 2, repo.products[p.ID].CurrentStock)
	assert.Len(t, repo.movements, 1)
}

func TestRestockUnknownProduct(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)

	_, err := svc.Restock(context.Background(), RestockInput{ProductID: 42, Quantity: 5})
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestLowStockFiltersByThreshold(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)
	low := seedProduct(repo, 2)  // min level 5
	seedProduct(repo, 50)        // healthy
	gone := seedProduct(repo, 1) // deactivated
	require.NoError(t, svc.Deactivate(context.Background(), gone.ID))

	flagged, err := svc.LowStock(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, flagged, 1)
	assert.Equal(t, low.ID, flagged[0].ID)
}

func TestStockHistoryRequiresProduct(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)

	_, err := svc.StockHistory(context.Background(), HistoryFilter{})
	require.ErrorIs(t, err, ErrProductNotFound)
}
