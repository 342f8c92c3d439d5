package services

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floralys_back_end/internal/models"
	"floralys_back_end/internal/repository"
)

// fakeProductRepo sert les produits depuis une map en mémoire et applique
// le même décrément conditionnel que le SQL réel.
type fakeProductRepo struct {
	products map[string]*models.Product
}

func (f *fakeProductRepo) FindByID(ctx context.Context, id string) (*models.Product, error) {
	return f.FindByIDTx(ctx, nil, id)
}

func (f *fakeProductRepo) FindByIDTx(ctx context.Context, tx *sql.Tx, id string) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakeProductRepo) DecrementStockTx(ctx context.Context, tx *sql.Tx, productID string, quantity int) (bool, error) {
	p, ok := f.products[productID]
	if !ok || p.StockQuantity < quantity {
		return false, nil
	}
	p.StockQuantity -= quantity
	return true, nil
}

func (f *fakeProductRepo) List(ctx context.Context, page, limit int, categoryID string) ([]models.Product, int, error) {
	return nil, 0, nil
}
func (f *fakeProductRepo) SearchLike(ctx context.Context, q string, limit int) ([]models.Product, error) {
	return nil, nil
}
func (f *fakeProductRepo) Create(ctx context.Context, p *models.Product) error { return nil }
func (f *fakeProductRepo) Update(ctx context.Context, p *models.Product) error { return nil }
func (f *fakeProductRepo) SoftDelete(ctx context.Context, id string) error     { return nil }
func (f *fakeProductRepo) SetStock(ctx context.Context, id string, stock int) error {
	return nil
}

// fakeOrderRepo enregistre les écritures pour vérifier ce qui aurait été
// commité (ou pas) par la transaction.
type fakeOrderRepo struct {
	orders  map[string]*models.Order
	items   []models.OrderItem
	history []models.StatusHistory
	nextID  int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]*models.Order{}}
}

func (f *fakeOrderRepo) InsertTx(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	f.nextID++
	order.ID = fmt.Sprintf("order-%d", f.nextID)
	order.CreatedAt = time.Now()
	copied := *order
	f.orders[order.ID] = &copied
	return nil
}

func (f *fakeOrderRepo) InsertItemTx(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error {
	f.items = append(f.items, *item)
	return nil
}

func (f *fakeOrderRepo) InsertHistoryTx(ctx context.Context, tx *sql.Tx, h *models.StatusHistory) error {
	f.history = append(f.history, *h)
	return nil
}

func (f *fakeOrderRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, orderID string, status models.OrderStatus) error {
	o, ok := f.orders[orderID]
	if !ok {
		return repository.ErrNotFound
	}
	o.Status = status
	return nil
}

func (f *fakeOrderRepo) FindByID(ctx context.Context, id string) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (f *fakeOrderRepo) LoadItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	var items []models.OrderItem
	for _, it := range f.items {
		if it.OrderID == orderID {
			items = append(items, it)
		}
	}
	return items, nil
}

func (f *fakeOrderRepo) LoadHistory(ctx context.Context, orderID string) ([]models.StatusHistory, error) {
	var hs []models.StatusHistory
	for _, h := range f.history {
		if h.OrderID == orderID {
			hs = append(hs, h)
		}
	}
	return hs, nil
}

func (f *fakeOrderRepo) ListByUser(ctx context.Context, userID string, page, limit int) ([]models.Order, int, error) {
	return nil, 0, nil
}

func (f *fakeOrderRepo) ListAll(ctx context.Context, page, limit int, status string) ([]models.Order, int, error) {
	return nil, 0, nil
}

type fakeUserRepo struct {
	users map[string]*models.User
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error { return nil }
func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func newOrderFixture() (*OrderService, *fakeProductRepo, *fakeOrderRepo) {
	products := &fakeProductRepo{products: map[string]*models.Product{
		"rose": {ID: "rose", Name: "Bouquet de roses", Price: 10.00, StockQuantity: 5, IsActive: true},
		"lys":  {ID: "lys", Name: "Bouquet de lys", Price: 15.50, StockQuantity: 3, IsActive: true},
	}}
	orders := newFakeOrderRepo()
	users := &fakeUserRepo{users: map[string]*models.User{}}
	svc := NewOrderService(nil, products, orders, users, nil, nil, "FLO")
	return svc, products, orders
}

func guestCommand(items ...CreateOrderItem) CreateOrderCommand {
	email := "client@example.com"
	return CreateOrderCommand{
		GuestEmail:      &email,
		Items:           items,
		ShippingAddress: []byte(`{"city":"Bruxelles"}`),
	}
}

func TestCreateOrderComputesTotalsAndDecrementsStock(t *testing.T) {
	svc, products, orders := newOrderFixture()

	cmd := guestCommand(CreateOrderItem{ProductID: "rose", Quantity: 2})

	order, err := svc.createOrderTx(context.Background(), nil, cmd, "FLO-20260825-042")
	require.NoError(t, err)

	assert.Equal(t, 20.00, order.TotalAmount)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, "FLO-20260825-042", order.OrderNumber)
	assert.Equal(t, 3, products.products["rose"].StockQuantity)

	require.Len(t, order.Items, 1)
	assert.Equal(t, "Bouquet de roses", order.Items[0].ProductName)
	assert.Equal(t, 10.00, order.Items[0].UnitPrice)
	assert.Equal(t, 20.00, order.Items[0].TotalPrice)

	// Une seule ligne d'historique : NULL -> pending.
	require.Len(t, orders.history, 1)
	assert.Nil(t, orders.history[0].OldStatus)
	assert.Equal(t, models.OrderStatusPending, orders.history[0].NewStatus)
	assert.Equal(t, "Commande créée", orders.history[0].Notes)
}

func TestCreateOrderMultiLineTotalIsExact(t *testing.T) {
	svc, _, _ := newOrderFixture()

	cmd := guestCommand(
		CreateOrderItem{ProductID: "rose", Quantity: 2},
		CreateOrderItem{ProductID: "lys", Quantity: 3},
	)

	order, err := svc.createOrderTx(context.Background(), nil, cmd, "FLO-20260825-043")
	require.NoError(t, err)

	// 2×10.00 + 3×15.50, calculé en centimes entiers.
	assert.Equal(t, 66.50, order.TotalAmount)

	var sum float64
	for _, item := range order.Items {
		sum += item.TotalPrice
	}
	assert.Equal(t, order.TotalAmount, sum)
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	svc, _, orders := newOrderFixture()

	cmd := guestCommand(CreateOrderItem{ProductID: "rose", Quantity: 10})

	_, err := svc.createOrderTx(context.Background(), nil, cmd, "FLO-20260825-044")
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Bouquet de roses")
	assert.Contains(t, err.Error(), "demandé: 10")
	assert.Contains(t, err.Error(), "disponible: 5")

	// Rien n'a été écrit.
	assert.Empty(t, orders.orders)
	assert.Empty(t, orders.items)
	assert.Empty(t, orders.history)
}

func TestCreateOrderFailsMidwayWritesNothing(t *testing.T) {
	svc, _, orders := newOrderFixture()

	// La première ligne passe, la deuxième dépasse le stock : aucune
	// commande ne doit être insérée.
	cmd := guestCommand(
		CreateOrderItem{ProductID: "rose", Quantity: 1},
		CreateOrderItem{ProductID: "lys", Quantity: 99},
	)

	_, err := svc.createOrderTx(context.Background(), nil, cmd, "FLO-20260825-045")
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Empty(t, orders.orders)
	assert.Empty(t, orders.items)
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	svc, _, _ := newOrderFixture()

	cmd := guestCommand(CreateOrderItem{ProductID: "inexistant", Quantity: 1})

	_, err := svc.createOrderTx(context.Background(), nil, cmd, "FLO-20260825-046")
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestCreateOrderInactiveProduct(t *testing.T) {
	svc, products, _ := newOrderFixture()
	products.products["rose"].IsActive = false

	cmd := guestCommand(CreateOrderItem{ProductID: "rose", Quantity: 1})

	_, err := svc.createOrderTx(context.Background(), nil, cmd, "FLO-20260825-047")
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestCreateOrderValidation(t *testing.T) {
	svc, _, _ := newOrderFixture()
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, guestCommand())
	assert.ErrorIs(t, err, ErrEmptyOrder)

	_, err = svc.CreateOrder(ctx, guestCommand(CreateOrderItem{ProductID: "rose", Quantity: 0}))
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.CreateOrder(ctx, guestCommand(CreateOrderItem{ProductID: "rose", Quantity: -2}))
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	// Ni user_id ni guest_email.
	_, err = svc.CreateOrder(ctx, CreateOrderCommand{
		Items: []CreateOrderItem{{ProductID: "rose", Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrMissingRecipient)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc, _, _ := newOrderFixture()

	_, err := svc.UpdateStatus(context.Background(), "order-1", "expédiée", "", nil)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestTransitionOrderRecordsHistory(t *testing.T) {
	svc, _, orders := newOrderFixture()
	ctx := context.Background()

	order, err := svc.createOrderTx(ctx, nil, guestCommand(CreateOrderItem{ProductID: "rose", Quantity: 1}), "FLO-20260825-048")
	require.NoError(t, err)

	admin := "admin-1"
	err = svc.transitionOrderTx(ctx, nil, order, models.OrderStatusPreparing, "Bouquet en préparation", &admin)
	require.NoError(t, err)

	stored, err := orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPreparing, stored.Status)

	require.Len(t, orders.history, 2)
	last := orders.history[1]
	require.NotNil(t, last.OldStatus)
	assert.Equal(t, models.OrderStatusPending, *last.OldStatus)
	assert.Equal(t, models.OrderStatusPreparing, last.NewStatus)
	assert.Equal(t, &admin, last.ChangedBy)
}

func TestListAllRejectsUnknownStatusFilter(t *testing.T) {
	svc, _, _ := newOrderFixture()

	_, _, err := svc.ListAll(context.Background(), 1, 20, "livrée")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestGenerateOrderNumberFormat(t *testing.T) {
	now := time.Date(2026, 8, 25, 14, 30, 0, 0, time.UTC)

	re := regexp.MustCompile(`^FLO-20260825-\d{3}$`)
	for i := 0; i < 50; i++ {
		n := GenerateOrderNumber("FLO", now)
		assert.Regexp(t, re, n)
	}
}
