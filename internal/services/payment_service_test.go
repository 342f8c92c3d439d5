package services

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floralys_back_end/internal/models"
	"floralys_back_end/internal/repository"
)

type fakePaymentRepo struct {
	payments map[string]*models.Payment
	methods  map[string]*models.PaymentMethod
	nextID   int

	// Simule un autre admin qui a traité le paiement entre la lecture
	// et l'UPDATE conditionnel.
	concurrentVerify bool
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{
		payments: map[string]*models.Payment{},
		methods: map[string]*models.PaymentMethod{
			"virement": {ID: "virement", Name: "Virement bancaire", Type: models.PaymentTypeBankTransfer, IsActive: true},
			"inactif":  {ID: "inactif", Name: "Ancienne méthode", Type: models.PaymentTypeMobilePayment, IsActive: false},
		},
	}
}

func (f *fakePaymentRepo) Create(ctx context.Context, p *models.Payment) error {
	f.nextID++
	p.ID = fmt.Sprintf("payment-%d", f.nextID)
	copied := *p
	f.payments[p.ID] = &copied
	return nil
}

func (f *fakePaymentRepo) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakePaymentRepo) HasOpenPayment(ctx context.Context, orderID string) (bool, error) {
	for _, p := range f.payments {
		if p.OrderID == orderID && p.Status != models.PaymentStatusFailed {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePaymentRepo) UpdateVerificationTx(ctx context.Context, tx *sql.Tx, p *models.Payment) error {
	stored, ok := f.payments[p.ID]
	if !ok || stored.Status != models.PaymentStatusPending || f.concurrentVerify {
		return repository.ErrNotFound
	}
	*stored = *p
	return nil
}

func (f *fakePaymentRepo) ListPending(ctx context.Context, page, limit int) ([]models.Payment, int, error) {
	return nil, 0, nil
}

func (f *fakePaymentRepo) FindMethodByID(ctx context.Context, id string) (*models.PaymentMethod, error) {
	m, ok := f.methods[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return m, nil
}

func (f *fakePaymentRepo) ListActiveMethods(ctx context.Context) ([]models.PaymentMethod, error) {
	return nil, nil
}

// newPaymentFixture prépare une commande pending à 20.00 € prête à payer.
func newPaymentFixture(t *testing.T) (*PaymentService, *fakePaymentRepo, *fakeOrderRepo, *models.Order) {
	t.Helper()

	orderSvc, _, orders := newOrderFixture()

	order, err := orderSvc.createOrderTx(context.Background(), nil,
		guestCommand(CreateOrderItem{ProductID: "rose", Quantity: 2}), "FLO-20260825-100")
	require.NoError(t, err)
	require.Equal(t, 20.00, order.TotalAmount)

	payments := newFakePaymentRepo()
	svc := NewPaymentService(nil, payments, orders, orderSvc, nil)
	return svc, payments, orders, order
}

func submitCommand(orderID string, amount float64) SubmitPaymentCommand {
	return SubmitPaymentCommand{
		OrderID:         orderID,
		PaymentMethodID: "virement",
		Amount:          amount,
		ReferenceNumber: "VIR-2026-001",
	}
}

func TestSubmitPayment(t *testing.T) {
	svc, payments, _, order := newPaymentFixture(t)

	payment, err := svc.Submit(context.Background(), submitCommand(order.ID, 20.00))
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.Equal(t, order.ID, payment.OrderID)
	assert.Equal(t, 20.00, payment.Amount)
	assert.Len(t, payments.payments, 1)
}

func TestSubmitPaymentAmountMismatchPersistsNothing(t *testing.T) {
	svc, payments, _, order := newPaymentFixture(t)

	// 19,99 € contre 20,00 € : refus au centime près.
	_, err := svc.Submit(context.Background(), submitCommand(order.ID, 19.99))
	require.ErrorIs(t, err, ErrAmountMismatch)
	assert.Contains(t, err.Error(), "19.99")
	assert.Contains(t, err.Error(), "20.00")

	// Aucune ligne de paiement n'a été créée.
	assert.Empty(t, payments.payments)
}

func TestSubmitPaymentUnknownOrder(t *testing.T) {
	svc, _, _, _ := newPaymentFixture(t)

	_, err := svc.Submit(context.Background(), submitCommand("inexistante", 20.00))
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestSubmitPaymentOrderNotPayable(t *testing.T) {
	svc, _, orders, order := newPaymentFixture(t)
	orders.orders[order.ID].Status = models.OrderStatusVerified

	_, err := svc.Submit(context.Background(), submitCommand(order.ID, 20.00))
	assert.ErrorIs(t, err, ErrOrderNotPayable)
}

func TestSubmitPaymentInvalidMethod(t *testing.T) {
	svc, _, _, order := newPaymentFixture(t)
	ctx := context.Background()

	cmd := submitCommand(order.ID, 20.00)
	cmd.PaymentMethodID = "cheque"
	_, err := svc.Submit(ctx, cmd)
	assert.ErrorIs(t, err, ErrPaymentMethodInvalid)

	cmd.PaymentMethodID = "inactif"
	_, err = svc.Submit(ctx, cmd)
	assert.ErrorIs(t, err, ErrPaymentMethodInvalid)
}

func TestSubmitPaymentAlreadyOpen(t *testing.T) {
	svc, _, _, order := newPaymentFixture(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, submitCommand(order.ID, 20.00))
	require.NoError(t, err)

	_, err = svc.Submit(ctx, submitCommand(order.ID, 20.00))
	assert.ErrorIs(t, err, ErrPaymentAlreadyOpen)
}

func TestSubmitPaymentRetryAfterFailure(t *testing.T) {
	svc, payments, _, order := newPaymentFixture(t)
	ctx := context.Background()

	first, err := svc.Submit(ctx, submitCommand(order.ID, 20.00))
	require.NoError(t, err)

	// Paiement refusé : la commande redevient payable.
	payments.payments[first.ID].Status = models.PaymentStatusFailed

	_, err = svc.Submit(ctx, submitCommand(order.ID, 20.00))
	assert.NoError(t, err)
}

func TestVerifyRejectsUnknownDecision(t *testing.T) {
	svc, _, _, _ := newPaymentFixture(t)

	_, err := svc.Verify(context.Background(), "payment-1", models.PaymentStatusPending, "", nil)
	assert.ErrorIs(t, err, ErrInvalidDecision)

	_, err = svc.Verify(context.Background(), "payment-1", "refund", "", nil)
	assert.ErrorIs(t, err, ErrInvalidDecision)
}

func TestVerifyAlreadyProcessed(t *testing.T) {
	svc, payments, _, order := newPaymentFixture(t)
	ctx := context.Background()

	payment, err := svc.Submit(ctx, submitCommand(order.ID, 20.00))
	require.NoError(t, err)
	payments.payments[payment.ID].Status = models.PaymentStatusVerified

	_, err = svc.Verify(ctx, payment.ID, models.PaymentStatusVerified, "", nil)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestVerifyTxVerifiedMovesOrderToVerified(t *testing.T) {
	svc, payments, orders, order := newPaymentFixture(t)
	ctx := context.Background()

	payment, err := svc.Submit(ctx, submitCommand(order.ID, 20.00))
	require.NoError(t, err)

	admin := "admin-1"
	notes := "Virement reçu"
	payment.Status = models.PaymentStatusVerified
	payment.VerifiedBy = &admin
	payment.VerificationNotes = &notes

	err = svc.verifyTx(ctx, nil, payment, order, models.PaymentStatusVerified, notes, &admin)
	require.NoError(t, err)

	stored, err := orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusVerified, stored.Status)
	assert.Equal(t, models.PaymentStatusVerified, payments.payments[payment.ID].Status)

	// Création + vérification = exactement deux lignes d'historique.
	history, err := orders.LoadHistory(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	last := history[1]
	require.NotNil(t, last.OldStatus)
	assert.Equal(t, models.OrderStatusPending, *last.OldStatus)
	assert.Equal(t, models.OrderStatusVerified, last.NewStatus)
}

func TestVerifyTxFailedLeavesOrderPending(t *testing.T) {
	svc, payments, orders, order := newPaymentFixture(t)
	ctx := context.Background()

	payment, err := svc.Submit(ctx, submitCommand(order.ID, 20.00))
	require.NoError(t, err)

	payment.Status = models.PaymentStatusFailed

	err = svc.verifyTx(ctx, nil, payment, order, models.PaymentStatusFailed, "Montant introuvable sur le relevé", nil)
	require.NoError(t, err)

	stored, err := orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, stored.Status)
	assert.Equal(t, models.PaymentStatusFailed, payments.payments[payment.ID].Status)

	// Pas de transition de commande, donc pas de nouvelle ligne d'historique.
	history, err := orders.LoadHistory(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestVerifyTxConcurrentVerification(t *testing.T) {
	svc, payments, _, order := newPaymentFixture(t)
	ctx := context.Background()

	payment, err := svc.Submit(ctx, submitCommand(order.ID, 20.00))
	require.NoError(t, err)

	payments.concurrentVerify = true
	payment.Status = models.PaymentStatusVerified

	err = svc.verifyTx(ctx, nil, payment, order, models.PaymentStatusVerified, "", nil)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestPaymentQROnlyForPendingOrders(t *testing.T) {
	svc, _, orders, order := newPaymentFixture(t)
	ctx := context.Background()

	qr, err := svc.PaymentQR(ctx, order.ID, "BE12345678901234", "KREDBEBB", "Floralys SRL")
	require.NoError(t, err)
	assert.Contains(t, qr, "data:image/png;base64,")

	orders.orders[order.ID].Status = models.OrderStatusVerified
	_, err = svc.PaymentQR(ctx, order.ID, "BE12345678901234", "KREDBEBB", "Floralys SRL")
	assert.ErrorIs(t, err, ErrOrderNotPayable)
}
