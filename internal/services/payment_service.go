package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"floralys_back_end/internal/models"
	"floralys_back_end/internal/notifier"
	"floralys_back_end/internal/repository"
	"floralys_back_end/internal/utils"
)

type SubmitPaymentCommand struct {
	OrderID         string
	PaymentMethodID string
	Amount          float64
	ReferenceNumber string
	PaymentDetails  json.RawMessage
	ProofImageURL   *string
}

// PaymentService gère les déclarations de paiement manuelles et leur
// vérification par un admin. La validation d'un paiement fait passer la
// commande liée de pending à verified dans la même transaction.
type PaymentService struct {
	db           *sql.DB
	payments     repository.PaymentRepository
	orders       repository.OrderRepository
	orderService *OrderService
	notifier     *notifier.Notifier
}

func NewPaymentService(
	db *sql.DB,
	payments repository.PaymentRepository,
	orders repository.OrderRepository,
	orderService *OrderService,
	n *notifier.Notifier,
) *PaymentService {
	return &PaymentService{
		db:           db,
		payments:     payments,
		orders:       orders,
		orderService: orderService,
		notifier:     n,
	}
}

// Submit enregistre une déclaration de paiement. Un montant qui ne
// correspond pas au total de la commande est rejeté AVANT toute écriture :
// aucune ligne de paiement n'est persistée dans ce cas.
func (s *PaymentService) Submit(ctx context.Context, cmd SubmitPaymentCommand) (*models.Payment, error) {
	order, err := s.orders.FindByID(ctx, cmd.OrderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if order.Status != models.OrderStatusPending {
		return nil, ErrOrderNotPayable
	}

	// Comparaison au centime près : 19,99 € contre 20,00 € doit échouer.
	if !utils.SameAmount(cmd.Amount, order.TotalAmount) {
		return nil, fmt.Errorf("%w (déclaré: %.2f€, attendu: %.2f€)",
			ErrAmountMismatch, cmd.Amount, order.TotalAmount)
	}

	method, err := s.payments.FindMethodByID(ctx, cmd.PaymentMethodID)
	if err != nil || !method.IsActive {
		return nil, ErrPaymentMethodInvalid
	}

	open, err := s.payments.HasOpenPayment(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, ErrPaymentAlreadyOpen
	}

	payment := &models.Payment{
		OrderID:         cmd.OrderID,
		PaymentMethodID: cmd.PaymentMethodID,
		Amount:          cmd.Amount,
		Status:          models.PaymentStatusPending,
		ReferenceNumber: cmd.ReferenceNumber,
		PaymentDetails:  cmd.PaymentDetails,
		ProofImageURL:   cmd.ProofImageURL,
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	log.Printf("✅ Paiement déclaré pour la commande %s (%.2f€, méthode %s)",
		order.OrderNumber, payment.Amount, method.Name)
	return payment, nil
}

// Verify applique la décision de l'admin. decision=verified fait passer la
// commande à verified (avec sa ligne d'historique) dans la même transaction ;
// decision=failed laisse la commande en pending, re-payable.
func (s *PaymentService) Verify(ctx context.Context, paymentID string, decision models.PaymentStatus, notes string, actorID *string) (*models.Payment, error) {
	if decision != models.PaymentStatusVerified && decision != models.PaymentStatusFailed {
		return nil, ErrInvalidDecision
	}

	payment, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	if payment.Status != models.PaymentStatusPending {
		return nil, ErrAlreadyProcessed
	}

	order, err := s.orders.FindByID(ctx, payment.OrderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	now := time.Now()
	payment.Status = decision
	payment.VerifiedBy = actorID
	payment.VerifiedAt = &now
	payment.VerificationNotes = &notes

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ouverture transaction: %w", err)
	}

	if err := s.verifyTx(ctx, tx, payment, order, decision, notes, actorID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	log.Printf("✅ Paiement %s de la commande %s : %s", payment.ID, order.OrderNumber, decision)

	if decision == models.PaymentStatusVerified && s.notifier != nil {
		order.Status = models.OrderStatusVerified
		s.notifier.Publish(notifier.Event{
			Type:      notifier.EventOrderStatusChanged,
			Order:     *order,
			Email:     s.orderService.recipientEmail(ctx, order),
			NewStatus: models.OrderStatusVerified,
		})
	}

	return payment, nil
}

// verifyTx est le corps transactionnel de la vérification.
func (s *PaymentService) verifyTx(ctx context.Context, tx *sql.Tx, payment *models.Payment, order *models.Order, decision models.PaymentStatus, notes string, actorID *string) error {
	if err := s.payments.UpdateVerificationTx(ctx, tx, payment); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Un autre admin a traité ce paiement entre-temps.
			return ErrAlreadyProcessed
		}
		return err
	}

	if decision == models.PaymentStatusVerified {
		return s.orderService.transitionOrderTx(ctx, tx, order, models.OrderStatusVerified, notes, actorID)
	}

	// Paiement refusé : la commande reste en pending, sans ligne d'historique.
	return nil
}

func (s *PaymentService) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	payment, err := s.payments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

func (s *PaymentService) ListPending(ctx context.Context, page, limit int) ([]models.Payment, int, error) {
	return s.payments.ListPending(ctx, page, limit)
}

func (s *PaymentService) ListMethods(ctx context.Context) ([]models.PaymentMethod, error) {
	return s.payments.ListActiveMethods(ctx)
}

// PaymentQR génère le QR SEPA de virement pour une commande encore payable.
func (s *PaymentService) PaymentQR(ctx context.Context, orderID, iban, bic, companyName string) (string, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrOrderNotFound
		}
		return "", err
	}

	if order.Status != models.OrderStatusPending {
		return "", ErrOrderNotPayable
	}

	return utils.GenerateSepaQR(iban, bic, companyName, order.OrderNumber, order.TotalAmount)
}
