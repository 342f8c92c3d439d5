package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"floralys_back_end/internal/models"
	"floralys_back_end/internal/notifier"
	"floralys_back_end/internal/repository"
	"floralys_back_end/internal/utils"
)

type CreateOrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type CreateOrderCommand struct {
	UserID          *string
	GuestEmail      *string
	Items           []CreateOrderItem
	ShippingAddress json.RawMessage
	BillingAddress  json.RawMessage
	Notes           string
	DeliveryDate    *time.Time
}

// CartClearer vide le panier persistant d'un utilisateur après une
// commande réussie. Le panier vit dans Redis, hors transaction SQL :
// un échec ici est loggé, jamais propagé.
type CartClearer interface {
	Clear(ctx context.Context, userID string) error
}

// OrderService porte le cœur transactionnel : création de commande
// (snapshot des prix, décrément du stock, historique) et transitions
// de statut. Toutes les écritures multi-tables passent par une seule
// transaction Postgres.
type OrderService struct {
	db       *sql.DB
	products repository.ProductRepository
	orders   repository.OrderRepository
	users    repository.UserRepository
	cart     CartClearer
	notifier *notifier.Notifier
	prefix   string
}

func NewOrderService(
	db *sql.DB,
	products repository.ProductRepository,
	orders repository.OrderRepository,
	users repository.UserRepository,
	cart CartClearer,
	n *notifier.Notifier,
	orderNumberPrefix string,
) *OrderService {
	return &OrderService{
		db:       db,
		products: products,
		orders:   orders,
		users:    users,
		cart:     cart,
		notifier: n,
		prefix:   orderNumberPrefix,
	}
}

// CreateOrder valide le panier, fige les prix, décrémente le stock et écrit
// commande + lignes + historique dans une transaction unique. Tout échec
// (produit manquant, stock insuffisant, erreur d'écriture) annule l'ensemble :
// aucune commande partielle, aucun décrément partiel.
func (s *OrderService) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*models.Order, error) {
	if len(cmd.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, item := range cmd.Items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}
	if cmd.UserID == nil && (cmd.GuestEmail == nil || *cmd.GuestEmail == "") {
		return nil, ErrMissingRecipient
	}

	var order *models.Order

	// Le numéro de commande garde son format historique FLO-YYYYMMDD-NNN ;
	// la contrainte UNIQUE + un retry couvrent le (rare) cas de collision.
	for attempt := 0; attempt < 2; attempt++ {
		orderNumber := GenerateOrderNumber(s.prefix, time.Now())

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("ouverture transaction: %w", err)
		}

		order, err = s.createOrderTx(ctx, tx, cmd, orderNumber)
		if err != nil {
			tx.Rollback()
			if repository.IsUniqueViolation(err) && attempt == 0 {
				log.Printf("⚠️ Collision de numéro de commande %s — nouvelle tentative", orderNumber)
				continue
			}
			return nil, err
		}

		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit transaction: %w", err)
		}
		break
	}

	log.Printf("✅ Commande %s créée (%.2f€, %d articles)", order.OrderNumber, order.TotalAmount, len(order.Items))

	// Hors transaction : panier + e-mail, en best-effort.
	if cmd.UserID != nil && s.cart != nil {
		if err := s.cart.Clear(ctx, *cmd.UserID); err != nil {
			log.Printf("⚠️ Échec vidage panier pour %s: %v", *cmd.UserID, err)
		}
	}

	if s.notifier != nil {
		s.notifier.Publish(notifier.Event{
			Type:  notifier.EventOrderCreated,
			Order: *order,
			Email: s.recipientEmail(ctx, order),
		})
	}

	return order, nil
}

// createOrderTx est le corps transactionnel de la création : toutes les
// lectures et écritures passent par tx.
func (s *OrderService) createOrderTx(ctx context.Context, tx *sql.Tx, cmd CreateOrderCommand, orderNumber string) (*models.Order, error) {
	var totalCents int64
	items := make([]models.OrderItem, 0, len(cmd.Items))

	for _, line := range cmd.Items {
		product, err := s.products.FindByIDTx(ctx, tx, line.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w (id %s)", ErrProductNotFound, line.ProductID)
			}
			return nil, err
		}
		if !product.IsActive {
			return nil, fmt.Errorf("%w (%s)", ErrProductNotFound, product.Name)
		}

		// Décrément conditionnel et atomique : sous concurrence, c'est la
		// clause WHERE qui arbitre, pas une lecture préalable.
		ok, err := s.products.DecrementStockTx(ctx, tx, product.ID, line.Quantity)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w pour « %s » (demandé: %d, disponible: %d)",
				ErrInsufficientStock, product.Name, line.Quantity, product.StockQuantity)
		}

		// Snapshot du prix au moment de l'achat ; les totaux se calculent
		// en centimes entiers.
		lineCents := utils.ToCents(product.Price) * int64(line.Quantity)
		totalCents += lineCents

		items = append(items, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    line.Quantity,
			TotalPrice:  utils.FromCents(lineCents),
		})
	}

	order := &models.Order{
		OrderNumber:     orderNumber,
		UserID:          cmd.UserID,
		GuestEmail:      cmd.GuestEmail,
		Status:          models.OrderStatusPending,
		TotalAmount:     utils.FromCents(totalCents),
		ShippingAddress: cmd.ShippingAddress,
		BillingAddress:  cmd.BillingAddress,
		Notes:           cmd.Notes,
		DeliveryDate:    cmd.DeliveryDate,
	}

	if err := s.orders.InsertTx(ctx, tx, order); err != nil {
		return nil, err
	}

	for i := range items {
		items[i].OrderID = order.ID
		if err := s.orders.InsertItemTx(ctx, tx, &items[i]); err != nil {
			return nil, err
		}
	}
	order.Items = items

	// Première ligne d'historique : NULL -> pending.
	history := &models.StatusHistory{
		OrderID:   order.ID,
		OldStatus: nil,
		NewStatus: models.OrderStatusPending,
		Notes:     "Commande créée",
	}
	if err := s.orders.InsertHistoryTx(ctx, tx, history); err != nil {
		return nil, err
	}
	order.History = []models.StatusHistory{*history}

	return order, nil
}

// UpdateStatus applique une transition de statut initiée par un admin.
// La cible doit être un des six statuts connus ; le graphe de transitions
// n'est volontairement pas restreint davantage.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, newStatus models.OrderStatus, notes string, actorID *string) (*models.Order, error) {
	if !models.IsValidOrderStatus(newStatus) {
		return nil, ErrInvalidStatus
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ouverture transaction: %w", err)
	}

	if err := s.transitionOrderTx(ctx, tx, order, newStatus, notes, actorID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	log.Printf("✅ Commande %s : %s → %s", order.OrderNumber, order.Status, newStatus)
	oldStatus := order.Status
	order.Status = newStatus

	if s.notifier != nil && newStatus != oldStatus {
		s.notifier.Publish(notifier.Event{
			Type:      notifier.EventOrderStatusChanged,
			Order:     *order,
			Email:     s.recipientEmail(ctx, order),
			NewStatus: newStatus,
		})
	}

	return order, nil
}

// transitionOrderTx met à jour le statut et ajoute la ligne d'historique
// dans la transaction fournie. Partagé avec la vérification de paiement.
func (s *OrderService) transitionOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order, newStatus models.OrderStatus, notes string, actorID *string) error {
	if err := s.orders.UpdateStatusTx(ctx, tx, order.ID, newStatus); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOrderNotFound
		}
		return err
	}

	oldStatus := order.Status
	history := &models.StatusHistory{
		OrderID:   order.ID,
		OldStatus: &oldStatus,
		NewStatus: newStatus,
		Notes:     notes,
		ChangedBy: actorID,
	}
	return s.orders.InsertHistoryTx(ctx, tx, history)
}

// GetOrder renvoie la commande complète (lignes + historique).
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if order.Items, err = s.orders.LoadItems(ctx, orderID); err != nil {
		return nil, err
	}
	if order.History, err = s.orders.LoadHistory(ctx, orderID); err != nil {
		return nil, err
	}

	return order, nil
}

func (s *OrderService) ListByUser(ctx context.Context, userID string, page, limit int) ([]models.Order, int, error) {
	return s.orders.ListByUser(ctx, userID, page, limit)
}

func (s *OrderService) ListAll(ctx context.Context, page, limit int, status string) ([]models.Order, int, error) {
	if status != "" && !models.IsValidOrderStatus(models.OrderStatus(status)) {
		return nil, 0, ErrInvalidStatus
	}
	return s.orders.ListAll(ctx, page, limit, status)
}

// recipientEmail résout l'adresse de notification : e-mail du compte,
// sinon e-mail invité. Best-effort : une erreur renvoie une chaîne vide.
func (s *OrderService) recipientEmail(ctx context.Context, order *models.Order) string {
	if order.UserID != nil {
		user, err := s.users.FindByID(ctx, *order.UserID)
		if err != nil {
			log.Printf("⚠️ Impossible de résoudre l'e-mail du client %s: %v", *order.UserID, err)
			return ""
		}
		return user.Email
	}
	if order.GuestEmail != nil {
		return *order.GuestEmail
	}
	return ""
}

// GenerateOrderNumber produit un numéro lisible PREFIX-YYYYMMDD-NNN.
// Le suffixe aléatoire à trois chiffres peut entrer en collision le même
// jour : la contrainte UNIQUE en base et le retry de CreateOrder s'en chargent.
func GenerateOrderNumber(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%03d", prefix, now.Format("20060102"), rand.IntN(1000))
}
