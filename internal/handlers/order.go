package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"floralys_back_end/internal/models"
	"floralys_back_end/internal/services"
)

type OrderHandler struct {
	orders *services.OrderService
}

func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Create passe une commande. Accessible connecté (user_id du token) ou en
// invité (guest_email obligatoire dans le body).
func (h *OrderHandler) Create(c *gin.Context) {
	var input struct {
		Items []struct {
			ProductID string `json:"product_id" binding:"required"`
			Quantity  int    `json:"quantity" binding:"required"`
		} `json:"items" binding:"required"`
		GuestEmail      string          `json:"guest_email"`
		ShippingAddress json.RawMessage `json:"shipping_address" binding:"required"`
		BillingAddress  json.RawMessage `json:"billing_address"`
		Notes           string          `json:"notes"`
		DeliveryDate    *time.Time      `json:"delivery_date"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Données de commande invalides"})
		return
	}

	cmd := services.CreateOrderCommand{
		ShippingAddress: input.ShippingAddress,
		BillingAddress:  input.BillingAddress,
		Notes:           input.Notes,
		DeliveryDate:    input.DeliveryDate,
	}
	for _, item := range input.Items {
		cmd.Items = append(cmd.Items, services.CreateOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	if userID := c.GetString("user_id"); userID != "" {
		cmd.UserID = &userID
	} else if input.GuestEmail != "" {
		cmd.GuestEmail = &input.GuestEmail
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), cmd)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyOrder):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "La commande ne contient aucun article"})
		case errors.Is(err, services.ErrInvalidQuantity):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Chaque ligne doit avoir une quantité positive"})
		case errors.Is(err, services.ErrMissingRecipient):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "guest_email requis pour une commande invité"})
		case errors.Is(err, services.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": err.Error()})
		case errors.Is(err, services.ErrInsufficientStock):
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": err.Error()})
		default:
			log.Printf("❌ Erreur création commande: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur interne"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Commande créée", "data": order})
}

// Get renvoie la commande complète. Un client ne voit que ses propres
// commandes ; les commandes invité (UUID non devinable) restent accessibles
// pour le suivi sans compte.
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Commande introuvable"})
			return
		}
		log.Printf("❌ Erreur lecture commande: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur interne"})
		return
	}

	role := c.GetString("role")
	userID := c.GetString("user_id")
	if order.UserID != nil && role != models.RoleAdmin && *order.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Accès refusé"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": order})
}

// MyOrders liste les commandes de l'utilisateur connecté.
func (h *OrderHandler) MyOrders(c *gin.Context) {
	userID := c.GetString("user_id")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	orders, total, err := h.orders.ListByUser(c.Request.Context(), userID, page, limit)
	if err != nil {
		log.Printf("❌ Erreur liste commandes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur interne"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"orders": orders,
			"total":  total,
			"page":   page,
			"limit":  limit,
		},
	})
}

// AdminList (admin) liste toutes les commandes, filtrables par statut.
func (h *OrderHandler) AdminList(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	status := c.Query("status")

	orders, total, err := h.orders.ListAll(c.Request.Context(), page, limit, status)
	if err != nil {
		if errors.Is(err, services.ErrInvalidStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Statut inconnu: " + status})
			return
		}
		log.Printf("❌ Erreur liste commandes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur interne"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"orders": orders,
			"total":  total,
			"page":   page,
			"limit":  limit,
		},
	})
}

// UpdateStatus (admin) applique une transition de statut avec historique.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var input struct {
		Status string `json:"status" binding:"required"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Statut requis"})
		return
	}

	var actorID *string
	if id := c.GetString("user_id"); id != "" {
		actorID = &id
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"),
		models.OrderStatus(input.Status), input.Notes, actorID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Statut inconnu: " + input.Status})
		case errors.Is(err, services.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Commande introuvable"})
		default:
			log.Printf("❌ Erreur changement de statut: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur interne"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Statut mis à jour", "data": order})
}
