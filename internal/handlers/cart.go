package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"floralys_back_end/internal/services"
)

// CartHandler expose le panier Redis des utilisateurs connectés.
type CartHandler struct {
	cart *services.CartService
}

func NewCartHandler(cart *services.CartService) *CartHandler {
	return &CartHandler{cart: cart}
}

func (h *CartHandler) Get(c *gin.Context) {
	userID := c.GetString("user_id")

	cart, err := h.cart.Get(c.Request.Context(), userID)
	if err != nil {
		log.Printf("❌ Erreur lecture panier: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur interne"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": cart})
}

func (h *CartHandler) Add(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		ProductID string `json:"product_id" binding:"required"`
		Quantity  int    `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "product_id et quantity requis"})
		return
	}

	cart, err := h.cart.Add(c.Request.Context(), userID, input.ProductID, input.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidQuantity):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "La quantité doit être positive"})
		case errors.Is(err, services.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Produit introuvable"})
		default:
			log.Printf("❌ Erreur ajout panier: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur interne"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Produit ajouté au panier", "data": cart})
}

func (h *CartHandler) Remove(c *gin.Context) {
	userID := c.GetString("user_id")

	cart, err := h.cart.Remove(c.Request.Context(), userID, c.Param("productId"))
	if err != nil {
		log.Printf("❌ Erreur retrait panier: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur interne"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Produit retiré du panier", "data": cart})
}

func (h *CartHandler) Clear(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := h.cart.Clear(c.Request.Context(), userID); err != nil {
		log.Printf("❌ Erreur vidage panier: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur interne"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Panier vidé"})
}
