package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"floralys_back_end/internal/models"
	"floralys_back_end/internal/repository"
	"floralys_back_end/internal/services"
)

// Cache Redis de la première page du catalogue (la plus consultée).
const (
	productCacheKey = "cache:products:firstpage"
	productCacheTTL = 5 * time.Minute
)

type ProductHandler struct {
	products repository.ProductRepository
	search   *services.SearchService
	redis    *redis.Client
}

func NewProductHandler(products repository.ProductRepository, search *services.SearchService, redisClient *redis.Client) *ProductHandler {
	return &ProductHandler{products: products, search: search, redis: redisClient}
}

// List renvoie le catalogue paginé. La première page sans filtre est servie
// depuis Redis quand c'est possible.
func (h *ProductHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	categoryID := c.Query("category_id")

	cacheable := h.redis != nil && page <= 1 && limit == 20 && categoryID == ""
	if cacheable {
		if cached, err := h.redis.Get(c.Request.Context(), productCacheKey).Result(); err == nil {
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cached))
			return
		}
	}

	products, total, err := h.products.List(c.Request.Context(), page, limit, categoryID)
	if err != nil {
		log.Printf("❌ Erreur liste produits: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur interne"})
		return
	}

	body := gin.H{
		"success": true,
		"data": gin.H{
			"products": products,
			"total":    total,
			"page":     page,
			"limit":    limit,
		},
	}

	if cacheable {
		if raw, err := json.Marshal(body); err == nil {
			h.redis.Set(c.Request.Context(), productCacheKey, raw, productCacheTTL)
		}
	}

	c.JSON(http.StatusOK, body)
}

func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.products.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Produit introuvable"})
			return
		}
		log.Printf("❌ Erreur lecture produit: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur interne"})
		return
	}
	if !product.IsActive {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Produit introuvable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": product})
}

// Search interroge Elasticsearch (fallback Postgres intégré au service).
func (h *ProductHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Paramètre q requis"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	products, err := h.search.Search(c.Request.Context(), q, limit)
	if err != nil {
		log.Printf("❌ Erreur recherche produits: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur interne"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": products})
}

type productInput struct {
	Name          string  `json:"name" binding:"required"`
	Description   string  `json:"description"`
	Price         float64 `json:"price" binding:"required,gt=0"`
	StockQuantity int     `json:"stock_quantity" binding:"gte=0"`
	CategoryID    *string `json:"category_id"`
	ImageURL      string  `json:"image_url"`
}

// Create (admin) ajoute un produit au catalogue et l'indexe dans Elastic.
func (h *ProductHandler) Create(c *gin.Context) {
	var input productInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Données produit invalides"})
		return
	}

	product := &models.Product{
		Name:          input.Name,
		Description:   input.Description,
		Price:         input.Price,
		StockQuantity: input.StockQuantity,
		CategoryID:    input.CategoryID,
		ImageURL:      input.ImageURL,
	}

	if err := h.products.Create(c.Request.Context(), product); err != nil {
		log.Printf("❌ Erreur création produit: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur interne"})
		return
	}

	go h.search.IndexProduct(*product)
	h.invalidateCache()

	log.Printf("✅ Produit créé: %s", product.Name)
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Produit créé", "data": product})
}

// Update (admin) modifie les champs catalogue. Le stock a ses propres routes.
func (h *ProductHandler) Update(c *gin.Context) {
	var input productInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Données produit invalides"})
		return
	}

	product := &models.Product{
		ID:          c.Param("id"),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		CategoryID:  input.CategoryID,
		ImageURL:    input.ImageURL,
	}

	if err := h.products.Update(c.Request.Context(), product); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Produit introuvable"})
			return
		}
		log.Printf("❌ Erreur mise à jour produit: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur interne"})
		return
	}

	go h.search.IndexProduct(*product)
	h.invalidateCache()

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Produit mis à jour", "data": product})
}

// Delete (admin) désactive le produit (soft delete) et le retire de l'index.
func (h *ProductHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.products.SoftDelete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Produit introuvable"})
			return
		}
		log.Printf("❌ Erreur désactivation produit: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur interne"})
		return
	}

	go h.search.RemoveProduct(id)
	h.invalidateCache()

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Produit désactivé"})
}

// UpdateStock (admin) réassort ou corrige le stock d'un produit.
// type=restock ajoute la quantité au stock courant ; type=adjustment fixe
// la valeur absolue (inventaire).
func (h *ProductHandler) UpdateStock(c *gin.Context) {
	var input struct {
		Quantity int    `json:"quantity" binding:"required"`
		Reason   string `json:"reason"`
		Type     string `json:"type" binding:"required"` // "restock", "adjustment"
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "quantity et type requis"})
		return
	}

	product, err := h.products.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Produit introuvable"})
			return
		}
		log.Printf("❌ Erreur lecture produit: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur interne"})
		return
	}

	var newStock int
	switch input.Type {
	case "restock":
		newStock = product.StockQuantity + input.Quantity
	case "adjustment":
		newStock = input.Quantity
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Type d'opération invalide (restock ou adjustment)"})
		return
	}

	if newStock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Le stock ne peut pas être négatif"})
		return
	}

	if err := h.products.SetStock(c.Request.Context(), product.ID, newStock); err != nil {
		log.Printf("❌ Erreur mise à jour stock: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur interne"})
		return
	}

	log.Printf("✅ Stock de %s : %d → %d (%s) %s", product.Name, product.StockQuantity, newStock, input.Type, input.Reason)
	h.invalidateCache()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Stock mis à jour",
		"data": gin.H{
			"product_id": product.ID,
			"prev_stock": product.StockQuantity,
			"new_stock":  newStock,
		},
	})
}

func (h *ProductHandler) invalidateCache() {
	if h.redis == nil {
		return
	}
	if err := h.redis.Del(context.Background(), productCacheKey).Err(); err != nil {
		log.Printf("⚠️ Échec invalidation cache produits: %v", err)
	}
}
