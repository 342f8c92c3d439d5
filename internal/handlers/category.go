package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"floralys_back_end/internal/models"
	"floralys_back_end/internal/repository"
)

type CategoryHandler struct {
	categories repository.CategoryRepository
}

func NewCategoryHandler(categories repository.CategoryRepository) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		log.Printf("❌ Erreur liste catégories: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur interne"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": categories})
}

// Create (admin)
func (h *CategoryHandler) Create(c *gin.Context) {
	var input struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Nom de catégorie requis"})
		return
	}

	category := &models.Category{Name: input.Name}
	if err := h.categories.Create(c.Request.Context(), category); err != nil {
		log.Printf("❌ Erreur création catégorie: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur interne"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Catégorie créée", "data": category})
}
