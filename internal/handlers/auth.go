package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"floralys_back_end/internal/config"
	"floralys_back_end/internal/models"
	"floralys_back_end/internal/repository"
	"floralys_back_end/internal/utils"
)

// AuthHandler porte l'inscription et la connexion locales (email + mot de
// passe Argon2id, JWT HS256).
type AuthHandler struct {
	users repository.UserRepository
	cfg   config.Config
}

func NewAuthHandler(users repository.UserRepository, cfg config.Config) *AuthHandler {
	return &AuthHandler{users: users, cfg: cfg}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Données d'inscription invalides"})
		return
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		log.Printf("❌ Erreur hash mot de passe: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur interne"})
		return
	}

	user := &models.User{
		Name:         input.Name,
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: hash,
		Role:         models.RoleCustomer,
	}

	if err := h.users.Create(c.Request.Context(), user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Un compte avec cet email existe déjà"})
			return
		}
		log.Printf("❌ Erreur création utilisateur: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur interne"})
		return
	}

	token, err := utils.GenerateJWT(*user, h.cfg.JWTSecret, h.cfg.JWTExpiry)
	if err != nil {
		log.Printf("❌ Erreur génération JWT: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur interne"})
		return
	}

	log.Printf("✅ Nouvel utilisateur inscrit: %s", user.Email)
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Compte créé avec succès",
		"data":    gin.H{"user": user, "token": token},
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email et mot de passe requis"})
		return
	}

	user, err := h.users.FindByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		// Même message pour email inconnu et mot de passe faux.
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Identifiants incorrects"})
		return
	}

	ok, err := utils.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Identifiants incorrects"})
		return
	}

	token, err := utils.GenerateJWT(*user, h.cfg.JWTSecret, h.cfg.JWTExpiry)
	if err != nil {
		log.Printf("❌ Erreur génération JWT: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur interne"})
		return
	}

	log.Printf("✅ Connexion: %s", user.Email)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Connexion réussie",
		"data":    gin.H{"user": user, "token": token},
	})
}

// Me renvoie le profil de l'utilisateur connecté.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString("user_id")

	user, err := h.users.FindByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Utilisateur introuvable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}
