package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"floralys_back_end/internal/config"
	"floralys_back_end/internal/models"
	"floralys_back_end/internal/services"
)

type PaymentHandler struct {
	payments *services.PaymentService
	proofs   *services.ProofStorage
	cfg      config.Config
}

func NewPaymentHandler(payments *services.PaymentService, proofs *services.ProofStorage, cfg config.Config) *PaymentHandler {
	return &PaymentHandler{payments: payments, proofs: proofs, cfg: cfg}
}

// Submit enregistre une déclaration de paiement en multipart : champs texte
// + preuve image optionnelle (capture de virement, reçu mobile).
func (h *PaymentHandler) Submit(c *gin.Context) {
	orderID := c.PostForm("order_id")
	methodID := c.PostForm("payment_method_id")
	amountStr := c.PostForm("amount")
	reference := c.PostForm("reference_number")
	details := c.PostForm("payment_details")

	if orderID == "" || methodID == "" || amountStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "order_id, payment_method_id et amount requis"})
		return
	}

	amount, err := strconv.ParseFloat(amountStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Montant invalide"})
		return
	}

	var detailsJSON json.RawMessage
	if details != "" {
		if !json.Valid([]byte(details)) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "payment_details doit être du JSON valide"})
			return
		}
		detailsJSON = json.RawMessage(details)
	}

	// Preuve optionnelle, validée et uploadée AVANT la déclaration : un
	// fichier refusé ne laisse aucune trace en base.
	var proofURL *string
	if file, err := c.FormFile("proof_image"); err == nil {
		if err := services.ValidateProof(file); err != nil {
			switch {
			case errors.Is(err, services.ErrProofTooLarge):
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"success": false, "message": "La preuve dépasse 5 Mo"})
			case errors.Is(err, services.ErrInvalidProofType):
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "La preuve doit être une image"})
			default:
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Preuve invalide"})
			}
			return
		}

		url, err := h.proofs.Upload(c.Request.Context(), file)
		if err != nil {
			log.Printf("❌ Erreur upload preuve: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur lors de l'upload de la preuve"})
			return
		}
		proofURL = &url
	}

	payment, err := h.payments.Submit(c.Request.Context(), services.SubmitPaymentCommand{
		OrderID:         orderID,
		PaymentMethodID: methodID,
		Amount:          amount,
		ReferenceNumber: reference,
		PaymentDetails:  detailsJSON,
		ProofImageURL:   proofURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Commande introuvable"})
		case errors.Is(err, services.ErrOrderNotPayable):
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Cette commande n'est plus en attente de paiement"})
		case errors.Is(err, services.ErrAmountMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		case errors.Is(err, services.ErrPaymentMethodInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Méthode de paiement inconnue ou inactive"})
		case errors.Is(err, services.ErrPaymentAlreadyOpen):
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Un paiement est déjà en cours pour cette commande"})
		default:
			log.Printf("❌ Erreur déclaration paiement: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur interne"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Paiement déclaré, en attente de vérification", "data": payment})
}

func (h *PaymentHandler) Get(c *gin.Context) {
	payment, err := h.payments.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrPaymentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Paiement introuvable"})
			return
		}
		log.Printf("❌ Erreur lecture paiement: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur interne"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": payment})
}

// Verify (admin) valide ou refuse un paiement déclaré.
func (h *PaymentHandler) Verify(c *gin.Context) {
	var input struct {
		Decision string `json:"decision" binding:"required"`
		Notes    string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "decision requis (verified ou failed)"})
		return
	}

	var actorID *string
	if id := c.GetString("user_id"); id != "" {
		actorID = &id
	}

	payment, err := h.payments.Verify(c.Request.Context(), c.Param("id"),
		models.PaymentStatus(input.Decision), input.Notes, actorID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidDecision):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "decision doit valoir verified ou failed"})
		case errors.Is(err, services.ErrPaymentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Paiement introuvable"})
		case errors.Is(err, services.ErrAlreadyProcessed):
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Ce paiement a déjà été traité"})
		case errors.Is(err, services.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Commande introuvable"})
		default:
			log.Printf("❌ Erreur vérification paiement: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur interne"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Paiement traité", "data": payment})
}

// Pending (admin) liste les paiements en attente de vérification.
func (h *PaymentHandler) Pending(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	payments, total, err := h.payments.ListPending(c.Request.Context(), page, limit)
	if err != nil {
		log.Printf("❌ Erreur liste paiements: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur interne"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"payments": payments,
			"total":    total,
			"page":     page,
			"limit":    limit,
		},
	})
}

// Methods liste les méthodes de paiement actives.
func (h *PaymentHandler) Methods(c *gin.Context) {
	methods, err := h.payments.ListMethods(c.Request.Context())
	if err != nil {
		log.Printf("❌ Erreur liste méthodes de paiement: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur interne"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": methods})
}

// QR génère le QR code SEPA pré-rempli pour payer une commande par virement.
func (h *PaymentHandler) QR(c *gin.Context) {
	qr, err := h.payments.PaymentQR(c.Request.Context(), c.Param("orderId"),
		h.cfg.CompanyIBAN, h.cfg.CompanyBIC, h.cfg.CompanyName)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Commande introuvable"})
		case errors.Is(err, services.ErrOrderNotPayable):
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Cette commande n'est plus en attente de paiement"})
		default:
			log.Printf("❌ Erreur génération QR: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur interne"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"qr_code": qr}})
}
