package services

import "errors"

// Erreurs métier exposées aux handlers, qui les traduisent en codes HTTP.
// Tout le reste (erreurs SQL, réseau…) remonte en erreur générique 500.
var (
	ErrProductNotFound      = errors.New("produit introuvable ou inactif")
	ErrInsufficientStock    = errors.New("stock insuffisant")
	ErrOrderNotFound        = errors.New("commande introuvable")
	ErrEmptyOrder           = errors.New("la commande ne contient aucun article")
	ErrInvalidQuantity      = errors.New("quantité invalide")
	ErrMissingRecipient     = errors.New("utilisateur authentifié ou e-mail invité requis")
	ErrInvalidStatus        = errors.New("statut de commande inconnu")
	ErrPaymentNotFound      = errors.New("paiement introuvable")
	ErrOrderNotPayable      = errors.New("la commande n'accepte plus de paiement")
	ErrAmountMismatch       = errors.New("le montant ne correspond pas au total de la commande")
	ErrPaymentMethodInvalid = errors.New("moyen de paiement inconnu ou inactif")
	ErrAlreadyProcessed     = errors.New("paiement déjà traité")
	ErrPaymentAlreadyOpen   = errors.New("un paiement est déjà en attente pour cette commande")
	ErrInvalidDecision      = errors.New("décision de vérification invalide")
	ErrInvalidProofType     = errors.New("la preuve de paiement doit être une image")
	ErrProofTooLarge        = errors.New("la preuve de paiement dépasse 5 Mo")
)
