package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrNotFound       = errors.New("enregistrement introuvable")
	ErrDuplicateEmail = errors.New("email déjà utilisé")
)

// isUniqueViolation détecte une violation de contrainte UNIQUE Postgres (23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// IsUniqueViolation est exposée pour le retry de génération de numéro de commande.
func IsUniqueViolation(err error) bool {
	return isUniqueViolation(err)
}
