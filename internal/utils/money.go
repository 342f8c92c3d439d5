package utils

import "math"

// Les montants circulent en float64 (euros) mais toute comparaison et toute
// somme passent par les centimes entiers : un écart d'un centime doit être
// détecté de façon fiable, ce qu'une comparaison flottante ne garantit pas.

// ToCents convertit un montant en euros vers des centimes entiers.
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromCents convertit des centimes entiers vers un montant en euros.
func FromCents(cents int64) float64 {
	return float64(cents) / 100
}

// SameAmount compare deux montants au centime près.
func SameAmount(a, b float64) bool {
	return ToCents(a) == ToCents(b)
}
