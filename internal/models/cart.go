package models

// CartItem est une ligne de panier persistée dans Redis.
// Le prix affiché ici est indicatif : à la création de commande,
// c'est le prix courant en base qui fait foi (snapshot).
type CartItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImageURL  string  `json:"image_url"`
}
