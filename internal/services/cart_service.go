package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"floralys_back_end/internal/models"
	"floralys_back_end/internal/repository"
)

// Durée de vie d'un panier Redis.
const cartTTL = 30 * 24 * time.Hour

// CartService persiste le panier des utilisateurs connectés dans Redis,
// une clé JSON par utilisateur.
type CartService struct {
	redis    *redis.Client
	products repository.ProductRepository
}

func NewCartService(redisClient *redis.Client, products repository.ProductRepository) *CartService {
	return &CartService{redis: redisClient, products: products}
}

func cartKey(userID string) string {
	return "cart:" + userID
}

func (s *CartService) Get(ctx context.Context, userID string) ([]models.CartItem, error) {
	data, err := s.redis.Get(ctx, cartKey(userID)).Result()
	if err == redis.Nil || data == "" {
		return []models.CartItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lecture panier: %w", err)
	}

	var cart []models.CartItem
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, fmt.Errorf("décodage panier: %w", err)
	}
	return cart, nil
}

// Add ajoute un produit au panier (ou cumule la quantité s'il y est déjà).
// Le prix stocké est indicatif : le prix qui fait foi est relu en base
// à la création de commande.
func (s *CartService) Add(ctx context.Context, userID, productID string, quantity int) ([]models.CartItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, ErrProductNotFound
	}

	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range cart {
		if cart[i].ProductID == productID {
			cart[i].Quantity += quantity
			cart[i].Price = product.Price
			found = true
			break
		}
	}
	if !found {
		cart = append(cart, models.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  quantity,
			ImageURL:  product.ImageURL,
		})
	}

	if err := s.save(ctx, userID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) Remove(ctx context.Context, userID, productID string) ([]models.CartItem, error) {
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	newCart := make([]models.CartItem, 0, len(cart))
	for _, item := range cart {
		if item.ProductID != productID {
			newCart = append(newCart, item)
		}
	}

	if err := s.save(ctx, userID, newCart); err != nil {
		return nil, err
	}
	return newCart, nil
}

func (s *CartService) Clear(ctx context.Context, userID string) error {
	if err := s.redis.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("vidage panier: %w", err)
	}
	return nil
}

func (s *CartService) save(ctx context.Context, userID string, cart []models.CartItem) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encodage panier: %w", err)
	}
	if err := s.redis.Set(ctx, cartKey(userID), data, cartTTL).Err(); err != nil {
		return fmt.Errorf("sauvegarde panier: %w", err)
	}
	return nil
}
