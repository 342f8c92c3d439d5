package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"floralys_back_end/internal/models"
	"floralys_back_end/internal/repository"
)

// SearchService indexe les produits dans Elasticsearch (best-effort) et
// sert la recherche plein texte. Sans client Elastic, tout retombe sur
// un ILIKE Postgres.
type SearchService struct {
	elastic  *elasticsearch.Client
	products repository.ProductRepository
}

func NewSearchService(elastic *elasticsearch.Client, products repository.ProductRepository) *SearchService {
	return &SearchService{elastic: elastic, products: products}
}

// IndexProduct indexe un produit. Appelé en goroutine après création ou
// mise à jour : un échec d'indexation ne bloque jamais l'écriture en base.
func (s *SearchService) IndexProduct(p models.Product) {
	if s.elastic == nil {
		return
	}

	data, _ := json.Marshal(p)
	req := esapi.IndexRequest{
		Index:      "products",
		DocumentID: p.ID,
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}

	res, err := req.Do(context.Background(), s.elastic)
	if err != nil {
		log.Println("❌ Erreur envoi Elastic:", err)
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Printf("⚠️ Elastic a renvoyé une erreur pour %s: %s", p.Name, res.String())
	} else {
		log.Printf("✅ Produit indexé dans Elasticsearch: %s", p.Name)
	}
}

// RemoveProduct retire un produit désactivé de l'index.
func (s *SearchService) RemoveProduct(productID string) {
	if s.elastic == nil {
		return
	}

	req := esapi.DeleteRequest{Index: "products", DocumentID: productID}
	res, err := req.Do(context.Background(), s.elastic)
	if err != nil {
		log.Println("❌ Erreur suppression Elastic:", err)
		return
	}
	res.Body.Close()
}

// Search interroge Elasticsearch sur nom et description, avec fallback
// Postgres si l'index est indisponible ou vide.
func (s *SearchService) Search(ctx context.Context, query string, limit int) ([]models.Product, error) {
	if s.elastic != nil {
		products, err := s.searchElastic(ctx, query, limit)
		if err == nil && len(products) > 0 {
			return products, nil
		}
		if err != nil {
			log.Println("⚠️ Recherche Elastic en échec, fallback Postgres:", err)
		}
	}

	return s.products.SearchLike(ctx, query, limit)
}

func (s *SearchService) searchElastic(ctx context.Context, query string, limit int) ([]models.Product, error) {
	if limit < 1 || limit > 50 {
		limit = 20
	}

	var buf bytes.Buffer
	q := map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"name", "description"},
			},
		},
	}
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, fmt.Errorf("encodage requête: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{"products"},
		Body:  &buf,
	}
	res, err := req.Do(ctx, s.elastic)
	if err != nil {
		return nil, fmt.Errorf("requête Elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.New("index non trouvé ou vide")
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("décodage réponse: %w", err)
	}

	products := make([]models.Product, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		if hit.Source.IsActive {
			products = append(products, hit.Source)
		}
	}
	return products, nil
}
