package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	_ "github.com/lib/pq"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"

	"floralys_back_end/internal/config"
)

// ConnectPostgres ouvre le pool de connexions vers Postgres (Supabase).
// Le *sql.DB est ensuite injecté dans les repositories — pas de singleton global.
func ConnectPostgres(cfg config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("ouverture Postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping Postgres: %w", err)
	}

	log.Println("✅ Connecté à Postgres")
	return db, nil
}

// ConnectRedis initialise le client Redis (paniers, cache produits, rate limiting).
func ConnectRedis(cfg config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping Redis: %w", err)
	}

	log.Println("✅ Connecté à Redis :", cfg.RedisAddr)
	return client, nil
}

// ConnectMinio initialise le client MinIO (stockage des preuves de paiement).
func ConnectMinio(cfg config.Config) (*minio.Client, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("client MinIO: %w", err)
	}

	log.Println("✅ Connecté à MinIO :", cfg.MinioEndpoint)
	return client, nil
}

// ConnectElastic initialise le client Elasticsearch pour la recherche produits.
// Optionnel : renvoie nil sans erreur si ELASTIC_URL n'est pas configuré,
// la recherche retombe alors sur Postgres.
func ConnectElastic(cfg config.Config) *elasticsearch.Client {
	if cfg.ElasticURL == "" {
		log.Println("⚠️ Elasticsearch non configuré — recherche via Postgres uniquement")
		return nil
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.ElasticURL},
		APIKey:    cfg.ElasticAPIKey,
	})
	if err != nil {
		log.Println("⚠️ Elasticsearch indisponible :", err)
		return nil
	}

	log.Println("✅ Connecté à Elasticsearch :", cfg.ElasticURL)
	return client
}
