package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"floralys_back_end/internal/config"
	"floralys_back_end/internal/database"
	"floralys_back_end/internal/handlers"
	"floralys_back_end/internal/middleware"
	"floralys_back_end/internal/notifier"
	"floralys_back_end/internal/repository"
	"floralys_back_end/internal/routes"
	"floralys_back_end/internal/services"
	"floralys_back_end/internal/utils"
)

func main() {
	cfg := config.Load()

	db, err := database.ConnectPostgres(cfg)
	if err != nil {
		log.Fatal("❌ Impossible de se connecter à Postgres : ", err)
	}
	defer db.Close()

	redisClient, err := database.ConnectRedis(cfg)
	if err != nil {
		log.Fatal("❌ Impossible de se connecter à Redis : ", err)
	}
	defer redisClient.Close()

	minioClient, err := database.ConnectMinio(cfg)
	if err != nil {
		log.Fatal("❌ Impossible d'initialiser MinIO : ", err)
	}

	elasticClient := database.ConnectElastic(cfg)

	// Repositories
	users := repository.NewUserRepository(db)
	products := repository.NewProductRepository(db)
	categories := repository.NewCategoryRepository(db)
	orders := repository.NewOrderRepository(db)
	payments := repository.NewPaymentRepository(db)

	// Notifications e-mail (consommateur asynchrone, best-effort)
	n := notifier.New(utils.NewMailer(cfg))
	n.Start()
	defer n.Close()

	// Services
	cartService := services.NewCartService(redisClient, products)
	searchService := services.NewSearchService(elasticClient, products)
	proofStorage := services.NewProofStorage(minioClient, cfg)
	orderService := services.NewOrderService(db, products, orders, users, cartService, n, cfg.OrderNumberPrefix)
	paymentService := services.NewPaymentService(db, payments, orders, orderService, n)

	limiter := middleware.NewRateLimiter(redisClient)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "https://floralys.be"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(limiter.API())

	routes.RegisterRoutes(r, routes.Handlers{
		Auth:       handlers.NewAuthHandler(users, cfg),
		Products:   handlers.NewProductHandler(products, searchService, redisClient),
		Categories: handlers.NewCategoryHandler(categories),
		Cart:       handlers.NewCartHandler(cartService),
		Orders:     handlers.NewOrderHandler(orderService),
		Payments:   handlers.NewPaymentHandler(paymentService, proofStorage, cfg),
	}, limiter, cfg.JWTSecret)

	log.Println("🚀 Serveur Floralys lancé sur le port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("❌ Erreur serveur : ", err)
	}
}
