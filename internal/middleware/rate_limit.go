package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	// Limites par endpoint
	LoginMaxAttempts    = 5
	RegisterMaxAttempts = 3
	APIMaxRequests      = 100 // Par minute pour les endpoints généraux
	SearchMaxRequests   = 30

	// Durées de cooldown
	LoginCooldown    = 15 * time.Minute
	RegisterCooldown = 30 * time.Minute
	APICooldown      = 1 * time.Minute
)

// RateLimiter regroupe les limiteurs Redis. Sans client Redis (tests,
// dev minimal), tous les limiteurs laissent passer.
type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redisClient}
}

// Login limite les tentatives de connexion par email
func (r *RateLimiter) Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		if r.redis == nil {
			c.Next()
			return
		}

		// Lire le body sans le consommer
		bodyBytes, _ := io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		var input struct {
			Email string `json:"email"`
		}
		if err := json.Unmarshal(bodyBytes, &input); err != nil || input.Email == "" {
			c.Next()
			return
		}

		ctx := context.Background()
		key := "login_attempts:" + input.Email
		cooldownKey := "login_cooldown:" + input.Email

		if r.redis.Exists(ctx, cooldownKey).Val() > 0 {
			ttl := r.redis.TTL(ctx, cooldownKey).Val()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"message":     fmt.Sprintf("Trop de tentatives échouées. Réessayez dans %d minutes", int(ttl.Minutes())),
				"retry_after": int(ttl.Seconds()),
			})
			c.Abort()
			return
		}

		attempts, _ := r.redis.Get(ctx, key).Int()
		if attempts >= LoginMaxAttempts {
			r.redis.Set(ctx, cooldownKey, "1", LoginCooldown)
			r.redis.Del(ctx, key)

			c.JSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"message":     fmt.Sprintf("Trop de tentatives échouées. Compte bloqué pendant %d minutes", int(LoginCooldown.Minutes())),
				"retry_after": int(LoginCooldown.Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()

		// Échec de login : incrémenter ; succès : réinitialiser.
		if c.Writer.Status() == http.StatusUnauthorized {
			r.redis.Incr(ctx, key)
			r.redis.Expire(ctx, key, LoginCooldown)
		} else if c.Writer.Status() == http.StatusOK {
			r.redis.Del(ctx, key)
			r.redis.Del(ctx, cooldownKey)
		}
	}
}

// Register limite les inscriptions par IP
func (r *RateLimiter) Register() gin.HandlerFunc {
	return func(c *gin.Context) {
		if r.redis == nil {
			c.Next()
			return
		}

		ctx := context.Background()
		ip := c.ClientIP()
		key := "register_attempts:" + ip
		cooldownKey := "register_cooldown:" + ip

		if r.redis.Exists(ctx, cooldownKey).Val() > 0 {
			ttl := r.redis.TTL(ctx, cooldownKey).Val()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"message":     fmt.Sprintf("Trop d'inscriptions. Réessayez dans %d minutes", int(ttl.Minutes())),
				"retry_after": int(ttl.Seconds()),
			})
			c.Abort()
			return
		}

		attempts, _ := r.redis.Get(ctx, key).Int()
		if attempts >= RegisterMaxAttempts {
			r.redis.Set(ctx, cooldownKey, "1", RegisterCooldown)
			r.redis.Del(ctx, key)

			c.JSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"message":     fmt.Sprintf("Trop d'inscriptions. Réessayez dans %d minutes", int(RegisterCooldown.Minutes())),
				"retry_after": int(RegisterCooldown.Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()

		if c.Writer.Status() == http.StatusCreated {
			r.redis.Incr(ctx, key)
			r.redis.Expire(ctx, key, RegisterCooldown)
		}
	}
}

// API limite le nombre de requêtes par IP (général)
func (r *RateLimiter) API() gin.HandlerFunc {
	return func(c *gin.Context) {
		if r.redis == nil {
			c.Next()
			return
		}

		ctx := context.Background()
		ip := c.ClientIP()
		key := "api_requests:" + ip

		requests, _ := r.redis.Get(ctx, key).Int()
		if requests >= APIMaxRequests {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"message":     "Trop de requêtes. Réessayez dans 1 minute",
				"retry_after": 60,
			})
			c.Abort()
			return
		}

		pipe := r.redis.Pipeline()
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, APICooldown)
		pipe.Exec(ctx)

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", APIMaxRequests))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", APIMaxRequests-requests-1))

		c.Next()
	}
}

// Search limite les recherches (anti-spam)
func (r *RateLimiter) Search() gin.HandlerFunc {
	return func(c *gin.Context) {
		if r.redis == nil {
			c.Next()
			return
		}

		ctx := context.Background()
		ip := c.ClientIP()
		key := "search_requests:" + ip

		requests, _ := r.redis.Get(ctx, key).Int()
		if requests >= SearchMaxRequests {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"message":     "Trop de recherches. Réessayez dans 1 minute",
				"retry_after": 60,
			})
			c.Abort()
			return
		}

		pipe := r.redis.Pipeline()
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, 1*time.Minute)
		pipe.Exec(ctx)

		c.Next()
	}
}
