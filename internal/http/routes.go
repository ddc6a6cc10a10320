// Package http wires the public and admin API routes.
package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/riddleworks/dailyriddle/internal/config"
	"github.com/riddleworks/dailyriddle/internal/http/handlers"
	"github.com/riddleworks/dailyriddle/internal/payment"
	"github.com/riddleworks/dailyriddle/internal/riddle"
	"github.com/riddleworks/dailyriddle/internal/security"
	"github.com/riddleworks/dailyriddle/internal/store"
	"gorm.io/gorm"
)

// RegisterRoutes registers all API routes on the engine.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, riddleStore *store.RiddleStore, service *riddle.Service, payments *payment.Service, jwtCfg config.JWTConfig) {
	if r == nil || db == nil {
		return
	}

	r.GET("/healthz", handlers.NewHealthHandler(db).Check)

	api := r.Group("/api")

	riddleHandler := handlers.NewRiddleHandler(riddleStore, service)
	api.GET("/riddles/latest", riddleHandler.Latest)
	api.GET("/riddles", riddleHandler.List)
	api.POST("/riddles/generate", riddleHandler.Generate)
	api.POST("/riddles/:id/rate", riddleHandler.Rate)
	api.GET("/generation-limit", riddleHandler.GenerationLimit)

	if payments != nil {
		paymentHandler := handlers.NewPaymentHandler(payments, service)
		api.POST("/payments/intent", paymentHandler.CreateIntent)
		api.POST("/riddles/generate-paid", paymentHandler.GeneratePaid)
	}

	authHandler := handlers.NewAuthHandler(db, jwtCfg)
	api.POST("/admin/login", authHandler.Login)

	admin := api.Group("/admin")
	admin.Use(adminAuthMiddleware(db, jwtCfg))

	adminHandler := handlers.NewAdminHandler(db, service)
	admin.POST("/riddles/generate", adminHandler.Generate)
	admin.GET("/settings", adminHandler.GetSettings)
	admin.PUT("/settings", adminHandler.PutSettings)
}

// adminAuthMiddleware validates admin JWTs and loads the user id into
// context.
func adminAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errJWT := security.ParseToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if !claims.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}

		c.Set("userID", claims.UserID)
		c.Next()
	}
}
