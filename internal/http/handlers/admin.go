package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/riddleworks/dailyriddle/internal/models"
	"github.com/riddleworks/dailyriddle/internal/riddle"
	"github.com/riddleworks/dailyriddle/internal/settings"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AdminHandler serves authenticated operator endpoints.
type AdminHandler struct {
	db      *gorm.DB
	service *riddle.Service
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(db *gorm.DB, service *riddle.Service) *AdminHandler {
	return &AdminHandler{db: db, service: service}
}

// Generate runs one unmetered generation.
func (h *AdminHandler) Generate(c *gin.Context) {
	created, errGenerate := h.service.GenerateUnmetered(c.Request.Context())
	if errGenerate != nil {
		log.WithError(errGenerate).Error("admin generation failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": errGenerate.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetSettings lists all runtime settings.
func (h *AdminHandler) GetSettings(c *gin.Context) {
	var rows []models.Setting
	if errFind := h.db.WithContext(c.Request.Context()).
		Order("key ASC").
		Find(&rows).Error; errFind != nil {
		log.WithError(errFind).Error("list settings failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}

	values := make(map[string]json.RawMessage, len(rows))
	for _, row := range rows {
		values[row.Key] = json.RawMessage(row.Value)
	}
	c.JSON(http.StatusOK, gin.H{"settings": values})
}

// PutSettings upserts runtime settings and refreshes the snapshot.
// Ceiling changes take effect for new trackers at the next restart; the
// prompt and schedule hour apply immediately.
func (h *AdminHandler) PutSettings(c *gin.Context) {
	var body map[string]json.RawMessage
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no settings provided"})
		return
	}

	ctx := c.Request.Context()
	for key, value := range body {
		if errUpsert := settings.Upsert(ctx, h.db, key, value); errUpsert != nil {
			log.WithError(errUpsert).Errorf("upsert setting %s failed", key)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save settings"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"updated": len(body)})
}
