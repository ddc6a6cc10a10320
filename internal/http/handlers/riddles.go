package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/riddleworks/dailyriddle/internal/generator"
	"github.com/riddleworks/dailyriddle/internal/quota"
	"github.com/riddleworks/dailyriddle/internal/riddle"
	"github.com/riddleworks/dailyriddle/internal/store"
	log "github.com/sirupsen/logrus"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
	maxBatchCount    = 10
)

// RiddleHandler serves the public riddle endpoints.
type RiddleHandler struct {
	store   *store.RiddleStore
	service *riddle.Service
}

// NewRiddleHandler constructs a RiddleHandler.
func NewRiddleHandler(riddleStore *store.RiddleStore, service *riddle.Service) *RiddleHandler {
	return &RiddleHandler{store: riddleStore, service: service}
}

// Latest returns the riddle currently flagged as latest.
func (h *RiddleHandler) Latest(c *gin.Context) {
	latest, errLatest := h.store.GetLatest(c.Request.Context())
	if errLatest != nil {
		log.WithError(errLatest).Error("fetch latest riddle failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch the latest riddle"})
		return
	}
	if latest == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "No riddles found"})
		return
	}
	c.JSON(http.StatusOK, latest)
}

// paginationDTO describes one page of the riddle history.
type paginationDTO struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"hasMore"`
}

// List returns riddles newest first, paginated.
func (h *RiddleHandler) List(c *gin.Context) {
	limit := intQuery(c, "limit", defaultPageLimit)
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	offset := intQuery(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	ctx := c.Request.Context()
	riddles, errList := h.store.List(ctx, limit, offset)
	if errList != nil {
		log.WithError(errList).Error("list riddles failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch riddles"})
		return
	}
	total, errCount := h.store.Count(ctx)
	if errCount != nil {
		log.WithError(errCount).Error("count riddles failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch riddles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"riddles": riddles,
		"pagination": paginationDTO{
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: int64(offset+len(riddles)) < total,
		},
	})
}

// Generate runs the quota-gated generation path for the calling client.
func (h *RiddleHandler) Generate(c *gin.Context) {
	count := intQuery(c, "count", 1)
	if count < 1 {
		count = 1
	}
	if count > maxBatchCount {
		count = maxBatchCount
	}

	clientKey := c.ClientIP()
	result, errGenerate := h.service.GenerateForClient(c.Request.Context(), clientKey, count)
	if errGenerate != nil {
		switch {
		case errors.Is(errGenerate, quota.ErrExceeded):
			c.JSON(http.StatusTooManyRequests, gin.H{
				"message":   "Daily riddle generation limit reached",
				"remaining": 0,
			})
		case errors.Is(errGenerate, generator.ErrGeneration):
			c.JSON(http.StatusBadGateway, gin.H{"message": errGenerate.Error()})
		default:
			log.WithError(errGenerate).Error("generate riddle failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate a new riddle"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"riddle":    result.Newest,
		"generated": result.Generated,
		"remaining": result.Remaining,
	})
}

// rateRequest is the request body for rating submissions.
type rateRequest struct {
	Rating int `json:"rating"`
}

// Rate records a 1-5 star rating for a riddle.
func (h *RiddleHandler) Rate(c *gin.Context) {
	id, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid riddle id"})
		return
	}

	var body rateRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	if body.Rating < 1 || body.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "rating must be between 1 and 5"})
		return
	}

	rated, errRate := h.store.Rate(c.Request.Context(), id, body.Rating)
	if errRate != nil {
		log.WithError(errRate).Error("rate riddle failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to rate riddle"})
		return
	}
	if rated == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Riddle not found"})
		return
	}
	c.JSON(http.StatusOK, rated)
}

// GenerationLimit reports the calling client's remaining daily quota.
func (h *RiddleHandler) GenerationLimit(c *gin.Context) {
	remaining := h.service.Remaining(c.ClientIP())
	c.JSON(http.StatusOK, gin.H{
		"remaining":   remaining,
		"limit":       h.service.MaxPerDay(),
		"canGenerate": remaining > 0,
	})
}
