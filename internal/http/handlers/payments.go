package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/riddleworks/dailyriddle/internal/payment"
	"github.com/riddleworks/dailyriddle/internal/riddle"
	log "github.com/sirupsen/logrus"
)

// PaymentHandler serves the paid quota-bypass endpoints.
type PaymentHandler struct {
	payments *payment.Service
	service  *riddle.Service
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(payments *payment.Service, service *riddle.Service) *PaymentHandler {
	return &PaymentHandler{payments: payments, service: service}
}

// CreateIntent creates a payment intent for one paid generation.
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	row, clientSecret, errCreate := h.payments.CreateIntent(c.Request.Context())
	if errCreate != nil {
		log.WithError(errCreate).Error("create payment intent failed")
		c.JSON(http.StatusBadGateway, gin.H{"message": "Failed to create payment intent"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"clientSecret": clientSecret,
		"reference":    row.Reference,
	})
}

// generatePaidRequest is the request body for paid generation.
type generatePaidRequest struct {
	Reference string `json:"reference"`
}

// GeneratePaid redeems a paid intent and runs one unmetered generation.
func (h *PaymentHandler) GeneratePaid(c *gin.Context) {
	var body generatePaidRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	reference := strings.TrimSpace(body.Reference)
	if reference == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "reference is required"})
		return
	}

	ctx := c.Request.Context()
	if errRedeem := h.payments.Redeem(ctx, reference); errRedeem != nil {
		switch {
		case errors.Is(errRedeem, payment.ErrIntentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Payment not found"})
		case errors.Is(errRedeem, payment.ErrIntentNotPaid):
			c.JSON(http.StatusPaymentRequired, gin.H{"message": "Payment has not completed"})
		case errors.Is(errRedeem, payment.ErrIntentConsumed):
			c.JSON(http.StatusConflict, gin.H{"message": "Payment already redeemed"})
		default:
			log.WithError(errRedeem).Error("redeem payment failed")
			c.JSON(http.StatusBadGateway, gin.H{"message": "Failed to verify payment"})
		}
		return
	}

	created, errGenerate := h.service.GenerateUnmetered(ctx)
	if errGenerate != nil {
		// The payment was consumed but produced nothing; release it so the
		// client can retry with the same reference.
		if errRelease := h.payments.Release(ctx, reference); errRelease != nil {
			log.WithError(errRelease).Error("release payment after failed generation failed")
		}
		log.WithError(errGenerate).Error("paid generation failed")
		c.JSON(http.StatusBadGateway, gin.H{"message": errGenerate.Error()})
		return
	}

	c.JSON(http.StatusCreated, created)
}
