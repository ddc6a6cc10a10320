package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/riddleworks/dailyriddle/internal/config"
	"github.com/riddleworks/dailyriddle/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Redemption failure conditions, surfaced to the caller as client errors.
var (
	// ErrIntentNotFound indicates an unknown payment reference.
	ErrIntentNotFound = errors.New("payment: intent not found")
	// ErrIntentNotPaid indicates the provider has not confirmed the payment.
	ErrIntentNotPaid = errors.New("payment: intent not paid")
	// ErrIntentConsumed indicates the paid generation was already redeemed.
	ErrIntentConsumed = errors.New("payment: intent already redeemed")
)

// Service creates payment intents and redeems them for quota-free
// generations. Each intent buys exactly one generation.
type Service struct {
	db       *gorm.DB
	provider Provider
	amount   int64
	currency string
}

// NewService constructs a payment Service.
func NewService(db *gorm.DB, provider Provider, cfg config.PaymentConfig) *Service {
	return &Service{
		db:       db,
		provider: provider,
		amount:   cfg.AmountCents,
		currency: cfg.Currency,
	}
}

// CreateIntent creates a provider intent and records it locally, keyed by
// a fresh reference the client uses for redemption.
func (s *Service) CreateIntent(ctx context.Context) (*models.PaymentIntent, string, error) {
	intent, errCreate := s.provider.CreateIntent(ctx, s.amount, s.currency)
	if errCreate != nil {
		return nil, "", errCreate
	}

	row := models.PaymentIntent{
		Reference:   uuid.NewString(),
		ProviderID:  intent.ID,
		AmountCents: s.amount,
		Currency:    s.currency,
		Status:      models.PaymentStatusPending,
		Metadata:    datatypes.JSON(intent.Raw),
	}
	if errSave := s.db.WithContext(ctx).Create(&row).Error; errSave != nil {
		return nil, "", fmt.Errorf("payment: save intent: %w", errSave)
	}
	return &row, intent.ClientSecret, nil
}

// Redeem verifies with the provider that the referenced intent is paid
// and marks it consumed. A reference can be redeemed exactly once.
func (s *Service) Redeem(ctx context.Context, reference string) error {
	var row models.PaymentIntent
	errFind := s.db.WithContext(ctx).
		Where("reference = ?", reference).
		First(&row).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return ErrIntentNotFound
		}
		return fmt.Errorf("payment: load intent: %w", errFind)
	}
	if row.Consumed() {
		return ErrIntentConsumed
	}

	intent, errGet := s.provider.GetIntent(ctx, row.ProviderID)
	if errGet != nil {
		return errGet
	}
	if intent.Status != IntentStatusSucceeded {
		return fmt.Errorf("%w: status %s", ErrIntentNotPaid, intent.Status)
	}

	now := time.Now().UTC()
	result := s.db.WithContext(ctx).
		Model(&models.PaymentIntent{}).
		Where("id = ? AND consumed_at IS NULL", row.ID).
		Updates(map[string]any{
			"status":      models.PaymentStatusSucceeded,
			"consumed_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("payment: mark consumed: %w", result.Error)
	}
	// A concurrent redeem may have won the guarded update.
	if result.RowsAffected == 0 {
		return ErrIntentConsumed
	}
	return nil
}

// Release undoes a redemption whose paid generation never happened, so
// the same reference can be redeemed again.
func (s *Service) Release(ctx context.Context, reference string) error {
	result := s.db.WithContext(ctx).
		Model(&models.PaymentIntent{}).
		Where("reference = ? AND consumed_at IS NOT NULL", reference).
		Update("consumed_at", nil)
	if result.Error != nil {
		return fmt.Errorf("payment: release intent: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrIntentNotFound
	}
	return nil
}
