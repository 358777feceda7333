package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sharefile/share-api/internal/model"
	"sharefile/share-api/internal/plan"
	"sharefile/share-api/pkg/validators"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ActivateInput struct {
	UserID        string
	Plan          string
	Amount        int64
	TransactionID string
}

// Subscriptions records manually confirmed payments. Rows are only ever
// inserted, a renewal is a new row and the newest one wins
type Subscriptions struct {
	Subs  SubscriptionRows
	Plans plan.Table
	Now   func() time.Time
}

func NewSubscriptions(s SubscriptionRows, p plan.Table) *Subscriptions {
	return &Subscriptions{Subs: s, Plans: p, Now: time.Now}
}

// Activate validates the payment reference and stores a subscription that
// runs for one plan period from now
func (s *Subscriptions) Activate(ctx context.Context, in ActivateInput) (*model.Subscription, error) {
	if in.UserID == "" {
		return nil, ErrNotAuthenticated
	}

	p, err := plan.Parse(in.Plan)
	if err != nil {
		return nil, err
	}

	if err := validators.TransactionIDValidator(in.TransactionID); err != nil {
		return nil, err
	}

	if err := validators.AmountValidator(in.Amount); err != nil {
		return nil, err
	}

	id, err := gonanoid.Generate(idAlphabet, 16)
	if err != nil {
		return nil, fmt.Errorf("failed to generate subscription id, %w", err)
	}

	now := s.Now()
	txID := in.TransactionID

	sub := &model.Subscription{
		ID:            id,
		UserID:        in.UserID,
		PlanType:      string(p),
		Amount:        in.Amount,
		TransactionID: &txID,
		CreatedAt:     now.UnixMilli(),
		ExpiresAt:     p.PeriodEnd(now).UnixMilli(),
	}

	if err := s.Subs.Create(ctx, sub); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateTransaction
		}

		return nil, fmt.Errorf("%w: %w", ErrRowWriteFailed, err)
	}

	zap.L().Info("Subscription activated",
		zap.String("userID", in.UserID),
		zap.String("plan", sub.PlanType),
		zap.Int64("expiresAt", sub.ExpiresAt),
	)

	return sub, nil
}

// Current returns the user's active subscription with its limits, or nil
// and the free plan when there is none
func (s *Subscriptions) Current(ctx context.Context, userID string) (*model.Subscription, plan.Limits, error) {
	if userID == "" {
		return nil, plan.Limits{}, ErrNotAuthenticated
	}

	sub, err := s.Subs.Latest(ctx, userID)
	if err != nil {
		return nil, plan.Limits{}, fmt.Errorf("%w: %w", ErrRowReadFailed, err)
	}

	if sub == nil || !sub.Active(s.Now().UnixMilli()) {
		return nil, s.Plans.Lookup(plan.Basic), nil
	}

	return sub, s.Plans.Lookup(plan.Type(sub.PlanType)), nil
}
