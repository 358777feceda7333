package service_test

import (
	"context"
	"testing"
	"time"

	"sharefile/share-api/internal/plan"
	"sharefile/share-api/internal/service"
	"sharefile/share-api/pkg/validators"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSubscriptions(e *env, now time.Time) *service.Subscriptions {
	s := service.NewSubscriptions(e.subs, plan.Default())
	s.Now = fixedClock(now)
	return s
}

func TestActivate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	now := time.Date(2025, time.January, 31, 9, 0, 0, 0, time.UTC)

	sub, err := newSubscriptions(e, now).Activate(ctx, service.ActivateInput{
		UserID:        "u1",
		Plan:          "monthly",
		Amount:        299,
		TransactionID: "123456789012",
	})
	require.NoError(t, err)
	assert.Equal(t, "monthly", sub.PlanType)
	assert.Equal(t, now.AddDate(0, 1, 0).UnixMilli(), sub.ExpiresAt)
	assert.Equal(t, now.UnixMilli(), sub.CreatedAt)

	// The new plan applies to the next upload
	f, err := newUploader(e, now.Add(time.Minute)).Do(ctx, input("u1", "a.txt", 90*plan.MB))
	require.NoError(t, err)
	require.NotNil(t, f.PlanExpiresAt)
	assert.Equal(t, sub.ExpiresAt, *f.PlanExpiresAt)
}

func TestActivateRejectsBadInput(t *testing.T) {
	e := newEnv(t)
	s := newSubscriptions(e, time.Now())
	ctx := context.Background()

	_, err := s.Activate(ctx, service.ActivateInput{Plan: "monthly", Amount: 1, TransactionID: "123456789012"})
	assert.ErrorIs(t, err, service.ErrNotAuthenticated)

	_, err = s.Activate(ctx, service.ActivateInput{UserID: "u1", Plan: "basic", Amount: 1, TransactionID: "123456789012"})
	assert.ErrorIs(t, err, plan.ErrUnknownPlan)

	_, err = s.Activate(ctx, service.ActivateInput{UserID: "u1", Plan: "yearly", Amount: 1, TransactionID: "12345"})
	assert.ErrorIs(t, err, validators.ErrTransactionIDInvalid)

	_, err = s.Activate(ctx, service.ActivateInput{UserID: "u1", Plan: "yearly", Amount: 1, TransactionID: "12345678901a"})
	assert.ErrorIs(t, err, validators.ErrTransactionIDInvalid)

	_, err = s.Activate(ctx, service.ActivateInput{UserID: "u1", Plan: "yearly", Amount: 0, TransactionID: "123456789012"})
	assert.ErrorIs(t, err, validators.ErrAmountInvalid)

	assert.Zero(t, e.subscriptionCount(t))
}

func TestActivateDuplicateTransaction(t *testing.T) {
	e := newEnv(t)
	s := newSubscriptions(e, time.Now())
	ctx := context.Background()

	in := service.ActivateInput{UserID: "u1", Plan: "5day", Amount: 49, TransactionID: "000000000001"}

	_, err := s.Activate(ctx, in)
	require.NoError(t, err)

	in.UserID = "u2"
	_, err = s.Activate(ctx, in)
	assert.ErrorIs(t, err, service.ErrDuplicateTransaction)
	assert.EqualValues(t, 1, e.subscriptionCount(t))
}

func TestCurrent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	now := time.UnixMilli(10_000)

	sub, limits, err := newSubscriptions(e, now).Current(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, sub)
	assert.Equal(t, plan.Basic, limits.Type)

	e.seedSubscription(t, "s1", "u1", "yearly", 1, 20_000)

	sub, limits, err = newSubscriptions(e, now).Current(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, plan.Yearly, limits.Type)

	sub, limits, err = newSubscriptions(e, time.UnixMilli(20_000)).Current(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, sub)
	assert.Equal(t, plan.Basic, limits.Type)
}
