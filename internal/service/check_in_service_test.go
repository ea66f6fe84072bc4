package service

import (
	"context"
	"testing"
	"time"

	"botfolio/internal/xe"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCheckIn_CreditsRewardOncePerDay(t *testing.T) {
	db, _, accountService := setupTradeTest(t)
	ctx := context.Background()
	fundAccount(t, db, "user-1", 100)

	settingsService := NewBotSettingsService(zap.NewNop(), db)
	checkInService := NewCheckInService(db, accountService, settingsService, zap.NewNop())

	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	checkInService.now = func() time.Time { return base }

	record, err := checkInService.CheckIn(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", record.Day)
	assert.True(t, record.Reward.Equal(decimal.NewFromFloat(0.5)))

	account, err := accountService.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, account.MainBalance.Equal(decimal.NewFromFloat(100.5)),
		"main balance %s", account.MainBalance)

	// 同一天重复签到被拒绝，余额不变
	_, err = checkInService.CheckIn(ctx, "user-1")
	assert.ErrorIs(t, err, xe.ErrAlreadyCheckedIn)

	account, err = accountService.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, account.MainBalance.Equal(decimal.NewFromFloat(100.5)))

	// 跨过UTC零点后可以再次签到
	checkInService.now = func() time.Time { return base.Add(24 * time.Hour) }
	record, err = checkInService.CheckIn(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-02", record.Day)
}

func TestCheckedInToday(t *testing.T) {
	db, _, accountService := setupTradeTest(t)
	ctx := context.Background()
	fundAccount(t, db, "user-1", 100)

	settingsService := NewBotSettingsService(zap.NewNop(), db)
	checkInService := NewCheckInService(db, accountService, settingsService, zap.NewNop())

	done, err := checkInService.CheckedInToday(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, done)

	_, err = checkInService.CheckIn(ctx, "user-1")
	require.NoError(t, err)

	done, err = checkInService.CheckedInToday(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, done)
}
