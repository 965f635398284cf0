package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/SergeiKhy/influencer-roi/internal/models"
	"github.com/SergeiKhy/influencer-roi/internal/service"
	"github.com/SergeiKhy/influencer-roi/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSnapshotProvider_Refresh первая загрузка делает снапшот доступным
func TestSnapshotProvider_Refresh(t *testing.T) {
	repo := mocks.NewMockSnapshotRepository(campaignSnapshot())
	provider := service.NewSnapshotProvider(repo, time.Hour, zap.NewNop())

	assert.Nil(t, provider.Current())

	err := provider.Refresh(context.Background())
	require.NoError(t, err)

	snap := provider.Current()
	require.NotNil(t, snap)
	assert.Len(t, snap.Influencers, 4)
	assert.Equal(t, 1, repo.Loads())
}

// TestSnapshotProvider_Refresh_KeepsOldOnError при ошибке загрузки
// предыдущий снапшот остаётся активным
func TestSnapshotProvider_Refresh_KeepsOldOnError(t *testing.T) {
	repo := mocks.NewMockSnapshotRepository(campaignSnapshot())
	provider := service.NewSnapshotProvider(repo, time.Hour, zap.NewNop())

	require.NoError(t, provider.Refresh(context.Background()))
	old := provider.Current()

	repo.FailWith(errors.New("connection refused"))
	err := provider.Refresh(context.Background())

	assert.Error(t, err)
	assert.Same(t, old, provider.Current())
}

// TestSnapshotProvider_Refresh_SwapsSnapshot повторная загрузка атомарно
// подменяет снапшот на новый
func TestSnapshotProvider_Refresh_SwapsSnapshot(t *testing.T) {
	repo := mocks.NewMockSnapshotRepository(campaignSnapshot())
	provider := service.NewSnapshotProvider(repo, time.Hour, zap.NewNop())

	require.NoError(t, provider.Refresh(context.Background()))
	first := provider.Current()

	updated := campaignSnapshot()
	updated.Influencers = append(updated.Influencers, models.Influencer{
		ID: "INF005", Name: "Kabir Joshi", Category: "Lifestyle", Platform: "Instagram",
	})
	repo.SetSnapshot(updated)

	require.NoError(t, provider.Refresh(context.Background()))

	assert.NotSame(t, first, provider.Current())
	assert.Len(t, provider.Current().Influencers, 5)
	// Старый снапшот не изменился, читатели с его указателем в безопасности
	assert.Len(t, first.Influencers, 4)
}

// TestSnapshotProvider_StartStop фоновый цикл перезагружает снапшот по
// таймеру и корректно останавливается
func TestSnapshotProvider_StartStop(t *testing.T) {
	repo := mocks.NewMockSnapshotRepository(campaignSnapshot())
	provider := service.NewSnapshotProvider(repo, 20*time.Millisecond, zap.NewNop())

	require.NoError(t, provider.Refresh(context.Background()))
	provider.Start()

	assert.Eventually(t, func() bool {
		return repo.Loads() >= 3
	}, 2*time.Second, 10*time.Millisecond)

	provider.Stop()
	loadsAfterStop := repo.Loads()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, loadsAfterStop, repo.Loads())
}
