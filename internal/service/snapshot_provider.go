package service

import (
	"context"
	"sync"
	"time"

	"github.com/SergeiKhy/influencer-roi/internal/models"
	"github.com/SergeiKhy/influencer-roi/internal/repository"
	"go.uber.org/zap"
)

// Константы провайдера снапшотов
const (
	defaultRefreshInterval = 15 * time.Minute
	loadTimeout            = 30 * time.Second
)

// SnapshotProvider держит текущий read-only снапшот и периодически
// перезагружает его из БД. Каждый запрос читает один согласованный
// указатель на снапшот; сами таблицы никогда не изменяются.
type SnapshotProvider interface {
	Start()
	Stop()
	Current() *models.Snapshot
	Refresh(ctx context.Context) error
}

type snapshotProvider struct {
	repo     repository.SnapshotRepository
	logger   *zap.Logger
	interval time.Duration

	mu      sync.RWMutex
	current *models.Snapshot

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSnapshotProvider создаёт новый провайдер снапшотов
func NewSnapshotProvider(
	repo repository.SnapshotRepository,
	interval time.Duration,
	logger *zap.Logger,
) SnapshotProvider {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	return &snapshotProvider{
		repo:     repo,
		logger:   logger,
		interval: interval,
	}
}

// Refresh загружает свежий снапшот и атомарно подменяет текущий.
// При ошибке загрузки предыдущий снапшот остаётся активным.
func (p *snapshotProvider) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	snap, err := p.repo.Load(ctx)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.current = snap
	p.mu.Unlock()

	p.logger.Info("Снапшот кампании обновлён",
		zap.Int("influencers", len(snap.Influencers)),
		zap.Int("posts", len(snap.Posts)),
		zap.Int("tracking_records", len(snap.Tracking)),
		zap.Int("payouts", len(snap.Payouts)),
	)

	return nil
}

// Start запускает фоновую перезагрузку снапшота по таймеру
func (p *snapshotProvider) Start() {
	p.ctx, p.cancel = context.WithCancel(context.Background())

	p.logger.Info("Запуск фонового обновления снапшота",
		zap.Duration("interval", p.interval))

	p.wg.Add(1)
	go p.refreshLoop()
}

// Stop корректно останавливает фоновое обновление
func (p *snapshotProvider) Stop() {
	if p.cancel == nil {
		return
	}
	p.logger.Info("Остановка фонового обновления снапшота...")
	p.cancel()
	p.wg.Wait()
	p.logger.Info("Фоновое обновление снапшота остановлено")
}

func (p *snapshotProvider) refreshLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return

		case <-ticker.C:
			if err := p.Refresh(p.ctx); err != nil {
				// Старый снапшот продолжает обслуживать запросы
				p.logger.Warn("Не удалось обновить снапшот", zap.Error(err))
			}
		}
	}
}

// Current возвращает текущий снапшот (nil до первой успешной загрузки)
func (p *snapshotProvider) Current() *models.Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}
