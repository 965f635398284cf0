package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/SergeiKhy/influencer-roi/internal/config"
	"github.com/SergeiKhy/influencer-roi/internal/models"
	"github.com/SergeiKhy/influencer-roi/internal/repository"
	"go.uber.org/zap"
)

// Ошибки сервиса
var (
	ErrInfluencerNotFound = errors.New("инфлюенсер отсутствует в отфильтрованном наборе")
	ErrPayoutMissing      = errors.New("отсутствует строка выплат инфлюенсера")
)

// Константы сервиса
const (
	defaultTopN     = 5
	metricsCacheTTL = 5 * time.Minute
)

// SnapshotSource источник текущего снапшота (реализуется SnapshotProvider)
type SnapshotSource interface {
	Current() *models.Snapshot
}

// AnalyticsService движок фильтрации и метрик кампании.
// Все операции — чистые функции над неизменяемым снапшотом и могут
// вызываться конкурентно без координации.
type AnalyticsService interface {
	Summary() *models.CampaignSummary
	Filter(q models.FilterQuery) *models.FilteredView
	ComputeMetrics(ctx context.Context, view *models.FilteredView) *models.CampaignMetrics
	TopInfluencers(view *models.FilteredView, n int) []models.InfluencerRank
	InfluencerDetail(view *models.FilteredView, id string) (*models.InfluencerDetail, error)
	PayoutRows(view *models.FilteredView) []models.PayoutRow
}

type analyticsService struct {
	snapshots SnapshotSource
	cache     repository.MetricsCache
	logger    *zap.Logger
	baseline  float64 // доля органической выручки вне кампании
	topN      int
}

// NewAnalyticsService создаёт новый экземпляр сервиса
func NewAnalyticsService(
	snapshots SnapshotSource,
	cache repository.MetricsCache,
	cfg config.AnalyticsConfig,
	logger *zap.Logger,
) AnalyticsService {
	baseline := cfg.BaselineMultiplier
	if baseline <= 0 || baseline >= 1 {
		baseline = 0.35
	}
	topN := cfg.TopN
	if topN <= 0 {
		topN = defaultTopN
	}
	return &analyticsService{
		snapshots: snapshots,
		cache:     cache,
		logger:    logger,
		baseline:  baseline,
		topN:      topN,
	}
}

// Summary обзор текущего снапшота без применения фильтров
func (s *analyticsService) Summary() *models.CampaignSummary {
	snap := s.snapshots.Current()
	if snap == nil {
		snap = &models.Snapshot{}
	}

	summary := &models.CampaignSummary{
		Influencers:     len(snap.Influencers),
		Posts:           len(snap.Posts),
		TrackingRecords: len(snap.Tracking),
		Payouts:         len(snap.Payouts),
	}
	if min, max, ok := snap.TrackingDateRange(); ok {
		summary.HasOrders = true
		summary.FirstOrderDate = min
		summary.LastOrderDate = max
	}
	return summary
}

// Filter строит отфильтрованное представление по текущему снапшоту.
// До первой загрузки снапшота возвращается пустое представление.
func (s *analyticsService) Filter(q models.FilterQuery) *models.FilteredView {
	snap := s.snapshots.Current()
	if snap == nil {
		snap = &models.Snapshot{}
	}
	return BuildView(snap, q)
}

// ComputeMetrics считает агрегированные KPI по представлению
// (сначала из кэша, затем пересчёт). Пустое представление даёт нулевые
// метрики и пустые разбивки — это не ошибка.
func (s *analyticsService) ComputeMetrics(ctx context.Context, view *models.FilteredView) *models.CampaignMetrics {
	cacheKey := view.Query.CacheKey()

	// Проверка кэша
	if s.cache != nil {
		if metrics, err := s.cache.Get(ctx, cacheKey); err == nil {
			return metrics
		}
	}

	metrics := s.computeMetrics(view)

	// Кэширование результата; ошибка кэша не прерывает запрос
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, metrics, metricsCacheTTL); err != nil {
			s.logger.Debug("Не удалось закэшировать метрики",
				zap.String("key", cacheKey),
				zap.Error(err),
			)
		}
	}

	return metrics
}

func (s *analyticsService) computeMetrics(view *models.FilteredView) *models.CampaignMetrics {
	metrics := &models.CampaignMetrics{
		RevenueByPlatform: []models.RevenueSlice{},
		RevenueByCategory: []models.RevenueSlice{},
	}

	if view.Empty() {
		metrics.Empty = true
		return metrics
	}

	for _, rec := range view.Tracking {
		metrics.TotalRevenue += rec.Revenue
		metrics.TotalOrders += rec.Orders
	}
	for _, payout := range view.Payouts {
		metrics.TotalPayout += payout.TotalPayout
	}

	metrics.ROAS = safeRatio(metrics.TotalRevenue, metrics.TotalPayout)
	metrics.IncrementalRevenue = metrics.TotalRevenue * (1 - s.baseline)
	metrics.IncrementalROAS = safeRatio(metrics.IncrementalRevenue, metrics.TotalPayout)

	metrics.RevenueByPlatform = revenueByDimension(view, func(inf *models.Influencer) string {
		return inf.Platform
	})
	metrics.RevenueByCategory = revenueByDimension(view, func(inf *models.Influencer) string {
		return inf.Category
	})

	return metrics
}

// revenueByDimension группирует выручку заказов по измерению профиля
// инфлюенсера. Порядок групп — порядок первого появления ключа.
func revenueByDimension(view *models.FilteredView, dim func(*models.Influencer) string) []models.RevenueSlice {
	grouped := make(map[string]float64)
	order := make([]string, 0)

	for _, rec := range view.Tracking {
		inf, ok := view.Snapshot.InfluencerByID(rec.InfluencerID)
		if !ok {
			continue
		}
		key := dim(inf)
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] += rec.Revenue
	}

	slices := make([]models.RevenueSlice, 0, len(order))
	for _, key := range order {
		slices = append(slices, models.RevenueSlice{Key: key, Revenue: grouped[key]})
	}
	return slices
}

// TopInfluencers возвращает первые n инфлюенсеров по ROAS.
// Инфлюенсеры с нулевой или отрицательной выплатой исключаются: их ROAS
// не определён, а не равен нулю. При равном ROAS сохраняется порядок
// таблицы инфлюенсеров (стабильная сортировка).
func (s *analyticsService) TopInfluencers(view *models.FilteredView, n int) []models.InfluencerRank {
	if n <= 0 {
		n = s.topN
	}

	revenueByID := make(map[string]float64, len(view.Influencers))
	for _, rec := range view.Tracking {
		revenueByID[rec.InfluencerID] += rec.Revenue
	}

	ranks := make([]models.InfluencerRank, 0, len(view.Influencers))
	for _, inf := range view.Influencers {
		payout, ok := payoutFor(view.Payouts, inf.ID)
		if !ok || payout.TotalPayout <= 0 {
			continue
		}
		revenue := revenueByID[inf.ID]
		ranks = append(ranks, models.InfluencerRank{
			InfluencerID: inf.ID,
			Name:         inf.Name,
			Revenue:      revenue,
			TotalPayout:  payout.TotalPayout,
			ROAS:         revenue / payout.TotalPayout,
		})
	}

	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].ROAS > ranks[j].ROAS
	})

	if len(ranks) > n {
		ranks = ranks[:n]
	}
	return ranks
}

// InfluencerDetail возвращает профиль, посты, заказы и выплату одного
// инфлюенсера из финального набора плюс производные выручку и ROAS.
// Профиль берётся из полной таблицы: число подписчиков не фильтруется.
func (s *analyticsService) InfluencerDetail(view *models.FilteredView, id string) (*models.InfluencerDetail, error) {
	inFinal := false
	for _, inf := range view.Influencers {
		if inf.ID == id {
			inFinal = true
			break
		}
	}
	if !inFinal {
		return nil, ErrInfluencerNotFound
	}

	profile, ok := view.Snapshot.InfluencerByID(id)
	if !ok {
		return nil, ErrInfluencerNotFound
	}

	// Отсутствие выплаты у известного инфлюенсера — нарушение целостности
	// входных данных, а не пустой результат
	payout, ok := payoutFor(view.Payouts, id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPayoutMissing, id)
	}

	detail := &models.InfluencerDetail{
		Profile: *profile,
		Payout:  *payout,
		Posts:   []models.Post{},
		Orders:  []models.TrackingRecord{},
	}

	for _, post := range view.Posts {
		if post.InfluencerID == id {
			detail.Posts = append(detail.Posts, post)
		}
	}
	for _, rec := range view.Tracking {
		if rec.InfluencerID == id {
			detail.Orders = append(detail.Orders, rec)
			detail.Revenue += rec.Revenue
		}
	}

	// Новые публикации и заказы показываются первыми
	sort.SliceStable(detail.Posts, func(i, j int) bool {
		return detail.Posts[i].Date.After(detail.Posts[j].Date)
	})
	sort.SliceStable(detail.Orders, func(i, j int) bool {
		return detail.Orders[i].Date.After(detail.Orders[j].Date)
	})

	detail.ROAS = safeRatio(detail.Revenue, payout.TotalPayout)

	return detail, nil
}

// PayoutRows строки трекера выплат по финальному набору инфлюенсеров
func (s *analyticsService) PayoutRows(view *models.FilteredView) []models.PayoutRow {
	rows := make([]models.PayoutRow, 0, len(view.Payouts))
	for _, payout := range view.Payouts {
		row := models.PayoutRow{
			InfluencerID: payout.InfluencerID,
			Basis:        payout.Basis,
			Rate:         payout.Rate,
			Orders:       payout.Orders,
			TotalPayout:  payout.TotalPayout,
		}
		if inf, ok := view.Snapshot.InfluencerByID(payout.InfluencerID); ok {
			row.Name = inf.Name
			row.Platform = inf.Platform
		}
		rows = append(rows, row)
	}
	return rows
}

func payoutFor(payouts []models.Payout, id string) (*models.Payout, bool) {
	for i := range payouts {
		if payouts[i].InfluencerID == id {
			return &payouts[i], true
		}
	}
	return nil, false
}

// safeRatio защищённое деление: при нулевом знаменателе возвращает 0
func safeRatio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}
