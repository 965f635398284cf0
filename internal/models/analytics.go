package models

import (
	"fmt"
	"time"
)

// FilterQuery параметры выборки. Категориальные селекторы опциональны:
// nil означает отсутствие ограничения по измерению (в API это "All").
// Нулевое время снимает соответствующую границу интервала дат.
type FilterQuery struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Brand    *string   `json:"brand,omitempty"`
	Platform *string   `json:"platform,omitempty"`
	Category *string   `json:"category,omitempty"`
}

// CacheKey каноническое строковое представление выборки для ключа кэша
func (q FilterQuery) CacheKey() string {
	sel := func(p *string) string {
		if p == nil {
			return "*"
		}
		return *p
	}
	day := func(t time.Time) string {
		if t.IsZero() {
			return "*"
		}
		return t.Format("2006-01-02")
	}
	return fmt.Sprintf("%s|%s|%s|%s|%s",
		day(q.Start), day(q.End), sel(q.Brand), sel(q.Platform), sel(q.Category))
}

// FilteredView взаимно согласованный результат каскадного фильтра:
// каждый influencer_id в Tracking присутствует в Influencers и наоборот,
// Payouts и Posts ограничены тем же финальным набором инфлюенсеров.
type FilteredView struct {
	Query       FilterQuery      `json:"query"`
	Influencers []Influencer     `json:"influencers"`
	Posts       []Post           `json:"posts"`
	Tracking    []TrackingRecord `json:"tracking"`
	Payouts     []Payout         `json:"payouts"`

	// Snapshot исходный срез, из которого построено представление
	Snapshot *Snapshot `json:"-"`
}

// Empty true, если выборка не оставила ни одного заказа.
// Это валидное терминальное состояние, а не ошибка.
func (v *FilteredView) Empty() bool {
	return len(v.Tracking) == 0
}

// RevenueSlice выручка по одному значению измерения (платформа, категория)
type RevenueSlice struct {
	Key     string  `json:"key"`
	Revenue float64 `json:"revenue"`
}

type CampaignMetrics struct {
	Empty              bool           `json:"empty"`
	TotalRevenue       float64        `json:"total_revenue"`
	TotalPayout        float64        `json:"total_payout"`
	TotalOrders        int64          `json:"total_orders"`
	ROAS               float64        `json:"roas"`
	IncrementalRevenue float64        `json:"incremental_revenue"`
	IncrementalROAS    float64        `json:"incremental_roas"`
	RevenueByPlatform  []RevenueSlice `json:"revenue_by_platform"`
	RevenueByCategory  []RevenueSlice `json:"revenue_by_category"`
}

type InfluencerRank struct {
	InfluencerID string  `json:"influencer_id"`
	Name         string  `json:"name"`
	Revenue      float64 `json:"revenue"`
	TotalPayout  float64 `json:"total_payout"`
	ROAS         float64 `json:"roas"`
}

type InfluencerDetail struct {
	Profile Influencer       `json:"profile"`
	Posts   []Post           `json:"posts"`
	Orders  []TrackingRecord `json:"orders"`
	Payout  Payout           `json:"payout"`
	Revenue float64          `json:"revenue"`
	ROAS    float64          `json:"roas"`
}

// CampaignSummary обзор текущего снапшота: размеры таблиц и полный
// интервал дат заказов (им инициализируются date picker'ы дашборда)
type CampaignSummary struct {
	Influencers     int       `json:"influencers"`
	Posts           int       `json:"posts"`
	TrackingRecords int       `json:"tracking_records"`
	Payouts         int       `json:"payouts"`
	HasOrders       bool      `json:"has_orders"`
	FirstOrderDate  time.Time `json:"first_order_date,omitzero"`
	LastOrderDate   time.Time `json:"last_order_date,omitzero"`
}

// PayoutRow строка трекера выплат: выплата, обогащённая именем и платформой
type PayoutRow struct {
	InfluencerID string      `json:"influencer_id"`
	Name         string      `json:"name"`
	Platform     string      `json:"platform"`
	Basis        PayoutBasis `json:"basis"`
	Rate         float64     `json:"rate"`
	Orders       int64       `json:"orders"`
	TotalPayout  float64     `json:"total_payout"`
}
