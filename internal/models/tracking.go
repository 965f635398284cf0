package models

import (
	"time"
)

// PayoutBasis определяет способ расчёта выплаты инфлюенсеру
type PayoutBasis string

const (
	BasisPerPost  PayoutBasis = "per_post"  // фиксированная ставка за пост
	BasisPerOrder PayoutBasis = "per_order" // комиссия с каждого заказа
)

// TrackingRecord одна строка = один атрибутированный заказ
type TrackingRecord struct {
	Source       string    `json:"source"`
	Campaign     string    `json:"campaign"`
	Brand        string    `json:"brand"`
	InfluencerID string    `json:"influencer_id"`
	UserID       string    `json:"user_id"`
	Product      string    `json:"product"`
	Date         time.Time `json:"date"`
	Orders       int64     `json:"orders"`
	Revenue      float64   `json:"revenue"`
}

// Payout ровно одна строка на инфлюенсера, сумма за всю кампанию
type Payout struct {
	InfluencerID string      `json:"influencer_id"`
	Basis        PayoutBasis `json:"basis"`
	Rate         float64     `json:"rate"`
	Orders       int64       `json:"orders"`
	TotalPayout  float64     `json:"total_payout"`
}
