package models

import (
	"time"
)

// Snapshot неизменяемый срез четырёх таблиц кампании на сессию анализа.
// Движок никогда не изменяет строки — только строит отфильтрованные представления.
type Snapshot struct {
	Influencers []Influencer
	Posts       []Post
	Tracking    []TrackingRecord
	Payouts     []Payout
}

// InfluencerByID ищет профиль в полной (нефильтрованной) таблице
func (s *Snapshot) InfluencerByID(id string) (*Influencer, bool) {
	for i := range s.Influencers {
		if s.Influencers[i].ID == id {
			return &s.Influencers[i], true
		}
	}
	return nil, false
}

// TrackingDateRange возвращает минимальную и максимальную дату заказов.
// ok == false, если таблица заказов пуста.
func (s *Snapshot) TrackingDateRange() (min, max time.Time, ok bool) {
	for _, rec := range s.Tracking {
		if !ok {
			min, max, ok = rec.Date, rec.Date, true
			continue
		}
		if rec.Date.Before(min) {
			min = rec.Date
		}
		if rec.Date.After(max) {
			max = rec.Date
		}
	}
	return min, max, ok
}
