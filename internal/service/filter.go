package service

import (
	"time"

	"github.com/SergeiKhy/influencer-roi/internal/models"
)

// Каскадный фильтр работает в два явных этапа:
//  1. дата-фильтры + кандидатный набор инфлюенсеров по платформе/категории;
//  2. ограничение заказов кандидатами и брендом, после чего финальный набор
//     пересчитывается по выжившим заказам — инфлюенсер без заказов выпадает,
//     даже если прошёл первый этап.
// После второго этапа все четыре таблицы взаимно согласованы.

// BuildView применяет каскадный фильтр к снапшоту и возвращает новое
// неизменяемое представление. Снапшот не модифицируется.
func BuildView(snap *models.Snapshot, q models.FilterQuery) *models.FilteredView {
	tracking := trackingInWindow(snap.Tracking, q.Start, q.End)
	posts := postsInWindow(snap.Posts, q.Start, q.End)

	// Этап 1: кандидаты по платформе и категории
	candidates := CandidateInfluencers(snap.Influencers, q.Platform, q.Category)

	// Этап 2: заказы кандидатов, затем бренд, затем пересчёт финального набора
	tracking = restrictTracking(tracking, candidates, q.Brand)
	final := FinalInfluencers(tracking)

	view := &models.FilteredView{
		Query:    q,
		Tracking: tracking,
		Snapshot: snap,
	}

	for _, inf := range snap.Influencers {
		if final[inf.ID] {
			view.Influencers = append(view.Influencers, inf)
		}
	}
	for _, payout := range snap.Payouts {
		if final[payout.InfluencerID] {
			view.Payouts = append(view.Payouts, payout)
		}
	}
	for _, post := range posts {
		if final[post.InfluencerID] {
			view.Posts = append(view.Posts, post)
		}
	}

	return view
}

// CandidateInfluencers первый этап каскада: набор id инфлюенсеров,
// прошедших селекторы платформы и категории. nil-селектор пропускает всех.
func CandidateInfluencers(influencers []models.Influencer, platform, category *string) map[string]bool {
	candidates := make(map[string]bool, len(influencers))
	for _, inf := range influencers {
		if platform != nil && inf.Platform != *platform {
			continue
		}
		if category != nil && inf.Category != *category {
			continue
		}
		candidates[inf.ID] = true
	}
	return candidates
}

// FinalInfluencers второй этап каскада: различные influencer_id из заказов,
// выживших после всех фильтров. Именно этот набор определяет итоговые
// таблицы Influencers, Payouts и Posts.
func FinalInfluencers(tracking []models.TrackingRecord) map[string]bool {
	final := make(map[string]bool)
	for _, rec := range tracking {
		final[rec.InfluencerID] = true
	}
	return final
}

// restrictTracking оставляет заказы кандидатных инфлюенсеров и применяет
// селектор бренда. Неизвестный бренд даёт пустой результат, не ошибку.
func restrictTracking(tracking []models.TrackingRecord, candidates map[string]bool, brand *string) []models.TrackingRecord {
	var out []models.TrackingRecord
	for _, rec := range tracking {
		if !candidates[rec.InfluencerID] {
			continue
		}
		if brand != nil && rec.Brand != *brand {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func trackingInWindow(tracking []models.TrackingRecord, start, end time.Time) []models.TrackingRecord {
	var out []models.TrackingRecord
	for _, rec := range tracking {
		if inWindow(rec.Date, start, end) {
			out = append(out, rec)
		}
	}
	return out
}

func postsInWindow(posts []models.Post, start, end time.Time) []models.Post {
	var out []models.Post
	for _, post := range posts {
		if inWindow(post.Date, start, end) {
			out = append(out, post)
		}
	}
	return out
}

// inWindow включительно с обеих сторон; нулевая граница снимает ограничение
func inWindow(d, start, end time.Time) bool {
	if !start.IsZero() && d.Before(start) {
		return false
	}
	if !end.IsZero() && d.After(end) {
		return false
	}
	return true
}
