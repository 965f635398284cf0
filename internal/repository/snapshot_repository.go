package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/SergeiKhy/influencer-roi/internal/models"
)

var (
	// ErrIntegrity снапшот нарушает инварианты данных и не может быть использован
	ErrIntegrity = errors.New("snapshot integrity violation")
)

// SnapshotRepository загружает четыре таблицы кампании в неизменяемый снапшот
type SnapshotRepository interface {
	Load(ctx context.Context) (*models.Snapshot, error)
}

type snapshotRepository struct {
	db *PostgresDB
}

func NewSnapshotRepository(db *PostgresDB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

// Load читает все четыре таблицы и валидирует ссылочную целостность.
// Порядок строк в таблицах сохраняется (ORDER BY id) — от него зависит
// стабильная сортировка рейтинга.
func (r *snapshotRepository) Load(ctx context.Context) (*models.Snapshot, error) {
	snap := &models.Snapshot{}

	if err := r.loadInfluencers(ctx, snap); err != nil {
		return nil, err
	}
	if err := r.loadPosts(ctx, snap); err != nil {
		return nil, err
	}
	if err := r.loadTracking(ctx, snap); err != nil {
		return nil, err
	}
	if err := r.loadPayouts(ctx, snap); err != nil {
		return nil, err
	}

	if err := validateSnapshot(snap); err != nil {
		return nil, err
	}

	return snap, nil
}

func (r *snapshotRepository) loadInfluencers(ctx context.Context, snap *models.Snapshot) error {
	query := `
		SELECT id, name, category, gender, follower_count, platform
		FROM influencers
		ORDER BY id
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query influencers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var inf models.Influencer
		if err := rows.Scan(
			&inf.ID,
			&inf.Name,
			&inf.Category,
			&inf.Gender,
			&inf.FollowerCount,
			&inf.Platform,
		); err != nil {
			return fmt.Errorf("failed to scan influencer: %w", err)
		}
		snap.Influencers = append(snap.Influencers, inf)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating influencers: %w", err)
	}

	return nil
}

func (r *snapshotRepository) loadPosts(ctx context.Context, snap *models.Snapshot) error {
	query := `
		SELECT post_id, influencer_id, platform, date, url, caption, reach, likes, comments
		FROM posts
		ORDER BY post_id
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var post models.Post
		if err := rows.Scan(
			&post.PostID,
			&post.InfluencerID,
			&post.Platform,
			&post.Date,
			&post.URL,
			&post.Caption,
			&post.Reach,
			&post.Likes,
			&post.Comments,
		); err != nil {
			return fmt.Errorf("failed to scan post: %w", err)
		}
		snap.Posts = append(snap.Posts, post)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating posts: %w", err)
	}

	return nil
}

func (r *snapshotRepository) loadTracking(ctx context.Context, snap *models.Snapshot) error {
	query := `
		SELECT source, campaign, brand, influencer_id, user_id, product, date, orders, revenue
		FROM tracking_records
		ORDER BY id
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query tracking records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec models.TrackingRecord
		if err := rows.Scan(
			&rec.Source,
			&rec.Campaign,
			&rec.Brand,
			&rec.InfluencerID,
			&rec.UserID,
			&rec.Product,
			&rec.Date,
			&rec.Orders,
			&rec.Revenue,
		); err != nil {
			return fmt.Errorf("failed to scan tracking record: %w", err)
		}
		snap.Tracking = append(snap.Tracking, rec)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating tracking records: %w", err)
	}

	return nil
}

func (r *snapshotRepository) loadPayouts(ctx context.Context, snap *models.Snapshot) error {
	query := `
		SELECT influencer_id, basis, rate, orders, total_payout
		FROM payouts
		ORDER BY influencer_id
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query payouts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var payout models.Payout
		if err := rows.Scan(
			&payout.InfluencerID,
			&payout.Basis,
			&payout.Rate,
			&payout.Orders,
			&payout.TotalPayout,
		); err != nil {
			return fmt.Errorf("failed to scan payout: %w", err)
		}
		snap.Payouts = append(snap.Payouts, payout)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating payouts: %w", err)
	}

	return nil
}

// validateSnapshot проверяет инварианты входных данных:
// все ссылки на influencer_id разрешимы, ровно одна выплата на инфлюенсера,
// total_payout неотрицателен, revenue строго положителен.
func validateSnapshot(snap *models.Snapshot) error {
	known := make(map[string]bool, len(snap.Influencers))
	for _, inf := range snap.Influencers {
		known[inf.ID] = true
	}

	for _, post := range snap.Posts {
		if !known[post.InfluencerID] {
			return fmt.Errorf("%w: post %s references unknown influencer %s",
				ErrIntegrity, post.PostID, post.InfluencerID)
		}
	}

	for _, rec := range snap.Tracking {
		if !known[rec.InfluencerID] {
			return fmt.Errorf("%w: tracking record references unknown influencer %s",
				ErrIntegrity, rec.InfluencerID)
		}
		if rec.Revenue <= 0 {
			return fmt.Errorf("%w: non-positive revenue for influencer %s",
				ErrIntegrity, rec.InfluencerID)
		}
	}

	seen := make(map[string]bool, len(snap.Payouts))
	for _, payout := range snap.Payouts {
		if !known[payout.InfluencerID] {
			return fmt.Errorf("%w: payout references unknown influencer %s",
				ErrIntegrity, payout.InfluencerID)
		}
		if seen[payout.InfluencerID] {
			return fmt.Errorf("%w: duplicate payout row for influencer %s",
				ErrIntegrity, payout.InfluencerID)
		}
		seen[payout.InfluencerID] = true
		if payout.TotalPayout < 0 {
			return fmt.Errorf("%w: negative total_payout for influencer %s",
				ErrIntegrity, payout.InfluencerID)
		}
	}

	return nil
}
