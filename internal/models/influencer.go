package models

import (
	"time"
)

type Influencer struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	Gender        string `json:"gender"`
	FollowerCount int64  `json:"follower_count"`
	Platform      string `json:"platform"`
}

type Post struct {
	PostID       string    `json:"post_id"`
	InfluencerID string    `json:"influencer_id"`
	Platform     string    `json:"platform"`
	Date         time.Time `json:"date"`
	URL          string    `json:"url"`
	Caption      string    `json:"caption"`
	Reach        int64     `json:"reach"`
	Likes        int64     `json:"likes"`
	Comments     int64     `json:"comments"`
}
