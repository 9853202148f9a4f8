package models

import "time"

// Rating is a single user's rating of a store. The (UserID, StoreID) pair
// is the identity: resubmitting overwrites the value in place, no history
// is kept.
type Rating struct {
	UserID    string       `json:"user_id"`
	StoreID   string       `json:"store_id"`
	Value     int          `json:"value"`
	Rater     *UserSummary `json:"rater,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// StoreRatings bundles a store's ratings with its current aggregate.
type StoreRatings struct {
	Ratings []*Rating `json:"ratings"`
	Average float64   `json:"average"`
}
