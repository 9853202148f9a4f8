package models

import "time"

// Store is a rated venue. Exactly one owner (a User with RoleOwner) per
// store; OwnerID is immutable after creation. AverageRating is derived
// from the store's ratings and is never set by a client.
type Store struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Email         string       `json:"email"`
	Address       string       `json:"address"`
	OwnerID       string       `json:"owner_id"`
	AverageRating float64      `json:"average_rating"`
	Owner         *UserSummary `json:"owner,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}
