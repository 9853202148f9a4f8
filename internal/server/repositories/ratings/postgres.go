// Package ratings provides the PostgreSQL-backed repository for the
// rating ledger: one row per (user, store) pair, upserted in place.
package ratings

import (
	"context"
	"fmt"

	"github.com/storerate/storerate/internal/dbx"
	"github.com/storerate/storerate/internal/server/models"
)

// PostgresRepository implements rating storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts or overwrites the (user, store) rating and reports the
// row's timestamps back into the model.
func (r *PostgresRepository) Upsert(ctx context.Context, rating *models.Rating) error {
	query := `
		INSERT INTO ratings (user_id, store_id, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, store_id)
		DO UPDATE SET value = EXCLUDED.value, updated_at = now()
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, rating.UserID, rating.StoreID, rating.Value).
		Scan(&rating.CreatedAt, &rating.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// AverageForStore computes the mean rating value, 0 when no rows exist.
func (r *PostgresRepository) AverageForStore(ctx context.Context, storeID string) (float64, error) {
	query := `SELECT COALESCE(AVG(value), 0) FROM ratings WHERE store_id = $1`
	var average float64
	if err := r.db.QueryRowContext(ctx, query, storeID).Scan(&average); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return average, nil
}

// ListForStore returns the store's ratings joined with rater summaries.
func (r *PostgresRepository) ListForStore(ctx context.Context, storeID string) ([]*models.Rating, error) {
	query := `
		SELECT r.user_id, r.store_id, r.value, r.created_at, r.updated_at,
		       u.id, u.name, u.email, u.address
		FROM ratings r
		JOIN users u ON u.id = r.user_id
		WHERE r.store_id = $1
		ORDER BY r.updated_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Rating
	for rows.Next() {
		rating := &models.Rating{Rater: &models.UserSummary{}}
		if err := rows.Scan(&rating.UserID, &rating.StoreID, &rating.Value,
			&rating.CreatedAt, &rating.UpdatedAt,
			&rating.Rater.ID, &rating.Rater.Name, &rating.Rater.Email,
			&rating.Rater.Address); err != nil {
			return nil, err
		}
		result = append(result, rating)
	}
	return result, rows.Err()
}

func (r *PostgresRepository) DeleteByStore(ctx context.Context, storeID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM ratings WHERE store_id = $1`, storeID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM ratings WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	query := `
		DELETE FROM ratings
		WHERE store_id IN (SELECT id FROM stores WHERE owner_id = $1)
	`
	if _, err := r.db.ExecContext(ctx, query, ownerID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
