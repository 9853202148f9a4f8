// Package stores provides the PostgreSQL-backed repository for store
// records, including the owner-joined listing and the row lock used to
// serialize rating submissions.
package stores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/storerate/storerate/internal/common"
	"github.com/storerate/storerate/internal/dbx"
	"github.com/storerate/storerate/internal/server/models"
)

// PostgresRepository implements store storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Create inserts a new store row. A duplicate email yields
// common.ErrorDuplicateEmail. The owner-role precondition is checked by
// the service before calling.
func (r *PostgresRepository) Create(ctx context.Context, store *models.Store) error {
	query := `
		INSERT INTO stores (id, name, email, address, owner_id, average_rating)
		VALUES ($1, $2, $3, $4, $5, 0)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		store.ID, store.Name, store.Email, store.Address, store.OwnerID).
		Scan(&store.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrorDuplicateEmail
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Store, error) {
	query := `
		SELECT id, name, email, address, owner_id, average_rating, created_at FROM stores
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate reads the store row with FOR UPDATE. It must run inside
// a transaction; the lock is held until commit or rollback. Submissions
// for other stores are unaffected.
func (r *PostgresRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Store, error) {
	query := `
		SELECT id, name, email, address, owner_id, average_rating, created_at FROM stores
		WHERE id = $1
		FOR UPDATE
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Store, error) {
	store := &models.Store{}
	err := row.Scan(&store.ID, &store.Name, &store.Email, &store.Address,
		&store.OwnerID, &store.AverageRating, &store.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return store, nil
}

// Update writes name, email, and address. OwnerID and the aggregate are
// not mutable through this statement.
func (r *PostgresRepository) Update(ctx context.Context, store *models.Store) error {
	query := `UPDATE stores SET name = $2, email = $3, address = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, store.ID, store.Name, store.Email, store.Address)
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrorDuplicateEmail
		}
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

// SetAverageRating persists the recomputed aggregate.
func (r *PostgresRepository) SetAverageRating(ctx context.Context, id string, average float64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE stores SET average_rating = $2 WHERE id = $1`, id, average)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

var storeSortColumns = map[string]string{
	"name":           "s.name",
	"email":          "s.email",
	"address":        "s.address",
	"average_rating": "s.average_rating",
	"created_at":     "s.created_at",
}

// List returns stores matching the filter, each joined with its owner
// summary.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*models.Store, error) {
	query := `
		SELECT s.id, s.name, s.email, s.address, s.owner_id, s.average_rating, s.created_at,
		       u.id, u.name, u.email, u.address, u.role
		FROM stores s
		JOIN users u ON u.id = s.owner_id
	`

	var conds []string
	var args []any
	if filter.Name != "" {
		args = append(args, "%"+filter.Name+"%")
		conds = append(conds, fmt.Sprintf("s.name ILIKE $%d", len(args)))
	}
	if filter.Address != "" {
		args = append(args, "%"+filter.Address+"%")
		conds = append(conds, fmt.Sprintf("s.address ILIKE $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	column, ok := storeSortColumns[strings.ToLower(filter.SortBy)]
	if !ok {
		column = "s.created_at"
	}
	direction := "DESC"
	if strings.EqualFold(filter.Order, "asc") {
		direction = "ASC"
	}
	query += " ORDER BY " + column + " " + direction

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Store
	for rows.Next() {
		store := &models.Store{Owner: &models.UserSummary{}}
		if err := rows.Scan(&store.ID, &store.Name, &store.Email, &store.Address,
			&store.OwnerID, &store.AverageRating, &store.CreatedAt,
			&store.Owner.ID, &store.Owner.Name, &store.Owner.Email,
			&store.Owner.Address, &store.Owner.Role); err != nil {
			return nil, err
		}
		result = append(result, store)
	}
	return result, rows.Err()
}

// Delete removes the store row. Its ratings must already be gone; the
// service orders the cascade.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM stores WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

// DeleteByOwner removes all stores owned by the given user. Zero rows is
// fine: owners may own nothing.
func (r *PostgresRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM stores WHERE owner_id = $1`, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
