package repomanager

import (
	"context"
	"database/sql"

	"github.com/storerate/storerate/internal/dbx"
	"github.com/storerate/storerate/internal/server/repositories/ratings"
	"github.com/storerate/storerate/internal/server/repositories/stores"
	"github.com/storerate/storerate/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so services can
// run the same repository code inside or outside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Stores(db dbx.DBTX) stores.Repository
	Ratings(db dbx.DBTX) ratings.Repository
}
