package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/postkeeper/internal/dbx"
	"github.com/dmitrijs2005/postkeeper/internal/server/repositories/posts"
	"github.com/dmitrijs2005/postkeeper/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so callers can run
// the same repository code against the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Posts(db dbx.DBTX) posts.Repository
}
