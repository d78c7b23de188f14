package client

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophmarket/internal/client/migrations"
	"github.com/dmitrijs2005/gophmarket/internal/client/repositories/drafts"
	"github.com/dmitrijs2005/gophmarket/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophmarket/internal/client/repositories/uploads"
	"github.com/dmitrijs2005/gophmarket/internal/dbx"

	_ "modernc.org/sqlite"
)

// Repositories groups the local stores over one connection or transaction.
type Repositories struct {
	Metadata metadata.Repository
	Drafts   drafts.Repository
	Uploads  uploads.Repository
}

// NewRepositories builds repositories on db, which may be a *sql.DB or a
// *sql.Tx.
func NewRepositories(db dbx.DBTX) *Repositories {
	return &Repositories{
		Metadata: metadata.NewSQLiteRepository(db),
		Drafts:   drafts.NewSQLiteRepository(db),
		Uploads:  uploads.NewSQLiteRepository(db),
	}
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrations.Up(ctx, db)
}

// busyTimeout is applied to every pooled connection: batch observers write
// the draft row while the ledger transaction may hold the lock.
const busyTimeout = "_pragma=busy_timeout(5000)"

// InitDatabase opens the SQLite database at dsn and migrates it.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite", dsn+sep+busyTimeout)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
