package selection

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github-dashboard/internal/database"
)

// DB is the subset of *pgxpool.Pool the postgres persister needs.
type DB interface {
	database.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresPersister keeps selections in the selected_repositories table.
type PostgresPersister struct {
	db DB
}

// NewPostgresPersister creates a persister over db, typically a *pgxpool.Pool.
func NewPostgresPersister(db DB) *PostgresPersister {
	return &PostgresPersister{db: db}
}

// Load returns the list under key ordered by position.
func (p *PostgresPersister) Load(ctx context.Context, key string) ([]string, error) {
	return database.New(p.db).ListSelectedRepositories(ctx, key)
}

// Save replaces the rows under key inside a single transaction.
func (p *PostgresPersister) Save(ctx context.Context, key string, repos []string) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // Rollback is a no-op if the transaction is already committed.

	if err := replaceSelection(ctx, database.New(tx), key, repos); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func replaceSelection(ctx context.Context, q database.Querier, key string, repos []string) error {
	if _, err := q.DeleteSelectedRepositories(ctx, key); err != nil {
		return fmt.Errorf("failed to clear selection: %w", err)
	}
	for i, name := range repos {
		err := q.InsertSelectedRepository(ctx, database.InsertSelectedRepositoryParams{
			StorageKey: key,
			Position:   int32(i),
			FullName:   name,
		})
		if err != nil {
			return fmt.Errorf("failed to insert %q: %w", name, err)
		}
	}
	return nil
}
