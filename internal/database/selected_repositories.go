// internal/database/selected_repositories.go
package database

import "context"

// Querier lists the statements used by the selection persister.
type Querier interface {
	ListSelectedRepositories(ctx context.Context, storageKey string) ([]string, error)
	DeleteSelectedRepositories(ctx context.Context, storageKey string) (int64, error)
	InsertSelectedRepository(ctx context.Context, arg InsertSelectedRepositoryParams) error
}

var _ Querier = (*Queries)(nil)

const listSelectedRepositories = `
SELECT full_name FROM selected_repositories
WHERE storage_key = $1
ORDER BY position ASC
`

func (q *Queries) ListSelectedRepositories(ctx context.Context, storageKey string) ([]string, error) {
	rows, err := q.db.Query(ctx, listSelectedRepositories, storageKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []string{}
	for rows.Next() {
		var fullName string
		if err := rows.Scan(&fullName); err != nil {
			return nil, err
		}
		items = append(items, fullName)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteSelectedRepositories = `
DELETE FROM selected_repositories WHERE storage_key = $1
`

func (q *Queries) DeleteSelectedRepositories(ctx context.Context, storageKey string) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteSelectedRepositories, storageKey)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const insertSelectedRepository = `
INSERT INTO selected_repositories (storage_key, position, full_name)
VALUES ($1, $2, $3)
ON CONFLICT (storage_key, full_name) DO NOTHING
`

type InsertSelectedRepositoryParams struct {
	StorageKey string
	Position   int32
	FullName   string
}

func (q *Queries) InsertSelectedRepository(ctx context.Context, arg InsertSelectedRepositoryParams) error {
	_, err := q.db.Exec(ctx, insertSelectedRepository, arg.StorageKey, arg.Position, arg.FullName)
	return err
}
