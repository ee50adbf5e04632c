package datasources

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new data source.
func (r *PGRepo) Create(ctx context.Context, source DataSource) error {
	const query = `
INSERT INTO data_sources (
	id, user_id, name, source_type, connection_url, sync_frequency,
	auto_analyze, status, last_synced_at, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.DB.ExecContext(ctx, query,
		source.ID,
		source.UserID,
		source.Name,
		source.SourceType,
		source.ConnectionURL,
		source.SyncFrequency,
		source.AutoAnalyze,
		source.Status,
		source.LastSyncedAt,
		source.CreatedAt,
	)
	return err
}

// GetByID returns a data source by its ID.
func (r *PGRepo) GetByID(ctx context.Context, sourceID string) (DataSource, error) {
	const query = `
SELECT id, user_id, name, source_type, connection_url, sync_frequency,
	auto_analyze, status, last_synced_at, created_at
FROM data_sources
WHERE id = $1`

	row := r.DB.QueryRowContext(ctx, query, sourceID)
	source, err := scanDataSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return DataSource{}, ErrNotFound
	}
	return source, err
}

// ListByUser returns all data sources for a user, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]DataSource, error) {
	const query = `
SELECT id, user_id, name, source_type, connection_url, sync_frequency,
	auto_analyze, status, last_synced_at, created_at
FROM data_sources
WHERE user_id = $1
ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sources := []DataSource{}
	for rows.Next() {
		source, err := scanDataSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}
	return sources, rows.Err()
}

// MarkSynced sets the last sync time and flips the source to active.
func (r *PGRepo) MarkSynced(ctx context.Context, sourceID string, syncedAt time.Time) error {
	const query = `
UPDATE data_sources
SET status = $2, last_synced_at = $3
WHERE id = $1`

	res, err := r.DB.ExecContext(ctx, query, sourceID, StatusActive, syncedAt)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes a data source.
func (r *PGRepo) Delete(ctx context.Context, sourceID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM data_sources WHERE id = $1`, sourceID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDataSource(row rowScanner) (DataSource, error) {
	var (
		source     DataSource
		lastSynced sql.NullTime
	)
	err := row.Scan(
		&source.ID,
		&source.UserID,
		&source.Name,
		&source.SourceType,
		&source.ConnectionURL,
		&source.SyncFrequency,
		&source.AutoAnalyze,
		&source.Status,
		&lastSynced,
		&source.CreatedAt,
	)
	if err != nil {
		return DataSource{}, err
	}
	if lastSynced.Valid {
		syncedAt := lastSynced.Time
		source.LastSyncedAt = &syncedAt
	}
	return source, nil
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
