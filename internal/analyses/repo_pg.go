package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new analysis.
func (r *PGRepo) Create(ctx context.Context, analysis Analysis) error {
	const query = `
INSERT INTO analyses (
	id, user_id, title, data_type, status, file_names, object_keys, result,
	failure_code, failure_message, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	fileNames, err := marshalJSONArray(analysis.FileNames)
	if err != nil {
		return err
	}
	objectKeys, err := marshalJSONArray(analysis.ObjectKeys)
	if err != nil {
		return err
	}
	result, err := marshalResult(analysis.Result)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		analysis.ID,
		analysis.UserID,
		analysis.Title,
		analysis.DataType,
		analysis.Status,
		fileNames,
		objectKeys,
		result,
		analysis.ErrorCode,
		analysis.ErrorMessage,
		analysis.CreatedAt,
		analysis.UpdatedAt,
	)
	return err
}

// GetByID returns an analysis by its ID.
func (r *PGRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	const query = `
SELECT id, user_id, title, data_type, status, file_names, object_keys, result,
	failure_code, failure_message, created_at, updated_at
FROM analyses
WHERE id = $1`

	row := r.DB.QueryRowContext(ctx, query, analysisID)
	analysis, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Analysis{}, ErrNotFound
	}
	return analysis, err
}

// Complete stores the result and marks the analysis completed.
func (r *PGRepo) Complete(ctx context.Context, analysisID string, result Result) error {
	const query = `
UPDATE analyses
SET status = $2, result = $3, failure_code = '', failure_message = '', updated_at = $4
WHERE id = $1`

	payload, err := marshalResult(&result)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query, analysisID, StatusCompleted, payload, time.Now().UTC())
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Fail marks the analysis failed with a classified error.
func (r *PGRepo) Fail(ctx context.Context, analysisID, errorCode, errorMessage string) error {
	const query = `
UPDATE analyses
SET status = $2, failure_code = $3, failure_message = $4, updated_at = $5
WHERE id = $1`

	res, err := r.DB.ExecContext(ctx, query, analysisID, StatusFailed, errorCode, errorMessage, time.Now().UTC())
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ListByUser returns analyses for a user, newest first, with limit/offset.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 50
	}

	const query = `
SELECT id, user_id, title, data_type, status, file_names, object_keys, result,
	failure_code, failure_message, created_at, updated_at
FROM analyses
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	analyses := []Analysis{}
	for rows.Next() {
		analysis, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, analysis)
	}
	return analyses, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (Analysis, error) {
	var (
		analysis   Analysis
		fileNames  []byte
		objectKeys []byte
		result     sql.NullString
		updatedAt  time.Time
	)
	err := row.Scan(
		&analysis.ID,
		&analysis.UserID,
		&analysis.Title,
		&analysis.DataType,
		&analysis.Status,
		&fileNames,
		&objectKeys,
		&result,
		&analysis.ErrorCode,
		&analysis.ErrorMessage,
		&analysis.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return Analysis{}, err
	}
	analysis.UpdatedAt = updatedAt
	if analysis.Status == StatusCompleted || analysis.Status == StatusFailed {
		completedAt := updatedAt
		analysis.CompletedAt = &completedAt
	}
	if err := json.Unmarshal(fileNames, &analysis.FileNames); err != nil {
		return Analysis{}, fmt.Errorf("decode file_names: %w", err)
	}
	if err := json.Unmarshal(objectKeys, &analysis.ObjectKeys); err != nil {
		return Analysis{}, fmt.Errorf("decode object_keys: %w", err)
	}
	if result.Valid && result.String != "" && result.String != "null" {
		var parsed Result
		if err := json.Unmarshal([]byte(result.String), &parsed); err != nil {
			return Analysis{}, fmt.Errorf("decode result: %w", err)
		}
		analysis.Result = &parsed
	}
	return analysis, nil
}

func marshalJSONArray(values []string) ([]byte, error) {
	if values == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(values)
}

func marshalResult(result *Result) (any, error) {
	if result == nil {
		return nil, nil
	}
	return json.Marshal(result)
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
