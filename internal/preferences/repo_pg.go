package preferences

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

// Get returns a user's saved preferences.
func (r *PGRepo) Get(ctx context.Context, userID string) (Preferences, error) {
	const query = `
SELECT user_id, weekly_digest, digest_day, anomaly_alerts, forecast_updates,
	data_sync_notifications
FROM user_preferences
WHERE user_id = $1`

	var prefs Preferences
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&prefs.UserID,
		&prefs.WeeklyDigest,
		&prefs.DigestDay,
		&prefs.Notifications.AnomalyAlerts,
		&prefs.Notifications.ForecastUpdates,
		&prefs.Notifications.DataSyncNotifications,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Preferences{}, ErrNotFound
	}
	if err != nil {
		return Preferences{}, err
	}
	return prefs, nil
}

// Put overwrites a user's preferences document.
func (r *PGRepo) Put(ctx context.Context, prefs Preferences) error {
	const query = `
INSERT INTO user_preferences (
	user_id, weekly_digest, digest_day, anomaly_alerts, forecast_updates,
	data_sync_notifications, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (user_id) DO UPDATE SET
	weekly_digest = EXCLUDED.weekly_digest,
	digest_day = EXCLUDED.digest_day,
	anomaly_alerts = EXCLUDED.anomaly_alerts,
	forecast_updates = EXCLUDED.forecast_updates,
	data_sync_notifications = EXCLUDED.data_sync_notifications,
	updated_at = EXCLUDED.updated_at`

	_, err := r.DB.ExecContext(ctx, query,
		prefs.UserID,
		prefs.WeeklyDigest,
		prefs.DigestDay,
		prefs.Notifications.AnomalyAlerts,
		prefs.Notifications.ForecastUpdates,
		prefs.Notifications.DataSyncNotifications,
		time.Now().UTC(),
	)
	return err
}

var _ Repo = (*PGRepo)(nil)
